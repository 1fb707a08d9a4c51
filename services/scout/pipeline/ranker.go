// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"math"
	"sort"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
	"github.com/AleutianAI/toolscout/services/scout/embedding"
)

// ScoredTool is a catalog entry annotated with its similarity score.
type ScoredTool struct {
	catalog.Tool
	// Score is cosine similarity clamped to [0.0, 1.0], 3 decimal places.
	// 0.0 on the degraded (no query vector) path.
	Score float64 `json:"score"`
}

// Rank orders candidate tools by semantic similarity to the query vector.
//
// # Description
//
// With no usable query vector (nil, zero-norm, an unwarmed vector store, or
// a query whose dimensionality differs from the stored tool vectors) ranking
// degrades to the first topK candidates in catalog order, each with score
// 0.0. No semantic information is used and none is pretended.
//
// Otherwise, cosine similarity is computed between the query and every tool
// vector in the store (not just candidates; tools without a vector score 0).
// The full catalog is sorted by similarity descending — stable, so ties keep
// catalog order — and the first topK tools belonging to the candidate set
// are selected. Scores are clamped to [0.0, 1.0] and rounded to 3 decimals.
//
// The second return is the semantic score for the Confidence Scorer: the top
// result's score, or 0.0 when there are no results.
func Rank(queryVec []float32, store *embedding.VectorStore, cat *catalog.Catalog, candidates []catalog.Tool, topK int) ([]ScoredTool, float64) {
	if topK <= 0 {
		return nil, 0.0
	}

	var queryUnit []float32
	if queryVec != nil && store.IsWarmed() && len(queryVec) == store.Dim() {
		queryUnit = embedding.Normalize(queryVec)
	}

	if queryUnit == nil {
		// Degraded path: candidates in catalog order, zero scores.
		n := min(topK, len(candidates))
		results := make([]ScoredTool, 0, n)
		for _, tool := range candidates[:n] {
			results = append(results, ScoredTool{Tool: tool, Score: 0.0})
		}
		return results, 0.0
	}

	tools := cat.Tools()
	scores := make([]float64, len(tools))
	order := make([]int, len(tools))
	for i := range tools {
		order[i] = i
		if vec := store.Vector(i); vec != nil {
			// Both vectors are unit-normalized; dot product is cosine.
			scores[i] = float64(embedding.DotProduct(queryUnit, vec))
		}
	}

	// Stable sort keeps catalog order for equal scores.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	candidateIDs := make(map[string]struct{}, len(candidates))
	for _, tool := range candidates {
		candidateIDs[tool.ID] = struct{}{}
	}

	results := make([]ScoredTool, 0, topK)
	for _, idx := range order {
		if _, ok := candidateIDs[tools[idx].ID]; !ok {
			continue
		}
		results = append(results, ScoredTool{
			Tool:  tools[idx],
			Score: clampScore(scores[idx]),
		})
		if len(results) == topK {
			break
		}
	}

	semantic := 0.0
	if len(results) > 0 {
		semantic = results[0].Score
	}
	return results, semantic
}

// clampScore clamps to [0.0, 1.0] and rounds to 3 decimal places.
func clampScore(score float64) float64 {
	score = math.Max(0.0, math.Min(score, 1.0))
	return math.Round(score*1000) / 1000
}

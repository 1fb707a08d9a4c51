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
	"context"
	"log/slog"
	"testing"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
	"github.com/AleutianAI/toolscout/services/scout/embedding"
)

// testPipeline wires a full pipeline over the embedded catalog with one-hot
// tool vectors and the given query vectors. A text missing from queryVectors
// makes the embedder fail for it, exercising the degraded ranking path.
func testPipeline(t *testing.T, queryVectors map[string][]float32) *Pipeline {
	t.Helper()
	cat := loadCatalog(t)
	store := oneHotStore(t, cat)
	embedder := embedding.NewProvider(&stubEmbedClient{vectors: queryVectors}, slog.Default())
	rewriter := NewRewriter(rewriteRules(t), nil, slog.Default())
	return NewPipeline(cat, store, embedder, rewriter, slog.Default())
}

func TestPipeline_Recommend_LogoPrompt(t *testing.T) {
	cat := loadCatalog(t)
	// The image rule rewrites the prompt before embedding, so the query
	// vector is keyed by the rewritten text.
	p := testPipeline(t, map[string][]float32{
		"Create a professional logo or image": oneHotQuery(t, cat, "canva-magic"),
	})

	result := p.Recommend(context.Background(), "Create a professional logo for my startup", 5)

	if result.OriginalPrompt != "Create a professional logo for my startup" {
		t.Errorf("OriginalPrompt = %q", result.OriginalPrompt)
	}
	if result.RewrittenPrompt != "Create a professional logo or image" {
		t.Errorf("RewrittenPrompt = %q, want image rule output", result.RewrittenPrompt)
	}
	if result.Intent.Domain != catalog.DomainImage {
		t.Errorf("Intent.Domain = %q, want Image", result.Intent.Domain)
	}
	if result.FallbackUsed {
		t.Error("FallbackUsed = true, want false (image tools matched)")
	}
	// 4 image tools carry generate/create; topK 5 caps at the candidate count.
	if len(result.Tools) != 4 {
		t.Fatalf("len(Tools) = %d, want 4", len(result.Tools))
	}
	if result.Tools[0].ID != "canva-magic" || result.Tools[0].Score != 1.0 {
		t.Errorf("top tool = %q/%v, want canva-magic/1.0", result.Tools[0].ID, result.Tools[0].Score)
	}
	// semantic 1.0, action and domain present: (0.6 + 0.25 + 0.135) * 100.
	if result.Confidence != 98.5 {
		t.Errorf("Confidence = %v, want 98.5", result.Confidence)
	}
	if result.NeedsFollowup {
		t.Error("NeedsFollowup = true, want false")
	}
	if len(result.FollowUpQuestions) != 0 {
		t.Errorf("FollowUpQuestions = %v, want empty at high confidence", result.FollowUpQuestions)
	}
	if result.Warning != "" {
		t.Errorf("Warning = %q, want empty", result.Warning)
	}
	if len(result.PromptSuggestions) != 5 {
		t.Errorf("len(PromptSuggestions) = %d, want 5", len(result.PromptSuggestions))
	}
	if result.RewriteFailed {
		t.Error("RewriteFailed = true, want false (rule changed the prompt)")
	}
}

func TestPipeline_Recommend_BannedPrompt(t *testing.T) {
	p := testPipeline(t, nil)

	result := p.Recommend(context.Background(), "how to hack a bank account", 5)

	if result.Warning != ModerationWarning {
		t.Errorf("Warning = %q, want moderation warning", result.Warning)
	}
	if len(result.Tools) != 0 {
		t.Errorf("len(Tools) = %d, want 0", len(result.Tools))
	}
	if result.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", result.Confidence)
	}
	if !result.NeedsFollowup {
		t.Error("NeedsFollowup = false, want true")
	}
	if result.RewrittenPrompt != "" {
		t.Errorf("RewrittenPrompt = %q, want empty (no rewrite for blocked prompts)", result.RewrittenPrompt)
	}
	if result.FollowUpQuestions != nil {
		t.Errorf("FollowUpQuestions = %v, want none for a blocked prompt", result.FollowUpQuestions)
	}
	if result.PromptSuggestions != nil {
		t.Errorf("PromptSuggestions = %v, want none for a blocked prompt", result.PromptSuggestions)
	}
}

func TestPipeline_Recommend_DimensionMismatch(t *testing.T) {
	// The query embedding has a different dimensionality than the stored
	// tool vectors. Ranking must degrade to zero scores instead of
	// computing a truncated similarity.
	p := testPipeline(t, map[string][]float32{
		"Create a professional logo or image": {1, 1},
	})

	result := p.Recommend(context.Background(), "Create a professional logo for my startup", 5)

	if len(result.Tools) == 0 {
		t.Fatal("len(Tools) = 0, want degraded candidates")
	}
	for i, tool := range result.Tools {
		if tool.Score != 0.0 {
			t.Errorf("Tools[%d].Score = %v, want 0.0 without usable similarity", i, tool.Score)
		}
	}
	// semantic 0, action and domain present: (0 + 0.25 + 0.135) * 100.
	if result.Confidence != 38.5 {
		t.Errorf("Confidence = %v, want 38.5", result.Confidence)
	}
	if !result.NeedsFollowup {
		t.Error("NeedsFollowup = false, want true")
	}
}

func TestPipeline_Recommend_EmptyPrompt(t *testing.T) {
	p := testPipeline(t, nil)

	result := p.Recommend(context.Background(), "", 5)

	// No rule matches, no LLM configured: the rewrite is a no-op.
	if !result.RewriteFailed {
		t.Error("RewriteFailed = false, want true")
	}
	// Defaults classify as Text/generate; the embedder has no vector for
	// the empty string, so ranking degrades with zero scores.
	if result.Intent.Domain != catalog.DomainText {
		t.Errorf("Intent.Domain = %q, want Text", result.Intent.Domain)
	}
	if len(result.Tools) == 0 {
		t.Fatal("expected degraded results, got none")
	}
	for _, tool := range result.Tools {
		if tool.Score != 0.0 {
			t.Errorf("tool %q score = %v, want 0.0", tool.ID, tool.Score)
		}
	}
	// (0*0.6 + 1.0*0.25 + 0.9*0.15) * 100 = 38.5, below the 40 threshold.
	if result.Confidence != 38.5 {
		t.Errorf("Confidence = %v, want 38.5", result.Confidence)
	}
	if !result.NeedsFollowup {
		t.Error("NeedsFollowup = false, want true")
	}
	if len(result.FollowUpQuestions) != 3 {
		t.Errorf("len(FollowUpQuestions) = %d, want 3", len(result.FollowUpQuestions))
	}
}

func TestPipeline_Recommend_EmbeddingUnavailable(t *testing.T) {
	// No query vectors seeded: every embed call fails.
	p := testPipeline(t, nil)

	result := p.Recommend(context.Background(), "Write Python code", 5)

	if len(result.Tools) == 0 {
		t.Fatal("expected degraded results, got none")
	}
	for _, tool := range result.Tools {
		if tool.Score != 0.0 {
			t.Errorf("tool %q score = %v, want 0.0 when embedding fails", tool.ID, tool.Score)
		}
	}
	if result.ConfidenceBreakdown.SemanticSimilarity != 0.0 {
		t.Errorf("SemanticSimilarity = %v, want 0.0", result.ConfidenceBreakdown.SemanticSimilarity)
	}
	if result.Intent.Domain != catalog.DomainCode {
		t.Errorf("Intent.Domain = %q, want Code", result.Intent.Domain)
	}
}

func TestPipeline_Recommend_FallbackToFullCatalog(t *testing.T) {
	cat := loadCatalog(t)
	p := testPipeline(t, map[string][]float32{
		"translate my movie subtitles": oneHotQuery(t, cat, "deepl"),
	})

	// Video domain + translate action matches no tool; ranking falls back
	// to the whole catalog and the best semantic match wins regardless of
	// domain.
	result := p.Recommend(context.Background(), "translate my movie subtitles", 5)

	if !result.FallbackUsed {
		t.Error("FallbackUsed = false, want true")
	}
	if len(result.Tools) != 5 {
		t.Fatalf("len(Tools) = %d, want 5", len(result.Tools))
	}
	if result.Tools[0].ID != "deepl" {
		t.Errorf("top tool = %q, want deepl", result.Tools[0].ID)
	}
}

func TestPipeline_Recommend_DefaultTopK(t *testing.T) {
	p := testPipeline(t, nil)

	result := p.Recommend(context.Background(), "summarize a research paper please", 0)

	if len(result.Tools) > DefaultTopK {
		t.Errorf("len(Tools) = %d, want <= %d", len(result.Tools), DefaultTopK)
	}
}

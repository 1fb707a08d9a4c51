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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
	"github.com/AleutianAI/toolscout/services/scout/embedding"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	recommendTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "recommend_total",
		Help:      "Total recommendation requests processed",
	})

	recommendBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "recommend_blocked_total",
		Help:      "Recommendation requests rejected by moderation",
	})

	recommendFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "recommend_fallback_total",
		Help:      "Recommendations where filtering matched nothing and the full catalog was ranked",
	})

	recommendLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "recommend_latency_seconds",
		Help:      "End-to-end recommendation latency",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	recommendConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "recommend_confidence",
		Help:      "Confidence score distribution (0-100)",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var pipelineTracer = otel.Tracer("aleutian.scout.pipeline")

// DefaultTopK is the number of tools returned when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// promptSuggestions is the fixed example set surfaced with every result so
// clients can show users what well-formed prompts look like.
var promptSuggestions = []string{
	"Convert my voice recording into text",
	"Create a professional logo for my startup",
	"Write Python code",
	"Make Instagram reels automatically",
	"Summarize a research paper",
}

// Result is the complete output of one recommendation request.
type Result struct {
	OriginalPrompt  string `json:"original_prompt"`
	RewrittenPrompt string `json:"rewritten_prompt"`

	Intent Intent `json:"intent"`

	Confidence          float64             `json:"confidence"`
	ConfidenceBreakdown ConfidenceBreakdown `json:"confidence_breakdown"`

	NeedsFollowup     bool     `json:"needs_followup"`
	FollowUpQuestions []string `json:"follow_up_questions"`

	// FallbackUsed indicates filtering matched nothing and ranking ran
	// over the full catalog instead.
	FallbackUsed bool `json:"fallback_used"`

	// Warning is set only when moderation rejected the prompt.
	Warning string `json:"warning,omitempty"`

	PromptSuggestions []string `json:"prompt_suggestions"`

	Tools []ScoredTool `json:"tools"`

	// RewriteFailed is internal diagnostic state for bad-prompt logging,
	// not part of the response body.
	RewriteFailed bool `json:"-"`
}

// Pipeline runs the full recommendation flow for one prompt.
//
// # Description
//
//	Stages, in order: moderation, prompt rewriting, intent extraction,
//	rule-based filtering (with full-catalog fallback), query embedding,
//	semantic ranking and confidence scoring. Every stage degrades rather
//	than fails: the pipeline never returns an error for a prompt it could
//	moderate, and an unreachable embedding service only zeroes the
//	semantic component.
//
// Thread Safety: Safe for concurrent use. The rewriter and embedder hold
// their own locks; everything else is read-only after construction.
type Pipeline struct {
	cat      *catalog.Catalog
	store    *embedding.VectorStore
	embedder *embedding.Provider
	rewriter *Rewriter
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline over the given catalog and vector store.
//
// Inputs:
//
//	cat - Tool catalog. Must not be nil.
//	store - Tool vector store. Must not be nil (may be unwarmed).
//	embedder - Query embedding provider. Must not be nil.
//	rewriter - Prompt rewriter. Must not be nil.
//	logger - Logger for structured output. May be nil (defaults applied).
func NewPipeline(cat *catalog.Catalog, store *embedding.VectorStore, embedder *embedding.Provider, rewriter *Rewriter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cat:      cat,
		store:    store,
		embedder: embedder,
		rewriter: rewriter,
		logger:   logger,
	}
}

// Recommend runs the pipeline for one prompt and returns the ranked tools.
//
// topK <= 0 is treated as DefaultTopK. The returned Result is always
// non-nil; moderation rejections produce an empty tool list with a
// warning rather than an error.
func (p *Pipeline) Recommend(ctx context.Context, prompt string, topK int) *Result {
	ctx, span := pipelineTracer.Start(ctx, "pipeline.Recommend")
	defer span.End()

	start := time.Now()
	recommendTotal.Inc()
	if topK <= 0 {
		topK = DefaultTopK
	}

	if !IsSafe(prompt) {
		recommendBlockedTotal.Inc()
		span.SetAttributes(attribute.Bool("scout.blocked", true))
		p.logger.Warn("prompt rejected by moderation")
		// Blocked prompts carry only the warning: no follow-up
		// questions and no suggestions to retry with.
		return &Result{
			OriginalPrompt:  prompt,
			RewrittenPrompt: "",
			Confidence:      0.0,
			NeedsFollowup:   true,
			Warning:         ModerationWarning,
			Tools:           []ScoredTool{},
		}
	}

	rewritten := p.rewriter.Rewrite(ctx, prompt)
	rewriteFailed := RewriteFailed(prompt, rewritten)

	intent := ExtractIntent(rewritten)

	filtered := FilterTools(intent, p.cat.Tools())
	fallbackUsed := false
	if len(filtered) == 0 {
		filtered = p.cat.Tools()
		fallbackUsed = true
		recommendFallbackTotal.Inc()
	}

	queryVec := p.embedder.Embed(ctx, rewritten)
	if queryVec != nil && p.store.IsWarmed() && len(queryVec) != p.store.Dim() {
		// The embedding model serving queries does not match the model
		// that produced the stored tool vectors.
		p.logger.Error("query embedding dimension does not match tool vectors, configuration error",
			"query_dim", len(queryVec),
			"store_dim", p.store.Dim())
		queryVec = nil
	}

	tools, semantic := Rank(queryVec, p.store, p.cat, filtered, topK)

	confidence, breakdown := ScoreConfidence(semantic, intent)
	needsFollowup := NeedsFollowup(confidence)
	questions := []string{}
	if needsFollowup {
		questions = FollowUpQuestions()
	}

	recommendConfidence.Observe(confidence)
	recommendLatency.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("scout.domain", string(intent.Domain)),
		attribute.String("scout.action", string(intent.Action)),
		attribute.Float64("scout.confidence", confidence),
		attribute.Bool("scout.fallback_used", fallbackUsed),
		attribute.Int("scout.results", len(tools)),
	)
	p.logger.Info("recommendation complete",
		"confidence", confidence,
		"semantic", breakdown.SemanticSimilarity,
		"fallback_used", fallbackUsed,
		"needs_followup", needsFollowup,
		"results", len(tools),
		"duration_ms", time.Since(start).Milliseconds())

	return &Result{
		OriginalPrompt:      prompt,
		RewrittenPrompt:     rewritten,
		Intent:              intent,
		Confidence:          confidence,
		ConfidenceBreakdown: breakdown,
		NeedsFollowup:       needsFollowup,
		FollowUpQuestions:   questions,
		FallbackUsed:        fallbackUsed,
		PromptSuggestions:   PromptSuggestions(),
		Tools:               tools,
		RewriteFailed:       rewriteFailed,
	}
}

// PromptSuggestions returns a copy of the fixed example prompt set.
func PromptSuggestions() []string {
	out := make([]string, len(promptSuggestions))
	copy(out, promptSuggestions)
	return out
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scout exposes the tool recommendation pipeline as a service:
// HTTP handlers, feedback capture and diagnostic logging around the
// pure pipeline stages.
package scout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
	"github.com/AleutianAI/toolscout/services/scout/embedding"
	"github.com/AleutianAI/toolscout/services/scout/pipeline"
	"github.com/AleutianAI/toolscout/services/scout/providers"
)

// Service ties the recommendation pipeline to its side effects.
//
// # Description
//
// Wraps the pure pipeline with the pieces that touch the outside world:
// the chat passthrough, the feedback log and the bad-prompt diagnostic
// log. Handlers call Service, never the pipeline directly.
//
// # Thread Safety
//
// Safe for concurrent use. All fields are read-only after construction;
// the logs and the pipeline carry their own locks.
type Service struct {
	cat      *catalog.Catalog
	pipe     *pipeline.Pipeline
	store    *embedding.VectorStore
	chat     providers.ChatClient // nil disables /chat
	feedback *FeedbackLog         // nil disables feedback persistence
	badLog   *BadPromptLog        // nil disables bad-prompt logging
	logger   *slog.Logger
}

// ServiceConfig collects the dependencies for NewService.
type ServiceConfig struct {
	Catalog  *catalog.Catalog
	Pipeline *pipeline.Pipeline
	Store    *embedding.VectorStore
	Chat     providers.ChatClient
	Feedback *FeedbackLog
	BadLog   *BadPromptLog
	Logger   *slog.Logger
}

// NewService creates a Service. Catalog and Pipeline are required; the
// chat client and the logs are optional and disable their feature when nil.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("scout: catalog is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("scout: pipeline is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cat:      cfg.Catalog,
		pipe:     cfg.Pipeline,
		store:    cfg.Store,
		chat:     cfg.Chat,
		feedback: cfg.Feedback,
		badLog:   cfg.BadLog,
		logger:   logger,
	}, nil
}

// Recommend runs the pipeline and records diagnostically bad prompts.
//
// A prompt is logged when filtering fell back to the full catalog, the
// confidence was low enough to need follow-up, or the rewrite was a no-op.
// Moderation rejections are not logged; a blocked prompt is working as
// intended, not a quality signal.
func (s *Service) Recommend(ctx context.Context, prompt string, topK int) *pipeline.Result {
	result := s.pipe.Recommend(ctx, prompt, topK)

	if s.badLog != nil && result.Warning == "" &&
		(result.FallbackUsed || result.NeedsFollowup || result.RewriteFailed) {
		if err := s.badLog.Record(prompt); err != nil {
			s.logger.Warn("bad prompt log write failed", slog.String("error", err.Error()))
		}
	}
	return result
}

// GetTool returns the catalog entry with the given id.
func (s *Service) GetTool(id string) (catalog.Tool, bool) {
	return s.cat.Get(id)
}

// ListTools returns catalog entries matching the optional domain and
// pricing filters, in seed order. Empty filter values match everything.
func (s *Service) ListTools(domain catalog.Domain, pricing catalog.Pricing) []catalog.Tool {
	tools := make([]catalog.Tool, 0, s.cat.Len())
	for _, tool := range s.cat.Tools() {
		if domain != "" && tool.Domain != domain {
			continue
		}
		if pricing != "" && pricing != catalog.PricingAny && tool.Pricing != pricing {
			continue
		}
		tools = append(tools, tool)
	}
	return tools
}

// Chat forwards one user message to the chat model with a generic
// assistant system prompt. Unlike the pipeline's rewrite fallback this is
// a plain passthrough; errors surface to the caller.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	if s.chat == nil {
		return "", fmt.Errorf("scout: chat is not configured")
	}
	return s.chat.Chat(ctx, []providers.Message{
		{Role: "system", Content: "You are a helpful AI assistant for user questions."},
		{Role: "user", Content: message},
	})
}

// RecordFeedback appends one feedback entry to the JSONL log.
func (s *Service) RecordFeedback(entry FeedbackEntry) error {
	if s.feedback == nil {
		return fmt.Errorf("scout: feedback log is not configured")
	}
	return s.feedback.Record(entry)
}

// Suggestions returns the fixed example prompt set.
func (s *Service) Suggestions() []string {
	return pipeline.PromptSuggestions()
}

// Ready reports whether the semantic ranking path is available. The
// service still serves degraded recommendations when false.
func (s *Service) Ready() bool {
	return s.store != nil && s.store.IsWarmed()
}

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
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/toolscout/services/scout/config"
	"github.com/AleutianAI/toolscout/services/scout/providers"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var rewriteSourceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "scout",
	Subsystem: "rewrite",
	Name:      "source_total",
	Help:      "Rewrite outcomes by source: cache, rule, llm, original",
}, []string{"source"})

// =============================================================================
// Rewriter
// =============================================================================

// rewriteSystemMessage instructs the LLM fallback to act as a prompt
// normalizer, not a chat assistant. The contract is one imperative sentence
// with no conversational filler, naming no specific tool.
const rewriteSystemMessage = `You are NOT a chat assistant.

You are a PROMPT NORMALIZER for an AI tool selection system.

Your ONLY task:
- Rewrite the user input into ONE short, clear AI task.

STRICT RULES:
- Do NOT answer the user
- Do NOT ask questions
- Do NOT explain anything
- Do NOT say "I will help you"
- Do NOT give steps or guidance
- Output ONLY ONE sentence

The output MUST:
- Start with a verb (Write, Create, Generate, Convert, Summarize)
- Be neutral and tool-agnostic
- Be suitable for selecting an AI tool

Examples:

Input: help me to write letter
Output: Write a letter using AI

Input: can you write email for me
Output: Write an email using AI

Input: logo
Output: Create a professional logo for a startup

Input: meri awaaz ko text mein badlo
Output: Convert my voice recording into text`

// chatMarkers are conversational fragments that disqualify an LLM rewrite.
// A model that starts chatting instead of normalizing produces one of these.
var chatMarkers = []string{
	"i will help",
	"please provide",
	"let me",
	"sure,",
	"i can help",
	"start by",
	"here is",
	"step",
	"first,",
}

// minRewriteWords is the minimum word count for an acceptable LLM rewrite.
const minRewriteWords = 3

// Rewriter normalizes user prompts into canonical task sentences.
//
// # Description
//
// Two stages, tried in order:
//
//  1. Rule-based: the ordered pattern list from config. First match wins.
//  2. LLM fallback: one chat call with a strict normalizer instruction.
//     The output is rejected — and the original prompt returned — if it is
//     empty, shorter than three words, or contains a conversational marker.
//     Any transport error likewise falls back to the original prompt.
//
// Results are cached by the exact original prompt string for the process
// lifetime. Rewrite never fails: the worst outcome is the input unchanged.
//
// # Thread Safety
//
// Safe for concurrent use. Concurrent misses on one key may both compute;
// last writer wins, which is harmless because the value is a deterministic
// function of the key (rules) or an acceptable variant (LLM).
type Rewriter struct {
	mu    sync.RWMutex
	cache map[string]string

	rules  *config.RewriteConfig
	chat   providers.ChatClient // nil disables the LLM fallback
	logger *slog.Logger
}

// NewRewriter creates a Rewriter.
//
// # Inputs
//
//   - rules: Compiled rewrite rules. Must not be nil.
//   - chat: LLM fallback client. Nil disables the fallback; unmatched
//     prompts pass through unchanged.
//   - logger: Logger for fallback diagnostics. May be nil.
func NewRewriter(rules *config.RewriteConfig, chat providers.ChatClient, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{
		cache:  make(map[string]string),
		rules:  rules,
		chat:   chat,
		logger: logger,
	}
}

// Rewrite returns the canonical task sentence for prompt. Never errors.
func (r *Rewriter) Rewrite(ctx context.Context, prompt string) string {
	r.mu.RLock()
	cached, ok := r.cache[prompt]
	r.mu.RUnlock()
	if ok {
		rewriteSourceTotal.WithLabelValues("cache").Inc()
		return cached
	}

	if out, matched := r.ruleRewrite(prompt); matched {
		rewriteSourceTotal.WithLabelValues("rule").Inc()
		r.put(prompt, out)
		return out
	}

	out, usedLLM := r.llmRewrite(ctx, prompt)
	if usedLLM {
		rewriteSourceTotal.WithLabelValues("llm").Inc()
	} else {
		rewriteSourceTotal.WithLabelValues("original").Inc()
	}
	r.put(prompt, out)
	return out
}

// ruleRewrite applies the ordered rule list to the lower-cased prompt.
func (r *Rewriter) ruleRewrite(prompt string) (string, bool) {
	text := strings.ToLower(prompt)
	for i := range r.rules.Rules {
		rule := &r.rules.Rules[i]
		if rule.Match(text) {
			return rule.Output, true
		}
	}
	return "", false
}

// llmRewrite calls the chat fallback. The second return reports whether the
// LLM's output was accepted; false means the original prompt came back.
func (r *Rewriter) llmRewrite(ctx context.Context, prompt string) (string, bool) {
	if r.chat == nil {
		return prompt, false
	}

	reply, err := r.chat.Chat(ctx, []providers.Message{
		{Role: "system", Content: rewriteSystemMessage},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		r.logger.Warn("LLM rewrite failed, keeping original prompt",
			slog.String("error", err.Error()),
		)
		return prompt, false
	}

	rewritten := strings.TrimSpace(reply)
	if !acceptableRewrite(rewritten) {
		r.logger.Debug("LLM rewrite rejected as chat-like",
			slog.String("rewritten", rewritten),
		)
		return prompt, false
	}
	return rewritten, true
}

// acceptableRewrite applies the hard rejection rules for LLM output.
func acceptableRewrite(rewritten string) bool {
	if rewritten == "" {
		return false
	}
	if len(strings.Fields(rewritten)) < minRewriteWords {
		return false
	}
	lower := strings.ToLower(rewritten)
	for _, marker := range chatMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

func (r *Rewriter) put(prompt, rewritten string) {
	r.mu.Lock()
	r.cache[prompt] = rewritten
	r.mu.Unlock()
}

// CacheLen returns the number of cached rewrites. Diagnostic only.
func (r *Rewriter) CacheLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// RewriteFailed reports whether a rewrite was a no-op: the rewritten text
// equals the original ignoring case and surrounding whitespace. Used for
// diagnostic logging only; an ineffective rewrite does not block the pipeline.
func RewriteFailed(original, rewritten string) bool {
	return strings.EqualFold(strings.TrimSpace(original), strings.TrimSpace(rewritten))
}

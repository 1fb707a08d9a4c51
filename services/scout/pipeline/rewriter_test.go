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
	"errors"
	"testing"

	"github.com/AleutianAI/toolscout/services/scout/config"
	"github.com/AleutianAI/toolscout/services/scout/providers"
)

// fakeChatClient returns a canned reply (or error) and counts calls.
type fakeChatClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatClient) Chat(ctx context.Context, messages []providers.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func rewriteRules(t *testing.T) *config.RewriteConfig {
	t.Helper()
	cfg, err := config.GetRewriteConfig()
	if err != nil {
		t.Fatalf("GetRewriteConfig() failed: %v", err)
	}
	return cfg
}

func TestRewriter_RuleMatchSkipsLLM(t *testing.T) {
	chat := &fakeChatClient{reply: "should not be used"}
	r := NewRewriter(rewriteRules(t), chat, nil)

	got := r.Rewrite(context.Background(), "mujhe apni awaaz text mein chahiye")
	if got != "Convert my voice recording into text" {
		t.Errorf("Rewrite() = %q, want audio rule output", got)
	}
	if chat.calls != 0 {
		t.Errorf("chat client called %d times for a rule match, want 0", chat.calls)
	}
}

func TestRewriter_RuleOrder(t *testing.T) {
	r := NewRewriter(rewriteRules(t), nil, nil)

	// Matches both the letter and image rules; letter is listed first.
	got := r.Rewrite(context.Background(), "design a letter for me")
	if got != "Write a letter or email using AI" {
		t.Errorf("Rewrite() = %q, want letter rule output (listed before image)", got)
	}
}

func TestRewriter_LLMFallback(t *testing.T) {
	chat := &fakeChatClient{reply: "Generate a weekly meal plan"}
	r := NewRewriter(rewriteRules(t), chat, nil)

	got := r.Rewrite(context.Background(), "plan my meals for the week")
	if got != "Generate a weekly meal plan" {
		t.Errorf("Rewrite() = %q, want LLM reply", got)
	}
	if chat.calls != 1 {
		t.Errorf("chat client called %d times, want 1", chat.calls)
	}
}

func TestRewriter_CachesByExactPrompt(t *testing.T) {
	chat := &fakeChatClient{reply: "Generate a weekly meal plan"}
	r := NewRewriter(rewriteRules(t), chat, nil)

	const prompt = "plan my meals for the week"
	first := r.Rewrite(context.Background(), prompt)
	second := r.Rewrite(context.Background(), prompt)

	if first != second {
		t.Errorf("cached rewrite differs: %q vs %q", first, second)
	}
	if chat.calls != 1 {
		t.Errorf("chat client called %d times for identical prompt, want 1", chat.calls)
	}
	if r.CacheLen() != 1 {
		t.Errorf("CacheLen() = %d, want 1", r.CacheLen())
	}

	// Different literal string is a different cache key.
	r.Rewrite(context.Background(), "Plan my meals for the week")
	if chat.calls != 2 {
		t.Errorf("chat client called %d times after case-variant prompt, want 2", chat.calls)
	}
}

func TestRewriter_RejectsChatLikeReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"conversational marker", "Sure, I can help you with that task today"},
		{"step guidance", "Step one is to open the editor"},
		{"too short", "Write code"},
		{"empty reply", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChatClient{reply: tt.reply}
			r := NewRewriter(rewriteRules(t), chat, nil)

			const prompt = "help me with my thing"
			if got := r.Rewrite(context.Background(), prompt); got != prompt {
				t.Errorf("Rewrite() = %q, want original prompt back", got)
			}
		})
	}
}

func TestRewriter_LLMErrorKeepsOriginal(t *testing.T) {
	chat := &fakeChatClient{err: errors.New("connection refused")}
	r := NewRewriter(rewriteRules(t), chat, nil)

	const prompt = "plan my meals for the week"
	if got := r.Rewrite(context.Background(), prompt); got != prompt {
		t.Errorf("Rewrite() = %q, want original prompt on LLM error", got)
	}
}

func TestRewriter_NilChatPassesThrough(t *testing.T) {
	r := NewRewriter(rewriteRules(t), nil, nil)

	const prompt = "something no rule matches"
	if got := r.Rewrite(context.Background(), prompt); got != prompt {
		t.Errorf("Rewrite() = %q, want passthrough with nil chat client", got)
	}
}

func TestRewriteFailed(t *testing.T) {
	tests := []struct {
		original  string
		rewritten string
		want      bool
	}{
		{"write a poem", "write a poem", true},
		{"Write A Poem", "write a poem", true},
		{"  write a poem  ", "write a poem", true},
		{"poem", "Write a poem using AI", false},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := RewriteFailed(tt.original, tt.rewritten); got != tt.want {
			t.Errorf("RewriteFailed(%q, %q) = %v, want %v", tt.original, tt.rewritten, got, tt.want)
		}
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
)

// fakeEmbedClient counts calls and can be toggled to fail.
type fakeEmbedClient struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeEmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, fmt.Errorf("simulated transport failure")
	}
	return deterministicVector(text, 8), nil
}

func TestProvider_CachesByLiteralString(t *testing.T) {
	client := &fakeEmbedClient{}
	p := NewProvider(client, slog.Default())

	a := p.Embed(context.Background(), "Create a logo")
	if a == nil {
		t.Fatal("expected vector, got nil")
	}
	b := p.Embed(context.Background(), "Create a logo")
	if client.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call for identical prompts, got %d", client.calls.Load())
	}
	if len(a) != len(b) {
		t.Error("cached vector differs from original")
	}

	// Literal-match only: differing case is a different key.
	_ = p.Embed(context.Background(), "create a logo")
	if client.calls.Load() != 2 {
		t.Errorf("expected case-different prompt to miss the cache, calls = %d", client.calls.Load())
	}
	if p.CacheLen() != 2 {
		t.Errorf("CacheLen() = %d, want 2", p.CacheLen())
	}
}

func TestProvider_FailureReturnsNilNotError(t *testing.T) {
	client := &fakeEmbedClient{fail: true}
	p := NewProvider(client, slog.Default())

	if vec := p.Embed(context.Background(), "anything"); vec != nil {
		t.Errorf("expected nil vector on failure, got %v", vec)
	}
	// Failures are not cached; the next call retries the service.
	_ = p.Embed(context.Background(), "anything")
	if client.calls.Load() != 2 {
		t.Errorf("expected failed results to not be cached, calls = %d", client.calls.Load())
	}
}

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
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	embedCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "embed",
		Name:      "cache_hits_total",
		Help:      "Query embedding cache hits",
	})

	embedCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "embed",
		Name:      "cache_misses_total",
		Help:      "Query embedding cache misses",
	})

	embedFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "embed",
		Name:      "failures_total",
		Help:      "Query embedding calls that failed and degraded to a nil vector",
	})
)

// =============================================================================
// Provider
// =============================================================================

// Provider embeds query text with an exact-match, process-lifetime cache in
// front of the external embedding service.
//
// # Description
//
// The cache is keyed by the literal prompt string: no case folding, no
// whitespace normalization. Only byte-identical repeats hit. The map is
// unbounded — acceptable at the service's working-set scale (hundreds of
// distinct prompts); a bounded LRU is the known follow-up if that changes.
//
// A failed embedding call returns nil, not an error. Nil is a legitimate
// value for the ranking stage (degrade to catalog-order, zero scores), so
// failures are absorbed here and surface only as a metric and a log line.
//
// # Thread Safety
//
// Safe for concurrent use. Concurrent misses on the same key may both call
// the service; last writer wins, which is harmless because the cached value
// is an idempotent function of the key.
type Provider struct {
	mu     sync.RWMutex
	cache  map[string][]float32
	client EmbedClient
	logger *slog.Logger
}

// NewProvider creates a caching embedding provider.
//
// # Inputs
//
//   - client: The external embedding capability. Must not be nil.
//   - logger: Logger for degradation warnings. May be nil.
func NewProvider(client EmbedClient, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cache:  make(map[string][]float32),
		client: client,
		logger: logger,
	}
}

// Embed returns the embedding vector for text, or nil when the external
// service fails. Nil is a valid degraded state, never an error.
func (p *Provider) Embed(ctx context.Context, text string) []float32 {
	p.mu.RLock()
	vec, ok := p.cache[text]
	p.mu.RUnlock()
	if ok {
		embedCacheHits.Inc()
		return vec
	}
	embedCacheMisses.Inc()

	vec, err := p.client.Embed(ctx, text)
	if err != nil {
		embedFailures.Inc()
		p.logger.Warn("query embedding failed, degrading to nil vector",
			slog.String("error", err.Error()),
		)
		return nil
	}

	p.mu.Lock()
	p.cache[text] = vec
	p.mu.Unlock()
	return vec
}

// CacheLen returns the number of cached query vectors. Diagnostic only.
func (p *Provider) CacheLen() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

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
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
)

// warmConcurrency is the number of parallel embedding calls during warm-up.
// 10 concurrent requests saturates a local Ollama without overwhelming it.
const warmConcurrency = 10

// =============================================================================
// Snapshot Format
// =============================================================================

// Snapshot is the on-disk embeddings file produced by `scoutctl embed`.
//
// IDs and Vectors are pre-aligned 1:1 by position; the loader rejects any
// snapshot whose id list does not exactly match the live catalog.
type Snapshot struct {
	// Model is the embedding model that produced the vectors.
	Model string `json:"model"`

	// Dim is the vector dimensionality. Every vector must have this length.
	Dim int `json:"dim"`

	// IDs lists tool ids in catalog order.
	IDs []string `json:"ids"`

	// Vectors holds one raw embedding vector per id, same order.
	Vectors [][]float32 `json:"vectors"`
}

// EncodeSnapshot serializes a snapshot as indented JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// =============================================================================
// VectorStore
// =============================================================================

// VectorStore holds one unit-normalized embedding vector per catalog tool,
// aligned by catalog position.
//
// # Description
//
// Vectors come from one of two sources, either of which marks the store
// warmed:
//
//  1. LoadSnapshot: a pre-computed embeddings file. Alignment with the
//     catalog id list and dimensional consistency are validated strictly —
//     a mismatch is a startup error, the service must not run with it.
//  2. Warm: computed at startup via the embedding service, in parallel.
//     A BadgerDB cache keyed by corpus hash skips the computation entirely
//     when neither the catalog nor the model has changed. Individual tool
//     failures are logged and leave a nil vector (that tool scores 0);
//     if every tool fails the store simply stays unwarmed and ranking
//     degrades to catalog order.
//
// # Thread Safety
//
// Safe for concurrent reads after Warm or LoadSnapshot completes. Warm and
// LoadSnapshot are not safe to call concurrently with each other.
type VectorStore struct {
	mu      sync.RWMutex
	vectors [][]float32 // catalog position → unit-normalized vector; nil = unavailable
	dim     int
	warmed  bool

	cat    *catalog.Catalog
	client EmbedClient
	model  string
	store  VectorCacheStore // nil = in-memory-only
	logger *slog.Logger
}

// NewVectorStore creates an unwarmed vector store.
//
// # Inputs
//
//   - cat: The loaded tool catalog. Must not be nil.
//   - client: Embedding capability used by Warm. Must not be nil.
//   - model: Embedding model name, used in the corpus hash.
//   - store: Optional BadgerDB persistence. Nil disables persistence.
//   - logger: Logger for warm-up diagnostics. May be nil.
func NewVectorStore(cat *catalog.Catalog, client EmbedClient, model string, store VectorCacheStore, logger *slog.Logger) *VectorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorStore{
		vectors: make([][]float32, cat.Len()),
		cat:     cat,
		client:  client,
		model:   model,
		store:   store,
		logger:  logger,
	}
}

// Warm computes and caches an embedding vector for every catalog tool.
//
// # Description
//
// Checks the BadgerDB cache first (corpus hash of catalog docs + model);
// on a hit the embedding service is never called. On a miss, embeds every
// tool document with up to warmConcurrency parallel calls, unit-normalizes
// the results, and persists them. Persistence failure is non-fatal.
//
// # Outputs
//
//   - error: Non-nil only on context cancellation. An unreachable embedding
//     service leaves the store unwarmed and returns nil — ranking degrades
//     gracefully rather than blocking startup.
func (vs *VectorStore) Warm(ctx context.Context) error {
	tools := vs.cat.Tools()
	if len(tools) == 0 {
		return nil
	}

	corpusHash := ComputeCorpusHash(tools, vs.model)
	if vs.store != nil {
		cached, err := vs.store.LoadVectors(ctx, corpusHash)
		if err != nil {
			vs.logger.Warn("vector store: cache load failed, continuing with warm-up",
				slog.String("error", err.Error()),
			)
		} else if len(cached) > 0 {
			vs.adoptCached(cached)
			vs.logger.Info("vector store: loaded from cache (skipping warm-up)",
				slog.Int("tool_count", len(cached)),
				slog.String("corpus_hash", shortHash(corpusHash)),
			)
			return nil
		}
	}

	vs.logger.Info("vector store: starting warm-up",
		slog.Int("tool_count", len(tools)),
		slog.String("model", vs.model),
	)

	type result struct {
		idx    int
		vector []float32
	}

	resultCh := make(chan result, len(tools))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for i, tool := range tools {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := vs.client.Embed(gctx, tool.EmbeddingDoc())
			if err != nil {
				vs.logger.Warn("vector store: failed to embed tool",
					slog.String("tool", tool.ID),
					slog.String("error", err.Error()),
				)
				// Individual failure is not fatal.
				return nil
			}
			resultCh <- result{idx: i, vector: vec}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("vector store warm-up: %w", err)
	}
	close(resultCh)

	vs.mu.Lock()
	embedded := 0
	for r := range resultCh {
		unit := Normalize(r.vector)
		if unit == nil {
			continue
		}
		if vs.dim == 0 {
			vs.dim = len(unit)
		}
		if len(unit) != vs.dim {
			vs.logger.Warn("vector store: dimension mismatch, skipping tool",
				slog.String("tool", tools[r.idx].ID),
				slog.Int("got", len(unit)),
				slog.Int("want", vs.dim),
			)
			continue
		}
		vs.vectors[r.idx] = unit
		embedded++
	}
	vs.warmed = embedded > 0

	var toSave map[string][]float32
	if vs.warmed && vs.store != nil {
		toSave = make(map[string][]float32, embedded)
		for i, vec := range vs.vectors {
			if vec != nil {
				toSave[tools[i].ID] = vec
			}
		}
	}
	vs.mu.Unlock()

	vs.logger.Info("vector store: warm-up complete",
		slog.Int("embedded_tools", embedded),
		slog.Int("requested_tools", len(tools)),
	)

	// Persist after releasing the lock. Failure is non-fatal: vectors are
	// already in RAM.
	if toSave != nil {
		if err := vs.store.SaveVectors(ctx, corpusHash, toSave); err != nil {
			vs.logger.Warn("vector store: failed to persist vectors",
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// adoptCached installs vectors loaded from the BadgerDB cache.
func (vs *VectorStore) adoptCached(cached map[string][]float32) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	embedded := 0
	for i, tool := range vs.cat.Tools() {
		vec, ok := cached[tool.ID]
		if !ok {
			continue
		}
		if vs.dim == 0 {
			vs.dim = len(vec)
		}
		if len(vec) != vs.dim {
			continue
		}
		vs.vectors[i] = vec // already unit-normalized on save
		embedded++
	}
	vs.warmed = embedded > 0
}

// LoadSnapshot installs vectors from a pre-computed embeddings file.
//
// # Description
//
// Validation is strict and any failure is a startup error:
//   - the snapshot id list must exactly match the catalog id list, in order;
//   - every vector must have exactly Dim elements, Dim > 0;
//   - Vectors must be the same length as IDs.
//
// Vectors are unit-normalized on load; a zero-norm vector is rejected.
func (vs *VectorStore) LoadSnapshot(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("embeddings snapshot: parse: %w", err)
	}
	if snap.Dim <= 0 {
		return fmt.Errorf("embeddings snapshot: invalid dim %d", snap.Dim)
	}
	if len(snap.IDs) != len(snap.Vectors) {
		return fmt.Errorf("embeddings snapshot: %d ids but %d vectors", len(snap.IDs), len(snap.Vectors))
	}

	catIDs := vs.cat.IDs()
	if len(snap.IDs) != len(catIDs) {
		return fmt.Errorf("embeddings snapshot: has %d tools, catalog has %d", len(snap.IDs), len(catIDs))
	}
	for i, id := range snap.IDs {
		if id != catIDs[i] {
			return fmt.Errorf("embeddings snapshot: id mismatch at position %d: %q vs catalog %q", i, id, catIDs[i])
		}
	}

	vectors := make([][]float32, len(snap.Vectors))
	for i, vec := range snap.Vectors {
		if len(vec) != snap.Dim {
			return fmt.Errorf("embeddings snapshot: vector %d has dim %d, want %d", i, len(vec), snap.Dim)
		}
		unit := Normalize(vec)
		if unit == nil {
			return fmt.Errorf("embeddings snapshot: vector %d has zero norm", i)
		}
		vectors[i] = unit
	}

	vs.mu.Lock()
	vs.vectors = vectors
	vs.dim = snap.Dim
	vs.warmed = true
	vs.mu.Unlock()

	vs.logger.Info("vector store: snapshot loaded",
		slog.Int("tool_count", len(vectors)),
		slog.Int("dim", snap.Dim),
		slog.String("model", snap.Model),
	)
	return nil
}

// IsWarmed reports whether the store holds at least one tool vector.
func (vs *VectorStore) IsWarmed() bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.warmed
}

// Dim returns the vector dimensionality, or 0 before warm-up.
func (vs *VectorStore) Dim() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.dim
}

// Vector returns the unit-normalized vector for the tool at catalog position
// i, or nil if that tool has no vector.
func (vs *VectorStore) Vector(i int) []float32 {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	if i < 0 || i >= len(vs.vectors) {
		return nil
	}
	return vs.vectors[i]
}

// Len returns the number of vector slots (== catalog length).
func (vs *VectorStore) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.vectors)
}

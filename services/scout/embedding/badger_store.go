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

// =============================================================================
// VectorCacheStore — Tool Embedding Persistence
// =============================================================================
//
// Tool embedding vectors are expensive to compute (one Ollama call per tool)
// but change only when the catalog or embedding model changes. This store
// persists them in BadgerDB between service restarts.
//
// Design choices:
//
//	1. Corpus hash as cache key: SHA256(sorted tool embedding docs + model
//	   name). Any change to a tool's name, description, actions, use cases,
//	   tags, or to the model produces a different hash, automatically
//	   invalidating the cached vectors. No explicit invalidation API.
//
//	2. BadgerDB native TTL: 7-day expiry is enforced by BadgerDB's GC, not by
//	   application code. Expired keys return ErrKeyNotFound, which the store
//	   treats as a cache miss.
//
// Storage layout:
//
//	scout/emb/v1/{corpusHash}  →  gob-encoded map[string][]float32
//	                               (tool id → unit-normalized vector)
//	                               TTL: 7 days

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
	badgerstore "github.com/AleutianAI/toolscout/services/scout/storage/badger"
)

// vectorCacheDefaultTTL is the default lifetime of a cached embedding entry.
const vectorCacheDefaultTTL = 7 * 24 * time.Hour

// vectorCacheKeyPrefix is prepended to the corpus hash to form the BadgerDB
// key. Versioned (v1) to allow future format changes without collision.
const vectorCacheKeyPrefix = "scout/emb/v1/"

// errCacheMiss distinguishes "key not found" (a normal cache miss) from a
// genuine storage error in LoadVectors.
var errCacheMiss = errors.New("cache miss")

// VectorCacheStore persists tool embedding vectors across service restarts.
//
// # Description
//
// Keyed by corpus hash. Both methods are nil-safe at the call sites: the
// VectorStore checks for a nil VectorCacheStore and skips persistence,
// operating in in-memory-only mode — correct for tests and for deployments
// without a cache directory configured.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type VectorCacheStore interface {
	// LoadVectors retrieves cached unit-normalized tool vectors for the
	// given corpus hash.
	//
	// Returns (nil, nil) on cache miss (key absent or TTL expired).
	// Returns (nil, error) on storage failure.
	LoadVectors(ctx context.Context, corpusHash string) (map[string][]float32, error)

	// SaveVectors persists unit-normalized tool vectors for the given corpus
	// hash with the store's TTL. Persistence failure is non-fatal to callers;
	// vectors are already in RAM and will be recomputed on the next restart.
	SaveVectors(ctx context.Context, corpusHash string, vectors map[string][]float32) error
}

// =============================================================================
// BadgerVectorCacheStore
// =============================================================================

// BadgerVectorCacheStore implements VectorCacheStore backed by a BadgerDB
// instance opened at startup.
//
// # Description
//
// Vectors are gob-encoded as map[string][]float32 keyed by tool id. TTL is
// enforced by BadgerDB's native GC.
//
// # Thread Safety
//
// Safe for concurrent use. BadgerDB transactions are per-goroutine.
type BadgerVectorCacheStore struct {
	db     *badgerstore.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewBadgerVectorCacheStore creates a store backed by the given DB.
//
// # Inputs
//
//   - db: Opened BadgerDB wrapper. Must not be nil; the caller owns its
//     lifecycle and must not close it while the store is in use.
//   - ttl: Lifetime for each cached entry. Pass 0 to use the default (7 days).
//   - logger: Logger for cache hit/miss diagnostics. May be nil.
func NewBadgerVectorCacheStore(db *badgerstore.DB, ttl time.Duration, logger *slog.Logger) *BadgerVectorCacheStore {
	if db == nil {
		panic("NewBadgerVectorCacheStore: db must not be nil")
	}
	if ttl <= 0 {
		ttl = vectorCacheDefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerVectorCacheStore{db: db, ttl: ttl, logger: logger}
}

// LoadVectors retrieves cached unit-normalized tool vectors.
func (s *BadgerVectorCacheStore) LoadVectors(ctx context.Context, corpusHash string) (map[string][]float32, error) {
	key := vectorCacheKey(corpusHash)

	var raw []byte
	err := s.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, dgbadger.ErrKeyNotFound) {
			return errCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get cache key: %w", err)
		}
		raw, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copy value: %w", err)
		}
		return nil
	})

	if errors.Is(err, errCacheMiss) {
		s.logger.Debug("vector cache: miss", slog.String("hash", shortHash(corpusHash)))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vector cache load: %w", err)
	}

	vectors, err := gobDecodeVectors(raw)
	if err != nil {
		return nil, fmt.Errorf("vector cache decode: %w", err)
	}

	s.logger.Debug("vector cache: hit",
		slog.String("hash", shortHash(corpusHash)),
		slog.Int("tool_count", len(vectors)),
	)
	return vectors, nil
}

// SaveVectors persists unit-normalized tool vectors with the configured TTL.
func (s *BadgerVectorCacheStore) SaveVectors(ctx context.Context, corpusHash string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	raw, err := gobEncodeVectors(vectors)
	if err != nil {
		return fmt.Errorf("vector cache encode: %w", err)
	}

	key := vectorCacheKey(corpusHash)
	err = s.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		entry := dgbadger.NewEntry(key, raw).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("vector cache save: %w", err)
	}

	s.logger.Debug("vector cache: saved",
		slog.String("hash", shortHash(corpusHash)),
		slog.Int("tool_count", len(vectors)),
		slog.Duration("ttl", s.ttl),
	)
	return nil
}

// =============================================================================
// Corpus Hash
// =============================================================================

// ComputeCorpusHash computes a deterministic SHA256 hash of the catalog's
// embedding documents plus the embedding model name.
//
// # Description
//
// The hash captures every signal that determines vector shape and content:
// each tool's full embedding document (name, description, domain, actions,
// use cases, tags) and the model name. Tools are sorted by id so the hash is
// independent of seed-file ordering.
//
// # Outputs
//
//   - string: Lowercase hex-encoded SHA256 digest (64 characters).
func ComputeCorpusHash(tools []catalog.Tool, model string) string {
	sorted := make([]catalog.Tool, len(tools))
	copy(sorted, tools)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	var b strings.Builder
	b.WriteString("model=")
	b.WriteString(model)
	b.WriteString("\n")
	for _, t := range sorted {
		b.WriteString(t.ID)
		b.WriteString("|")
		b.WriteString(t.EmbeddingDoc())
		b.WriteString("\n")
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// shortHash returns the first 12 characters of a hash for log lines.
func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

func vectorCacheKey(corpusHash string) []byte {
	return []byte(vectorCacheKeyPrefix + corpusHash)
}

func gobEncodeVectors(vectors map[string][]float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vectors); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecodeVectors(raw []byte) (map[string][]float32, error) {
	var vectors map[string][]float32
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger wraps a BadgerDB instance used for service-local caching.
//
// The wrapper exists so callers deal with contexts and small transaction
// closures instead of the raw badger API, and so tests can open throwaway
// databases in temp directories with one call.
package badger

import (
	"context"
	"fmt"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// Config controls how the database is opened.
type Config struct {
	// Path is the on-disk directory for the database. Required.
	Path string

	// InMemory opens a memory-only database. Path is ignored when set.
	// Intended for tests.
	InMemory bool
}

// DefaultConfig returns a Config with defaults applied. The caller must set
// Path before opening unless InMemory is true.
func DefaultConfig() Config {
	return Config{}
}

// DB is an opened BadgerDB handle.
//
// # Thread Safety
//
// Safe for concurrent use. Badger transactions are per-goroutine.
type DB struct {
	db *dgbadger.DB
}

// OpenDB opens (creating if necessary) the database described by cfg.
//
// # Outputs
//
//   - *DB: The opened handle. Nil on error.
//   - error: Non-nil if the directory cannot be created or the DB is locked
//     by another process.
func OpenDB(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger: config has empty path")
	}

	opts := dgbadger.DefaultOptions(cfg.Path).
		WithLogger(nil) // badger's own logger is noisy; callers log via slog
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %q: %w", cfg.Path, err)
	}
	return &DB{db: db}, nil
}

// WithTxn runs fn inside a read-write transaction. The transaction commits
// when fn returns nil and discards otherwise.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(fn)
}

// WithReadTxn runs fn inside a read-only transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.View(fn)
}

// Close flushes and closes the database. Safe to call once.
func (d *DB) Close() error {
	return d.db.Close()
}

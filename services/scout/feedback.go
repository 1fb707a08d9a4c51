// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FeedbackEntry is one user feedback record, appended as a JSON line.
type FeedbackEntry struct {
	// Timestamp is set by the log on write, UTC.
	Timestamp string `json:"timestamp"`

	Prompt  string `json:"prompt"`
	ToolID  string `json:"tool_id,omitempty"`
	Helpful bool   `json:"helpful"`
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// FeedbackLog appends user feedback as JSONL.
//
// # Thread Safety
//
// Safe for concurrent use; writes are serialized by an internal mutex so
// lines never interleave.
type FeedbackLog struct {
	mu   sync.Mutex
	path string
}

// NewFeedbackLog creates a feedback log writing to path. The parent
// directory is created if missing.
func NewFeedbackLog(path string) (*FeedbackLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("feedback log: create dir: %w", err)
	}
	return &FeedbackLog{path: path}, nil
}

// Record appends one feedback entry. The entry's Timestamp is overwritten
// with the current UTC time.
func (l *FeedbackLog) Record(entry FeedbackEntry) error {
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("feedback log: marshal: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return appendLine(l.path, append(line, '\n'))
}

// BadPromptLog records prompts the pipeline handled poorly, one per line as
// "<timestamp> | <prompt>". The log feeds rewrite rule and catalog curation.
type BadPromptLog struct {
	mu   sync.Mutex
	path string
}

// NewBadPromptLog creates a bad-prompt log writing to path. The parent
// directory is created if missing.
func NewBadPromptLog(path string) (*BadPromptLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bad prompt log: create dir: %w", err)
	}
	return &BadPromptLog{path: path}, nil
}

// Record appends one bad prompt with the current UTC timestamp.
func (l *BadPromptLog) Record(prompt string) error {
	line := fmt.Sprintf("%s | %s\n", time.Now().UTC().Format(time.RFC3339), prompt)

	l.mu.Lock()
	defer l.mu.Unlock()
	return appendLine(l.path, []byte(line))
}

func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

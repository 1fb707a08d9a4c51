// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog holds the static AI tool catalog.
//
// The catalog is loaded once at process start from an embedded YAML seed and
// is immutable afterwards. All pipeline stages read from the same Catalog
// instance; nothing writes to it.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tools_seed.yaml
var defaultSeedYAML []byte

// =============================================================================
// Domain / Pricing Enumerations
// =============================================================================

// Domain is the closed category of a tool's primary output.
type Domain string

// Known domains. DomainText is the extractor's default when no other
// domain keyword matches.
const (
	DomainImage Domain = "Image"
	DomainVideo Domain = "Video"
	DomainAudio Domain = "Audio"
	DomainCode  Domain = "Code"
	DomainText  Domain = "Text"
)

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainImage, DomainVideo, DomainAudio, DomainCode, DomainText:
		return true
	}
	return false
}

// Pricing is a tool's pricing model. Intents additionally use PricingAny as
// the "no constraint" value; catalog entries must be free or paid.
type Pricing string

const (
	PricingFree Pricing = "free"
	PricingPaid Pricing = "paid"
	PricingAny  Pricing = "any"
)

// =============================================================================
// Tool Model
// =============================================================================

// Tool is a single catalog entry.
//
// # Description
//
// Tools are value types copied freely between pipeline stages. The catalog
// owns the canonical slice; callers must not retain pointers into it.
type Tool struct {
	// ID uniquely identifies the tool within the catalog.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable tool name.
	Name string `yaml:"name" json:"name"`

	// Description is a one-sentence summary used in embedding documents
	// and API responses.
	Description string `yaml:"description" json:"description"`

	// Domain is the tool's output category (Image, Video, Audio, Code, Text).
	Domain Domain `yaml:"domain" json:"domain"`

	// Actions are the verbs the tool performs (e.g. "generate", "transcribe").
	Actions []string `yaml:"actions" json:"actions"`

	// UseCases are example tasks, in display order.
	UseCases []string `yaml:"use_cases" json:"use_cases"`

	// Tags are free-form labels included in the embedding document.
	Tags []string `yaml:"tags" json:"tags"`

	// Pricing is "free" or "paid".
	Pricing Pricing `yaml:"pricing" json:"pricing"`

	// APIAvailable reports whether the tool exposes a programmatic API.
	APIAvailable bool `yaml:"api_available" json:"api_available"`

	// Website is the tool's homepage. May be empty.
	Website string `yaml:"website,omitempty" json:"website,omitempty"`
}

// HasAction reports whether the tool performs the given action verb.
func (t Tool) HasAction(action string) bool {
	for _, a := range t.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// EmbeddingDoc builds the text document used to embed this tool.
//
// # Description
//
// The document concatenates name, description, domain, actions, use cases,
// and tags. The same document shape is used by the embeddings snapshot
// generator and the startup warm-up, so vectors are interchangeable between
// the two paths.
func (t Tool) EmbeddingDoc() string {
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteString(". ")
	b.WriteString(t.Description)
	b.WriteString(" Domain: ")
	b.WriteString(string(t.Domain))
	b.WriteString(". Actions: ")
	b.WriteString(strings.Join(t.Actions, ", "))
	b.WriteString(". Use cases: ")
	b.WriteString(strings.Join(t.UseCases, ". "))
	b.WriteString(". Tags: ")
	b.WriteString(strings.Join(t.Tags, ", "))
	b.WriteString(".")
	return b.String()
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog is the immutable, in-memory set of tools.
//
// # Thread Safety
//
// Immutable after Load; safe for concurrent use without synchronization.
type Catalog struct {
	tools []Tool
	byID  map[string]int
}

// seedFile is the YAML shape of the embedded seed.
type seedFile struct {
	Tools []Tool `yaml:"tools"`
}

// Load parses and validates the embedded seed catalog.
//
// # Outputs
//
//   - *Catalog: The validated catalog. Nil on error.
//   - error: Non-nil if the seed is malformed. A malformed catalog is a
//     startup error; the service must not run with a partial catalog.
func Load() (*Catalog, error) {
	return Parse(defaultSeedYAML)
}

// Parse builds a Catalog from YAML bytes.
//
// # Description
//
// Validation is strict: every tool needs a unique non-empty id, a name,
// a known domain, at least one action, and a free/paid pricing value.
// Any violation fails the whole load — the ranking engine assumes the
// id list and the embedding matrix are aligned 1:1, so a silently dropped
// entry would corrupt every downstream score.
func Parse(data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("catalog: empty seed data")
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("catalog: parse seed: %w", err)
	}
	if len(seed.Tools) == 0 {
		return nil, fmt.Errorf("catalog: seed contains no tools")
	}

	byID := make(map[string]int, len(seed.Tools))
	for i, t := range seed.Tools {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog: tool at index %d has empty id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate tool id %q", t.ID)
		}
		if t.Name == "" {
			return nil, fmt.Errorf("catalog: tool %q has empty name", t.ID)
		}
		if !t.Domain.Valid() {
			return nil, fmt.Errorf("catalog: tool %q has unknown domain %q", t.ID, t.Domain)
		}
		if len(t.Actions) == 0 {
			return nil, fmt.Errorf("catalog: tool %q has no actions", t.ID)
		}
		if t.Pricing != PricingFree && t.Pricing != PricingPaid {
			return nil, fmt.Errorf("catalog: tool %q has invalid pricing %q", t.ID, t.Pricing)
		}
		byID[t.ID] = i
	}

	return &Catalog{tools: seed.Tools, byID: byID}, nil
}

// Tools returns all tools in seed order. The returned slice is shared;
// callers must treat it as read-only.
func (c *Catalog) Tools() []Tool {
	return c.tools
}

// Get returns the tool with the given id.
func (c *Catalog) Get(id string) (Tool, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

// Len returns the number of tools in the catalog.
func (c *Catalog) Len() int {
	return len(c.tools)
}

// IDs returns all tool ids in seed order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.tools))
	for i, t := range c.tools {
		ids[i] = t.ID
	}
	return ids
}

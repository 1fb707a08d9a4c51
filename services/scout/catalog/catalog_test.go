// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"strings"
	"testing"
)

func TestLoad_EmbeddedSeed(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("expected non-empty catalog")
	}

	// Every domain in the closed enumeration should be represented in the seed.
	seen := map[Domain]bool{}
	for _, tool := range c.Tools() {
		seen[tool.Domain] = true
	}
	for _, d := range []Domain{DomainImage, DomainVideo, DomainAudio, DomainCode, DomainText} {
		if !seen[d] {
			t.Errorf("seed catalog has no tools in domain %s", d)
		}
	}
}

func TestLoad_IDsAlignedWithTools(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	ids := c.IDs()
	tools := c.Tools()
	if len(ids) != len(tools) {
		t.Fatalf("ids/tools length mismatch: %d vs %d", len(ids), len(tools))
	}
	for i, id := range ids {
		if tools[i].ID != id {
			t.Errorf("position %d: id list has %q, tools has %q", i, id, tools[i].ID)
		}
	}
}

func TestGet(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	tool, ok := c.Get("whisper")
	if !ok {
		t.Fatal("expected whisper in seed catalog")
	}
	if tool.Domain != DomainAudio {
		t.Errorf("whisper domain = %s, want Audio", tool.Domain)
	}
	if !tool.HasAction("transcribe") {
		t.Error("expected whisper to have action transcribe")
	}

	if _, ok := c.Get("no-such-tool"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty data",
			yaml:    "",
			wantErr: "empty seed",
		},
		{
			name:    "no tools",
			yaml:    "tools: []",
			wantErr: "no tools",
		},
		{
			name: "missing id",
			yaml: `
tools:
  - name: X
    domain: Text
    actions: [generate]
    pricing: free
`,
			wantErr: "empty id",
		},
		{
			name: "duplicate id",
			yaml: `
tools:
  - id: a
    name: A
    domain: Text
    actions: [generate]
    pricing: free
  - id: a
    name: B
    domain: Text
    actions: [generate]
    pricing: free
`,
			wantErr: "duplicate",
		},
		{
			name: "bad domain",
			yaml: `
tools:
  - id: a
    name: A
    domain: Music
    actions: [generate]
    pricing: free
`,
			wantErr: "unknown domain",
		},
		{
			name: "pricing any not allowed in seed",
			yaml: `
tools:
  - id: a
    name: A
    domain: Text
    actions: [generate]
    pricing: any
`,
			wantErr: "invalid pricing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmbeddingDoc(t *testing.T) {
	tool := Tool{
		ID:          "t1",
		Name:        "Example",
		Description: "Does things.",
		Domain:      DomainCode,
		Actions:     []string{"generate", "analyze"},
		UseCases:    []string{"Write code"},
		Tags:        []string{"code", "ide"},
		Pricing:     PricingFree,
	}
	doc := tool.EmbeddingDoc()
	for _, want := range []string{"Example", "Does things.", "Domain: Code", "generate, analyze", "Write code", "code, ide"} {
		if !strings.Contains(doc, want) {
			t.Errorf("embedding doc missing %q: %s", want, doc)
		}
	}
}

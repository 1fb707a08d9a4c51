// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads embedded configuration for the ToolScout service.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxYAMLFileSize caps embedded YAML parsing at 1MB. The shipped rules file
// is well under 10KB; anything larger indicates a corrupted embed.
const MaxYAMLFileSize = 1 << 20

// =============================================================================
// Embedded Default Rewrite Rules
// =============================================================================

//go:embed rewrite_rules.yaml
var defaultRewriteRulesYAML []byte

// =============================================================================
// Rewrite Configuration Types
// =============================================================================

// RewriteRule maps prompt patterns to one canonical task sentence.
//
// Description:
//
//	When any pattern matches the lower-cased prompt, the rewriter returns
//	Output verbatim without calling the LLM fallback. Rules are tried in
//	file order; the first match wins.
type RewriteRule struct {
	// Category labels the rule for logging and metrics (e.g. "audio", "code").
	Category string `yaml:"category"`

	// Patterns are case-insensitive regular expressions matched against the
	// lower-cased prompt.
	Patterns []string `yaml:"patterns"`

	// Output is the canonical task sentence returned on match.
	Output string `yaml:"output"`

	// compiled holds the pre-compiled patterns, populated at load time.
	compiled []*regexp.Regexp
}

// Match reports whether any of the rule's patterns matches text.
// Text is expected to be lower-cased by the caller.
func (r *RewriteRule) Match(text string) bool {
	for _, re := range r.compiled {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// RewriteConfig holds the ordered rule list for the prompt rewriter.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type RewriteConfig struct {
	// Rules are tried in order; earlier rules take priority.
	Rules []RewriteRule `yaml:"rules"`
}

// =============================================================================
// Singleton Rewrite Config
// =============================================================================

var (
	rewriteConfigMu      sync.RWMutex
	rewriteConfigOnce    sync.Once
	cachedRewriteConfig  *RewriteConfig
	rewriteConfigLoadErr error
)

// GetRewriteConfig returns the cached rewrite rule configuration, loading the
// embedded rules on first call.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func GetRewriteConfig() (*RewriteConfig, error) {
	rewriteConfigMu.RLock()
	if cachedRewriteConfig != nil || rewriteConfigLoadErr != nil {
		cfg, err := cachedRewriteConfig, rewriteConfigLoadErr
		rewriteConfigMu.RUnlock()
		return cfg, err
	}
	rewriteConfigMu.RUnlock()

	rewriteConfigMu.Lock()
	defer rewriteConfigMu.Unlock()

	rewriteConfigOnce.Do(func() {
		cachedRewriteConfig, rewriteConfigLoadErr = LoadRewriteConfig(defaultRewriteRulesYAML)
	})

	return cachedRewriteConfig, rewriteConfigLoadErr
}

// ResetRewriteConfig clears the cached config so tests can reload with
// different data.
func ResetRewriteConfig() {
	rewriteConfigMu.Lock()
	defer rewriteConfigMu.Unlock()
	cachedRewriteConfig = nil
	rewriteConfigLoadErr = nil
	rewriteConfigOnce = sync.Once{}
}

// LoadRewriteConfig loads and validates a RewriteConfig from YAML bytes.
//
// Description:
//
//	Parses the YAML, compiles every pattern, and validates that each rule
//	has at least one pattern and a non-empty output. Any invalid rule fails
//	the whole load: rule order carries the priority semantics, so silently
//	dropping a rule would change which rule wins for overlapping prompts.
//
// Outputs:
//
//	*RewriteConfig - The validated configuration with compiled patterns.
//	error - Non-nil if parsing, validation, or compilation fails.
func LoadRewriteConfig(data []byte) (*RewriteConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("LoadRewriteConfig: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadRewriteConfig: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg RewriteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadRewriteConfig: parsing YAML: %w", err)
	}
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("LoadRewriteConfig: no rules defined")
	}

	for i := range cfg.Rules {
		rule := &cfg.Rules[i]
		if rule.Output == "" {
			return nil, fmt.Errorf("LoadRewriteConfig: rule %d (%s) has empty output", i, rule.Category)
		}
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("LoadRewriteConfig: rule %d (%s) has no patterns", i, rule.Category)
		}
		rule.compiled = make([]*regexp.Regexp, 0, len(rule.Patterns))
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("LoadRewriteConfig: rule %d (%s) pattern %q: %w", i, rule.Category, p, err)
			}
			rule.compiled = append(rule.compiled, re)
		}
	}

	slog.Info("rewrite config loaded", slog.Int("rules", len(cfg.Rules)))
	return &cfg, nil
}

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
	"strings"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
)

// Action is the closed verb enumeration for intents.
type Action string

const (
	ActionSummarize Action = "summarize"
	ActionAnalyze   Action = "analyze"
	ActionTranslate Action = "translate"
	ActionConvert   Action = "convert"
	ActionGenerate  Action = "generate" // default when nothing else matches
)

// Constraints are the optional restrictions extracted from the prompt.
type Constraints struct {
	// Pricing is "free", "paid", or "any" (no constraint).
	Pricing catalog.Pricing `json:"pricing"`
}

// Intent is the structured interpretation of a rewritten prompt. Derived
// fresh per request and never persisted.
type Intent struct {
	Domain      catalog.Domain `json:"domain"`
	Action      Action         `json:"action"`
	InputType   string         `json:"input_type"`
	OutputType  string         `json:"output_type"`
	UseCase     string         `json:"use_case"`
	Constraints Constraints    `json:"constraints"`
}

// =============================================================================
// Keyword Tables
// =============================================================================
//
// Both classifications are priority-ordered: the first category whose keyword
// list matches wins. Domain order is Image, Video, Audio, Code, then the Text
// default; action order is summarize, analyze, translate, convert, then the
// generate default. A prompt matching several categories resolves to the
// earliest-listed one.

type domainRule struct {
	domain     catalog.Domain
	outputType string
	keywords   []string
}

var domainRules = []domainRule{
	{catalog.DomainImage, "image", []string{
		"logo", "image", "photo", "design", "art", "poster",
		"banner", "thumbnail", "illustration", "graphic", "branding",
	}},
	{catalog.DomainVideo, "video", []string{
		"video", "reel", "clip", "movie", "animation",
		"short", "youtube", "instagram",
	}},
	{catalog.DomainAudio, "audio", []string{
		"audio", "voice", "speech", "song", "music",
		"podcast", "narration",
	}},
	{catalog.DomainCode, "code", []string{
		"code", "coding", "program", "python", "java",
		"javascript", "website", "app", "software", "api",
	}},
}

type actionRule struct {
	action   Action
	keywords []string
}

var actionRules = []actionRule{
	{ActionSummarize, []string{"summarize", "summary", "shorten"}},
	{ActionAnalyze, []string{"analyze", "analysis", "explain", "review"}},
	{ActionTranslate, []string{"translate"}},
	{ActionConvert, []string{"convert", "transcribe", "speech to text", "audio to text"}},
}

// =============================================================================
// Extraction
// =============================================================================

// ExtractIntent derives a structured Intent from rewritten prompt text.
//
// # Description
//
// Pure and deterministic: no external calls, no failure mode beyond the
// Text/generate defaults. The original prompt text is carried through as
// UseCase for diagnostics.
func ExtractIntent(prompt string) Intent {
	p := strings.ToLower(prompt)

	intent := Intent{
		Domain:     catalog.DomainText,
		Action:     ActionGenerate,
		InputType:  "text",
		OutputType: "text",
		UseCase:    prompt,
		Constraints: Constraints{
			Pricing: catalog.PricingAny,
		},
	}

	for _, rule := range domainRules {
		if containsAny(p, rule.keywords) {
			intent.Domain = rule.domain
			intent.OutputType = rule.outputType
			break
		}
	}

	for _, rule := range actionRules {
		if containsAny(p, rule.keywords) {
			intent.Action = rule.action
			break
		}
	}

	if strings.Contains(p, "free") {
		intent.Constraints.Pricing = catalog.PricingFree
	} else if strings.Contains(p, "paid") || strings.Contains(p, "premium") {
		intent.Constraints.Pricing = catalog.PricingPaid
	}

	return intent
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

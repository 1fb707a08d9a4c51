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
	"testing"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
)

func TestExtractIntent(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		domain  catalog.Domain
		action  Action
		output  string
		pricing catalog.Pricing
	}{
		{
			name:    "logo prompt is image generate",
			prompt:  "Create a professional logo for my startup",
			domain:  catalog.DomainImage,
			action:  ActionGenerate,
			output:  "image",
			pricing: catalog.PricingAny,
		},
		{
			name:    "voice to text is audio convert",
			prompt:  "Convert my voice recording into text",
			domain:  catalog.DomainAudio,
			action:  ActionConvert,
			output:  "audio",
			pricing: catalog.PricingAny,
		},
		{
			name:    "research paper is text summarize",
			prompt:  "Summarize a research paper",
			domain:  catalog.DomainText,
			action:  ActionSummarize,
			output:  "text",
			pricing: catalog.PricingAny,
		},
		{
			name:    "instagram reels is video generate",
			prompt:  "Make Instagram reels automatically",
			domain:  catalog.DomainVideo,
			action:  ActionGenerate,
			output:  "video",
			pricing: catalog.PricingAny,
		},
		{
			name:    "python prompt is code",
			prompt:  "Write Python code",
			domain:  catalog.DomainCode,
			action:  ActionGenerate,
			output:  "code",
			pricing: catalog.PricingAny,
		},
		{
			name:    "empty prompt gets defaults",
			prompt:  "",
			domain:  catalog.DomainText,
			action:  ActionGenerate,
			output:  "text",
			pricing: catalog.PricingAny,
		},
		{
			name:    "free constraint detected",
			prompt:  "free tool to translate documents",
			domain:  catalog.DomainText,
			action:  ActionTranslate,
			output:  "text",
			pricing: catalog.PricingFree,
		},
		{
			name:    "paid constraint detected",
			prompt:  "best paid app for music generation",
			domain:  catalog.DomainAudio,
			action:  ActionGenerate,
			output:  "audio",
			pricing: catalog.PricingPaid,
		},
		{
			name:    "premium maps to paid",
			prompt:  "premium video editor",
			domain:  catalog.DomainVideo,
			action:  ActionGenerate,
			output:  "video",
			pricing: catalog.PricingPaid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIntent(tt.prompt)
			if got.Domain != tt.domain {
				t.Errorf("Domain = %q, want %q", got.Domain, tt.domain)
			}
			if got.Action != tt.action {
				t.Errorf("Action = %q, want %q", got.Action, tt.action)
			}
			if got.OutputType != tt.output {
				t.Errorf("OutputType = %q, want %q", got.OutputType, tt.output)
			}
			if got.Constraints.Pricing != tt.pricing {
				t.Errorf("Pricing = %q, want %q", got.Constraints.Pricing, tt.pricing)
			}
			if got.InputType != "text" {
				t.Errorf("InputType = %q, want text", got.InputType)
			}
			if got.UseCase != tt.prompt {
				t.Errorf("UseCase = %q, want original prompt", got.UseCase)
			}
		})
	}
}

// Earlier-listed categories win when a prompt matches several.
func TestExtractIntent_PriorityOrder(t *testing.T) {
	got := ExtractIntent("make a logo for my youtube video")
	if got.Domain != catalog.DomainImage {
		t.Errorf("Domain = %q, want %q (image listed before video)", got.Domain, catalog.DomainImage)
	}

	got = ExtractIntent("summarize and analyze this report")
	if got.Action != ActionSummarize {
		t.Errorf("Action = %q, want %q (summarize listed before analyze)", got.Action, ActionSummarize)
	}
}

// ExtractIntent is pure: identical input always yields identical output.
func TestExtractIntent_Deterministic(t *testing.T) {
	const prompt = "free tool to transcribe a podcast"
	first := ExtractIntent(prompt)
	for i := 0; i < 5; i++ {
		if got := ExtractIntent(prompt); got != first {
			t.Fatalf("ExtractIntent not deterministic: %+v vs %+v", got, first)
		}
	}
}

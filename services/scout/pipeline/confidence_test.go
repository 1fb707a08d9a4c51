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

func TestScoreConfidence(t *testing.T) {
	fullIntent := Intent{Domain: catalog.DomainImage, Action: ActionGenerate}
	emptyIntent := Intent{}

	tests := []struct {
		name     string
		semantic float64
		intent   Intent
		want     float64
	}{
		// (semantic*0.6 + intent*0.25 + domain*0.15) * 100
		{"full signal", 1.0, fullIntent, 98.5},
		{"zero semantic", 0.0, fullIntent, 38.5},
		{"mid semantic", 0.5, fullIntent, 68.5},
		{"no intent signal", 0.5, emptyIntent, 47.5},
		{"no signal at all", 0.0, emptyIntent, 17.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ScoreConfidence(tt.semantic, tt.intent)
			if got != tt.want {
				t.Errorf("ScoreConfidence(%v) = %v, want %v", tt.semantic, got, tt.want)
			}
		})
	}
}

func TestScoreConfidence_Breakdown(t *testing.T) {
	_, breakdown := ScoreConfidence(0.707, Intent{Domain: catalog.DomainAudio, Action: ActionConvert})
	if breakdown.SemanticSimilarity != 70.7 {
		t.Errorf("SemanticSimilarity = %v, want 70.7", breakdown.SemanticSimilarity)
	}
	if breakdown.IntentMatch != 100.0 {
		t.Errorf("IntentMatch = %v, want 100.0", breakdown.IntentMatch)
	}
	if breakdown.DomainMatch != 90.0 {
		t.Errorf("DomainMatch = %v, want 90.0", breakdown.DomainMatch)
	}

	_, breakdown = ScoreConfidence(0.0, Intent{})
	if breakdown.IntentMatch != 40.0 {
		t.Errorf("IntentMatch = %v, want 40.0 without an action", breakdown.IntentMatch)
	}
	if breakdown.DomainMatch != 50.0 {
		t.Errorf("DomainMatch = %v, want 50.0 without a domain", breakdown.DomainMatch)
	}
}

func TestScoreConfidence_CappedAt100(t *testing.T) {
	// Similarity above 1.0 cannot normally occur, but the cap must hold.
	got, _ := ScoreConfidence(1.5, Intent{Domain: catalog.DomainText, Action: ActionGenerate})
	if got != 100.0 {
		t.Errorf("ScoreConfidence(1.5) = %v, want capped 100.0", got)
	}
}

func TestNeedsFollowup_Threshold(t *testing.T) {
	if !NeedsFollowup(39.9) {
		t.Error("NeedsFollowup(39.9) = false, want true")
	}
	if NeedsFollowup(40.0) {
		t.Error("NeedsFollowup(40.0) = true, want false")
	}
}

func TestFollowUpQuestions_Fixed(t *testing.T) {
	questions := FollowUpQuestions()
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
	// Returned slice is a copy; mutating it must not leak.
	questions[0] = "mutated"
	if FollowUpQuestions()[0] == "mutated" {
		t.Error("FollowUpQuestions() shares internal state")
	}
}

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

import "math"

// followupThreshold is the confidence score below which the caller should
// ask clarifying questions instead of trusting the recommendations.
const followupThreshold = 40.0

// followUpQuestions is the fixed clarification set returned whenever
// confidence falls below followupThreshold.
var followUpQuestions = []string{
	"What output do you want (text, image, audio, video)?",
	"Is this for personal or professional use?",
	"Do you prefer free tools only?",
}

// ConfidenceBreakdown exposes the weighted components behind a confidence
// score, each expressed on a 0-100 scale with 1 decimal place.
type ConfidenceBreakdown struct {
	SemanticSimilarity float64 `json:"semantic_similarity"`
	IntentMatch        float64 `json:"intent_match"`
	DomainMatch        float64 `json:"domain_match"`
}

// ScoreConfidence computes the blended confidence for a recommendation.
//
// # Description
//
// semantic is the top-ranked tool's similarity in [0.0, 1.0]. Intent and
// domain components are presence signals: an extracted action contributes
// 1.0 (0.4 when absent), an extracted domain 0.9 (0.5 when absent). The
// blend weights semantic similarity at 0.6, intent at 0.25 and domain at
// 0.15, scaled to 0-100, capped at 100, rounded to 1 decimal place.
func ScoreConfidence(semantic float64, intent Intent) (float64, ConfidenceBreakdown) {
	intentScore := 0.4
	if intent.Action != "" {
		intentScore = 1.0
	}
	domainScore := 0.5
	if intent.Domain != "" {
		domainScore = 0.9
	}

	confidence := (semantic*0.6 + intentScore*0.25 + domainScore*0.15) * 100
	confidence = math.Min(confidence, 100)
	confidence = round1(confidence)

	breakdown := ConfidenceBreakdown{
		SemanticSimilarity: round1(semantic * 100),
		IntentMatch:        round1(intentScore * 100),
		DomainMatch:        round1(domainScore * 100),
	}
	return confidence, breakdown
}

// NeedsFollowup reports whether confidence is low enough to warrant the
// fixed clarification questions.
func NeedsFollowup(confidence float64) bool {
	return confidence < followupThreshold
}

// FollowUpQuestions returns a copy of the fixed clarification set.
func FollowUpQuestions() []string {
	out := make([]string, len(followUpQuestions))
	copy(out, followUpQuestions)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline implements the ToolScout recommendation pipeline:
// moderation → prompt rewriting → intent extraction → rule-based filtering →
// embedding-based ranking → confidence scoring → follow-up logic.
package pipeline

import "strings"

// bannedKeywords is the moderation denylist. Matching is plain substring
// containment on the lower-cased prompt; false positives ("hackathon") are
// accepted as the cost of simplicity.
var bannedKeywords = []string{
	"hack", "crack", "piracy", "illegal",
	"porn", "nsfw", "sexual", "violence",
	"drugs", "weapon", "bomb",
}

// ModerationWarning is the fixed user-visible message for blocked prompts.
const ModerationWarning = "This request contains restricted content."

// IsSafe reports whether the prompt passes the keyword denylist.
//
// Unsafe input is terminal for the request: the pipeline returns an empty
// result with confidence 0 and never retries.
func IsSafe(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, word := range bannedKeywords {
		if strings.Contains(p, word) {
			return false
		}
	}
	return true
}

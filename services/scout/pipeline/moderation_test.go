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

import "testing"

func TestIsSafe(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   bool
	}{
		{"benign prompt", "Create a professional logo for my startup", true},
		{"empty prompt", "", true},
		{"banned keyword", "how to hack a wifi network", false},
		{"banned keyword uppercase", "HOW TO HACK wifi", false},
		{"banned keyword mid-sentence", "best site for piracy downloads", false},
		{"keyword inside larger word", "the hackathon starts tomorrow", false},
		{"violence", "generate violence scenes", false},
		{"weapons", "3d print a weapon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSafe(tt.prompt); got != tt.want {
				t.Errorf("IsSafe(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}

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

import "github.com/AleutianAI/toolscout/services/scout/catalog"

// actionAliases expands an intent action into the set of acceptable tool
// actions. Actions without an entry alias to themselves.
var actionAliases = map[Action][]string{
	ActionConvert:   {"convert", "transcribe"},
	ActionGenerate:  {"generate", "create"},
	ActionSummarize: {"summarize"},
	ActionAnalyze:   {"analyze"},
	ActionTranslate: {"translate"},
}

// AllowedActions returns the alias-expanded action set for an intent action.
func AllowedActions(action Action) []string {
	if aliases, ok := actionAliases[action]; ok {
		return aliases
	}
	return []string{string(action)}
}

// FilterTools narrows tools to those compatible with the intent.
//
// # Description
//
// A tool is included iff its domain equals the intent domain exactly, its
// action set intersects the alias-expanded intent action, and the pricing
// constraint is "any" or matches the tool's pricing exactly. The filter is
// stable: output order follows input order, and filtering an already
// filtered set by the same intent is a no-op.
//
// An empty result is not an error; the pipeline substitutes the full catalog
// and flags fallbackUsed — filtering degrades, it never fails.
func FilterTools(intent Intent, tools []catalog.Tool) []catalog.Tool {
	allowed := AllowedActions(intent.Action)

	filtered := make([]catalog.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Domain != intent.Domain {
			continue
		}
		if !hasAnyAction(tool, allowed) {
			continue
		}
		if p := intent.Constraints.Pricing; p != catalog.PricingAny && tool.Pricing != p {
			continue
		}
		filtered = append(filtered, tool)
	}
	return filtered
}

func hasAnyAction(tool catalog.Tool, actions []string) bool {
	for _, a := range actions {
		if tool.HasAction(a) {
			return true
		}
	}
	return false
}

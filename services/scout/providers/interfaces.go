// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package providers defines the external text-generation capability used by
// the ToolScout prompt rewriter and chat passthrough, plus its Ollama
// implementation.
//
// Thread Safety:
//
//	All interfaces in this package must be implemented as safe for concurrent use.
package providers

import "context"

// Message is a single chat message.
type Message struct {
	// Role is "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatClient is the minimal text-generation interface used by the rewriter
// fallback and the /chat passthrough.
//
// Description:
//
//	Both call sites need a single non-streaming completion; no tool calls,
//	no multi-turn state. The minimal interface keeps test fakes trivial.
//
// Thread Safety: Implementations must be safe for concurrent use.
type ChatClient interface {
	// Chat sends messages and returns the assistant's response text.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - messages: Conversation messages (system, user).
	//
	// Outputs:
	//   - string: The assistant's response text.
	//   - error: Non-nil on transport or service failure. Callers on the
	//     recommendation path absorb the error and degrade; they never
	//     propagate it to the requester.
	Chat(ctx context.Context, messages []Message) (string, error)
}

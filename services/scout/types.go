// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scout

// RecommendRequest is the body of POST /v1/scout/recommend.
type RecommendRequest struct {
	// Prompt is the raw user text. Required; moderation and rewriting
	// happen server-side.
	Prompt string `json:"prompt" binding:"required"`

	// TopK caps the number of returned tools. Zero means the default (5).
	TopK int `json:"top_k" binding:"omitempty,min=1,max=50"`
}

// ListToolsRequest holds the query filters of GET /v1/scout/tools.
type ListToolsRequest struct {
	Domain  string `form:"domain" binding:"omitempty,tooldomain"`
	Pricing string `form:"pricing" binding:"omitempty,toolpricing"`
}

// ChatRequest is the body of POST /v1/scout/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the reply of POST /v1/scout/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// FeedbackRequest is the body of POST /v1/scout/feedback.
type FeedbackRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	ToolID  string `json:"tool_id" binding:"omitempty"`
	Helpful bool   `json:"helpful"`
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// SuggestionsResponse is the reply of GET /v1/scout/suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// StatusResponse is a minimal acknowledgement body.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

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

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
)

// =============================================================================
// Request ID
// =============================================================================

const requestIDHeader = "X-Request-ID"

// getOrCreateRequestID returns the inbound X-Request-ID, minting a UUID when
// the client sent none. The ID is echoed on the response for correlation.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(requestIDHeader, requestID)
	return requestID
}

// =============================================================================
// Validators
// =============================================================================

// RegisterValidators installs the catalog enum validators on Gin's binding
// engine. Call once at startup, before the first request binds.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("tooldomain", func(fl validator.FieldLevel) bool {
		return catalog.Domain(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("toolpricing", func(fl validator.FieldLevel) bool {
		switch catalog.Pricing(fl.Field().String()) {
		case catalog.PricingFree, catalog.PricingPaid, catalog.PricingAny:
			return true
		}
		return false
	})
}

// =============================================================================
// Handlers
// =============================================================================

// Handlers holds the HTTP handlers for the scout service.
type Handlers struct {
	service *Service
}

// NewHandlers creates the handler set for a service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRecommend handles POST /v1/scout/recommend.
//
// Description:
//
//	Runs the full recommendation pipeline for the prompt in the body and
//	returns the ranked tools with confidence metadata. Unsafe prompts get
//	a 200 with a warning and an empty tool list; the pipeline never turns
//	a bad prompt into an HTTP error.
//
// Response:
//
//	200 OK: pipeline.Result
//	400 Bad Request: Missing or invalid body
func (h *Handlers) HandleRecommend(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRecommend")

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result := h.service.Recommend(c.Request.Context(), req.Prompt, req.TopK)
	logger.Info("recommend served",
		slog.Float64("confidence", result.Confidence),
		slog.Bool("fallback_used", result.FallbackUsed),
		slog.Int("tools", len(result.Tools)),
	)
	c.JSON(http.StatusOK, result)
}

// HandleGetTool handles GET /v1/scout/tool/:id.
//
// Response:
//
//	200 OK: catalog.Tool
//	404 Not Found: Unknown tool id
func (h *Handlers) HandleGetTool(c *gin.Context) {
	getOrCreateRequestID(c)

	tool, ok := h.service.GetTool(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "tool not found",
			Code:  "TOOL_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, tool)
}

// HandleListTools handles GET /v1/scout/tools.
//
// Query Parameters:
//
//	domain: Filter to one domain (optional)
//	pricing: free, paid or any (optional)
//
// Response:
//
//	200 OK: []catalog.Tool
//	400 Bad Request: Unknown domain or pricing value
func (h *Handlers) HandleListTools(c *gin.Context) {
	getOrCreateRequestID(c)

	var req ListToolsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	tools := h.service.ListTools(catalog.Domain(req.Domain), catalog.Pricing(req.Pricing))
	c.JSON(http.StatusOK, tools)
}

// HandleChat handles POST /v1/scout/chat.
//
// Description:
//
//	Plain passthrough to the chat model for user questions, separate from
//	the recommendation pipeline. 502 when the model is unreachable.
//
// Response:
//
//	200 OK: ChatResponse
//	400 Bad Request: Missing message
//	502 Bad Gateway: Chat model unreachable or misconfigured
func (h *Handlers) HandleChat(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleChat")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	reply, err := h.service.Chat(c.Request.Context(), req.Message)
	if err != nil {
		logger.Warn("chat passthrough failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "chat service unavailable",
			Code:  "CHAT_UNAVAILABLE",
		})
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

// HandleFeedback handles POST /v1/scout/feedback.
//
// Response:
//
//	200 OK: StatusResponse{"recorded"}
//	400 Bad Request: Missing prompt or invalid rating
//	500 Internal Server Error: Log write failed
func (h *Handlers) HandleFeedback(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleFeedback")

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	err := h.service.RecordFeedback(FeedbackEntry{
		Prompt:  req.Prompt,
		ToolID:  req.ToolID,
		Helpful: req.Helpful,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		logger.Error("feedback write failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to record feedback",
			Code:  "FEEDBACK_WRITE_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "recorded"})
}

// HandleSuggestions handles GET /v1/scout/suggestions.
func (h *Handlers) HandleSuggestions(c *gin.Context) {
	getOrCreateRequestID(c)
	c.JSON(http.StatusOK, SuggestionsResponse{Suggestions: h.service.Suggestions()})
}

// HandleHealth handles GET /v1/scout/health. Liveness only.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleReady handles GET /v1/scout/ready.
//
// Description:
//
//	Readiness tracks the semantic ranking path. 503 means embeddings are
//	not warmed yet; recommendations still work in degraded mode, so load
//	balancers may choose to route anyway.
func (h *Handlers) HandleReady(c *gin.Context) {
	if !h.service.Ready() {
		c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "warming"})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// defaultChatTimeout bounds a single chat call end to end. The rewriter
// fallback and the /chat passthrough both tolerate a slow local model but
// must not hang forever on a wedged one.
const defaultChatTimeout = 45 * time.Second

// ollamaChatReq is the Ollama /api/chat request body.
type ollamaChatReq struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// ollamaChatResp is the Ollama /api/chat response body (non-streaming).
type ollamaChatResp struct {
	Message Message `json:"message"`
}

// OllamaChatClient implements ChatClient against an Ollama /api/chat endpoint.
//
// # Thread Safety
//
// Safe for concurrent use; all state is read-only after construction.
type OllamaChatClient struct {
	url    string
	model  string
	client *http.Client
}

// ResolveChatURL returns the chat endpoint URL, honoring CHAT_SERVICE_URL.
func ResolveChatURL() string {
	if url := os.Getenv("CHAT_SERVICE_URL"); url != "" {
		return url
	}
	return "http://localhost:11434/api/chat"
}

// ResolveChatModel returns the chat model name, honoring CHAT_MODEL.
func ResolveChatModel() string {
	if model := os.Getenv("CHAT_MODEL"); model != "" {
		return model
	}
	return "qwen2:0.5b"
}

// NewOllamaChatClient creates a chat client for the given endpoint and model.
//
// # Inputs
//
//   - url: Full /api/chat endpoint URL. Empty resolves via ResolveChatURL.
//   - model: Model name. Empty resolves via ResolveChatModel.
//
// # Outputs
//
//   - *OllamaChatClient: Ready-to-use client. Never nil.
func NewOllamaChatClient(url, model string) *OllamaChatClient {
	if url == "" {
		url = ResolveChatURL()
	}
	if model == "" {
		model = ResolveChatModel()
	}
	return &OllamaChatClient{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: defaultChatTimeout},
	}
}

// Chat implements ChatClient against Ollama's non-streaming chat API.
func (c *OllamaChatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("chat: no messages")
	}

	reqBody, err := json.Marshal(ollamaChatReq{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat service returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResp
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	return chatResp.Message.Content, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package embedding provides the text-embedding capability for ToolScout:
// an Ollama-backed client, a process-lifetime query cache, and the vector
// store holding one pre-computed vector per catalog tool.
package embedding

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

// defaultEmbedTimeout bounds a single embedding call. The upstream design
// left this unbounded; a wedged embedding service must degrade to a nil
// vector, not hang the request.
const defaultEmbedTimeout = 60 * time.Second

// ollamaEmbedReq is the Ollama /api/embed request body.
type ollamaEmbedReq struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResp is the Ollama /api/embed response body.
type ollamaEmbedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedClient is the external embedding capability.
//
// Thread Safety: Implementations must be safe for concurrent use.
type EmbedClient interface {
	// Embed returns the embedding vector for text.
	//
	// Outputs:
	//   - []float32: The raw (not normalized) embedding vector.
	//   - error: Non-nil on transport failure, non-200 status, or an empty
	//     vector in the response.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ResolveEmbedURL returns the embedding endpoint URL, honoring
// EMBEDDING_SERVICE_URL.
func ResolveEmbedURL() string {
	if url := os.Getenv("EMBEDDING_SERVICE_URL"); url != "" {
		return url
	}
	return "http://localhost:11434/api/embed"
}

// ResolveEmbedModel returns the embedding model name, honoring EMBEDDING_MODEL.
func ResolveEmbedModel() string {
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		return model
	}
	return "nomic-embed-text"
}

// OllamaEmbedClient implements EmbedClient against an Ollama /api/embed
// endpoint.
//
// # Thread Safety
//
// Safe for concurrent use; all state is read-only after construction.
type OllamaEmbedClient struct {
	url    string
	model  string
	client *http.Client
}

// NewOllamaEmbedClient creates an embedding client.
//
// # Inputs
//
//   - url: Full /api/embed endpoint URL. Empty resolves via ResolveEmbedURL.
//   - model: Model name. Empty resolves via ResolveEmbedModel.
//
// # Outputs
//
//   - *OllamaEmbedClient: Ready-to-use client. Never nil.
func NewOllamaEmbedClient(url, model string) *OllamaEmbedClient {
	if url == "" {
		url = ResolveEmbedURL()
	}
	if model == "" {
		model = ResolveEmbedModel()
	}
	return &OllamaEmbedClient{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: defaultEmbedTimeout},
	}
}

// Model returns the configured embedding model name.
func (c *OllamaEmbedClient) Model() string {
	return c.model
}

// Embed calls the Ollama /api/embed endpoint and returns the embedding vector.
func (c *OllamaEmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedReq{
		Model: c.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed service returned %d: %s", resp.StatusCode, string(body))
	}

	var embedResp ollamaEmbedResp
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if len(embedResp.Embeddings) == 0 || len(embedResp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed service returned empty vector")
	}

	return embedResp.Embeddings[0], nil
}

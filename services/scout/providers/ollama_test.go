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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaChatClient_Chat(t *testing.T) {
	var gotReq ollamaChatReq
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaChatResp{
			Message: Message{Role: "assistant", Content: "Write a letter using AI"},
		})
	}))
	defer server.Close()

	client := NewOllamaChatClient(server.URL, "test-model")
	reply, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "normalize"},
		{Role: "user", Content: "help me write letter"},
	})
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}
	if reply != "Write a letter using AI" {
		t.Errorf("reply = %q", reply)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q, want test-model", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("expected stream=false")
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestOllamaChatClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOllamaChatClient(server.URL, "test-model")
	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention status code", err)
	}
}

func TestOllamaChatClient_NoMessages(t *testing.T) {
	client := NewOllamaChatClient("http://localhost:1", "test-model")
	if _, err := client.Chat(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty message list")
	}
}

func TestOllamaChatClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewOllamaChatClient(server.URL, "test-model")
	if _, err := client.Chat(ctx, []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

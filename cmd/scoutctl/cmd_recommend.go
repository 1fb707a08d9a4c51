// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/toolscout/services/scout"
	"github.com/AleutianAI/toolscout/services/scout/pipeline"
)

var topKFlag int

var recommendCmd = &cobra.Command{
	Use:   "recommend <prompt>",
	Short: "Recommend AI tools for a prompt",
	Args:  cobra.MinimumNArgs(1),
	Run:   runRecommendCommand,
}

func init() {
	recommendCmd.Flags().IntVar(&topKFlag, "top-k", 0, "Number of tools to return (default 5)")
}

func runRecommendCommand(_ *cobra.Command, args []string) {
	prompt := strings.Join(args, " ")

	var result pipeline.Result
	err := postJSON(getServerBaseURL()+"/v1/scout/recommend",
		scout.RecommendRequest{Prompt: prompt, TopK: topKFlag}, &result)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if result.Warning != "" {
		fmt.Printf("Blocked: %s\n", result.Warning)
		return
	}

	fmt.Printf("Prompt:    %s\n", result.OriginalPrompt)
	if result.RewrittenPrompt != result.OriginalPrompt {
		fmt.Printf("Rewritten: %s\n", result.RewrittenPrompt)
	}
	fmt.Printf("Intent:    %s / %s\n", result.Intent.Domain, result.Intent.Action)
	fmt.Printf("Confidence: %.1f%%", result.Confidence)
	if result.FallbackUsed {
		fmt.Print(" (no exact match, showing closest tools)")
	}
	fmt.Println()
	fmt.Println("---")

	for i, tool := range result.Tools {
		fmt.Printf("%d. %s (%s, %s) score=%.3f\n", i+1, tool.Name, tool.Domain, tool.Pricing, tool.Score)
		if tool.Description != "" {
			fmt.Printf("   %s\n", tool.Description)
		}
		if tool.Website != "" {
			fmt.Printf("   %s\n", tool.Website)
		}
	}

	if result.NeedsFollowup {
		fmt.Println("\nNot sure what you need? A few questions:")
		for _, q := range result.FollowUpQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
}

// postJSON sends a JSON body and decodes a JSON response, surfacing the
// server's error message on non-2xx status.
func postJSON(url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// getJSON fetches a URL and decodes a JSON response.
func getJSON(url string, out any) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp scout.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command scoutctl is the command-line client for the ToolScout server.
//
// Usage:
//
//	scoutctl recommend "make a logo for my startup"
//	scoutctl recommend --top-k 3 "transcribe my podcast"
//	scoutctl tool whisper
//	scoutctl tools --domain Audio --pricing free
//	scoutctl chat "what is an embedding?"
//	scoutctl embed --out data/tool_embeddings.json
//
// The server address defaults to http://localhost:8080 and can be changed
// with --server or the SCOUT_SERVER_URL environment variable.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// serverURL holds the --server flag value for all remote commands.
var serverURL string

var rootCmd = &cobra.Command{
	Use:   "scoutctl",
	Short: "Command-line client for the ToolScout server",
	Long: `scoutctl talks to a running ToolScout server to recommend AI tools
for free-text prompts, browse the tool catalog, and chat with the
configured model. The embed subcommand runs locally against Ollama to
pre-compute the tool embedding snapshot.`,
}

// getServerBaseURL resolves the server address: flag, then environment,
// then the localhost default.
func getServerBaseURL() string {
	if serverURL != "" {
		return serverURL
	}
	if env := os.Getenv("SCOUT_SERVER_URL"); env != "" {
		return env
	}
	return "http://localhost:8080"
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "ToolScout server base URL (default http://localhost:8080)")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(embedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

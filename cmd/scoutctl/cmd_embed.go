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
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/toolscout/services/scout/catalog"
	"github.com/AleutianAI/toolscout/services/scout/embedding"
)

var embedOutFlag string

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Pre-compute the tool embeddings snapshot",
	Long: `Embeds every catalog tool against the configured Ollama embedding
service and writes a snapshot file the server can load with -snapshot.
Runs locally, not through the server; set EMBEDDING_SERVICE_URL and
EMBEDDING_MODEL to point at your Ollama instance.`,
	Args: cobra.NoArgs,
	Run:  runEmbedCommand,
}

func init() {
	embedCmd.Flags().StringVar(&embedOutFlag, "out", "data/tool_embeddings.json", "Output snapshot path")
}

func runEmbedCommand(_ *cobra.Command, _ []string) {
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Error: load catalog: %v", err)
	}
	fmt.Printf("Loaded %d tools\n", cat.Len())

	model := embedding.ResolveEmbedModel()
	client := embedding.NewOllamaEmbedClient(embedding.ResolveEmbedURL(), model)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	snap := embedding.Snapshot{
		Model:   model,
		IDs:     cat.IDs(),
		Vectors: make([][]float32, 0, cat.Len()),
	}
	for _, tool := range cat.Tools() {
		fmt.Printf("Embedding: %s\n", tool.Name)
		vec, err := client.Embed(ctx, tool.EmbeddingDoc())
		if err != nil {
			log.Fatalf("Error: embed %s: %v", tool.ID, err)
		}
		if snap.Dim == 0 {
			snap.Dim = len(vec)
		} else if len(vec) != snap.Dim {
			log.Fatalf("Error: embed %s: dimension %d, want %d", tool.ID, len(vec), snap.Dim)
		}
		snap.Vectors = append(snap.Vectors, vec)
	}

	data, err := embedding.EncodeSnapshot(snap)
	if err != nil {
		log.Fatalf("Error: encode snapshot: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(embedOutFlag), 0o755); err != nil {
		log.Fatalf("Error: create output dir: %v", err)
	}
	if err := os.WriteFile(embedOutFlag, data, 0o644); err != nil {
		log.Fatalf("Error: write snapshot: %v", err)
	}

	fmt.Printf("Snapshot written to %s (model %s, dim %d)\n", embedOutFlag, model, snap.Dim)
}

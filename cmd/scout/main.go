// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command scout starts the ToolScout API server.
//
// ToolScout recommends AI tools for free-text prompts with:
//   - Rule-based prompt rewriting with an optional LLM fallback
//   - Keyword intent extraction (domain, action, pricing)
//   - Semantic ranking over Ollama embeddings with BadgerDB persistence
//   - Confidence scoring with follow-up questions for vague prompts
//
// Usage:
//
//	go run ./cmd/scout
//	go run ./cmd/scout -port 9090
//
// With Ollama (embeddings and the rewrite/chat fallback):
//
//	EMBEDDING_SERVICE_URL=http://localhost:11434/api/embed \
//	CHAT_SERVICE_URL=http://localhost:11434/api/chat \
//	go run ./cmd/scout
//
// With a pre-computed embeddings snapshot (no embedding service needed
// for startup; queries still degrade without one):
//
//	go run ./cmd/scout -snapshot data/tool_embeddings.json
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/scout/health
//
//	# Recommend tools for a prompt
//	curl -X POST http://localhost:8080/v1/scout/recommend \
//	  -H "Content-Type: application/json" \
//	  -d '{"prompt": "Create a professional logo for my startup"}'
//
//	# Look up one tool
//	curl http://localhost:8080/v1/scout/tool/whisper
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/toolscout/services/scout"
	"github.com/AleutianAI/toolscout/services/scout/catalog"
	"github.com/AleutianAI/toolscout/services/scout/config"
	"github.com/AleutianAI/toolscout/services/scout/embedding"
	"github.com/AleutianAI/toolscout/services/scout/pipeline"
	"github.com/AleutianAI/toolscout/services/scout/providers"
	badgerstore "github.com/AleutianAI/toolscout/services/scout/storage/badger"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	snapshot := flag.String("snapshot", "", "Path to a pre-computed embeddings snapshot (optional)")
	dataDir := flag.String("data-dir", "data", "Directory for feedback and bad-prompt logs")
	noChat := flag.Bool("no-chat", false, "Disable the LLM rewrite fallback and /chat endpoint")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation: inbound traceparent headers flow
	// through otelgin into every handler and pipeline span.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Catalog and rewrite rules are embedded; a failure here is a build
	// defect, not a runtime condition.
	cat, err := catalog.Load()
	if err != nil {
		slog.Error("Failed to load tool catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	rules, err := config.GetRewriteConfig()
	if err != nil {
		slog.Error("Failed to load rewrite rules", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Embedding cache BadgerDB. Graceful degradation: if unavailable,
	// warm-up recomputes vectors on every start.
	var vectorCache embedding.VectorCacheStore
	cacheDir := os.Getenv("SCOUT_CACHE_DIR")
	if cacheDir == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr == nil {
			cacheDir = filepath.Join(home, ".aleutian", "cache", "scout")
		}
	}
	var cacheDB *badgerstore.DB
	if cacheDir != "" {
		cfg := badgerstore.DefaultConfig()
		cfg.Path = cacheDir
		db, dbErr := badgerstore.OpenDB(cfg)
		if dbErr != nil {
			slog.Warn("Embedding cache BadgerDB unavailable, persistence disabled",
				slog.String("path", cacheDir),
				slog.String("error", dbErr.Error()),
			)
		} else {
			cacheDB = db
			vectorCache = embedding.NewBadgerVectorCacheStore(db, 0, slog.Default())
			slog.Info("Embedding cache BadgerDB opened", slog.String("path", cacheDir))
		}
	}

	embedModel := embedding.ResolveEmbedModel()
	embedClient := embedding.NewOllamaEmbedClient(embedding.ResolveEmbedURL(), embedModel)
	store := embedding.NewVectorStore(cat, embedClient, embedModel, vectorCache, slog.Default())

	// Snapshot load is strict; a misaligned file must stop the server
	// rather than serve wrong scores.
	if *snapshot != "" {
		data, readErr := os.ReadFile(*snapshot)
		if readErr != nil {
			slog.Error("Failed to read embeddings snapshot", slog.String("error", readErr.Error()))
			os.Exit(1)
		}
		if loadErr := store.LoadSnapshot(data); loadErr != nil {
			slog.Error("Failed to load embeddings snapshot", slog.String("error", loadErr.Error()))
			os.Exit(1)
		}
		slog.Info("Embeddings snapshot loaded",
			slog.String("path", *snapshot),
			slog.Int("dim", store.Dim()),
		)
	} else {
		go warmVectorStore(store)
	}

	var chatClient providers.ChatClient
	if !*noChat {
		chatClient = providers.NewOllamaChatClient(
			providers.ResolveChatURL(),
			providers.ResolveChatModel(),
		)
	}

	feedback, err := scout.NewFeedbackLog(filepath.Join(*dataDir, "user_feedback.jsonl"))
	if err != nil {
		slog.Error("Failed to create feedback log", slog.String("error", err.Error()))
		os.Exit(1)
	}
	badLog, err := scout.NewBadPromptLog(filepath.Join(*dataDir, "bad_prompts.log"))
	if err != nil {
		slog.Error("Failed to create bad prompt log", slog.String("error", err.Error()))
		os.Exit(1)
	}

	embedder := embedding.NewProvider(embedClient, slog.Default())
	rewriter := pipeline.NewRewriter(rules, chatClient, slog.Default())
	pipe := pipeline.NewPipeline(cat, store, embedder, rewriter, slog.Default())

	svc, err := scout.NewService(scout.ServiceConfig{
		Catalog:  cat,
		Pipeline: pipe,
		Store:    store,
		Chat:     chatClient,
		Feedback: feedback,
		BadLog:   badLog,
		Logger:   slog.Default(),
	})
	if err != nil {
		slog.Error("Failed to create service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scout.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-scout"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	scout.RegisterRoutes(v1, scout.NewHandlers(svc))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port, cat.Len())

	// Graceful shutdown: the embedding cache must close cleanly or Badger
	// replays its value log on next start.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down ToolScout server")
		if cacheDB != nil {
			if err := cacheDB.Close(); err != nil {
				slog.Warn("Failed to close embedding cache BadgerDB", slog.String("error", err.Error()))
			}
		}
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting ToolScout server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// warmVectorStore computes tool embeddings in the background so startup
// never blocks on the embedding service. Until it finishes, /ready reports
// 503 and recommendations serve in degraded mode.
func warmVectorStore(store *embedding.VectorStore) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			slog.Error("Panic in embedding warm-up recovered",
				slog.Any("panic", r),
				slog.String("stack", string(buf[:n])),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := store.Warm(ctx); err != nil {
		slog.Warn("Embedding warm-up aborted", slog.String("error", err.Error()))
		return
	}
	if store.IsWarmed() {
		slog.Info("Embedding warm-up complete",
			slog.Int("dim", store.Dim()),
			slog.Duration("duration", time.Since(start)),
		)
	} else {
		slog.Warn("Embedding service unreachable, serving degraded recommendations",
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func printBanner(port, toolCount int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                        TOOLSCOUT SERVER                           ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Prompt-driven AI tool recommendations (%3d tools loaded).        ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/scout/health              │  ║
║  │                                                             │  ║
║  │ # Recommend tools for a prompt                              │  ║
║  │ curl -X POST http://localhost:%d/v1/scout/recommend \ │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"prompt": "Create a logo for my startup"}'           │  ║
║  │                                                             │  ║
║  │ # Browse the catalog                                        │  ║
║  │ curl http://localhost:%d/v1/scout/tools | jq          │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Pipeline: /recommend                                         ║
║  ├── Catalog: /tool/:id, /tools, /suggestions                     ║
║  ├── Chat: /chat                                                  ║
║  ├── Feedback: /feedback                                          ║
║  └── Health: /health, /ready                                      ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, toolCount, port, port, port)
}

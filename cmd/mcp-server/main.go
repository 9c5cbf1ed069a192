// Package main provides the MCP server entry point for the course
// assistant.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/courseware-labs/ragtutor/internal/chunker"
	"github.com/courseware-labs/ragtutor/internal/config"
	"github.com/courseware-labs/ragtutor/internal/embedding"
	"github.com/courseware-labs/ragtutor/internal/generate"
	mcpserver "github.com/courseware-labs/ragtutor/internal/mcp"
	"github.com/courseware-labs/ragtutor/internal/rag"
	"github.com/courseware-labs/ragtutor/internal/session"
	"github.com/courseware-labs/ragtutor/internal/source"
	"github.com/courseware-labs/ragtutor/internal/store"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size
	log.Printf("embedding model %s (%d dimensions)", embedder.Model(), embedder.Dimension())

	// Initialize vector index
	index, err := store.New(cfg.QdrantHost, cfg.QdrantPort, embedder)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer index.Close()

	// Initialize generation client
	generator, err := generate.NewClient(cfg.AnthropicModel)
	if err != nil {
		log.Fatalf("failed to create generation client: %v", err)
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunking configuration: %v", err)
	}

	system := rag.New(index, generator, splitter, session.NewStore(cfg.MaxHistory), rag.Options{
		MaxResults:    cfg.MaxResults,
		MaxToolRounds: cfg.MaxToolRounds,
		Timeout:       cfg.GenerationTimeout,
		Logger:        slog.Default(),
	})

	// Ingest the course folder on startup so a fresh deployment serves
	// answers immediately. Courses already present are skipped.
	if files, err := source.ReadDir(cfg.DocsDir); err != nil {
		log.Printf("course folder not loaded: %v", err)
	} else if len(files) > 0 {
		report, err := system.IngestFiles(ctx, files, false)
		if err != nil {
			log.Fatalf("startup ingestion failed: %v", err)
		}
		log.Printf("startup ingestion: %d added, %d skipped, %d failed",
			report.CoursesAdded, report.CoursesSkipped, len(report.Failed))
	}

	// Create MCP server
	server := mcpserver.NewServer(system)

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(index))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := os.Getenv("SERVER_MODE") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + cfg.Port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + cfg.Port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Course Assistant MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

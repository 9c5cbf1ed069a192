// Package main provides the ingestion CLI for course materials.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courseware-labs/ragtutor/internal/chunker"
	"github.com/courseware-labs/ragtutor/internal/config"
	"github.com/courseware-labs/ragtutor/internal/embedding"
	"github.com/courseware-labs/ragtutor/internal/rag"
	"github.com/courseware-labs/ragtutor/internal/session"
	"github.com/courseware-labs/ragtutor/internal/source"
	"github.com/courseware-labs/ragtutor/internal/store"
)

var (
	force      bool
	githubRepo string
	githubPath string
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Course material ingestion tool",
	Long:  "CLI tool for loading course documents into the Qdrant vector index",
}

var folderCmd = &cobra.Command{
	Use:   "folder [dir]",
	Short: "Ingest all course files from a local folder",
	Long: `Parses every .txt and .md file in the folder as a course and writes
its chunks to the vector index. Courses already present are skipped
unless --force is given.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFolder,
}

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Ingest course files from a GitHub repository directory",
	Long: `Fetches course files from a GitHub repository path and ingests them.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)
  GITHUB_TOKEN   GitHub token for higher rate limits (optional)`,
	RunE: runGitHub,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "re-ingest courses that are already indexed")
	githubCmd.Flags().StringVar(&githubRepo, "repo", "", "repository as owner/name (required)")
	githubCmd.Flags().StringVar(&githubPath, "path", "", "directory within the repository")
	githubCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(githubCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFolder(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dir := cfg.DocsDir
	if len(args) > 0 {
		dir = args[0]
	}

	fmt.Printf("Reading course files from %s...\n", dir)
	files, err := source.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No course files found")
		return nil
	}
	fmt.Printf("Found %d course files\n", len(files))

	return ingest(cmd.Context(), cfg, files)
}

func runGitHub(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	owner, repo, ok := splitRepo(githubRepo)
	if !ok {
		return fmt.Errorf("invalid --repo %q, expected owner/name", githubRepo)
	}

	fetcher, err := source.NewGitHubFetcher(owner, repo, githubPath)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching course files from %s/%s...\n", owner, repo)
	files, err := fetcher.Fetch(cmd.Context())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No course files found")
		return nil
	}
	fmt.Printf("Found %d course files\n", len(files))

	return ingest(cmd.Context(), cfg, files)
}

func ingest(ctx context.Context, cfg *config.Config, files []source.File) error {
	start := time.Now()

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size
	fmt.Printf("Embedding model: %s (%d dimensions)\n", embedder.Model(), embedder.Dimension())

	index, err := store.New(cfg.QdrantHost, cfg.QdrantPort, embedder)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer index.Close()
	fmt.Println("Qdrant healthy")

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	// The ingestion path needs no generator or sessions; construct the
	// system with only the indexing side wired.
	system := rag.New(index, nil, splitter, session.NewStore(cfg.MaxHistory), rag.Options{
		Logger: slog.Default(),
	})

	fmt.Println()
	fmt.Println("Ingesting courses...")
	report, err := system.IngestFiles(ctx, files, force)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Courses added:   %d\n", report.CoursesAdded)
	fmt.Printf("  Courses skipped: %d\n", report.CoursesSkipped)
	fmt.Printf("  Chunks added:    %d\n", report.ChunksAdded)
	fmt.Printf("  Duration:        %s\n", report.Duration.Round(time.Second))

	if len(report.Failed) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, failed := range report.Failed {
			fmt.Printf("  - %s: %s\n", failed.Path, failed.Error)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))
	return nil
}

func splitRepo(s string) (owner, repo string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			owner, repo = s[:i], s[i+1:]
			return owner, repo, owner != "" && repo != ""
		}
	}
	return "", "", false
}

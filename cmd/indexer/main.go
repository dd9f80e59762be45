package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/andrew/ai-gateway/pkg/config"
	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
	"github.com/andrew/ai-gateway/pkg/store"
	"github.com/andrew/ai-gateway/pkg/vector"
)

var (
	configPath = flag.String("config", "", "Path to the YAML configuration file")
	contentDir = flag.String("dir", "./content", "Directory containing markdown documents to ingest")
	recreate   = flag.Bool("recreate", false, "Recreate the vector collection before indexing")
	vectorSize = flag.Uint64("vector-size", 768, "Embedding dimension of the collection")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	client, err := llm.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.Timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing LLM client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	index, err := vector.NewQdrantStore(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Qdrant: %v\n", err)
		os.Exit(1)
	}
	defer index.Close()

	if err := index.EnsureCollection(ctx, *vectorSize, *recreate); err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing collection: %v\n", err)
		os.Exit(1)
	}

	files, err := findDocuments(*contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", *contentDir, err)
		os.Exit(1)
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("%s indexing %d documents into %s\n",
		boldGreen("Knowledge indexer"), len(files), boldCyan(cfg.Qdrant.Collection))

	docs := store.NewKnowledgeStore(db)
	table := llm.NewTable(cfg.Models)

	indexed := 0
	for i, path := range files {
		rel, err := filepath.Rel(*contentDir, path)
		if err != nil {
			rel = path
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(files), rel)

		if err := ingest(ctx, client, table, docs, index, *contentDir, path); err != nil {
			fmt.Fprintf(os.Stderr, "  skipped: %v\n", err)
			continue
		}
		indexed++
	}

	fmt.Printf("%s %d/%d documents indexed\n", boldGreen("Done:"), indexed, len(files))
}

// ingest stores one document and its embedding. The row insert lands first;
// a failed vector upsert leaves a row without an index entry, which a re-run
// of the indexer repairs.
func ingest(ctx context.Context, client llm.Client, table llm.Table, docs *store.KnowledgeStore, index vector.Store, root, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	doc := &models.KnowledgeDocument{
		ID:       uuid.New().String(),
		Title:    titleFrom(path),
		Body:     string(body),
		Category: categoryFrom(rel),
		Source:   rel,
	}

	embedding, err := client.Embed(ctx, table.Embedding(), doc.Body)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}
	if err := docs.Insert(ctx, doc); err != nil {
		return err
	}
	return index.Upsert(ctx, doc.ID, embedding, map[string]string{"source": doc.Source})
}

// findDocuments recursively collects the markdown files under root.
func findDocuments(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".md" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func titleFrom(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// categoryFrom uses the top-level directory of the relative path, if any.
func categoryFrom(rel string) string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	parts := strings.Split(dir, string(filepath.Separator))
	return parts[0]
}

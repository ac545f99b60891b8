package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/campuskb/ragserve/internal/adapters/embedding"
	"github.com/campuskb/ragserve/internal/adapters/filewatcher"
	"github.com/campuskb/ragserve/internal/adapters/index"
	"github.com/campuskb/ragserve/internal/adapters/llm"
	"github.com/campuskb/ragserve/internal/adapters/metadata"
	"github.com/campuskb/ragserve/internal/adapters/reader"
	"github.com/campuskb/ragserve/internal/config"
	"github.com/campuskb/ragserve/internal/domain/entities"
	"github.com/campuskb/ragserve/internal/domain/ports"
	"github.com/campuskb/ragserve/internal/domain/usecases"
	httpserver "github.com/campuskb/ragserve/internal/infrastructure/http"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	configPath := getEnv("RAGSERVE_CONFIG", "config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[ERROR] loading config: %v", err)
	}

	log.Printf("[INFO] ragserve %s starting in %s mode", version, mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
	}()

	switch mode {
	case "build":
		runBuild(ctx, cfg)
	case "rebuild":
		if len(os.Args) < 3 {
			log.Fatal("[ERROR] usage: ragserve rebuild <records.jsonl>")
		}
		runRebuild(ctx, cfg, os.Args[2])
	case "serve":
		runServe(ctx, cfg)
	default:
		log.Fatalf("[ERROR] unknown mode %q (use: serve, build, or rebuild)", mode)
	}
}

// runBuild ingests the document directory into a fresh index/metadata pair.
func runBuild(ctx context.Context, cfg *config.AppConfig) {
	uc := newBuildUseCase(cfg, cfg.Embedder.BatchSize)
	report, err := uc.Build(ctx, cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("[ERROR] build failed: %v", err)
	}
	logReport(report)
}

// runRebuild re-embeds pre-chunked records from a JSONL export.
func runRebuild(ctx context.Context, cfg *config.AppConfig, jsonlPath string) {
	records, err := reader.ReadJSONL(jsonlPath)
	if err != nil {
		log.Fatalf("[ERROR] reading %s: %v", jsonlPath, err)
	}
	uc := newBuildUseCase(cfg, usecases.DefaultRebuildBatchSize)
	report, err := uc.BuildFromRecords(ctx, records)
	if err != nil {
		log.Fatalf("[ERROR] rebuild failed: %v", err)
	}
	logReport(report)
}

// runServe loads the persisted pair and serves queries until shutdown.
// With watch enabled, changes under the data directory trigger a full
// rebuild followed by an atomic retriever swap.
func runServe(ctx context.Context, cfg *config.AppConfig) {
	retriever, err := loadRetriever(ctx, cfg)
	if err != nil {
		log.Fatalf("[ERROR] loading index/metadata pair: %v", err)
	}

	server := httpserver.NewServer(retriever, cfg.Storage.FeedbackPath, cfg.Server.Addr)

	if cfg.Watch {
		go watchAndRebuild(ctx, cfg, server)
	}

	log.Printf("[INFO] serving on %s", cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("[ERROR] server error: %v", err)
	}
}

func watchAndRebuild(ctx context.Context, cfg *config.AppConfig, server *httpserver.Server) {
	watcher, err := filewatcher.NewFSNotifyWatcher(nil)
	if err != nil {
		log.Printf("[WARN] file watcher unavailable: %v", err)
		return
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, cfg.Storage.DataDir)
	if err != nil {
		log.Printf("[WARN] watching %s: %v", cfg.Storage.DataDir, err)
		return
	}
	log.Printf("[INFO] watching %s for changes", cfg.Storage.DataDir)

	uc := newBuildUseCase(cfg, cfg.Embedder.BatchSize)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			log.Printf("[INFO] change detected: %s, rebuilding", event.Path)
			report, err := uc.Build(ctx, cfg.Storage.DataDir)
			if err != nil {
				log.Printf("[ERROR] rebuild after change failed: %v", err)
				continue
			}
			logReport(report)
			retriever, err := loadRetriever(ctx, cfg)
			if err != nil {
				log.Printf("[ERROR] reloading pair after rebuild: %v", err)
				continue
			}
			server.SwapRetriever(retriever)
			log.Println("[INFO] retriever swapped in")
		}
	}
}

// loadRetriever loads the persisted index and metadata and verifies they
// belong together before serving against them.
func loadRetriever(ctx context.Context, cfg *config.AppConfig) (*usecases.Retriever, error) {
	idx, err := index.Load(cfg.Storage.IndexPath)
	if err != nil {
		return nil, err
	}
	records, err := metadata.NewSQLiteStore().Load(ctx, cfg.Storage.MetadataPath)
	if err != nil {
		return nil, err
	}
	return usecases.NewRetriever(newEmbedder(cfg), idx, records, newLLM(cfg), cfg.TopK)
}

func newBuildUseCase(cfg *config.AppConfig, batchSize int) *usecases.BuildUseCase {
	uc, err := usecases.NewBuildUseCase(
		reader.NewMultiReader(),
		newEmbedder(cfg),
		func(dim int) ports.VectorIndex { return index.NewFlatL2(dim) },
		metadata.NewSQLiteStore(),
		cfg.Storage.IndexPath,
		cfg.Storage.MetadataPath,
		cfg.Chunker.Size,
		cfg.Chunker.Overlap,
		batchSize,
	)
	if err != nil {
		log.Fatalf("[ERROR] invalid chunker config: %v", err)
	}
	return uc
}

func newEmbedder(cfg *config.AppConfig) ports.EmbeddingService {
	e := cfg.Embedder
	switch e.Type {
	case "ollama":
		return embedding.NewOllamaAdapter(e.BaseURL, e.Model, e.Dimension)
	case "openai":
		adapter, err := embedding.NewOpenAIAdapter(e.APIKey(), e.Model, e.Dimension)
		if err != nil {
			log.Fatalf("[ERROR] openai embedder: %v", err)
		}
		return adapter
	case "gemini":
		adapter, err := embedding.NewGeminiAdapter(e.BaseURL, e.APIKey(), e.Model, e.Dimension)
		if err != nil {
			log.Fatalf("[ERROR] gemini embedder: %v", err)
		}
		return adapter
	default:
		log.Fatalf("[ERROR] unknown embedder type %q", e.Type)
		return nil
	}
}

func newLLM(cfg *config.AppConfig) ports.LLMService {
	l := cfg.LLM
	switch l.Type {
	case "ollama":
		return llm.NewOllamaAdapter(l.BaseURL, l.Model)
	case "gemini":
		adapter, err := llm.NewGeminiAdapter(l.BaseURL, l.APIKey(), l.Model)
		if err != nil {
			log.Fatalf("[ERROR] gemini llm: %v", err)
		}
		return adapter
	default:
		log.Fatalf("[ERROR] unknown llm type %q", l.Type)
		return nil
	}
}

func logReport(r *entities.BuildReport) {
	log.Printf("[INFO] build complete: %d documents (%d skipped), %d chunks, %d indexed, %d batches dropped, took %s",
		r.Documents, r.SkippedDocs, r.Chunks, r.Indexed, r.SkippedBatches, r.Elapsed.Round(time.Millisecond))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

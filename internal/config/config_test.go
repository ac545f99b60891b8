package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config should not be an error: %v", err)
	}
	if cfg.Embedder.Type != "gemini" {
		t.Errorf("default embedder type: got %q", cfg.Embedder.Type)
	}
	if cfg.Embedder.Dimension != 768 {
		t.Errorf("default dimension: got %d", cfg.Embedder.Dimension)
	}
	if cfg.Chunker.Size != 500 || cfg.Chunker.Overlap != 100 {
		t.Errorf("default chunker: got %d/%d", cfg.Chunker.Size, cfg.Chunker.Overlap)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr: got %q", cfg.Server.Addr)
	}
	if cfg.TopK != 3 {
		t.Errorf("default top_k: got %d", cfg.TopK)
	}
}

func TestLoadAppliesFileValuesAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
embedder:
  type: ollama
  base_url: http://embed:11434
  model: nomic-embed-text
llm:
  type: ollama
  model: llama3
chunker:
  size: 800
server:
  addr: ":9000"
watch: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedder.Type != "ollama" || cfg.Embedder.BaseURL != "http://embed:11434" {
		t.Errorf("embedder not applied: %+v", cfg.Embedder)
	}
	if cfg.Embedder.APIKeyEnv != "" {
		t.Errorf("ollama needs no API key env, got %q", cfg.Embedder.APIKeyEnv)
	}
	if cfg.Chunker.Size != 800 {
		t.Errorf("chunker size: got %d", cfg.Chunker.Size)
	}
	if cfg.Chunker.Overlap != 100 {
		t.Errorf("overlap default should fill in, got %d", cfg.Chunker.Overlap)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr: got %q", cfg.Server.Addr)
	}
	if !cfg.Watch {
		t.Error("watch flag not applied")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("embedder: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAPIKeyResolvesFromEnvironment(t *testing.T) {
	t.Setenv("TEST_RAG_KEY", "sk-123")
	c := EmbedderConfig{APIKeyEnv: "TEST_RAG_KEY"}
	if got := c.APIKey(); got != "sk-123" {
		t.Errorf("APIKey() = %q", got)
	}
	var empty EmbedderConfig
	if got := empty.APIKey(); got != "" {
		t.Errorf("empty env name should yield empty key, got %q", got)
	}
}

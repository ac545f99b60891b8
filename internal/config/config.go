package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EmbedderConfig selects and configures the embedding backend.
// APIKeyEnv names the environment variable holding the key, so the
// config file itself never carries secrets.
type EmbedderConfig struct {
	Type      string `yaml:"type"` // gemini, ollama, openai
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig selects and configures the answer-generation backend.
type LLMConfig struct {
	Type      string `yaml:"type"` // gemini, ollama
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// StorageConfig holds the on-disk paths for the index/metadata pair and
// the feedback log.
type StorageConfig struct {
	DataDir      string `yaml:"data_dir"`
	IndexPath    string `yaml:"index_path"`
	MetadataPath string `yaml:"metadata_path"`
	FeedbackPath string `yaml:"feedback_path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	LLM      LLMConfig      `yaml:"llm"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	TopK     int            `yaml:"top_k"`
	Watch    bool           `yaml:"watch"`
}

// Load reads a config from the given path. A missing file is not an
// error: the defaults describe a working local setup.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// APIKey resolves the embedder's API key from the environment.
func (c *EmbedderConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// APIKey resolves the LLM's API key from the environment.
func (c *LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		switch cfg.Embedder.Type {
		case "gemini":
			cfg.Embedder.APIKeyEnv = "GEMINI_API_KEY"
		case "openai":
			cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 768
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "gemini"
	}
	if cfg.LLM.APIKeyEnv == "" && cfg.LLM.Type == "gemini" {
		cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 500
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 100
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "./index.bin"
	}
	if cfg.Storage.MetadataPath == "" {
		cfg.Storage.MetadataPath = "./metadata.db"
	}
	if cfg.Storage.FeedbackPath == "" {
		cfg.Storage.FeedbackPath = "./feedback.jsonl"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
}

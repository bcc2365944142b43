package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// CorpusConfig points at the "## Title:" corpus file.
type CorpusConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries"`
	RateLimit   float64 `yaml:"requests_per_second"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// LLMConfig configures the chat model used for selection and the forced summary call.
type LLMConfig struct {
	BaseURL       string   `yaml:"base_url"`
	APIKeyEnv     string   `yaml:"api_key_env"`
	DefaultModel  string   `yaml:"default_model"`
	AllowedModels []string `yaml:"allowed_models"`
	TimeoutSecs   int      `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SQLiteConfig locates the on-disk index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains gRPC connection details for a Qdrant vector store.
type QdrantConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	APIKeyEnv   string `yaml:"api_key_env"`
	UseTLS      bool   `yaml:"use_tls"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// SummariesConfig picks the title to summary table: the built-in one or the corpus.
type SummariesConfig struct {
	Source string `yaml:"source"`
}

type IllustrationConfig struct {
	OutputDir  string `yaml:"output_dir"`
	Model      string `yaml:"model"`
	Size       string `yaml:"size"`
	Lang       string `yaml:"lang"`
	ThemeCount int    `yaml:"theme_count"`
}

type ModerationConfig struct {
	Disabled   bool     `yaml:"disabled"`
	ExtraWords []string `yaml:"extra_words,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus       CorpusConfig       `yaml:"corpus"`
	Embedder     EmbedderConfig     `yaml:"embedder"`
	LLM          LLMConfig          `yaml:"llm"`
	VectorStore  VectorStoreConfig  `yaml:"vector_store"`
	Retrieval    RetrievalConfig    `yaml:"retrieval"`
	Summaries    SummariesConfig    `yaml:"summaries"`
	Illustration IllustrationConfig `yaml:"illustration"`
	Moderation   ModerationConfig   `yaml:"moderation"`
	Log          LogConfig          `yaml:"log"`
}

// FileName is the config file looked up in the working directory.
const FileName = "librarian.yaml"

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./librarian.yaml first, then ~/.config/librarian/config.yaml.
// If neither exists, it writes defaults to ~/.config/librarian/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown component types.
func (c *AppConfig) Validate() error {
	if !slices.Contains([]string{"openai", "tfidf"}, c.Embedder.Type) {
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	if !slices.Contains([]string{"memory", "sqlite", "qdrant"}, c.VectorStore.Type) {
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	if !slices.Contains([]string{"static", "corpus"}, c.Summaries.Source) {
		return fmt.Errorf("unknown summaries source %q", c.Summaries.Source)
	}
	if len(c.LLM.AllowedModels) > 0 && !slices.Contains(c.LLM.AllowedModels, c.LLM.DefaultModel) {
		return fmt.Errorf("default model %q is not in allowed_models", c.LLM.DefaultModel)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "librarian", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Corpus:      CorpusConfig{Path: filepath.Join("data", "book_summaries.txt")},
		Embedder:    EmbedderConfig{Type: "openai"},
		VectorStore: VectorStoreConfig{Type: "sqlite"},
		Summaries:   SummariesConfig{Source: "static"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = filepath.Join("data", "book_summaries.txt")
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if len(cfg.LLM.AllowedModels) == 0 {
		cfg.LLM.AllowedModels = []string{"gpt-4o-mini", "gpt-4.1-mini", "gpt-4.1-nano"}
	}
	if cfg.LLM.DefaultModel == "" {
		cfg.LLM.DefaultModel = cfg.LLM.AllowedModels[0]
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "sqlite"
	}
	switch cfg.VectorStore.Type {
	case "sqlite":
		if cfg.VectorStore.SQLite == nil {
			cfg.VectorStore.SQLite = &SQLiteConfig{}
		}
		if cfg.VectorStore.SQLite.Path == "" {
			cfg.VectorStore.SQLite.Path = filepath.Join("data", "index", "books.db")
		}
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.Host == "" {
			cfg.VectorStore.Qdrant.Host = "localhost"
		}
		if cfg.VectorStore.Qdrant.Port == 0 {
			cfg.VectorStore.Qdrant.Port = 6334
		}
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "book_summaries"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}

	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 2
	}
	if cfg.Summaries.Source == "" {
		cfg.Summaries.Source = "static"
	}

	if cfg.Illustration.OutputDir == "" {
		cfg.Illustration.OutputDir = filepath.Join("outputs", "images")
	}
	if cfg.Illustration.Model == "" {
		cfg.Illustration.Model = "dall-e-3"
	}
	if cfg.Illustration.Size == "" {
		cfg.Illustration.Size = "1024x1024"
	}
	if cfg.Illustration.Lang == "" {
		cfg.Illustration.Lang = "ro"
	}
	if cfg.Illustration.ThemeCount == 0 {
		cfg.Illustration.ThemeCount = 3
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

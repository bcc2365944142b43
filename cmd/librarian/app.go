package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"librarian/internal/config"
	"librarian/internal/corpus"
	"librarian/internal/domain"
	"librarian/internal/embedding/openai"
	"librarian/internal/embedding/tfidf"
	"librarian/internal/illustration"
	"librarian/internal/index"
	llmopenai "librarian/internal/llm/openai"
	"librarian/internal/logging"
	"librarian/internal/moderation"
	"librarian/internal/selector"
	"librarian/internal/service"
	"librarian/internal/summary"
	"librarian/internal/vectorstore"
	"librarian/internal/vectorstore/memory"
	"librarian/internal/vectorstore/qdrant"
	"librarian/internal/vectorstore/sqlite"
)

// app holds the process-wide components built from configuration.
type app struct {
	cfg     *config.AppConfig
	cfgPath string
	logger  *slog.Logger
	closers []io.Closer

	records     []domain.BookRecord
	store       vectorstore.Storage
	index       *index.Index
	llm         *llmopenai.Client
	resolver    *summary.Resolver
	librarian   *service.Librarian
	illustrator *illustration.Illustrator
	gate        domain.ProfanityGate
}

type appOptions struct {
	configPath string
	logLevel   string
	// quiet sends logs nowhere unless a log file is configured; used by the full-screen chat.
	quiet    bool
	progress index.ProgressFunc
}

func loadConfig(path string) (*config.AppConfig, string, error) {
	if path == "" {
		return config.LoadDefault()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("config file: %w", err)
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

func newApp(opts appOptions) (*app, error) {
	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	a := &app{cfg: cfg, cfgPath: cfgPath}

	var logger *slog.Logger
	switch {
	case cfg.Log.File != "":
		l, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer)
		logger = l
	case opts.quiet:
		logger = logging.Discard()
	default:
		logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
	}
	a.logger = logger
	slog.SetDefault(logger)
	logger.Debug("config loaded", "path", cfgPath)

	if err := a.build(opts.progress); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(progress index.ProgressFunc) error {
	cfg := a.cfg

	records, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return err
	}
	a.records = records
	a.logger.Info("corpus loaded", "path", cfg.Corpus.Path, "records", len(records))

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, store)

	ixOpts := []index.Option{index.WithLogger(a.logger)}
	if progress != nil {
		ixOpts = append(ixOpts, index.WithProgress(progress))
	}
	a.index = index.New(emb, store, ixOpts...)
	if err := a.index.Prepare(records); err != nil {
		return err
	}

	client, err := llmopenai.New(llmopenai.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("llm init failed: %w", err)
	}
	a.llm = client

	if cfg.Summaries.Source == "corpus" {
		a.resolver = summary.FromRecords(records)
	} else {
		a.resolver = summary.Default()
	}

	a.librarian = service.NewLibrarian(
		a.index,
		selector.New(client, a.logger),
		client,
		a.resolver,
		service.Options{TopK: cfg.Retrieval.TopK, DefaultModel: cfg.LLM.DefaultModel, AllowedModels: cfg.LLM.AllowedModels},
		a.logger,
	)
	a.illustrator = illustration.New(client, a.resolver, illustration.Config{
		OutputDir:  cfg.Illustration.OutputDir,
		Model:      cfg.Illustration.Model,
		Size:       cfg.Illustration.Size,
		Lang:       cfg.Illustration.Lang,
		ThemeCount: cfg.Illustration.ThemeCount,
	}, a.logger)

	if cfg.Moderation.Disabled {
		a.gate = moderation.AllowAll{}
	} else {
		a.gate = moderation.NewWordList(cfg.Moderation.ExtraWords...)
	}
	return nil
}

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:           cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:         cfg.Embedder.OpenAI.APIKeyEnv,
			Model:             cfg.Embedder.OpenAI.Model,
			Timeout:           time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries:        cfg.Embedder.OpenAI.MaxRetries,
			RequestsPerSecond: cfg.Embedder.OpenAI.RateLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newStore(cfg *config.AppConfig) (vectorstore.Storage, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "sqlite":
		if cfg.VectorStore.SQLite == nil {
			return nil, errors.New("sqlite config missing")
		}
		return sqlite.Open(cfg.VectorStore.SQLite.Path)
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			return nil, errors.New("qdrant config missing")
		}
		var apiKey string
		if q.APIKeyEnv != "" {
			apiKey = os.Getenv(q.APIKeyEnv)
		}
		return qdrant.NewStorage(qdrant.Config{
			Host:       q.Host,
			Port:       q.Port,
			APIKey:     apiKey,
			UseTLS:     q.UseTLS,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

// ensureSeeded runs the seed-once step every entry point performs before answering.
func (a *app) ensureSeeded(ctx context.Context) error {
	n, err := a.index.SeedIfEmpty(ctx, a.records)
	if err != nil {
		return err
	}
	if n > 0 {
		a.logger.Info("seeded index on startup", "entries", n)
	}
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// modelOverride makes a --model flag the default model of a chat session.
type modelOverride struct {
	*service.Librarian
	model string
}

func (m modelOverride) DefaultModel() string {
	if m.model != "" {
		return m.model
	}
	return m.Librarian.DefaultModel()
}

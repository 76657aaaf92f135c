package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/tbxark/bureaubot/agent"
	"github.com/tbxark/bureaubot/config"
	"github.com/tbxark/bureaubot/llm"
	"github.com/tbxark/bureaubot/logging"
	"github.com/tbxark/bureaubot/metadata"
	"github.com/tbxark/bureaubot/metrics"
	"github.com/tbxark/bureaubot/pdffill"
	"github.com/tbxark/bureaubot/session"
)

// app holds everything the commands share.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	orch     *agent.Orchestrator
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Close failed", "error", err)
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.closers = append(a.closers, logging.Setup(cfg.Log))
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	delegate, err := newDelegate(ctx, cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}
	delegate = llm.Instrument(delegate, cfg.LLM.Provider, m)
	policy := llm.Policy{Attempts: cfg.LLM.Attempts, Backoff: cfg.LLM.Backoff}

	sessions, closeStore, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	var metaOpts []metadata.FileStoreOption
	if cfg.Forms.ReferenceFile != "" {
		metaOpts = append(metaOpts, metadata.WithReferenceFile(cfg.Forms.ReferenceFile))
	}
	meta := metadata.NewFileStore(cfg.Forms.MetadataDir, metaOpts...)
	filler := pdffill.NewPDFCPUFiller(meta, cfg.Forms.OutputDir)

	a.orch, err = agent.New(ctx, delegate, meta, filler, sessions,
		agent.WithPolicy(policy),
		agent.WithMetrics(m),
		agent.WithDownloadPrefix(cfg.Forms.DownloadPrefix),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	return a, nil
}

func newDelegate(ctx context.Context, conf config.LLMConfig) (llm.Delegate, error) {
	gen := llm.Generation{
		Temperature:     conf.Temperature,
		TopP:            conf.TopP,
		MaxOutputTokens: conf.MaxOutputTokens,
	}
	switch conf.Provider {
	case "gemini":
		return llm.NewGenAIDelegate(ctx, conf.APIKey, conf.Model, gen)
	case "openai":
		return llm.NewOpenAIDelegate(ctx, llm.OpenAIConfig{
			APIKey:  conf.APIKey,
			BaseURL: conf.BaseURL,
			Model:   conf.Model,
		}, gen)
	case "scripted":
		slog.Warn("Using scripted delegate, replies come from config", "replies", len(conf.Script))
		return llm.NewScripted(conf.Script...), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", conf.Provider)
	}
}

func newSessionStore(ctx context.Context, conf config.SessionConfig) (session.Store, func() error, error) {
	switch conf.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: conf.RedisAddr, DB: conf.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", conf.RedisAddr, err)
		}
		slog.Info("Using Redis session store", "addr", conf.RedisAddr, "ttl", conf.TTL)
		return session.NewRedisStore(client, session.WithTTL(conf.TTL), session.WithPrefix(conf.Prefix)), client.Close, nil
	default:
		slog.Info("Using in-memory session store", "ttl", conf.TTL)
		return session.NewMemoryStore(conf.TTL), func() error { return nil }, nil
	}
}

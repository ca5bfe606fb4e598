package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jjenkins/trialfinder/internal/config"
	"github.com/jjenkins/trialfinder/internal/service"
	"github.com/jjenkins/trialfinder/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// components holds the wired search pipeline shared by serve and search
type components struct {
	registry *prometheus.Registry
	metrics  *service.Metrics
	searcher *service.Searcher
	rows     *service.RowTranslator
	pgCache  *store.PGCache
	closers  []io.Closer
}

func buildComponents(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*components, error) {
	c := &components{registry: prometheus.NewRegistry()}
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = service.NewMetrics(c.registry)

	translator, err := buildTranslator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	cache, err := c.buildCache(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	cached := service.NewCachingTranslator(translator, cache, log)

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	studies := service.NewCTGovClient(service.CTGovOptions{
		BaseURL:  cfg.CTGovBaseURL,
		PageSize: cfg.CTGovPageSize,
		MaxPages: cfg.CTGovMaxPages,
	}, log)

	terms := service.NewTermTranslator(cached, c.metrics, log)
	c.searcher = service.NewSearcher(registry, terms, studies, c.metrics, log)
	c.rows = service.NewRowTranslator(cached, c.metrics)
	return c, nil
}

func buildTranslator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (service.Translator, error) {
	switch cfg.TranslatorProvider {
	case config.ProviderGemini:
		t, err := service.NewGeminiTranslator(ctx, cfg.GeminiAPIKey, cfg.TranslatorModel, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini translator: %w", err)
		}
		return t, nil
	default:
		return service.NewOpenAITranslator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TranslatorModel, log), nil
	}
}

func (c *components) buildCache(ctx context.Context, cfg *config.Config) (service.TranslationCache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rc, err := store.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rc)
		return rc, nil
	case config.CachePostgres:
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db)
		pg := store.NewPGCache(db, cfg.CacheTTL)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		c.pgCache = pg
		return pg, nil
	default:
		return store.NewMemoryCache(cfg.CacheSize), nil
	}
}

func buildRegistry(cfg *config.Config, log zerolog.Logger) (service.Registry, error) {
	opts := service.RegistryOptions{
		BaseURL: cfg.JRCTBaseURL,
		Timeout: cfg.JRCTTimeout,
	}
	if cfg.JRCTStrategy == config.StrategyForm {
		return service.NewFormRegistry(opts, log), nil
	}
	r, err := service.NewDirectRegistry(opts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create jRCT registry: %w", err)
	}
	return r, nil
}

// Close releases cache connections
func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

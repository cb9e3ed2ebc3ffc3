package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/concierge/backend/config"
	httpDelivery "github.com/concierge/backend/internal/delivery/http"
	"github.com/concierge/backend/internal/domain"
	"github.com/concierge/backend/internal/infrastructure/cache"
	"github.com/concierge/backend/internal/infrastructure/catalog"
	"github.com/concierge/backend/internal/infrastructure/llm"
	"github.com/concierge/backend/internal/infrastructure/metrics"
	"github.com/concierge/backend/internal/observability"
	"github.com/concierge/backend/internal/usecase"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "concierge-backend",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Msg("starting concierge backend")

	recorder := metrics.NewRecorder(metrics.WithRuntimeCollectors())

	// Catalog is read once and shared read-only
	items, err := catalog.NewLoader(logger).Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	responseCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	assistant, err := newAssistant(cfg, logger)
	if err != nil {
		return err
	}

	ranker := usecase.NewRankingService(usecase.RankConfig{
		NameWeight:         cfg.Search.NameWeight,
		DescriptionWeight:  cfg.Search.DescriptionWeight,
		StopWords:          cfg.Search.StopWords,
		TriggerPhrases:     cfg.Search.Signature.TriggerPhrases,
		SignatureSubstring: cfg.Search.Signature.Substring,
		SignatureBonus:     cfg.Search.Signature.Bonus,
		SnippetLength:      cfg.Search.SnippetLength,
		DefaultTopK:        cfg.Search.TopK,
		Metrics:            recorder,
	}, logger)

	chatService := usecase.NewChatService(items, ranker, assistant, responseCache, usecase.ChatServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		TopK:     cfg.Search.TopK,
		Profile:  cfg.Profile,
		Metrics:  recorder,
	}, logger)

	handler := httpDelivery.NewHandler(chatService, httpDelivery.HandlerConfig{
		Version: version,
		MaxTopK: cfg.Search.MaxTopK,
	}, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger, recorder)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newCache builds the configured response cache and its cleanup
func newCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, func(), error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	}

	return cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval), func() {}, nil
}

// newAssistant returns nil when the assistant is disabled or has no credentials
func newAssistant(cfg *config.Config, logger zerolog.Logger) (domain.Assistant, error) {
	if !cfg.LLM.Enabled {
		logger.Warn().Msg("assistant disabled, /api/v1/chat will answer 503")
		return nil, nil
	}
	if cfg.LLM.Provider == llm.ProviderOpenAI && cfg.LLM.APIKey == "" {
		logger.Warn().Msg("no OpenAI API key configured, /api/v1/chat will answer 503")
		return nil, nil
	}

	model, err := llm.NewModel(llm.ModelConfig{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		ServerURL: cfg.LLM.ServerURL,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("provider", cfg.LLM.Provider).Str("model", cfg.LLM.Model).Msg("assistant configured")
	return llm.NewClient(model, llm.ClientConfig{
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		MaxRetries:        cfg.LLM.MaxRetries,
		Timeout:           cfg.LLM.Timeout,
	}, logger), nil
}

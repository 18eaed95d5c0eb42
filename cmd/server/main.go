package main

import (
	"context"
	"io"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"songbird/config"
	"songbird/internal/adapter/feishu"
	"songbird/internal/adapter/rest"
	"songbird/internal/agent"
	"songbird/internal/core"
	"songbird/internal/llm"
	"songbird/internal/media"
	"songbird/internal/search"
	"songbird/internal/similarity"
	"songbird/internal/tools"
)

func newLogger(format string) (*zap.Logger, error) {
	if format == "json" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// 1. Init Config
	config.Init()
	cfg := config.AppConfig

	// 2. Init Logger
	logger, err := newLogger(cfg.Server.LogFormat)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Init LLM
	llmProvider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal("Failed to init LLM provider", zap.Error(err))
	}
	if c, ok := llmProvider.(io.Closer); ok {
		defer c.Close()
	}
	logger.Info("LLM provider ready", zap.String("provider", llmProvider.Name()))

	// 4. Init search backends and the tool set exposed to the model
	searchers, err := search.NewRegistryFromConfig(cfg.Search)
	if err != nil {
		logger.Fatal("Failed to init search backends", zap.Error(err))
	}
	searcher := searchers.GetDefault()
	logger.Info("Web search backend ready", zap.String("backend", searcher.Name()), zap.Strings("available", searchers.Names()))

	toolset, err := tools.NewRegistry(tools.NewWebSearch(searcher, cfg.Search.MaxResults))
	if err != nil {
		logger.Fatal("Failed to init tools", zap.Error(err))
	}

	// 5. Init Agents
	recommender := agent.NewRecommender(llmProvider, toolset, logger, agent.Config{
		MaxIterations: cfg.Agent.MaxIterations,
		ModelTimeout:  cfg.LLM.Timeout,
		ToolTimeout:   cfg.Search.Timeout,
	})

	// 6. Init Dispatcher
	dispatcher := core.NewDispatcher(logger)
	dispatcher.RegisterAgent(agent.NewRecommendAgent(recommender))

	// 7. Init Media
	songs := media.NewClient(cfg.Media.YtDlpPath,
		media.WithTimeout(cfg.Media.Timeout),
		media.WithLogger(logger),
	)

	// 8. Init Adapters
	restAdapter := rest.NewAdapter(cfg.Server.Port, dispatcher, songs, recommender, logger)

	if cfg.Catalog.Path != "" {
		catalog, err := similarity.LoadFile(cfg.Catalog.Path)
		if err != nil {
			logger.Fatal("Failed to load similarity catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
		restAdapter.Similar = catalog
		logger.Info("Similarity catalog loaded", zap.Int("tracks", catalog.Len()))
	}

	if cfg.Feishu.Enabled() {
		feishuAdapter := feishu.NewAdapter(cfg.Feishu, dispatcher, logger)
		go func() {
			if err := feishuAdapter.StartWS(ctx); err != nil {
				logger.Error("Failed to start Feishu WS", zap.Error(err))
			}
		}()
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := restAdapter.Start(ctx); err != nil {
			logger.Error("REST Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")
	<-served
}

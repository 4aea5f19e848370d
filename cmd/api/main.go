package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/jobs"
	"server/internal/providers/hunyuan"
	"server/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	generator := hunyuan.NewClient(hunyuan.Options{
		APIKey:   cfg.HuggingFaceAPIKey,
		Endpoint: cfg.HunyuanEndpoint,
		Logger:   &logger,
	})
	if !generator.APIKeyConfigured() {
		logger.Warn().Msg("HUGGINGFACE_API_KEY not set, generation calls will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := jobs.NewStore()

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	executor := jobs.NewExecutor(jobs.ExecutorOptions{
		Store:           store,
		Generator:       generator,
		Hub:             hub,
		Logger:          logger,
		GenerateTimeout: cfg.GenerateTimeout,
		MaxConcurrent:   cfg.MaxConcurrentJobs,
	})

	janitor := jobs.NewJanitor(store, logger, cfg.JobTTL, cfg.JobSweepInterval)
	go janitor.Run(ctx)

	app := &handlers.App{
		Config:           cfg,
		Logger:           logger,
		Store:            store,
		Executor:         executor,
		Hub:              hub,
		APIKeyConfigured: generator.APIKeyConfigured(),
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

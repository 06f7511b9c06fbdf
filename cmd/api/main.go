package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"studyblossom/internal/history"
	"studyblossom/internal/http/handlers"
	httpapi "studyblossom/internal/http/httpapi"
	"studyblossom/internal/infra"
	"studyblossom/internal/infra/geoip"
	"studyblossom/internal/providers/genai"
	"studyblossom/internal/providers/render"
	"studyblossom/internal/ratelimit"
	"studyblossom/internal/study"
	"studyblossom/internal/video"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sessions := history.NewRepository(infra.NewSQLRunner(dbpool, logger))
	if err := sessions.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare history schema")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	text := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
		Logger:  &logger,
	})
	renderer := render.NewClient(render.Options{
		APIKey:  cfg.RenderAPIKey,
		BaseURL: cfg.RenderBaseURL,
		Timeout: cfg.RenderTimeout,
		Logger:  &logger,
	})
	if !renderer.Configured() {
		logger.Warn().Msg("D_ID_API_KEY not set, video generation will fail")
	}

	pipeline := video.NewPipeline(text, renderer, video.Options{
		PollInterval: cfg.VideoPollInterval,
		MaxAttempts:  cfg.VideoMaxAttempts,
		Voice:        render.Voice{Type: cfg.RenderVoiceType, VoiceID: cfg.RenderVoiceID},
		SourceURL:    cfg.RenderSourceURL,
		Logger:       &logger,
	})

	app := handlers.NewApp(pipeline, renderer, study.NewGenerator(text, &logger), sessions, &logger)
	app.VideoTimeout = cfg.VideoTimeout

	limiter := ratelimit.NewMemoryStore()
	limiter.StartJanitor(ctx, cfg.RateLimitWindow)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          &logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
		RateLimitStore:  limiter,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}

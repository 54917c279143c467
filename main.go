package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfodeker/corekit/config"
	"github.com/dfodeker/corekit/internal/metrics"
	"github.com/dfodeker/corekit/logging"
	"github.com/dfodeker/corekit/middleware"
	"github.com/dfodeker/corekit/snowflake"
	"github.com/dfodeker/corekit/token"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const envPrefix = "COREKIT"

type logSettings struct {
	Service  string         `json:"service"`
	Path     string         `json:"path"`
	Settings logging.Config `json:"settings"`
}

// appConfig is read from corekit.{yaml,yml,toml,json} (working directory,
// then ./config), .env and COREKIT__* variables, in that order.
type appConfig struct {
	Port           string           `json:"port"`
	Snowflake      snowflake.Config `json:"snowflake"`
	Token          token.Config     `json:"token"`
	Log            logSettings      `json:"log"`
	TokenRateLimit int              `json:"token_rate_limit"`
}

func defaultAppConfig() appConfig {
	return appConfig{
		Port:      "8080",
		Snowflake: snowflake.DefaultConfig(),
		Token:     token.DefaultConfig(),
		Log: logSettings{
			Service:  "corekit",
			Settings: logging.DefaultConfig(),
		},
		TokenRateLimit: 60,
	}
}

func loadConfig() (appConfig, error) {
	cfg := defaultAppConfig()
	b := config.NewBuilder().
		WithDotenv().
		IgnoreMissingFiles(true).
		WithEnvPrefix(envPrefix)
	for _, p := range config.Paths("corekit") {
		b.AddFile(p)
	}
	if err := b.Build(&cfg); err != nil {
		return appConfig{}, err
	}
	if err := cfg.Snowflake.Validate(); err != nil {
		return appConfig{}, err
	}
	if cfg.Token.ExpireDays <= 0 {
		return appConfig{}, fmt.Errorf("token.expire_days must be positive, got %d", cfg.Token.ExpireDays)
	}
	if cfg.TokenRateLimit <= 0 {
		return appConfig{}, fmt.Errorf("token_rate_limit must be positive, got %d", cfg.TokenRateLimit)
	}
	return cfg, nil
}

type apiConfig struct {
	ids            *snowflake.Generator
	tokens         *token.Manager
	tokenRateLimit int
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	infoLog, errorLog, err := logging.StartWithConfig(cfg.Log.Service, cfg.Log.Path, cfg.Log.Settings)
	if err != nil {
		log.Fatal().Err(err).Msg("starting logging")
	}

	err = run(cfg)
	if err != nil {
		slog.Error("server stopped", "error", err)
	}
	infoLog.Close()
	errorLog.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg appConfig) error {
	ids, err := snowflake.New(cfg.Snowflake)
	if err != nil {
		return err
	}

	apiCfg := &apiConfig{
		ids:            ids,
		tokens:         token.NewManager(cfg.Token),
		tokenRateLimit: cfg.TokenRateLimit,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiCfg.routes(slog.Default(), reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", srv.Addr,
			"worker_id", ids.WorkerID(), "epoch", ids.Epoch())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (cfg *apiConfig) routes(logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ids", cfg.handlerGenerateIDs)
		r.Get("/ids/{id}", cfg.handlerParseID)

		r.With(httprate.LimitByIP(cfg.tokenRateLimit, time.Minute)).
			Post("/tokens", cfg.handlerIssueToken)
		r.With(cfg.requireAuth).Get("/tokens/verify", cfg.handlerVerifyToken)
	})
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

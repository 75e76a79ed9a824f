package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dyastin-0/llmgate/internal/config"
	"github.com/Dyastin-0/llmgate/internal/gate"
	"github.com/Dyastin-0/llmgate/internal/logger"
	"github.com/Dyastin-0/llmgate/internal/metrics"
	"github.com/Dyastin-0/llmgate/internal/router"
	"github.com/Dyastin-0/llmgate/internal/tls"
	"github.com/Dyastin-0/llmgate/pkg/reverseproxy"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := flag.String("config", "", "Path to an optional YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	closer, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("logger")
	}
	defer closer.Close()

	allowed, err := cfg.Allowlist()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	log.Info().
		Strs("allowed_domains", allowed.Domains()).
		Bool("strict", cfg.Strict).
		Bool("wildcard", cfg.Wildcard).
		Msg("domainfilter")

	proxy, err := reverseproxy.New(cfg.Upstream)
	if err != nil {
		log.Fatal().Err(err).Msg("proxy")
	}
	proxy.ErrorHandler = router.UpstreamErrorHandler

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.New(gate.New(allowed, cfg.Strict), proxy),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Start(ctx, cfg.Metrics.Port); err != nil {
				log.Error().Err(err).Msg("metrics")
			}
		}()
	}

	go func() {
		if err := serve(ctx, server, cfg); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	log.Info().Str("status", "running").Str("addr", cfg.Addr).Str("upstream", cfg.Upstream).Msg("server")

	// Handle graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info().Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server")
	}
}

func serve(ctx context.Context, server *http.Server, cfg *config.Config) error {
	if !cfg.TLS.Enabled {
		return server.ListenAndServe()
	}

	tls.Configure(cfg.TLS)

	ln, err := tls.Listen(ctx, cfg.Addr, cfg.TLS.Domains)
	if err != nil {
		return err
	}

	return server.Serve(ln)
}

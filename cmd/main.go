package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/gomithril/embedd"
	"github.com/gomithril/embedd/embedding"
	"github.com/gomithril/embedd/internal/config"
	applog "github.com/gomithril/embedd/internal/log"
	"github.com/gomithril/embedd/internal/server"
)

func main() {
	cfg, err := config.Load()
	applog.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("version", embedd.Version).
		Str("model", cfg.ModelName).
		Str("model_path", cfg.ModelPath).
		Msg("Loading embedding model")

	svc, err := embedding.NewService(cfg.Embedding())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedding model")
	}

	if err := run(cfg, svc); err != nil {
		svc.Close()
		log.Fatal().Err(err).Msg("Server failed")
	}
	svc.Close()
}

// run serves until SIGINT/SIGTERM and then drains in-flight requests.
func run(cfg config.Config, svc *embedding.Service) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           server.New(svc, server.Options{MaxBodyBytes: cfg.MaxBodyBytes}, log.Logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Int("dim", svc.Dimensions()).Msg("Embedding service listening")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

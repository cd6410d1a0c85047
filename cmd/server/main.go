package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/mentorhub/signaling/internal/adapters/http"
	"github.com/mentorhub/signaling/internal/app"
	"github.com/mentorhub/signaling/internal/app/orch"
	"github.com/mentorhub/signaling/internal/auth"
	"github.com/mentorhub/signaling/internal/config"
	"github.com/mentorhub/signaling/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Auth.Secret == "" {
		log.Fatal().Msg("auth secret is not set (AUTH_SECRET or auth.secret)")
	}

	reg := app.NewRegistry()
	sessions := app.NewSessionStore()

	o := &orch.Orchestrator{
		Registry: reg,
		Sessions: sessions,
		Links:    app.NewLinkStore(),
		Rooms:    app.NewRoomManager(),
		Relay:    app.NewRelay(reg),
		Gate:     app.AllowAllGate{},
		Media:    app.NewMediaConfigStore(cfg.Media),
		Policy:   app.SimplePolicy{},
	}
	if cfg.MetricsEnabled {
		o.Metrics = metrics.NewDefault()
	}

	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience)

	r := router.SetupRouter(ctx, cfg, o, verifier)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

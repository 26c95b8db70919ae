package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lavanderia/internal/aggregator"
	"lavanderia/internal/config"
	"lavanderia/internal/infra"
	"lavanderia/internal/repository"
	"lavanderia/internal/router"
	"lavanderia/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Session aggregator ───────────────────────────────────────────────────
	// Seeds itself from the currently open session (if any), then follows
	// ledger-change notifications over Redis pub/sub.
	cajaRepo := repository.NewCajaRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	agg := aggregator.New(movimientoRepo)
	agg.ResolverSesion(ctx, cajaRepo)
	go aggregator.Escuchar(ctx, rdb, agg, cajaRepo)

	// ── Worker pool ──────────────────────────────────────────────────────────
	// Loyalty accrual and receipt email run off Redis job queues so a slow
	// external service never holds up a sale.
	fidelidadClient := infra.NewFidelidadClient(cfg.FidelidadURL, cfg.FidelidadToken)
	fidelidadCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)

	dispatcher := worker.NewDispatcher(rdb)
	dispatcher.Register(worker.QueueFidelidad, worker.NewFidelidadWorker(fidelidadClient, fidelidadCB, rdb))
	dispatcher.Register(worker.QueueRecibo, worker.NewReciboWorker(mailer, rdb))
	dispatcher.StartWorkerPool(ctx, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, agg, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("lavanderia backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

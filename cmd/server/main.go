package main

// @title           Pharma Vendor Opportunities API
// @version         1.0
// @description     Conciliación de compras de puntos de venta contra catálogos de vendors.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/config"
	"github.com/r2flows/pharma-vendor-oportunities/internal/handler"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/repository"
	"github.com/r2flows/pharma-vendor-oportunities/internal/router"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"
	"github.com/r2flows/pharma-vendor-oportunities/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Reference data source ────────────────────────────────────────────────
	var (
		db     *gorm.DB
		fuente service.FuenteDatos
	)
	switch cfg.FuenteDatos {
	case "postgres":
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		if err := infra.RunMigrations(db, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		fuente = repository.NewReferenciaRepository(db)
	case "csv":
		fuente = infra.NewFuenteCSV(cfg.CSVDir)
	default:
		log.Fatal().Str("fuente", cfg.FuenteDatos).Msg("FUENTE_DATOS must be csv or postgres")
	}

	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig(fuente.Nombre()))
	svc := service.NewConciliacionService(fuente, breaker, service.Opciones{
		Conciliacion: conciliacion.Opciones{
			TokenNacional:    cfg.TokenNacional,
			Tolerancia:       decimal.NewFromFloat(cfg.Tolerancia),
			ConvertidoLegacy: cfg.ConvertidoLegacy,
		},
		UmbralInsights: decimal.NewFromFloat(cfg.UmbralInsights),
	})

	// First result before serving; a failure here leaves queries on 503
	// until the next successful recalculation.
	if _, err := svc.Recalcular(ctx); err != nil {
		log.Error().Err(err).Msg("initial reconciliation failed")
	}

	// ── Async jobs ───────────────────────────────────────────────────────────
	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	var (
		rdb  *redis.Client
		jobs handler.Encolador
	)
	rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, async jobs disabled")
		rdb = nil
	} else {
		mailer := infra.NewMailer(cfg)
		jobs = worker.NewDispatcher(rdb)
		pool := worker.NewPool(rdb, map[string]worker.Handler{
			worker.JobRecalculo: worker.NewRecalculoWorker(svc).Process,
			worker.JobReporte:   worker.NewReporteWorker(svc, mailer, cfg.PDFStoragePath).Process,
		})
		pool.Start(ctx, cfg.WorkerPoolSize)
	}

	worker.StartRefrescoCron(ctx, worker.RefrescoCronConfig{
		Servicio:  svc,
		CB:        breaker,
		Intervalo: time.Duration(cfg.RefrescoMinutos) * time.Minute,
	})

	r := router.New(cfg, router.Dependencias{
		DB:       db,
		RDB:      rdb,
		Servicio: svc,
		Jobs:     jobs,
		Breaker:  breaker,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("fuente", fuente.Nombre()).Msgf("conciliacion API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

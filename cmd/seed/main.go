// cmd/seed/main.go: loads a CSV snapshot into Postgres, replacing the
// reference tables.
// Uso: go run ./cmd/seed -dir data
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/config"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	dir := flag.String("dir", cfg.CSVDir, "directory with the CSV exports")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	datos, err := infra.NewFuenteCSV(*dir).Cargar(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to read csv")
	}
	for _, msg := range datos.Advertencias {
		log.Warn().Msg(msg)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if err := repository.NewReferenciaRepository(db).Reemplazar(ctx, datos); err != nil {
		log.Fatal().Err(err).Msg("failed to replace reference tables")
	}
	ev := log.Info()
	for tabla, n := range datos.Filas() {
		ev = ev.Int(tabla, n)
	}
	ev.Msg("reference data loaded")
}

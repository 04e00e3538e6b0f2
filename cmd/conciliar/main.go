// cmd/conciliar/main.go: runs one reconciliation over a CSV snapshot and
// prints the per-POS output as JSON, without the API.
// Uso: go run ./cmd/conciliar -dir data -pos 12
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/config"
	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type salidaPOS struct {
	Resumen     *dto.ResumenPOSResponse  `json:"resumen"`
	Vendors     *dto.VendorsResponse     `json:"vendors"`
	Insights    *dto.InsightsResponse    `json:"insights"`
	Fabricantes *dto.FabricantesResponse `json:"fabricantes"`
}

type salida struct {
	Estado        *dto.EstadoResponse `json:"estado"`
	PuntosDeVenta []salidaPOS         `json:"puntos_de_venta"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	dir := flag.String("dir", cfg.CSVDir, "directory with the CSV exports")
	pos := flag.Int64("pos", 0, "only this POS (0 = all)")
	umbral := flag.Float64("umbral", cfg.UmbralInsights, "insights threshold")
	legacy := flag.Bool("legacy", cfg.ConvertidoLegacy, "merge the legacy converted table")
	flag.Parse()

	ctx := context.Background()
	svc := service.NewConciliacionService(infra.NewFuenteCSV(*dir), nil, service.Opciones{
		Conciliacion: conciliacion.Opciones{
			TokenNacional:    cfg.TokenNacional,
			Tolerancia:       decimal.NewFromFloat(cfg.Tolerancia),
			ConvertidoLegacy: *legacy,
		},
		UmbralInsights: decimal.NewFromFloat(*umbral),
	})

	estado, err := svc.Recalcular(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation failed")
	}

	var puntos []int64
	if *pos != 0 {
		puntos = []int64{*pos}
	} else {
		lista, err := svc.ListarPOS(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("list points of sale")
		}
		for _, p := range lista.Data {
			puntos = append(puntos, p.PointOfSaleID)
		}
	}

	out := salida{Estado: estado, PuntosDeVenta: make([]salidaPOS, 0, len(puntos))}
	for _, p := range puntos {
		var s salidaPOS
		if s.Resumen, err = svc.Resumen(ctx, p); err != nil {
			log.Fatal().Err(err).Int64("pos", p).Msg("summary")
		}
		if s.Vendors, err = svc.Vendors(ctx, p); err != nil {
			log.Fatal().Err(err).Int64("pos", p).Msg("vendors")
		}
		if s.Insights, err = svc.Insights(ctx, p, nil); err != nil {
			log.Fatal().Err(err).Int64("pos", p).Msg("insights")
		}
		if s.Fabricantes, err = svc.Fabricantes(ctx, p); err != nil {
			log.Fatal().Err(err).Int64("pos", p).Msg("manufacturers")
		}
		out.PuntosDeVenta = append(out.PuntosDeVenta, s)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode output")
	}
}

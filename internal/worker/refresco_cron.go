package worker

// refresco_cron.go
// Background goroutine that periodically reloads the reference data and
// reruns the reconciliation. Unchanged data is detected by the service, so a
// tick over the same snapshot is cheap. Uses the Circuit Breaker to avoid
// hammering a downed data source.

import (
	"context"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"

	"github.com/rs/zerolog/log"
)

// RefrescoCronConfig holds all dependencies for the refresh goroutine.
type RefrescoCronConfig struct {
	Servicio  Recalculador
	CB        *infra.CircuitBreaker
	Intervalo time.Duration
}

// StartRefrescoCron launches a background goroutine that ticks every
// Intervalo and recalculates through the service. A zero interval disables it.
// It respects the context for graceful shutdown.
func StartRefrescoCron(ctx context.Context, cfg RefrescoCronConfig) {
	if cfg.Intervalo <= 0 {
		log.Info().Msg("refresco_cron: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("refresco_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("refresco_cron: shutting down")
				return
			case <-ticker.C:
				refrescar(ctx, cfg)
			}
		}
	}()
}

// refrescar runs one tick. Returns whether a recalculation was attempted.
func refrescar(ctx context.Context, cfg RefrescoCronConfig) bool {
	// If CB is open, skip entirely
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("refresco_cron: circuit breaker is open, skipping tick")
		return false
	}
	estado, err := cfg.Servicio.Recalcular(ctx)
	if err != nil {
		log.Error().Err(err).Msg("refresco_cron: recalculation failed")
		return true
	}
	if !estado.Reutilizado {
		log.Info().Str("huella", estado.Huella).Msg("refresco_cron: reference data changed, result refreshed")
	}
	return true
}

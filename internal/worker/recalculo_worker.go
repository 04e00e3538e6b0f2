package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	"github.com/rs/zerolog/log"
)

// Recalculador reloads the reference data and reruns the reconciliation.
type Recalculador interface {
	Recalcular(ctx context.Context) (*dto.EstadoResponse, error)
}

// RecalculoWorker processes recalculation jobs from QueueConciliacion.
type RecalculoWorker struct {
	svc Recalculador
}

func NewRecalculoWorker(svc Recalculador) *RecalculoWorker {
	return &RecalculoWorker{svc: svc}
}

// Process runs one recalculation. An open breaker or an empty result will not
// change on retry.
func (w *RecalculoWorker) Process(ctx context.Context, _ json.RawMessage) error {
	estado, err := w.svc.Recalcular(ctx)
	switch {
	case errors.Is(err, infra.ErrCircuitOpen), errors.Is(err, service.ErrResultadoVacio):
		return Permanente(err)
	case err != nil:
		return err
	}
	log.Info().
		Str("huella", estado.Huella).
		Bool("reutilizado", estado.Reutilizado).
		Int("puntos_de_venta", estado.PuntosDeVenta).
		Msg("recalculo_worker: done")
	return nil
}

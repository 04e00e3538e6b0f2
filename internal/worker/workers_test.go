package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubServicio struct {
	estado   *dto.EstadoResponse
	err      error
	llamadas int
}

func (s *stubServicio) Recalcular(context.Context) (*dto.EstadoResponse, error) {
	s.llamadas++
	return s.estado, s.err
}

func (s *stubServicio) Reporte(_ context.Context, pos int64) (*infra.ReportePOS, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &infra.ReportePOS{
		Resumen:    conciliacion.ResumenPOS{PointOfSaleID: pos, TotalCompras: decimal.NewFromInt(100)},
		Umbral:     "20000.00",
		GeneradoEn: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}, nil
}

type stubMailer struct {
	configurado bool
	err         error
	to, subject string
	adjunto     string
}

func (m *stubMailer) Configurado() bool { return m.configurado }

func (m *stubMailer) EnviarReporte(to, subject, _ string, pdfPath string) error {
	m.to, m.subject, m.adjunto = to, subject, pdfPath
	return m.err
}

func payload(t *testing.T, p ReporteJobPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

// ── ReporteWorker ─────────────────────────────────────────────────────────────

func TestReporteWorker_EnviaPDF(t *testing.T) {
	mailer := &stubMailer{configurado: true}
	w := NewReporteWorker(&stubServicio{}, mailer, t.TempDir())

	err := w.Process(context.Background(), payload(t, ReporteJobPayload{PointOfSaleID: 5, ToEmail: "compras@farmacia.mx"}))
	require.NoError(t, err)

	assert.Equal(t, "compras@farmacia.mx", mailer.to)
	assert.Equal(t, "Oportunidades de compra - POS 5", mailer.subject)
	info, err := os.Stat(mailer.adjunto)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReporteWorker_FallosPermanentes(t *testing.T) {
	dir := t.TempDir()
	casos := []struct {
		nombre string
		w      *ReporteWorker
		raw    json.RawMessage
	}{
		{"payload invalido", NewReporteWorker(&stubServicio{}, &stubMailer{configurado: true}, dir), json.RawMessage(`[1]`)},
		{"sin email", NewReporteWorker(&stubServicio{}, &stubMailer{configurado: true}, dir), payload(t, ReporteJobPayload{PointOfSaleID: 1})},
		{"smtp sin configurar", NewReporteWorker(&stubServicio{}, &stubMailer{}, dir), payload(t, ReporteJobPayload{PointOfSaleID: 1, ToEmail: "a@b.mx"})},
		{"pos inexistente", NewReporteWorker(&stubServicio{err: service.ErrPOSNoEncontrado}, &stubMailer{configurado: true}, dir), payload(t, ReporteJobPayload{PointOfSaleID: 1, ToEmail: "a@b.mx"})},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			err := c.w.Process(context.Background(), c.raw)
			assert.ErrorIs(t, err, errPermanente)
		})
	}
}

func TestReporteWorker_ErrorSMTPSeReintenta(t *testing.T) {
	w := NewReporteWorker(&stubServicio{}, &stubMailer{configurado: true, err: errors.New("421 try later")}, t.TempDir())

	err := w.Process(context.Background(), payload(t, ReporteJobPayload{PointOfSaleID: 2, ToEmail: "a@b.mx", Subject: "x"}))

	require.Error(t, err)
	assert.NotErrorIs(t, err, errPermanente)
}

// ── RecalculoWorker ───────────────────────────────────────────────────────────

func TestRecalculoWorker(t *testing.T) {
	ok := &stubServicio{estado: &dto.EstadoResponse{Huella: "abc", PuntosDeVenta: 3}}
	require.NoError(t, NewRecalculoWorker(ok).Process(context.Background(), nil))

	vacio := &stubServicio{err: service.ErrResultadoVacio}
	assert.ErrorIs(t, NewRecalculoWorker(vacio).Process(context.Background(), nil), errPermanente)

	abierto := &stubServicio{err: infra.ErrCircuitOpen}
	assert.ErrorIs(t, NewRecalculoWorker(abierto).Process(context.Background(), nil), errPermanente)

	caido := &stubServicio{err: errors.New("connection reset")}
	err := NewRecalculoWorker(caido).Process(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errPermanente)
}

// ── Refresh cron ──────────────────────────────────────────────────────────────

func TestRefrescar_SaltaConCircuitoAbierto(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "test", FailureThreshold: 1})
	_ = cb.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	require.Equal(t, infra.CBOpen, cb.State())

	svc := &stubServicio{estado: &dto.EstadoResponse{}}
	assert.False(t, refrescar(context.Background(), RefrescoCronConfig{Servicio: svc, CB: cb}))
	assert.Equal(t, 0, svc.llamadas)
}

func TestRefrescar_Recalcula(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig("test"))
	svc := &stubServicio{estado: &dto.EstadoResponse{Reutilizado: true}}

	assert.True(t, refrescar(context.Background(), RefrescoCronConfig{Servicio: svc, CB: cb}))
	assert.Equal(t, 1, svc.llamadas)

	svc.err = errors.New("boom")
	assert.True(t, refrescar(context.Background(), RefrescoCronConfig{Servicio: svc}))
	assert.Equal(t, 2, svc.llamadas)
}

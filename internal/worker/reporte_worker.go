package worker

// reporte_worker.go
// Processes report jobs from QueueEmail: renders the PDF report of one POS
// and mails it as an attachment.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	"github.com/rs/zerolog/log"
)

// ReporteJobPayload is the job envelope sent to QueueEmail.
type ReporteJobPayload struct {
	PointOfSaleID int64  `json:"point_of_sale_id"`
	ToEmail       string `json:"to_email"`
	Subject       string `json:"subject"`
}

// Reportero yields the report data of a POS.
type Reportero interface {
	Reporte(ctx context.Context, pos int64) (*infra.ReportePOS, error)
}

// Enviador sends a message with one attachment. Satisfied by *infra.Mailer.
type Enviador interface {
	Configurado() bool
	EnviarReporte(to, subject, body, pdfPath string) error
}

// ReporteWorker processes report jobs.
type ReporteWorker struct {
	reportes       Reportero
	mailer         Enviador
	pdfStoragePath string
}

func NewReporteWorker(reportes Reportero, mailer Enviador, pdfStoragePath string) *ReporteWorker {
	return &ReporteWorker{reportes: reportes, mailer: mailer, pdfStoragePath: pdfStoragePath}
}

// Process builds the PDF and sends it. Invalid payloads, unknown POS and a
// missing SMTP setup are permanent failures.
func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanente(fmt.Errorf("reporte_worker: invalid payload: %w", err))
	}
	if payload.ToEmail == "" || payload.PointOfSaleID == 0 {
		return Permanente(errors.New("reporte_worker: payload needs point_of_sale_id and to_email"))
	}
	if !w.mailer.Configurado() {
		return Permanente(errors.New("reporte_worker: SMTP is not configured"))
	}

	reporte, err := w.reportes.Reporte(ctx, payload.PointOfSaleID)
	if errors.Is(err, service.ErrPOSNoEncontrado) {
		return Permanente(err)
	}
	if err != nil {
		return err
	}

	path, err := infra.GuardarReportePOS(*reporte, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("reporte_worker: render pdf: %w", err)
	}

	subject := payload.Subject
	if subject == "" {
		subject = fmt.Sprintf("Oportunidades de compra - POS %d", payload.PointOfSaleID)
	}
	body := fmt.Sprintf("Adjuntamos el reporte de oportunidades del punto de venta %d.", payload.PointOfSaleID)
	if err := w.mailer.EnviarReporte(payload.ToEmail, subject, body, path); err != nil {
		return fmt.Errorf("reporte_worker: send email: %w", err)
	}
	log.Info().Str("to", payload.ToEmail).Int64("pos", payload.PointOfSaleID).Msg("reporte_worker: report sent")
	return nil
}

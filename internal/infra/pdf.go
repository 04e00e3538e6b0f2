package infra

// pdf.go renders the per-POS reconciliation report with go-pdf/fpdf:
//   - POS header (zone, country, totals)
//   - vendor opportunity table
//   - manufacturer attribution detail
//
// GuardarReportePOS writes it to storagePath/reporte_pos_{id}.pdf for the
// email worker; EscribirReportePOS streams it to an HTTP response.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"

	"github.com/go-pdf/fpdf"
)

// ReportePOS gathers what the report shows for one POS.
type ReportePOS struct {
	Resumen       conciliacion.ResumenPOS
	Oportunidades []conciliacion.FilaOportunidad
	Atribucion    conciliacion.AtribucionPOS
	Umbral        string
	GeneradoEn    time.Time
}

// GuardarReportePOS renders the report into storagePath and returns the
// file path.
func GuardarReportePOS(r ReportePOS, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("reporte_pos_%d.pdf", r.Resumen.PointOfSaleID))

	pdf := construirReporte(r)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// EscribirReportePOS renders the report into w.
func EscribirReportePOS(w io.Writer, r ReportePOS) error {
	pdf := construirReporte(r)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func construirReporte(r ReportePOS) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(fmt.Sprintf("Punto de venta %d", r.Resumen.PointOfSaleID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Zona: %s  |  País: %s", valorOGuion(r.Resumen.GeoZona), r.Resumen.Pais)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, r.GeneradoEn.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	filaClaveValor(pdf, tr, contentW, "Total comprado", "$"+r.Resumen.TotalCompras.StringFixed(2))
	filaClaveValor(pdf, tr, contentW, "Órdenes", strconv.Itoa(r.Resumen.NumeroOrdenes))
	filaClaveValor(pdf, tr, contentW, "Promedio por orden", "$"+r.Resumen.PromedioPorOrden.StringFixed(2))
	p := r.Resumen.Productos
	filaClaveValor(pdf, tr, contentW, "Productos con alternativa",
		fmt.Sprintf("%d de %d (%s%%)", p.ProductosEnInterseccion, p.ProductosEnPedidos, p.PorcentajeInterseccion.StringFixed(1)))
	filaClaveValor(pdf, tr, contentW, "Ahorro potencial",
		fmt.Sprintf("$%s (%s%%)", p.AhorroPotencial.StringFixed(2), p.PorcentajeAhorro.StringFixed(1)))
	pdf.Ln(4)

	// ── Vendor opportunities ──────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Oportunidades por vendor", "", 1, "L", false, 0, "")

	cols := []float64{contentW * 0.14, contentW * 0.22, contentW * 0.22, contentW * 0.2, contentW * 0.22}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range []string{"Vendor", "Potencial", "Convertido", "Compra mín.", "Status"} {
		pdf.CellFormat(cols[i], 6, tr(h), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, o := range r.Oportunidades {
		vendor := strconv.FormatInt(o.VendorID, 10)
		if o.EsFabricante {
			vendor += " (DM)"
		}
		pdf.CellFormat(cols[0], 5, vendor, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, "$"+o.ValorPotencial.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 5, "$"+o.ValorConvertido.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 5, "$"+o.CompraMinima.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 5, tr(o.DescripcionStatus), "", 1, "L", false, 0, "")
	}
	if len(r.Oportunidades) == 0 {
		pdf.CellFormat(contentW, 5, "Sin oportunidades", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Manufacturers ─────────────────────────────────────────────────────────
	if len(r.Atribucion.Fabricantes) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, "Compras a fabricantes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, f := range r.Atribucion.Fabricantes {
			nombre := f.Nombre
			if nombre == "" {
				nombre = strconv.FormatInt(f.DrugManufacturerID, 10)
			}
			linea := fmt.Sprintf("%s: comprado $%s, ganadoras $%s (%s%%)",
				nombre, f.TotalComprado.StringFixed(2), f.ValorComprasGanadoras.StringFixed(2), f.PorcentajeGanadoras.StringFixed(1))
			pdf.CellFormat(contentW, 5, tr(linea), "", 1, "L", false, 0, "")
		}
		if r.Atribucion.Metodo != conciliacion.MetodoIndividual {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.CellFormat(contentW, 4, tr("Valores ganadores redistribuidos: "+string(r.Atribucion.Metodo)), "", 1, "L", false, 0, "")
		}
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	if r.Umbral != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4, tr("Umbral de insights: $"+r.Umbral), "", 1, "L", false, 0, "")
	}
	return pdf
}

func filaClaveValor(pdf *fpdf.Fpdf, tr func(string) string, ancho float64, clave, valor string) {
	pdf.CellFormat(ancho*0.45, 5, tr(clave+":"), "", 0, "L", false, 0, "")
	pdf.CellFormat(ancho*0.55, 5, tr(valor), "", 1, "L", false, 0, "")
}

func valorOGuion(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

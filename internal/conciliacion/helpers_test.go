package conciliacion_test

import (
	"testing"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func pedido(orden, pos, vendor, producto int64, unidades int, pagado string) model.Pedido {
	return model.Pedido{
		OrderID:         orden,
		PointOfSaleID:   pos,
		VendorID:        vendor,
		SuperCatalogID:  producto,
		UnidadesPedidas: unidades,
		PrecioMinimo:    dec(pagado),
	}
}

func entrada(vendor, producto int64, nombre, base, pct string) model.EntradaCatalogo {
	e := model.EntradaCatalogo{
		VendorID:       vendor,
		SuperCatalogID: producto,
		Name:           nombre,
		BasePrice:      dec(base),
	}
	if pct != "" {
		e.Percentage = dec(pct)
	}
	return e
}

// datosDePrueba covers two POS: POS 1 in Jalisco buys from manufacturer 900
// (linked to vendor 12), POS 2 in CDMX buys from manufacturer 901 (linked to
// vendor 13) and from 902, whose product has no catalog coverage.
func datosDePrueba() *conciliacion.DatosReferencia {
	return &conciliacion.DatosReferencia{
		Pedidos: []model.Pedido{
			pedido(1, 1, 900, 100, 10, "60"),
			pedido(1, 1, 900, 200, 1, "200"),
			pedido(2, 2, 901, 100, 4, "60"),
			pedido(2, 2, 901, 200, 2, "250"),
			pedido(3, 2, 902, 300, 5, "10"),
			pedido(4, 2, 901, 100, 0, "60"),
		},
		Catalogo: []model.EntradaCatalogo{
			entrada(10, 100, "México", "50", ""),
			entrada(11, 100, "México", "40", "25"),
			entrada(12, 100, "Jalisco", "45", "0"),
			entrada(10, 200, "México", "200", "10"),
			entrada(13, 200, "CDMX", "210", ""),
		},
		Relaciones: []model.RelacionVendorPOS{
			{VendorID: 10, PointOfSaleID: 1, Status: intPtr(model.StatusActivo)},
			{VendorID: 12, PointOfSaleID: 1, Status: intPtr(model.StatusPendiente)},
			{VendorID: 13, PointOfSaleID: 2, Status: intPtr(model.StatusRechazado)},
		},
		Fabricantes: []model.VinculoFabricante{
			{VendorID: 12, Name: "Laboratorio Doce", DrugManufacturerID: 900},
			{VendorID: 13, Name: "Laboratorio Trece", DrugManufacturerID: 901},
		},
		ComprasMinimas: []model.CompraMinima{
			{VendorID: 12, Name: "Jalisco", MinPurchase: dec("1500")},
		},
		Direcciones: []model.DireccionPOS{
			{PointOfSaleID: 1, Address: "Calle 1, Col. Centro, Guadalajara, Jal., México"},
			{PointOfSaleID: 2, Address: "Av. Reforma 5, CDMX, Méx., México"},
		},
	}
}

func vendorsDe(filas []conciliacion.FilaOportunidad) []int64 {
	out := make([]int64, 0, len(filas))
	for _, f := range filas {
		out = append(out, f.VendorID)
	}
	return out
}

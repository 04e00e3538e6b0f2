package conciliacion

import (
	"cmp"
	"slices"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

// OrigenOportunidad tells which merge step emitted a vendor row.
type OrigenOportunidad string

const (
	OrigenFabricante OrigenOportunidad = "fabricante"
	OrigenCatalogo   OrigenOportunidad = "catalogo"
	OrigenLegacy     OrigenOportunidad = "convertido_legacy"
)

// FilaOportunidad is the consolidated view of one vendor at one POS.
type FilaOportunidad struct {
	PointOfSaleID           int64
	VendorID                int64
	ValorPotencial          decimal.Decimal
	ValorConvertido         decimal.Decimal
	CompraMinima            decimal.Decimal
	Status                  *int
	DescripcionStatus       string
	EsFabricante            bool
	TotalCompradoFabricante decimal.Decimal
	Origen                  OrigenOportunidad
}

type claveMinimo struct {
	vendor int64
	zona   string
}

// IndiceComprasMinimas looks up the minimum purchase of a vendor in a zone.
type IndiceComprasMinimas struct {
	monto map[claveMinimo]decimal.Decimal
}

func NuevoIndiceComprasMinimas(minimos []model.CompraMinima) IndiceComprasMinimas {
	ix := IndiceComprasMinimas{monto: make(map[claveMinimo]decimal.Decimal, len(minimos))}
	for _, m := range minimos {
		k := claveMinimo{vendor: m.VendorID, zona: m.Name}
		if _, ok := ix.monto[k]; ok {
			continue
		}
		ix.monto[k] = m.MinPurchase
	}
	return ix
}

// Monto returns the minimum purchase, zero when none is registered.
func (ix IndiceComprasMinimas) Monto(vendorID int64, zona string) decimal.Decimal {
	if m, ok := ix.monto[claveMinimo{vendor: vendorID, zona: zona}]; ok {
		return m
	}
	return decimal.Zero
}

// ConvertidoLegacy is a real-order total to a linked vendor, computed
// straight from the orders without going through classification.
type ConvertidoLegacy struct {
	PointOfSaleID int64
	VendorID      int64
	Valor         decimal.Decimal
}

// CalcularConvertidoLegacy sums, per (POS, vendor), the orders placed with
// vendors that appear in the manufacturer link table.
func CalcularConvertidoLegacy(pedidos []model.Pedido, vinculos []model.VinculoFabricante) []ConvertidoLegacy {
	vinculados := make(map[int64]struct{}, len(vinculos))
	for _, v := range vinculos {
		if v.VendorID != 0 {
			vinculados[v.VendorID] = struct{}{}
		}
	}
	idx := make(map[claveVendorPOS]int)
	var out []ConvertidoLegacy
	for _, p := range pedidos {
		if _, ok := vinculados[p.VendorID]; !ok {
			continue
		}
		k := claveVendorPOS{vendor: p.VendorID, pos: p.PointOfSaleID}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, ConvertidoLegacy{PointOfSaleID: p.PointOfSaleID, VendorID: p.VendorID, Valor: decimal.Zero})
		}
		out[i].Valor = out[i].Valor.Add(p.Valor())
	}
	return out
}

// AgregarOportunidades merges attribution, cheapest rows and (optionally)
// the legacy converted table into one row per vendor. First match wins:
// manufacturer vendors, then cheapest vendors, then legacy-only vendors.
// Rows are sorted by potential value descending, vendor id ascending.
func AgregarOportunidades(
	pos int64,
	zona string,
	clasificadas []FilaClasificada,
	atribucion AtribucionPOS,
	legacy []ConvertidoLegacy,
	relaciones IndiceRelaciones,
	minimos IndiceComprasMinimas,
) []FilaOportunidad {
	var ordenCatalogo []int64
	bruto := make(map[int64]decimal.Decimal)
	for _, f := range clasificadas {
		if !f.Clasificacion.EsGanadora() || f.VendorID == 0 {
			continue
		}
		if _, ok := bruto[f.VendorID]; !ok {
			ordenCatalogo = append(ordenCatalogo, f.VendorID)
			bruto[f.VendorID] = decimal.Zero
		}
		bruto[f.VendorID] = bruto[f.VendorID].Add(f.PrecioTotalVendedor)
	}

	emitidos := make(map[int64]struct{})
	var filas []FilaOportunidad
	nueva := func(vendor int64, origen OrigenOportunidad) FilaOportunidad {
		emitidos[vendor] = struct{}{}
		status := relaciones.Status(vendor, pos)
		return FilaOportunidad{
			PointOfSaleID:           pos,
			VendorID:                vendor,
			ValorPotencial:          decimal.Zero,
			ValorConvertido:         decimal.Zero,
			CompraMinima:            minimos.Monto(vendor, zona),
			Status:                  status,
			DescripcionStatus:       model.DescripcionStatus(status),
			TotalCompradoFabricante: decimal.Zero,
			Origen:                  origen,
		}
	}

	ordenDM, convertido, comprado := atribucion.ConvertidoPorVendor()
	for _, vendor := range ordenDM {
		f := nueva(vendor, OrigenFabricante)
		f.EsFabricante = true
		f.ValorConvertido = convertido[vendor]
		f.TotalCompradoFabricante = comprado[vendor]
		f.ValorPotencial = decimal.Max(decimal.Zero, bruto[vendor].Sub(f.ValorConvertido))
		filas = append(filas, f)
	}

	for _, vendor := range ordenCatalogo {
		if _, ok := emitidos[vendor]; ok {
			continue
		}
		f := nueva(vendor, OrigenCatalogo)
		f.ValorPotencial = bruto[vendor]
		filas = append(filas, f)
	}

	for _, l := range legacy {
		if l.PointOfSaleID != pos {
			continue
		}
		if _, ok := emitidos[l.VendorID]; ok {
			continue
		}
		f := nueva(l.VendorID, OrigenLegacy)
		f.ValorConvertido = l.Valor
		filas = append(filas, f)
	}

	slices.SortStableFunc(filas, func(a, b FilaOportunidad) int {
		if c := b.ValorPotencial.Cmp(a.ValorPotencial); c != 0 {
			return c
		}
		return cmp.Compare(a.VendorID, b.VendorID)
	})
	return filas
}

// FiltrarInsights keeps the rows whose potential exceeds umbral.
func FiltrarInsights(filas []FilaOportunidad, umbral decimal.Decimal) []FilaOportunidad {
	var out []FilaOportunidad
	for _, f := range filas {
		if f.ValorPotencial.GreaterThan(umbral) {
			out = append(out, f)
		}
	}
	return out
}

// ResumenStatus aggregates opportunity rows sharing a status description.
type ResumenStatus struct {
	DescripcionStatus string
	Vendors           int
	ValorPotencial    decimal.Decimal
}

// ResumirPorStatus groups rows by status description, largest potential first.
func ResumirPorStatus(filas []FilaOportunidad) []ResumenStatus {
	idx := make(map[string]int)
	var out []ResumenStatus
	for _, f := range filas {
		i, ok := idx[f.DescripcionStatus]
		if !ok {
			i = len(out)
			idx[f.DescripcionStatus] = i
			out = append(out, ResumenStatus{DescripcionStatus: f.DescripcionStatus, ValorPotencial: decimal.Zero})
		}
		out[i].Vendors++
		out[i].ValorPotencial = out[i].ValorPotencial.Add(f.ValorPotencial)
	}
	slices.SortStableFunc(out, func(a, b ResumenStatus) int {
		if c := b.ValorPotencial.Cmp(a.ValorPotencial); c != 0 {
			return c
		}
		return cmp.Compare(a.DescripcionStatus, b.DescripcionStatus)
	})
	return out
}

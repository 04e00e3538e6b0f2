package conciliacion

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

// IndiceFabricantes resolves the drug-manufacturer identity seen on real
// orders to the catalog vendor credited for it.
type IndiceFabricantes struct {
	vendorPorDM map[int64]int64
	nombre      map[int64]string
}

// NuevoIndiceFabricantes indexes the manufacturer link table. Links with an
// unknown side are ignored; the first link of a manufacturer wins.
func NuevoIndiceFabricantes(vinculos []model.VinculoFabricante) IndiceFabricantes {
	ix := IndiceFabricantes{
		vendorPorDM: make(map[int64]int64, len(vinculos)),
		nombre:      make(map[int64]string, len(vinculos)),
	}
	for _, v := range vinculos {
		if v.VendorID == 0 || v.DrugManufacturerID == 0 {
			continue
		}
		if _, ok := ix.vendorPorDM[v.DrugManufacturerID]; ok {
			continue
		}
		ix.vendorPorDM[v.DrugManufacturerID] = v.VendorID
		ix.nombre[v.DrugManufacturerID] = v.Name
	}
	return ix
}

// Vacio reports whether no usable link exists.
func (ix IndiceFabricantes) Vacio() bool { return len(ix.vendorPorDM) == 0 }

// Vendor returns the catalog vendor linked to a manufacturer.
func (ix IndiceFabricantes) Vendor(dmID int64) (int64, bool) {
	v, ok := ix.vendorPorDM[dmID]
	return v, ok
}

// MetodoAtribucion records how winning values were settled for a POS.
type MetodoAtribucion string

const (
	MetodoIndividual   MetodoAtribucion = "individual"
	MetodoProporcional MetodoAtribucion = "proporcional"
	MetodoEquitativo   MetodoAtribucion = "equitativo"
)

// AtribucionFabricante is the attribution of one manufacturer at one POS.
type AtribucionFabricante struct {
	DrugManufacturerID    int64
	VendorID              int64
	Nombre                string
	TotalComprado         decimal.Decimal
	PorcentajeCompras     decimal.Decimal // share of the POS total purchases
	ValorIndividual       decimal.Decimal // winning value before settlement
	ValorComprasGanadoras decimal.Decimal
	PorcentajeGanadoras   decimal.Decimal // winning value over total purchased
}

// AtribucionPOS groups the manufacturer attribution of one POS.
type AtribucionPOS struct {
	PointOfSaleID  int64
	Fabricantes    []AtribucionFabricante
	ValorAgregado  decimal.Decimal
	SumaIndividual decimal.Decimal
	Metodo         MetodoAtribucion
}

// ConvertidoPorVendor sums the settled winning value per credited vendor.
// Vendors are returned in the order they first appear.
func (a AtribucionPOS) ConvertidoPorVendor() ([]int64, map[int64]decimal.Decimal, map[int64]decimal.Decimal) {
	var orden []int64
	convertido := make(map[int64]decimal.Decimal)
	comprado := make(map[int64]decimal.Decimal)
	for _, f := range a.Fabricantes {
		if _, ok := convertido[f.VendorID]; !ok {
			orden = append(orden, f.VendorID)
			convertido[f.VendorID] = decimal.Zero
			comprado[f.VendorID] = decimal.Zero
		}
		convertido[f.VendorID] = convertido[f.VendorID].Add(f.ValorComprasGanadoras)
		comprado[f.VendorID] = comprado[f.VendorID].Add(f.TotalComprado)
	}
	return orden, convertido, comprado
}

// AtribuirFabricantes computes, for one POS, how much was bought from each
// manufacturer and how much of it matched a cheapest catalog row of the
// linked vendor. pedidos and clasificadas must belong to pos.
//
// The sum of individual winning values is checked against the aggregate
// winning value, computed once per product. Outside tolerance the aggregate
// is redistributed proportionally, or split equally when no individual value
// exists, and a warning is returned.
func AtribuirFabricantes(pos int64, pedidos []model.Pedido, clasificadas []FilaClasificada, fabricantes IndiceFabricantes, tolerancia decimal.Decimal) (AtribucionPOS, *Advertencia) {
	res := AtribucionPOS{
		PointOfSaleID:  pos,
		ValorAgregado:  decimal.Zero,
		SumaIndividual: decimal.Zero,
		Metodo:         MetodoIndividual,
	}
	if fabricantes.Vacio() {
		return res, nil
	}

	totalPOS := decimal.Zero
	comprado := make(map[int64]decimal.Decimal)
	for _, p := range pedidos {
		totalPOS = totalPOS.Add(p.Valor())
		if _, ok := fabricantes.Vendor(p.VendorID); !ok {
			continue
		}
		comprado[p.VendorID] = comprado[p.VendorID].Add(p.Valor())
	}
	if len(comprado) == 0 {
		return res, nil
	}

	// Winning rows: cheapest rows bought from a manufacturer whose linked
	// vendor is the one quoting the cheapest price.
	individual := make(map[int64]decimal.Decimal, len(comprado))
	var ganadoras []FilaClasificada
	for _, f := range clasificadas {
		if !f.Clasificacion.EsGanadora() {
			continue
		}
		vendor, ok := fabricantes.Vendor(f.DrugManufacturerID)
		if !ok || vendor != f.VendorID {
			continue
		}
		individual[f.DrugManufacturerID] = individual[f.DrugManufacturerID].Add(f.PrecioTotalVendedor)
		ganadoras = append(ganadoras, f)
	}
	res.ValorAgregado = valorAgregado(ganadoras)

	dms := make([]int64, 0, len(comprado))
	for dm := range comprado {
		dms = append(dms, dm)
	}
	slices.SortFunc(dms, func(a, b int64) int {
		if c := comprado[b].Cmp(comprado[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	for _, dm := range dms {
		vendor, _ := fabricantes.Vendor(dm)
		ind := individual[dm]
		res.SumaIndividual = res.SumaIndividual.Add(ind)
		res.Fabricantes = append(res.Fabricantes, AtribucionFabricante{
			DrugManufacturerID: dm,
			VendorID:           vendor,
			Nombre:             fabricantes.nombre[dm],
			TotalComprado:      comprado[dm],
			PorcentajeCompras:  porcentaje(comprado[dm], totalPOS),
			ValorIndividual:    ind,
		})
	}

	res.liquidar(tolerancia)

	if res.Metodo == MetodoIndividual {
		return res, nil
	}
	return res, &Advertencia{
		PointOfSaleID: pos,
		Etapa:         EtapaAtribucion,
		Mensaje: fmt.Sprintf("winning values do not reconcile (individual %s, aggregate %s); applied %s distribution",
			res.SumaIndividual.StringFixed(2), res.ValorAgregado.StringFixed(2), res.Metodo),
	}
}

// liquidar settles the winning value of every manufacturer. Individual values
// stand when their sum is within tolerancia of the aggregate; otherwise the
// aggregate is split proportionally, or equally when no individual value
// exists.
func (a *AtribucionPOS) liquidar(tolerancia decimal.Decimal) {
	diferencia := a.SumaIndividual.Sub(a.ValorAgregado).Abs()
	switch {
	case diferencia.LessThanOrEqual(a.ValorAgregado.Mul(tolerancia)):
		for i := range a.Fabricantes {
			a.Fabricantes[i].ValorComprasGanadoras = a.Fabricantes[i].ValorIndividual
		}
	case a.SumaIndividual.IsPositive():
		a.Metodo = MetodoProporcional
		for i := range a.Fabricantes {
			a.Fabricantes[i].ValorComprasGanadoras = a.Fabricantes[i].ValorIndividual.
				Mul(a.ValorAgregado).Div(a.SumaIndividual)
		}
	case len(a.Fabricantes) > 0:
		a.Metodo = MetodoEquitativo
		parte := a.ValorAgregado.Div(decimal.NewFromInt(int64(len(a.Fabricantes))))
		for i := range a.Fabricantes {
			a.Fabricantes[i].ValorComprasGanadoras = parte
		}
	}

	for i := range a.Fabricantes {
		f := &a.Fabricantes[i]
		f.PorcentajeGanadoras = porcentaje(f.ValorComprasGanadoras, f.TotalComprado)
	}
}

// valorAgregado sums the winning value once per product, taking the first
// row after ordering by order and vendor.
func valorAgregado(ganadoras []FilaClasificada) decimal.Decimal {
	filas := slices.Clone(ganadoras)
	slices.SortStableFunc(filas, func(a, b FilaClasificada) int {
		if c := cmp.Compare(a.OrderID, b.OrderID); c != 0 {
			return c
		}
		return cmp.Compare(a.VendorID, b.VendorID)
	})
	vistos := make(map[int64]struct{}, len(filas))
	total := decimal.Zero
	for _, f := range filas {
		if _, ok := vistos[f.SuperCatalogID]; ok {
			continue
		}
		vistos[f.SuperCatalogID] = struct{}{}
		total = total.Add(f.PrecioTotalVendedor)
	}
	return total
}

func porcentaje(parte, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return parte.Div(total).Mul(cien)
}

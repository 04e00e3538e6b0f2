package conciliacion

import (
	"cmp"
	"slices"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

// PaisNoDisponible is reported when no order line carries a country.
const PaisNoDisponible = "No disponible"

// CompraVendor is what a POS actually bought from one order vendor.
type CompraVendor struct {
	VendorID      int64
	TotalComprado decimal.Decimal
	Porcentaje    decimal.Decimal
}

// AnalisisProductos compares the real orders of a POS with the cheapest
// catalog alternatives found for them.
type AnalisisProductos struct {
	ProductosEnPedidos      int
	ProductosEnInterseccion int
	PorcentajeInterseccion  decimal.Decimal
	ValorComprasReales      decimal.Decimal // real value of lines with a cheapest alternative
	ValorOportunidad        decimal.Decimal // same lines at the cheapest catalog price
	AhorroPotencial         decimal.Decimal
	PorcentajeAhorro        decimal.Decimal
}

// ResumenPOS is the headline view of one POS.
type ResumenPOS struct {
	PointOfSaleID    int64
	Pais             string
	GeoZona          string
	TotalCompras     decimal.Decimal
	NumeroOrdenes    int
	PromedioPorOrden decimal.Decimal
	ComprasPorVendor []CompraVendor
	Productos        AnalisisProductos
}

// ResumirPOS builds the summary of one POS from its order lines and
// classified rows.
func ResumirPOS(pos int64, zona string, pedidos []model.Pedido, clasificadas []FilaClasificada) ResumenPOS {
	r := ResumenPOS{
		PointOfSaleID:    pos,
		Pais:             PaisNoDisponible,
		GeoZona:          zona,
		TotalCompras:     decimal.Zero,
		PromedioPorOrden: decimal.Zero,
	}

	ordenes := make(map[int64]struct{})
	productos := make(map[int64]struct{})
	var ordenVendors []int64
	porVendor := make(map[int64]decimal.Decimal)
	for _, p := range pedidos {
		if r.Pais == PaisNoDisponible && p.Country != nil && *p.Country != "" {
			r.Pais = *p.Country
		}
		v := p.Valor()
		r.TotalCompras = r.TotalCompras.Add(v)
		ordenes[p.OrderID] = struct{}{}
		productos[p.SuperCatalogID] = struct{}{}
		if _, ok := porVendor[p.VendorID]; !ok {
			ordenVendors = append(ordenVendors, p.VendorID)
			porVendor[p.VendorID] = decimal.Zero
		}
		porVendor[p.VendorID] = porVendor[p.VendorID].Add(v)
	}
	r.NumeroOrdenes = len(ordenes)
	if r.NumeroOrdenes > 0 {
		r.PromedioPorOrden = r.TotalCompras.Div(decimal.NewFromInt(int64(r.NumeroOrdenes)))
	}

	for _, v := range ordenVendors {
		r.ComprasPorVendor = append(r.ComprasPorVendor, CompraVendor{
			VendorID:      v,
			TotalComprado: porVendor[v],
			Porcentaje:    porcentaje(porVendor[v], r.TotalCompras),
		})
	}
	slices.SortStableFunc(r.ComprasPorVendor, func(a, b CompraVendor) int {
		if c := b.TotalComprado.Cmp(a.TotalComprado); c != 0 {
			return c
		}
		return cmp.Compare(a.VendorID, b.VendorID)
	})

	r.Productos = analizarProductos(len(productos), clasificadas)
	return r
}

// analizarProductos counts each order line once, whatever the number of
// vendors tied at the cheapest price.
func analizarProductos(productosEnPedidos int, clasificadas []FilaClasificada) AnalisisProductos {
	a := AnalisisProductos{
		ProductosEnPedidos: productosEnPedidos,
		ValorComprasReales: decimal.Zero,
		ValorOportunidad:   decimal.Zero,
		AhorroPotencial:    decimal.Zero,
	}
	lineas := make(map[int]struct{})
	productos := make(map[int64]struct{})
	for _, f := range clasificadas {
		if !f.Clasificacion.EsGanadora() {
			continue
		}
		productos[f.SuperCatalogID] = struct{}{}
		if _, ok := lineas[f.Linea]; ok {
			continue
		}
		lineas[f.Linea] = struct{}{}
		a.ValorComprasReales = a.ValorComprasReales.Add(f.ValorPedido)
		a.ValorOportunidad = a.ValorOportunidad.Add(f.PrecioTotalVendedor)
	}
	a.ProductosEnInterseccion = len(productos)
	a.PorcentajeInterseccion = porcentaje(
		decimal.NewFromInt(int64(a.ProductosEnInterseccion)),
		decimal.NewFromInt(int64(productosEnPedidos)),
	)
	a.AhorroPotencial = a.ValorComprasReales.Sub(a.ValorOportunidad)
	a.PorcentajeAhorro = porcentaje(a.AhorroPotencial, a.ValorComprasReales)
	return a
}

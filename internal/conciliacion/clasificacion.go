package conciliacion

import "github.com/shopspring/decimal"

// Clasificacion labels which side of a purchase was cheapest.
type Clasificacion string

const (
	PrecioDrogueriaMinimo Clasificacion = "Precio droguería mínimo"
	PrecioVendorMinimo    Clasificacion = "Precio vendor mínimo"
	PrecioVendorNoMinimo  Clasificacion = "Precio vendor no mínimo"
)

// EsGanadora reports whether the catalog vendor of a row offered the cheapest
// price of its group.
func (c Clasificacion) EsGanadora() bool { return c == PrecioVendorMinimo }

// FilaClasificada is a resolved row with its classification attached.
type FilaClasificada struct {
	FilaResuelta
	Clasificacion        Clasificacion
	PrecioMinimoOrden    decimal.Decimal // cheapest price actually paid in the group
	PrecioVendedorMinimo decimal.Decimal // cheapest catalog price in the group
}

type claveGrupo struct {
	pos      int64
	orden    int64
	producto int64
}

// Clasificar labels each row by comparing, inside its (POS, order, product)
// group, the lowest paid price against the lowest catalog price. Every row
// tied at the catalog minimum is labeled cheapest. Output keeps input order.
func Clasificar(filas []FilaResuelta) []FilaClasificada {
	type minimos struct {
		pagado  decimal.Decimal
		catalog decimal.Decimal
	}
	grupos := make(map[claveGrupo]*minimos)
	for _, f := range filas {
		k := claveGrupo{pos: f.PointOfSaleID, orden: f.OrderID, producto: f.SuperCatalogID}
		m, ok := grupos[k]
		if !ok {
			grupos[k] = &minimos{pagado: f.PrecioMinimo, catalog: f.PrecioVendedor}
			continue
		}
		if f.PrecioMinimo.LessThan(m.pagado) {
			m.pagado = f.PrecioMinimo
		}
		if f.PrecioVendedor.LessThan(m.catalog) {
			m.catalog = f.PrecioVendedor
		}
	}

	out := make([]FilaClasificada, len(filas))
	for i, f := range filas {
		m := grupos[claveGrupo{pos: f.PointOfSaleID, orden: f.OrderID, producto: f.SuperCatalogID}]
		out[i] = FilaClasificada{
			FilaResuelta:         f,
			Clasificacion:        clasificar(m.pagado, m.catalog, f.PrecioVendedor),
			PrecioMinimoOrden:    m.pagado,
			PrecioVendedorMinimo: m.catalog,
		}
	}
	return out
}

func clasificar(pagado, minimoCatalogo, precio decimal.Decimal) Clasificacion {
	switch {
	case pagado.LessThan(minimoCatalogo):
		return PrecioDrogueriaMinimo
	case precio.Equal(minimoCatalogo):
		return PrecioVendorMinimo
	default:
		return PrecioVendorNoMinimo
	}
}

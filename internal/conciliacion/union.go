package conciliacion

import (
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

// FilaResuelta is an order line paired with one catalog vendor price, after
// dedup and with the vendor-POS relation status attached.
type FilaResuelta struct {
	Linea              int
	OrderID            int64
	PointOfSaleID      int64
	DrugManufacturerID int64 // vendor the order was actually placed with
	VendorID           int64 // catalog vendor offering the alternative price
	SuperCatalogID     int64
	GeoZona            string
	Tier               Tier
	UnidadesPedidas    int
	// PrecioMinimo is the unit price actually paid.
	PrecioMinimo        decimal.Decimal
	ValorPedido         decimal.Decimal
	BasePrice           decimal.Decimal
	Percentage          decimal.Decimal
	PrecioVendedor      decimal.Decimal
	PrecioTotalVendedor decimal.Decimal
	Status              *int
}

type claveVendorPOS struct {
	vendor int64
	pos    int64
}

// IndiceRelaciones looks up the relation status of a (vendor, POS) pair.
type IndiceRelaciones struct {
	status map[claveVendorPOS]*int
}

// NuevoIndiceRelaciones indexes the relation table. When a pair is repeated
// the first row wins.
func NuevoIndiceRelaciones(relaciones []model.RelacionVendorPOS) IndiceRelaciones {
	ix := IndiceRelaciones{status: make(map[claveVendorPOS]*int, len(relaciones))}
	for _, r := range relaciones {
		k := claveVendorPOS{vendor: r.VendorID, pos: r.PointOfSaleID}
		if _, ok := ix.status[k]; ok {
			continue
		}
		ix.status[k] = r.Status
	}
	return ix
}

// Status returns the relation status or nil when the pair has no relation or
// the relation carries no status.
func (ix IndiceRelaciones) Status(vendorID, posID int64) *int {
	return ix.status[claveVendorPOS{vendor: vendorID, pos: posID}]
}

type claveDedup struct {
	linea    int
	producto int64
	vendor   int64
	zona     string
}

// UnirYDeduplicar collapses candidates that share order line, product,
// catalog vendor and geo zone, keeping the first one (regional before
// national), and attaches the relation status of the catalog vendor.
func UnirYDeduplicar(candidatos []Candidato, relaciones IndiceRelaciones) []FilaResuelta {
	vistos := make(map[claveDedup]struct{}, len(candidatos))
	filas := make([]FilaResuelta, 0, len(candidatos))
	for _, c := range candidatos {
		k := claveDedup{
			linea:    c.Linea,
			producto: c.Pedido.SuperCatalogID,
			vendor:   c.Entrada.VendorID,
			zona:     c.GeoZona,
		}
		if _, ok := vistos[k]; ok {
			continue
		}
		vistos[k] = struct{}{}

		unidades := decimal.NewFromInt(int64(c.Pedido.UnidadesPedidas))
		filas = append(filas, FilaResuelta{
			Linea:               c.Linea,
			OrderID:             c.Pedido.OrderID,
			PointOfSaleID:       c.Pedido.PointOfSaleID,
			DrugManufacturerID:  c.Pedido.VendorID,
			VendorID:            c.Entrada.VendorID,
			SuperCatalogID:      c.Pedido.SuperCatalogID,
			GeoZona:             c.GeoZona,
			Tier:                c.Tier,
			UnidadesPedidas:     c.Pedido.UnidadesPedidas,
			PrecioMinimo:        c.Pedido.PrecioMinimo,
			ValorPedido:         c.Pedido.Valor(),
			BasePrice:           c.Entrada.BasePrice,
			Percentage:          c.Entrada.Percentage,
			PrecioVendedor:      c.PrecioVendedor,
			PrecioTotalVendedor: c.PrecioVendedor.Mul(unidades),
			Status:              relaciones.Status(c.Entrada.VendorID, c.Pedido.PointOfSaleID),
		})
	}
	return filas
}

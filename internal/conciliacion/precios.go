package conciliacion

import (
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

// Tier identifies which catalog tier produced a candidate price.
type Tier string

const (
	TierRegional Tier = "regional"
	TierNacional Tier = "nacional"
)

// Candidato is one catalog price that an order line could have been bought at.
type Candidato struct {
	Linea          int // index of the order line in the input slice
	Pedido         model.Pedido
	GeoZona        string
	Entrada        model.EntradaCatalogo
	Tier           Tier
	PrecioVendedor decimal.Decimal
}

type claveRegional struct {
	producto int64
	zona     string
}

// ResolverPrecios matches every order line with units > 0 against the
// national catalog (by product) and the regional catalog (by product and the
// POS geo zone). For each line the regional candidates come before the
// national ones. Lines without coverage yield no candidates.
func ResolverPrecios(pedidos []model.Pedido, catalogo []model.EntradaCatalogo, zonas map[int64]string, tokenNacional string) []Candidato {
	nacional := make(map[int64][]model.EntradaCatalogo)
	regional := make(map[claveRegional][]model.EntradaCatalogo)
	for _, e := range catalogo {
		if e.SuperCatalogID == 0 || e.VendorID == 0 {
			continue
		}
		if e.EsNacional(tokenNacional) {
			nacional[e.SuperCatalogID] = append(nacional[e.SuperCatalogID], e)
			continue
		}
		k := claveRegional{producto: e.SuperCatalogID, zona: e.Name}
		regional[k] = append(regional[k], e)
	}

	var candidatos []Candidato
	for i, p := range pedidos {
		if p.UnidadesPedidas <= 0 || p.SuperCatalogID == 0 {
			continue
		}
		zona := zonas[p.PointOfSaleID]
		if zona != "" {
			for _, e := range regional[claveRegional{producto: p.SuperCatalogID, zona: zona}] {
				candidatos = append(candidatos, nuevoCandidato(i, p, zona, e, TierRegional))
			}
		}
		for _, e := range nacional[p.SuperCatalogID] {
			candidatos = append(candidatos, nuevoCandidato(i, p, zona, e, TierNacional))
		}
	}
	return candidatos
}

func nuevoCandidato(linea int, p model.Pedido, zona string, e model.EntradaCatalogo, tier Tier) Candidato {
	return Candidato{
		Linea:          linea,
		Pedido:         p,
		GeoZona:        zona,
		Entrada:        e,
		Tier:           tier,
		PrecioVendedor: e.PrecioVendedor(),
	}
}

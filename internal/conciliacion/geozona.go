package conciliacion

import (
	"strings"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"
)

// abreviaturas maps the state abbreviations found in POS addresses to the
// zone names used by the regional catalog.
var abreviaturas = map[string]string{
	"B.C.S.": "Baja California Sur",
	"Qro.":   "Querétaro",
	"Jal.":   "Jalisco",
	"Pue.":   "Puebla",
	"Méx.":   "CDMX",
	"Oax.":   "Oaxaca",
	"Chih.":  "Chihuahua",
	"Coah.":  "Coahuila de Zaragoza",
	"Mich.":  "Michoacán de Ocampo",
	"Ver.":   "Veracruz de Ignacio de la Llave",
	"Chis.":  "Chiapas",
	"N.L.":   "Nuevo León",
	"Hgo.":   "Hidalgo",
	"Tlax.":  "Tlaxcala",
	"Tamps.": "Tamaulipas",
	"Yuc.":   "Yucatan",
	"Mor.":   "Morelos",
	"Sin.":   "Sinaloa",
	"S.L.P.": "San Luis Potosí",
	"Q.R.":   "Quintana Roo",
	"Dgo.":   "Durango",
	"B.C.":   "Baja California",
	"Gto.":   "Guanajuato",
	"Camp.":  "Campeche",
	"Tab.":   "Tabasco",
	"Son.":   "Sonora",
	"Gro.":   "Guerrero",
	"Zac.":   "Zacatecas",
	"Ags.":   "Aguascalientes",
	"Nay.":   "Nayarit",
}

// ExtraerGeoZona returns the second-to-last ", "-delimited segment of an
// address, or "" when the address has fewer than two segments.
func ExtraerGeoZona(address string) string {
	partes := strings.Split(address, ", ")
	if len(partes) < 2 {
		return ""
	}
	return partes[len(partes)-2]
}

// NormalizarGeoZona replaces a known state abbreviation with its full name.
// Exact matches only; anything else is returned unchanged.
func NormalizarGeoZona(zona string) string {
	if nombre, ok := abreviaturas[zona]; ok {
		return nombre
	}
	return zona
}

// ZonasPorPOS derives the normalized geo zone of every POS. The first address
// seen for a POS wins.
func ZonasPorPOS(direcciones []model.DireccionPOS) map[int64]string {
	zonas := make(map[int64]string, len(direcciones))
	for _, d := range direcciones {
		if d.PointOfSaleID == 0 {
			continue
		}
		if _, ok := zonas[d.PointOfSaleID]; ok {
			continue
		}
		zonas[d.PointOfSaleID] = NormalizarGeoZona(ExtraerGeoZona(d.Address))
	}
	return zonas
}

package conciliacion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"
)

// DatosReferencia is the reference bundle of one data load. It is built
// once by a loader and handed by pointer to every stage; nothing reloads or
// reassigns its tables afterwards.
type DatosReferencia struct {
	Pedidos        []model.Pedido
	Catalogo       []model.EntradaCatalogo
	Relaciones     []model.RelacionVendorPOS
	Fabricantes    []model.VinculoFabricante
	ComprasMinimas []model.CompraMinima
	Direcciones    []model.DireccionPOS
	// Advertencias carries what the loader had to skip or default.
	Advertencias []string
}

// Huella fingerprints the bundle contents. Two bundles with the same tables
// in the same order share a fingerprint.
func (d *DatosReferencia) Huella() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("fingerprint reference data: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Filas returns the row count per table, used in logs and status output.
func (d *DatosReferencia) Filas() map[string]int {
	return map[string]int{
		"pedidos":              len(d.Pedidos),
		"vendors_catalog":      len(d.Catalogo),
		"vendor_pos_relations": len(d.Relaciones),
		"vendors_dm":           len(d.Fabricantes),
		"minimum_purchase":     len(d.ComprasMinimas),
		"pos_address":          len(d.Direcciones),
	}
}

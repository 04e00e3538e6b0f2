package model

import "github.com/shopspring/decimal"

var cien = decimal.NewFromInt(100)

// EntradaCatalogo is one vendor price for a product. Name carries the tier
// token: the national token for country-wide prices, a geo zone name otherwise.
type EntradaCatalogo struct {
	ID             uint            `gorm:"primaryKey"`
	VendorID       int64           `gorm:"not null;index"`
	SuperCatalogID int64           `gorm:"not null;index"`
	Name           string          `gorm:"not null;index"`
	BasePrice      decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	// Percentage is the vendor markup. Absent values are stored as 0.
	Percentage decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
}

func (EntradaCatalogo) TableName() string { return "vendors_catalog" }

// PrecioVendedor is base_price × (1 + percentage/100).
func (e EntradaCatalogo) PrecioVendedor() decimal.Decimal {
	return e.BasePrice.Add(e.BasePrice.Mul(e.Percentage).Div(cien))
}

// EsNacional reports whether the entry belongs to the national tier.
func (e EntradaCatalogo) EsNacional(tokenNacional string) bool {
	return e.Name == tokenNacional
}

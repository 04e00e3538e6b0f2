package model

import "github.com/shopspring/decimal"

// CompraMinima is the minimum order amount a vendor requires in a geo zone.
// Display only; it never gates a computation.
type CompraMinima struct {
	ID          uint            `gorm:"primaryKey"`
	VendorID    int64           `gorm:"not null;index"`
	Name        string          `gorm:"not null"`
	MinPurchase decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

func (CompraMinima) TableName() string { return "minimum_purchase" }

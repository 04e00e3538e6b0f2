package model

import "github.com/shopspring/decimal"

// Pedido is one delivered order line as exported by the orders pipeline.
// PrecioMinimo is the unit price actually paid to the order vendor.
type Pedido struct {
	ID              uint            `gorm:"primaryKey"`
	OrderID         int64           `gorm:"not null;index"`
	PointOfSaleID   int64           `gorm:"not null;index"`
	VendorID        int64           `gorm:"not null;index"`
	SuperCatalogID  int64           `gorm:"not null;index"`
	UnidadesPedidas int             `gorm:"not null"`
	PrecioMinimo    decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	TotalCompra     decimal.Decimal `gorm:"type:decimal(16,4);not null"`
	Country         *string
}

func (Pedido) TableName() string { return "pedidos" }

// Valor returns the real-order value of the line. TotalCompra is derived at
// ingestion when the source does not carry it.
func (p Pedido) Valor() decimal.Decimal {
	if !p.TotalCompra.IsZero() {
		return p.TotalCompra
	}
	return p.PrecioMinimo.Mul(decimal.NewFromInt(int64(p.UnidadesPedidas)))
}

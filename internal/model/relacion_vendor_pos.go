package model

import "fmt"

const (
	StatusRechazado = 0
	StatusActivo    = 1
	StatusPendiente = 2
)

// SinStatus is the description used when a vendor has no relation with a POS.
const SinStatus = "Sin Status"

// RelacionVendorPOS is the commercial relation between a vendor and a POS.
// The table is looked up by the (vendor_id, point_of_sale_id) pair only.
type RelacionVendorPOS struct {
	ID            uint  `gorm:"primaryKey"`
	VendorID      int64 `gorm:"not null;index:idx_vendor_pos"`
	PointOfSaleID int64 `gorm:"not null;index:idx_vendor_pos"`
	Status        *int
}

func (RelacionVendorPOS) TableName() string { return "vendor_pos_relations" }

// DescripcionStatus turns a nullable status code into its display label.
func DescripcionStatus(status *int) string {
	if status == nil {
		return SinStatus
	}
	switch *status {
	case StatusRechazado:
		return "Rechazado"
	case StatusActivo:
		return "Activo"
	case StatusPendiente:
		return "Pendiente"
	default:
		return fmt.Sprintf("Status %d", *status)
	}
}

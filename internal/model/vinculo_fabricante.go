package model

// VinculoFabricante links a catalog vendor to the drug-manufacturer identity
// under which it receives real orders. DrugManufacturerID is compared against
// Pedido.VendorID; VendorID is the catalog identity that gets credited.
type VinculoFabricante struct {
	ID                 uint  `gorm:"primaryKey"`
	VendorID           int64 `gorm:"not null;index"`
	Name               string
	DrugManufacturerID int64 `gorm:"not null;index"`
}

func (VinculoFabricante) TableName() string { return "vendors_dm" }

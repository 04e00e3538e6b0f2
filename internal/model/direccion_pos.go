package model

// DireccionPOS is the raw postal address of a point of sale.
type DireccionPOS struct {
	PointOfSaleID int64  `gorm:"primaryKey;autoIncrement:false"`
	Address       string `gorm:"not null"`
}

func (DireccionPOS) TableName() string { return "pos_address" }

package repository

import (
	"context"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"gorm.io/gorm"
)

// RelacionRepository keeps insertion order so the first relation of a
// (vendor, POS) pair stays the one that wins.
type RelacionRepository interface {
	List(ctx context.Context) ([]model.RelacionVendorPOS, error)
	CreateBatch(ctx context.Context, filas []model.RelacionVendorPOS) error
}

type relacionRepo struct{ db *gorm.DB }

func NewRelacionRepository(db *gorm.DB) RelacionRepository { return &relacionRepo{db: db} }

func (r *relacionRepo) List(ctx context.Context) ([]model.RelacionVendorPOS, error) {
	var filas []model.RelacionVendorPOS
	err := r.db.WithContext(ctx).Order("id").Find(&filas).Error
	return filas, err
}

func (r *relacionRepo) CreateBatch(ctx context.Context, filas []model.RelacionVendorPOS) error {
	if len(filas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(filas, tamanoLote).Error
}

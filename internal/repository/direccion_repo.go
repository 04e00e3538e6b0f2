package repository

import (
	"context"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"gorm.io/gorm"
)

type DireccionRepository interface {
	List(ctx context.Context) ([]model.DireccionPOS, error)
	CreateBatch(ctx context.Context, filas []model.DireccionPOS) error
}

type direccionRepo struct{ db *gorm.DB }

func NewDireccionRepository(db *gorm.DB) DireccionRepository { return &direccionRepo{db: db} }

func (r *direccionRepo) List(ctx context.Context) ([]model.DireccionPOS, error) {
	var filas []model.DireccionPOS
	err := r.db.WithContext(ctx).Order("point_of_sale_id").Find(&filas).Error
	return filas, err
}

func (r *direccionRepo) CreateBatch(ctx context.Context, filas []model.DireccionPOS) error {
	if len(filas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(filas, tamanoLote).Error
}

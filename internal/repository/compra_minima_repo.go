package repository

import (
	"context"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"gorm.io/gorm"
)

type CompraMinimaRepository interface {
	List(ctx context.Context) ([]model.CompraMinima, error)
	CreateBatch(ctx context.Context, filas []model.CompraMinima) error
}

type compraMinimaRepo struct{ db *gorm.DB }

func NewCompraMinimaRepository(db *gorm.DB) CompraMinimaRepository { return &compraMinimaRepo{db: db} }

func (r *compraMinimaRepo) List(ctx context.Context) ([]model.CompraMinima, error) {
	var filas []model.CompraMinima
	err := r.db.WithContext(ctx).Order("id").Find(&filas).Error
	return filas, err
}

func (r *compraMinimaRepo) CreateBatch(ctx context.Context, filas []model.CompraMinima) error {
	if len(filas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(filas, tamanoLote).Error
}

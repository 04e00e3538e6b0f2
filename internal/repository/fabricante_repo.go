package repository

import (
	"context"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"gorm.io/gorm"
)

type FabricanteRepository interface {
	List(ctx context.Context) ([]model.VinculoFabricante, error)
	CreateBatch(ctx context.Context, filas []model.VinculoFabricante) error
}

type fabricanteRepo struct{ db *gorm.DB }

func NewFabricanteRepository(db *gorm.DB) FabricanteRepository { return &fabricanteRepo{db: db} }

func (r *fabricanteRepo) List(ctx context.Context) ([]model.VinculoFabricante, error) {
	var filas []model.VinculoFabricante
	err := r.db.WithContext(ctx).Order("id").Find(&filas).Error
	return filas, err
}

func (r *fabricanteRepo) CreateBatch(ctx context.Context, filas []model.VinculoFabricante) error {
	if len(filas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(filas, tamanoLote).Error
}

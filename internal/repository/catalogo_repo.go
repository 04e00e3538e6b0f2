package repository

import (
	"context"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"gorm.io/gorm"
)

// CatalogoRepository reads both catalog tiers; the tier is carried by Name.
type CatalogoRepository interface {
	List(ctx context.Context) ([]model.EntradaCatalogo, error)
	CreateBatch(ctx context.Context, filas []model.EntradaCatalogo) error
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) List(ctx context.Context) ([]model.EntradaCatalogo, error) {
	var filas []model.EntradaCatalogo
	err := r.db.WithContext(ctx).Order("id").Find(&filas).Error
	return filas, err
}

func (r *catalogoRepo) CreateBatch(ctx context.Context, filas []model.EntradaCatalogo) error {
	if len(filas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(filas, tamanoLote).Error
}

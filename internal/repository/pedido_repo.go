package repository

import (
	"context"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"gorm.io/gorm"
)

type PedidoRepository interface {
	List(ctx context.Context) ([]model.Pedido, error)
	CreateBatch(ctx context.Context, filas []model.Pedido) error
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) List(ctx context.Context) ([]model.Pedido, error) {
	var filas []model.Pedido
	err := r.db.WithContext(ctx).Order("id").Find(&filas).Error
	return filas, err
}

func (r *pedidoRepo) CreateBatch(ctx context.Context, filas []model.Pedido) error {
	if len(filas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(filas, tamanoLote).Error
}

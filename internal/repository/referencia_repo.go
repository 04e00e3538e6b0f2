package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const tamanoLote = 500

// ReferenciaRepository loads and replaces the whole reference bundle.
type ReferenciaRepository struct {
	db *gorm.DB
}

func NewReferenciaRepository(db *gorm.DB) *ReferenciaRepository {
	return &ReferenciaRepository{db: db}
}

// Nombre identifies the source in logs and status output.
func (r *ReferenciaRepository) Nombre() string { return "postgres" }

// Cargar reads the six reference tables concurrently. Optional tables that
// do not exist yield an empty table and a warning.
func (r *ReferenciaRepository) Cargar(ctx context.Context) (*conciliacion.DatosReferencia, error) {
	datos := &conciliacion.DatosReferencia{}
	migrator := r.db.WithContext(ctx).Migrator()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		filas, err := NewPedidoRepository(r.db).List(gctx)
		datos.Pedidos = filas
		return envolver("pedidos", err)
	})
	g.Go(func() error {
		filas, err := NewCatalogoRepository(r.db).List(gctx)
		datos.Catalogo = filas
		return envolver("vendors_catalog", err)
	})
	g.Go(func() error {
		filas, err := NewRelacionRepository(r.db).List(gctx)
		datos.Relaciones = filas
		return envolver("vendor_pos_relations", err)
	})
	g.Go(func() error {
		filas, err := NewDireccionRepository(r.db).List(gctx)
		datos.Direcciones = filas
		return envolver("pos_address", err)
	})

	// Existence is checked up front so the goroutines never touch the
	// warnings slice.
	if migrator.HasTable(&model.VinculoFabricante{}) {
		g.Go(func() error {
			filas, err := NewFabricanteRepository(r.db).List(gctx)
			datos.Fabricantes = filas
			return envolver("vendors_dm", err)
		})
	} else {
		datos.Advertencias = append(datos.Advertencias, "vendors_dm: table not found, using empty table")
	}
	if migrator.HasTable(&model.CompraMinima{}) {
		g.Go(func() error {
			filas, err := NewCompraMinimaRepository(r.db).List(gctx)
			datos.ComprasMinimas = filas
			return envolver("minimum_purchase", err)
		})
	} else {
		datos.Advertencias = append(datos.Advertencias, "minimum_purchase: table not found, using empty table")
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return datos, nil
}

// Reemplazar swaps the stored reference tables for the given bundle in one
// transaction. The bundle itself is not modified.
func (r *ReferenciaRepository) Reemplazar(ctx context.Context, datos *conciliacion.DatosReferencia) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{
			&model.Pedido{}, &model.EntradaCatalogo{}, &model.RelacionVendorPOS{},
			&model.VinculoFabricante{}, &model.CompraMinima{}, &model.DireccionPOS{},
		} {
			if err := global.Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}

		if err := NewPedidoRepository(tx).CreateBatch(ctx, slices.Clone(datos.Pedidos)); err != nil {
			return envolver("pedidos", err)
		}
		if err := NewCatalogoRepository(tx).CreateBatch(ctx, slices.Clone(datos.Catalogo)); err != nil {
			return envolver("vendors_catalog", err)
		}
		if err := NewRelacionRepository(tx).CreateBatch(ctx, slices.Clone(datos.Relaciones)); err != nil {
			return envolver("vendor_pos_relations", err)
		}
		if err := NewFabricanteRepository(tx).CreateBatch(ctx, slices.Clone(datos.Fabricantes)); err != nil {
			return envolver("vendors_dm", err)
		}
		if err := NewCompraMinimaRepository(tx).CreateBatch(ctx, slices.Clone(datos.ComprasMinimas)); err != nil {
			return envolver("minimum_purchase", err)
		}
		return envolver("pos_address", NewDireccionRepository(tx).CreateBatch(ctx, direccionesUnicas(datos.Direcciones)))
	})
}

// direccionesUnicas keeps the first address of each POS, the one the geo
// zone lookup uses.
func direccionesUnicas(direcciones []model.DireccionPOS) []model.DireccionPOS {
	vistos := make(map[int64]struct{}, len(direcciones))
	out := make([]model.DireccionPOS, 0, len(direcciones))
	for _, d := range direcciones {
		if _, ok := vistos[d.PointOfSaleID]; ok || d.PointOfSaleID == 0 {
			continue
		}
		vistos[d.PointOfSaleID] = struct{}{}
		out = append(out, d)
	}
	return out
}

func envolver(tabla string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", tabla, err)
}

//go:build integration

package worker

// integration_test.go
// Full async cycle against real Postgres + Redis via testcontainers:
// seed the reference tables, recalculate through the queue, and dead-letter
// a report job that can never succeed.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"
	"github.com/r2flows/pharma-vendor-oportunities/internal/repository"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func datosIntegracion() *conciliacion.DatosReferencia {
	activo := model.StatusActivo
	return &conciliacion.DatosReferencia{
		Pedidos: []model.Pedido{
			{OrderID: 1, PointOfSaleID: 21, VendorID: 900, SuperCatalogID: 100, UnidadesPedidas: 4, PrecioMinimo: decimal.NewFromInt(30)},
			{OrderID: 1, PointOfSaleID: 21, VendorID: 800, SuperCatalogID: 200, UnidadesPedidas: 1, PrecioMinimo: decimal.NewFromInt(90)},
		},
		Catalogo: []model.EntradaCatalogo{
			{VendorID: 10, SuperCatalogID: 100, Name: "México", BasePrice: decimal.NewFromInt(25)},
			{VendorID: 11, SuperCatalogID: 200, Name: "Puebla", BasePrice: decimal.NewFromInt(60), Percentage: decimal.NewFromInt(10)},
		},
		Relaciones:  []model.RelacionVendorPOS{{VendorID: 11, PointOfSaleID: 21, Status: &activo}},
		Fabricantes: []model.VinculoFabricante{{VendorID: 10, Name: "Lab", DrugManufacturerID: 900}},
		ComprasMinimas: []model.CompraMinima{
			{VendorID: 11, Name: "Puebla", MinPurchase: decimal.NewFromInt(500)},
		},
		Direcciones: []model.DireccionPOS{{PointOfSaleID: 21, Address: "Av. Reforma 5, Centro, Puebla, Pue., México"}},
	}
}

type mailerApagado struct{}

func (mailerApagado) Configurado() bool                     { return false }
func (mailerApagado) EnviarReporte(_, _, _, _ string) error { return nil }

func TestIntegracion_RecalculoYDLQ(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("conciliacion_test"),
		tcPostgres.WithUsername("conciliacion"),
		tcPostgres.WithPassword("conciliacion"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db, "../../migrations"))

	repo := repository.NewReferenciaRepository(db)
	require.NoError(t, repo.Reemplazar(ctx, datosIntegracion()))

	rdb, err := infra.NewRedis(ctx, rdURL)
	require.NoError(t, err)

	svc := service.NewConciliacionService(repo, nil, service.Opciones{
		Conciliacion:   conciliacion.OpcionesPorDefecto(),
		UmbralInsights: decimal.NewFromInt(20000),
	})

	pool := NewPool(rdb, map[string]Handler{
		JobRecalculo: NewRecalculoWorker(svc).Process,
		JobReporte:   NewReporteWorker(svc, mailerApagado{}, t.TempDir()).Process,
	})
	pool.backoff = 10 * time.Millisecond
	pool.Start(ctx, 2)

	d := NewDispatcher(rdb)
	id, err := d.EnqueueRecalculo(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	require.Eventually(t, func() bool { return svc.UltimoCalculo() != nil }, 30*time.Second, 100*time.Millisecond)

	vendors, err := svc.Vendors(ctx, 21)
	require.NoError(t, err)
	require.Len(t, vendors.Data, 2)
	assert.Equal(t, int64(11), vendors.Data[0].VendorID)
	assert.Equal(t, "66", vendors.Data[0].ValorPotencial.String())
	assert.Equal(t, "500", vendors.Data[0].CompraMinima.String())
	assert.Equal(t, "Activo", vendors.Data[0].DescripcionStatus)
	assert.Equal(t, int64(10), vendors.Data[1].VendorID)
	assert.True(t, vendors.Data[1].EsFabricante)
	assert.Equal(t, "100", vendors.Data[1].ValorConvertido.String())

	_, err = d.EnqueueReporte(ctx, ReporteJobPayload{PointOfSaleID: 21, ToEmail: "compras@farmacia.mx"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueEmail)
		return err == nil && n == 1
	}, 30*time.Second, 100*time.Millisecond)

	largos, err := DLQLengths(ctx, rdb)
	require.NoError(t, err)
	assert.Equal(t, int64(0), largos[QueueConciliacion])
}

package conciliacion_test

import (
	"testing"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConciliar_SinDatos(t *testing.T) {
	res, err := conciliacion.Conciliar(nil, conciliacion.OpcionesPorDefecto())

	assert.ErrorIs(t, err, conciliacion.ErrSinDatos)
	assert.True(t, res.Vacio())
}

func TestConciliar_DatosVaciosNoFallan(t *testing.T) {
	res, err := conciliacion.Conciliar(&conciliacion.DatosReferencia{}, conciliacion.OpcionesPorDefecto())

	require.NoError(t, err)
	assert.True(t, res.Vacio())
}

func TestConciliar_PuntosDeVenta(t *testing.T) {
	res, err := conciliacion.Conciliar(datosDePrueba(), conciliacion.OpcionesPorDefecto())
	require.NoError(t, err)

	assert.False(t, res.Vacio())
	assert.Equal(t, []int64{1, 2}, res.PuntosDeVenta)
	assert.True(t, res.TienePOS(2))
	assert.False(t, res.TienePOS(3))
	assert.Equal(t, "Jalisco", res.Zonas[1])
	assert.Empty(t, res.Advertencias)

	ganadoras := res.ClasificadasDe(2, conciliacion.PrecioVendorMinimo)
	assert.Len(t, ganadoras, 3)
	assert.Len(t, res.ClasificadasDe(2, ""), 4)
	assert.Len(t, res.ClasificadasDe(1, conciliacion.PrecioDrogueriaMinimo), 1)
}

func TestConciliar_Idempotente(t *testing.T) {
	primero, err := conciliacion.Conciliar(datosDePrueba(), conciliacion.OpcionesPorDefecto())
	require.NoError(t, err)
	segundo, err := conciliacion.Conciliar(datosDePrueba(), conciliacion.OpcionesPorDefecto())
	require.NoError(t, err)

	assert.Equal(t, primero, segundo)
}

func TestConciliar_Conservacion(t *testing.T) {
	datos := datosDePrueba()
	// A second order of the same product makes the attribution fall back to
	// proportional redistribution.
	datos.Pedidos = append(datos.Pedidos, pedido(5, 2, 901, 200, 1, "250"))

	res, err := conciliacion.Conciliar(datos, conciliacion.OpcionesPorDefecto())
	require.NoError(t, err)
	require.Len(t, res.Advertencias, 1)
	assert.Equal(t, conciliacion.EtapaAtribucion, res.Advertencias[0].Etapa)

	margen := decimal.New(1, -9)
	for _, pos := range res.PuntosDeVenta {
		ganadoras := decimal.Zero
		for _, f := range res.ClasificadasDe(pos, conciliacion.PrecioVendorMinimo) {
			ganadoras = ganadoras.Add(f.PrecioTotalVendedor)
		}
		total := decimal.Zero
		for _, f := range res.Oportunidades[pos] {
			total = total.Add(f.ValorPotencial).Add(f.ValorConvertido)
		}
		assert.True(t, total.LessThanOrEqual(ganadoras.Add(margen)), "POS %d: %s > %s", pos, total, ganadoras)
	}
}

func TestConciliar_AdvertenciasDeIngesta(t *testing.T) {
	datos := datosDePrueba()
	datos.Advertencias = []string{"minimum_purchase: file not found, using empty table"}

	res, err := conciliacion.Conciliar(datos, conciliacion.OpcionesPorDefecto())
	require.NoError(t, err)

	require.Len(t, res.Advertencias, 1)
	assert.Equal(t, conciliacion.EtapaIngesta, res.Advertencias[0].Etapa)
}

func TestConciliar_TokenNacionalPorDefecto(t *testing.T) {
	res, err := conciliacion.Conciliar(datosDePrueba(), conciliacion.Opciones{Tolerancia: tolerancia})
	require.NoError(t, err)

	assert.Len(t, res.Oportunidades[2], 3)
}

func TestDatosReferencia_Huella(t *testing.T) {
	a, err := datosDePrueba().Huella()
	require.NoError(t, err)
	b, err := datosDePrueba().Huella()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	cambiado := datosDePrueba()
	cambiado.Relaciones = append(cambiado.Relaciones, model.RelacionVendorPOS{VendorID: 11, PointOfSaleID: 2})
	c, err := cambiado.Huella()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 4, cambiado.Filas()["vendor_pos_relations"])
}

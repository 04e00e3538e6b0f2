package conciliacion_test

import (
	"testing"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tolerancia = decimal.NewFromFloat(0.01)

func clasificarTodo(pedidos []model.Pedido, catalogo []model.EntradaCatalogo) []conciliacion.FilaClasificada {
	return conciliacion.Clasificar(conciliacion.UnirYDeduplicar(
		conciliacion.ResolverPrecios(pedidos, catalogo, nil, "México"),
		conciliacion.NuevoIndiceRelaciones(nil),
	))
}

func TestAtribuirFabricantes_SinVinculos(t *testing.T) {
	pedidos := []model.Pedido{pedido(1, 1, 900, 100, 2, "60")}
	clasificadas := clasificarTodo(pedidos, []model.EntradaCatalogo{entrada(10, 100, "México", "50", "")})

	atrib, adv := conciliacion.AtribuirFabricantes(1, pedidos, clasificadas, conciliacion.NuevoIndiceFabricantes(nil), tolerancia)

	assert.Nil(t, adv)
	assert.Empty(t, atrib.Fabricantes)
	assertDecimal(t, "0", atrib.ValorAgregado)
}

func TestAtribuirFabricantes_Individual(t *testing.T) {
	pedidos := []model.Pedido{
		pedido(1, 1, 900, 100, 2, "60"),
		pedido(1, 1, 800, 200, 1, "30"),
	}
	catalogo := []model.EntradaCatalogo{
		entrada(10, 100, "México", "50", ""),
		entrada(11, 100, "México", "55", ""),
	}
	fabricantes := conciliacion.NuevoIndiceFabricantes([]model.VinculoFabricante{
		{VendorID: 10, Name: "Lab Diez", DrugManufacturerID: 900},
	})

	atrib, adv := conciliacion.AtribuirFabricantes(1, pedidos, clasificarTodo(pedidos, catalogo), fabricantes, tolerancia)

	assert.Nil(t, adv)
	assert.Equal(t, conciliacion.MetodoIndividual, atrib.Metodo)
	require.Len(t, atrib.Fabricantes, 1)
	f := atrib.Fabricantes[0]
	assert.Equal(t, int64(900), f.DrugManufacturerID)
	assert.Equal(t, int64(10), f.VendorID)
	assert.Equal(t, "Lab Diez", f.Nombre)
	assertDecimal(t, "120", f.TotalComprado)
	assertDecimal(t, "80", f.PorcentajeCompras)
	assertDecimal(t, "100", f.ValorComprasGanadoras)
	assert.Equal(t, "83.33", f.PorcentajeGanadoras.StringFixed(2))
}

func TestAtribuirFabricantes_VendorDistintoNoGana(t *testing.T) {
	pedidos := []model.Pedido{pedido(1, 1, 900, 100, 2, "60")}
	catalogo := []model.EntradaCatalogo{
		entrada(10, 100, "México", "50", ""),
		entrada(11, 100, "México", "45", ""),
	}
	fabricantes := conciliacion.NuevoIndiceFabricantes([]model.VinculoFabricante{
		{VendorID: 10, DrugManufacturerID: 900},
	})

	atrib, adv := conciliacion.AtribuirFabricantes(1, pedidos, clasificarTodo(pedidos, catalogo), fabricantes, tolerancia)

	assert.Nil(t, adv)
	require.Len(t, atrib.Fabricantes, 1)
	assertDecimal(t, "120", atrib.Fabricantes[0].TotalComprado)
	assertDecimal(t, "0", atrib.Fabricantes[0].ValorComprasGanadoras)
}

func TestAtribuirFabricantes_RedistribucionProporcional(t *testing.T) {
	// The same products are bought in two orders, so the per-manufacturer
	// sums double the aggregate computed once per product.
	pedidos := []model.Pedido{
		pedido(1, 1, 900, 100, 2, "60"),
		pedido(2, 1, 900, 100, 2, "60"),
		pedido(1, 1, 901, 200, 1, "30"),
		pedido(2, 1, 901, 200, 3, "30"),
	}
	catalogo := []model.EntradaCatalogo{
		entrada(10, 100, "México", "50", ""),
		entrada(12, 200, "México", "20", ""),
	}
	fabricantes := conciliacion.NuevoIndiceFabricantes([]model.VinculoFabricante{
		{VendorID: 10, DrugManufacturerID: 900},
		{VendorID: 12, DrugManufacturerID: 901},
	})

	atrib, adv := conciliacion.AtribuirFabricantes(1, pedidos, clasificarTodo(pedidos, catalogo), fabricantes, tolerancia)

	require.NotNil(t, adv)
	assert.Equal(t, conciliacion.EtapaAtribucion, adv.Etapa)
	assert.Equal(t, int64(1), adv.PointOfSaleID)
	assert.Equal(t, conciliacion.MetodoProporcional, atrib.Metodo)
	assertDecimal(t, "280", atrib.SumaIndividual)
	assertDecimal(t, "120", atrib.ValorAgregado)

	require.Len(t, atrib.Fabricantes, 2)
	suma := decimal.Zero
	for _, f := range atrib.Fabricantes {
		suma = suma.Add(f.ValorComprasGanadoras)
	}
	desvio := suma.Sub(atrib.ValorAgregado).Abs().Div(atrib.ValorAgregado)
	assert.True(t, desvio.LessThanOrEqual(tolerancia), desvio.String())

	// 900: 200 of 280, 901: 80 of 280.
	assert.Equal(t, "85.71", atrib.Fabricantes[0].ValorComprasGanadoras.StringFixed(2))
	assert.Equal(t, "34.29", atrib.Fabricantes[1].ValorComprasGanadoras.StringFixed(2))
}

func TestAtribuirFabricantes_OrdenPorTotalComprado(t *testing.T) {
	pedidos := []model.Pedido{
		pedido(1, 1, 901, 100, 1, "10"),
		pedido(1, 1, 900, 200, 1, "90"),
		pedido(1, 1, 902, 300, 1, "10"),
	}
	fabricantes := conciliacion.NuevoIndiceFabricantes([]model.VinculoFabricante{
		{VendorID: 10, DrugManufacturerID: 900},
		{VendorID: 11, DrugManufacturerID: 901},
		{VendorID: 12, DrugManufacturerID: 902},
		{VendorID: 0, DrugManufacturerID: 903},
	})

	atrib, _ := conciliacion.AtribuirFabricantes(1, pedidos, nil, fabricantes, tolerancia)

	require.Len(t, atrib.Fabricantes, 3)
	assert.Equal(t, int64(900), atrib.Fabricantes[0].DrugManufacturerID)
	assert.Equal(t, int64(901), atrib.Fabricantes[1].DrugManufacturerID)
	assert.Equal(t, int64(902), atrib.Fabricantes[2].DrugManufacturerID)
	_, ok := fabricantes.Vendor(903)
	assert.False(t, ok)
}

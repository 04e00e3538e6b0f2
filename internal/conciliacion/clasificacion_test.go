package conciliacion_test

import (
	"testing"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clasificarPedido(t *testing.T, pagado string, catalogo ...model.EntradaCatalogo) []conciliacion.FilaClasificada {
	t.Helper()
	pedidos := []model.Pedido{pedido(1, 1, 900, 100, 1, pagado)}
	return conciliacion.Clasificar(conciliacion.UnirYDeduplicar(
		conciliacion.ResolverPrecios(pedidos, catalogo, nil, "México"),
		conciliacion.NuevoIndiceRelaciones(nil),
	))
}

func TestClasificar_EmpateEnMinimo(t *testing.T) {
	filas := clasificarPedido(t, "60",
		entrada(10, 100, "México", "50", ""),
		entrada(11, 100, "México", "40", "25"),
		entrada(12, 100, "México", "55", ""),
	)

	require.Len(t, filas, 3)
	assert.Equal(t, conciliacion.PrecioVendorMinimo, filas[0].Clasificacion)
	assert.Equal(t, conciliacion.PrecioVendorMinimo, filas[1].Clasificacion)
	assert.Equal(t, conciliacion.PrecioVendorNoMinimo, filas[2].Clasificacion)
	for _, f := range filas {
		assertDecimal(t, "50", f.PrecioVendedorMinimo)
		assertDecimal(t, "60", f.PrecioMinimoOrden)
	}
}

func TestClasificar_PrecioPagadoYaMinimo(t *testing.T) {
	filas := clasificarPedido(t, "40",
		entrada(10, 100, "México", "50", ""),
		entrada(11, 100, "México", "45", ""),
	)

	require.Len(t, filas, 2)
	for _, f := range filas {
		assert.Equal(t, conciliacion.PrecioDrogueriaMinimo, f.Clasificacion)
	}
}

func TestClasificar_PagadoIgualAlMinimoEsOportunidad(t *testing.T) {
	filas := clasificarPedido(t, "50",
		entrada(10, 100, "México", "50", ""),
		entrada(11, 100, "México", "52", ""),
	)

	require.Len(t, filas, 2)
	assert.Equal(t, conciliacion.PrecioVendorMinimo, filas[0].Clasificacion)
	assert.Equal(t, conciliacion.PrecioVendorNoMinimo, filas[1].Clasificacion)
}

func TestClasificar_GruposPorOrdenYProducto(t *testing.T) {
	pedidos := []model.Pedido{
		pedido(1, 1, 900, 100, 1, "60"),
		pedido(2, 1, 900, 100, 1, "45"),
		pedido(2, 1, 900, 200, 1, "100"),
	}
	catalogo := []model.EntradaCatalogo{
		entrada(10, 100, "México", "50", ""),
		entrada(11, 100, "México", "48", ""),
		entrada(10, 200, "México", "90", ""),
	}

	filas := conciliacion.Clasificar(conciliacion.UnirYDeduplicar(
		conciliacion.ResolverPrecios(pedidos, catalogo, nil, "México"),
		conciliacion.NuevoIndiceRelaciones(nil),
	))

	require.Len(t, filas, 5)
	etiquetas := make(map[int64]map[int64]conciliacion.Clasificacion)
	for _, f := range filas {
		if etiquetas[f.OrderID] == nil {
			etiquetas[f.OrderID] = map[int64]conciliacion.Clasificacion{}
		}
		if f.SuperCatalogID == 100 {
			etiquetas[f.OrderID][f.VendorID] = f.Clasificacion
		}
	}
	assert.Equal(t, conciliacion.PrecioVendorNoMinimo, etiquetas[1][10])
	assert.Equal(t, conciliacion.PrecioVendorMinimo, etiquetas[1][11])
	assert.Equal(t, conciliacion.PrecioDrogueriaMinimo, etiquetas[2][10])
	assert.Equal(t, conciliacion.PrecioDrogueriaMinimo, etiquetas[2][11])
	assert.Equal(t, conciliacion.PrecioVendorMinimo, filas[4].Clasificacion)
}

func TestClasificar_GanadorasCompartenElMinimo(t *testing.T) {
	res, err := conciliacion.Conciliar(datosDePrueba(), conciliacion.OpcionesPorDefecto())
	require.NoError(t, err)

	validas := map[conciliacion.Clasificacion]bool{
		conciliacion.PrecioDrogueriaMinimo: true,
		conciliacion.PrecioVendorMinimo:    true,
		conciliacion.PrecioVendorNoMinimo:  true,
	}
	for _, filas := range res.Clasificadas {
		for _, f := range filas {
			assert.True(t, validas[f.Clasificacion])
			if f.Clasificacion.EsGanadora() {
				assert.True(t, f.PrecioVendedor.Equal(f.PrecioVendedorMinimo))
			}
		}
	}
}

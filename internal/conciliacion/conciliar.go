package conciliacion

import (
	"errors"
	"fmt"
	"slices"

	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

var (
	ErrSinDatos     = errors.New("no reference data loaded")
	ErrConciliacion = errors.New("reconciliation failed")
)

// Etapa names the pipeline stage a warning comes from.
type Etapa string

const (
	EtapaIngesta    Etapa = "ingesta"
	EtapaAtribucion Etapa = "atribucion"
)

// Advertencia is a non-fatal condition found while reconciling.
type Advertencia struct {
	PointOfSaleID int64
	Etapa         Etapa
	Mensaje       string
}

// Opciones tunes a reconciliation run.
type Opciones struct {
	TokenNacional    string
	Tolerancia       decimal.Decimal
	ConvertidoLegacy bool
}

// OpcionesPorDefecto returns the options used when nothing is configured.
func OpcionesPorDefecto() Opciones {
	return Opciones{
		TokenNacional: "México",
		Tolerancia:    decimal.NewFromFloat(0.01),
	}
}

// Resultado holds every output of one reconciliation, indexed by POS.
// It is read-only once returned.
type Resultado struct {
	PuntosDeVenta []int64
	Zonas         map[int64]string
	Clasificadas  map[int64][]FilaClasificada
	Oportunidades map[int64][]FilaOportunidad
	Atribuciones  map[int64]AtribucionPOS
	Resumenes     map[int64]ResumenPOS
	Advertencias  []Advertencia
}

func nuevoResultado() *Resultado {
	return &Resultado{
		Zonas:         map[int64]string{},
		Clasificadas:  map[int64][]FilaClasificada{},
		Oportunidades: map[int64][]FilaOportunidad{},
		Atribuciones:  map[int64]AtribucionPOS{},
		Resumenes:     map[int64]ResumenPOS{},
	}
}

// Vacio reports whether every output table is empty, which is how a failed
// run is presented.
func (r *Resultado) Vacio() bool {
	return r == nil || (len(r.PuntosDeVenta) == 0 && len(r.Clasificadas) == 0 && len(r.Oportunidades) == 0)
}

// TienePOS reports whether the POS took part in the run.
func (r *Resultado) TienePOS(pos int64) bool {
	_, ok := r.Resumenes[pos]
	return ok
}

// ClasificadasDe returns the classified rows of a POS, optionally filtered by
// label.
func (r *Resultado) ClasificadasDe(pos int64, filtro Clasificacion) []FilaClasificada {
	filas := r.Clasificadas[pos]
	if filtro == "" {
		return filas
	}
	var out []FilaClasificada
	for _, f := range filas {
		if f.Clasificacion == filtro {
			out = append(out, f)
		}
	}
	return out
}

// Conciliar runs the whole reconciliation over one reference bundle. It has
// no side effects; identical input yields identical output. A panic in any
// stage is turned into an empty Resultado and ErrConciliacion.
func Conciliar(datos *DatosReferencia, op Opciones) (*Resultado, error) {
	return protegido(func() (*Resultado, error) { return conciliar(datos, op) })
}

// protegido runs a reconciliation and turns a panic into an empty Resultado.
func protegido(fn func() (*Resultado, error)) (res *Resultado, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nuevoResultado()
			err = fmt.Errorf("%w: %v", ErrConciliacion, r)
		}
	}()
	return fn()
}

func conciliar(datos *DatosReferencia, op Opciones) (*Resultado, error) {
	if datos == nil {
		return nuevoResultado(), ErrSinDatos
	}
	if op.TokenNacional == "" {
		op.TokenNacional = OpcionesPorDefecto().TokenNacional
	}

	res := nuevoResultado()
	for _, msg := range datos.Advertencias {
		res.Advertencias = append(res.Advertencias, Advertencia{Etapa: EtapaIngesta, Mensaje: msg})
	}

	zonas := ZonasPorPOS(datos.Direcciones)
	pedidos := make([]model.Pedido, 0, len(datos.Pedidos))
	for _, p := range datos.Pedidos {
		if p.UnidadesPedidas > 0 && p.PointOfSaleID != 0 {
			pedidos = append(pedidos, p)
		}
	}

	relaciones := NuevoIndiceRelaciones(datos.Relaciones)
	candidatos := ResolverPrecios(pedidos, datos.Catalogo, zonas, op.TokenNacional)
	clasificadas := Clasificar(UnirYDeduplicar(candidatos, relaciones))

	pedidosPOS := make(map[int64][]model.Pedido)
	for _, p := range pedidos {
		if _, ok := pedidosPOS[p.PointOfSaleID]; !ok {
			res.PuntosDeVenta = append(res.PuntosDeVenta, p.PointOfSaleID)
		}
		pedidosPOS[p.PointOfSaleID] = append(pedidosPOS[p.PointOfSaleID], p)
	}
	slices.Sort(res.PuntosDeVenta)
	for _, f := range clasificadas {
		res.Clasificadas[f.PointOfSaleID] = append(res.Clasificadas[f.PointOfSaleID], f)
	}

	fabricantes := NuevoIndiceFabricantes(datos.Fabricantes)
	minimos := NuevoIndiceComprasMinimas(datos.ComprasMinimas)
	var legacy []ConvertidoLegacy
	if op.ConvertidoLegacy {
		legacy = CalcularConvertidoLegacy(pedidos, datos.Fabricantes)
	}

	for _, pos := range res.PuntosDeVenta {
		zona := zonas[pos]
		res.Zonas[pos] = zona

		atrib, adv := AtribuirFabricantes(pos, pedidosPOS[pos], res.Clasificadas[pos], fabricantes, op.Tolerancia)
		if adv != nil {
			res.Advertencias = append(res.Advertencias, *adv)
		}
		res.Atribuciones[pos] = atrib
		if ops := AgregarOportunidades(pos, zona, res.Clasificadas[pos], atrib, legacy, relaciones, minimos); len(ops) > 0 {
			res.Oportunidades[pos] = ops
		}
		res.Resumenes[pos] = ResumirPOS(pos, zona, pedidosPOS[pos], res.Clasificadas[pos])
	}
	return res, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrSinResultado    = errors.New("no reconciliation result available")
	ErrResultadoVacio  = errors.New("reconciliation produced no output")
	ErrPOSNoEncontrado = errors.New("point of sale not found")
)

// FuenteDatos builds the reference bundle. Implemented by the CSV loader and
// the Postgres repository.
type FuenteDatos interface {
	Nombre() string
	Cargar(ctx context.Context) (*conciliacion.DatosReferencia, error)
}

// ConciliacionService defines the business logic contract for the
// reconciliation: one load-and-process cycle, then read-only queries per POS.
type ConciliacionService interface {
	Recalcular(ctx context.Context) (*dto.EstadoResponse, error)
	Estado(ctx context.Context) (*dto.EstadoResponse, error)
	ListarPOS(ctx context.Context) (*dto.POSListResponse, error)
	Resumen(ctx context.Context, pos int64) (*dto.ResumenPOSResponse, error)
	Vendors(ctx context.Context, pos int64) (*dto.VendorsResponse, error)
	Clasificacion(ctx context.Context, pos int64, filtro dto.ClasificacionFilter) (*dto.ClasificacionResponse, error)
	Insights(ctx context.Context, pos int64, umbral *decimal.Decimal) (*dto.InsightsResponse, error)
	Fabricantes(ctx context.Context, pos int64) (*dto.FabricantesResponse, error)
	Reporte(ctx context.Context, pos int64) (*infra.ReportePOS, error)
	UltimoCalculo() *time.Time
}

// Opciones configures the service.
type Opciones struct {
	Conciliacion   conciliacion.Opciones
	UmbralInsights decimal.Decimal
}

// calculo is one load-and-process cycle. Never mutated once published.
type calculo struct {
	resultado   *conciliacion.Resultado
	huella      string
	filas       map[string]int
	calculadoEn time.Time
	reutilizado bool
	err         error
}

type conciliacionService struct {
	fuente  FuenteDatos
	breaker *infra.CircuitBreaker
	op      Opciones
	now     func() time.Time

	recalc sync.Mutex // serializes Recalcular
	mu     sync.RWMutex
	actual *calculo
}

func NewConciliacionService(fuente FuenteDatos, breaker *infra.CircuitBreaker, op Opciones) ConciliacionService {
	if breaker == nil {
		breaker = infra.NewCircuitBreaker(infra.DefaultCBConfig(fuente.Nombre()))
	}
	return &conciliacionService{fuente: fuente, breaker: breaker, op: op, now: time.Now}
}

// ── Recalcular ────────────────────────────────────────────────────────────────
// Loads the bundle once through the circuit breaker, fingerprints it and runs
// the reconciliation unless the previous run used identical data.

func (s *conciliacionService) Recalcular(ctx context.Context) (*dto.EstadoResponse, error) {
	s.recalc.Lock()
	defer s.recalc.Unlock()

	var datos *conciliacion.DatosReferencia
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		datos, err = s.fuente.Cargar(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load reference data from %s: %w", s.fuente.Nombre(), err)
	}

	huella, err := datos.Huella()
	if err != nil {
		return nil, err
	}

	if previo := s.snapshot(); previo != nil && previo.err == nil && previo.huella == huella {
		reuso := *previo
		reuso.reutilizado = true
		s.publicar(&reuso)
		log.Info().Str("huella", huella[:12]).Msg("conciliacion: reference data unchanged, reusing result")
		return s.estado(&reuso), nil
	}

	inicio := s.now()
	res, err := conciliacion.Conciliar(datos, s.op.Conciliacion)
	if err == nil && res.Vacio() {
		err = ErrResultadoVacio
	}
	c := &calculo{
		resultado:   res,
		huella:      huella,
		filas:       datos.Filas(),
		calculadoEn: s.now(),
		err:         err,
	}
	s.publicar(c)

	if err != nil {
		log.Error().Err(err).Str("fuente", s.fuente.Nombre()).Msg("conciliacion: run failed, result cleared")
		return s.estado(c), err
	}
	log.Info().
		Str("huella", huella[:12]).
		Int("puntos_de_venta", len(res.PuntosDeVenta)).
		Int("advertencias", len(res.Advertencias)).
		Dur("duracion", c.calculadoEn.Sub(inicio)).
		Msg("conciliacion: result published")
	for _, a := range res.Advertencias {
		log.Warn().Int64("pos", a.PointOfSaleID).Str("etapa", string(a.Etapa)).Msg(a.Mensaje)
	}
	return s.estado(c), nil
}

func (s *conciliacionService) publicar(c *calculo) {
	s.mu.Lock()
	s.actual = c
	s.mu.Unlock()
}

func (s *conciliacionService) snapshot() *calculo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actual
}

// resultado returns the published result or the error explaining its absence.
func (s *conciliacionService) resultado() (*conciliacion.Resultado, error) {
	c := s.snapshot()
	if c == nil {
		return nil, ErrSinResultado
	}
	if c.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSinResultado, c.err)
	}
	return c.resultado, nil
}

func (s *conciliacionService) resultadoPOS(pos int64) (*conciliacion.Resultado, error) {
	res, err := s.resultado()
	if err != nil {
		return nil, err
	}
	if !res.TienePOS(pos) {
		return nil, ErrPOSNoEncontrado
	}
	return res, nil
}

func (s *conciliacionService) Estado(_ context.Context) (*dto.EstadoResponse, error) {
	c := s.snapshot()
	if c == nil {
		return nil, ErrSinResultado
	}
	return s.estado(c), nil
}

func (s *conciliacionService) UltimoCalculo() *time.Time {
	c := s.snapshot()
	if c == nil || c.err != nil {
		return nil
	}
	t := c.calculadoEn
	return &t
}

func (s *conciliacionService) estado(c *calculo) *dto.EstadoResponse {
	calculadoEn := c.calculadoEn
	resp := &dto.EstadoResponse{
		Huella:       c.huella,
		Fuente:       s.fuente.Nombre(),
		CalculadoEn:  &calculadoEn,
		Reutilizado:  c.reutilizado,
		Filas:        c.filas,
		Advertencias: []dto.AdvertenciaResponse{},
	}
	if c.err != nil {
		resp.Error = c.err.Error()
		return resp
	}
	resp.PuntosDeVenta = len(c.resultado.PuntosDeVenta)
	for _, a := range c.resultado.Advertencias {
		resp.Advertencias = append(resp.Advertencias, dto.AdvertenciaResponse{
			PointOfSaleID: a.PointOfSaleID,
			Etapa:         string(a.Etapa),
			Mensaje:       a.Mensaje,
		})
	}
	return resp
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *conciliacionService) ListarPOS(_ context.Context) (*dto.POSListResponse, error) {
	res, err := s.resultado()
	if err != nil {
		return nil, err
	}
	out := &dto.POSListResponse{Data: make([]dto.POSItem, 0, len(res.PuntosDeVenta))}
	for _, pos := range res.PuntosDeVenta {
		potencial := decimal.Zero
		for _, o := range res.Oportunidades[pos] {
			potencial = potencial.Add(o.ValorPotencial)
		}
		out.Data = append(out.Data, dto.POSItem{
			PointOfSaleID:  pos,
			GeoZona:        res.Zonas[pos],
			TotalCompras:   res.Resumenes[pos].TotalCompras,
			Vendors:        len(res.Oportunidades[pos]),
			ValorPotencial: potencial,
		})
	}
	out.Total = len(out.Data)
	return out, nil
}

func (s *conciliacionService) Resumen(_ context.Context, pos int64) (*dto.ResumenPOSResponse, error) {
	res, err := s.resultadoPOS(pos)
	if err != nil {
		return nil, err
	}
	r := res.Resumenes[pos]
	out := &dto.ResumenPOSResponse{
		PointOfSaleID:    r.PointOfSaleID,
		Pais:             r.Pais,
		GeoZona:          r.GeoZona,
		TotalCompras:     r.TotalCompras,
		NumeroOrdenes:    r.NumeroOrdenes,
		PromedioPorOrden: r.PromedioPorOrden,
		ComprasPorVendor: make([]dto.CompraVendorResponse, 0, len(r.ComprasPorVendor)),
		Productos: dto.AnalisisProductosResponse{
			ProductosEnPedidos:      r.Productos.ProductosEnPedidos,
			ProductosEnInterseccion: r.Productos.ProductosEnInterseccion,
			PorcentajeInterseccion:  r.Productos.PorcentajeInterseccion,
			ValorComprasReales:      r.Productos.ValorComprasReales,
			ValorOportunidad:        r.Productos.ValorOportunidad,
			AhorroPotencial:         r.Productos.AhorroPotencial,
			PorcentajeAhorro:        r.Productos.PorcentajeAhorro,
		},
	}
	for _, v := range r.ComprasPorVendor {
		out.ComprasPorVendor = append(out.ComprasPorVendor, dto.CompraVendorResponse{
			VendorID:      v.VendorID,
			TotalComprado: v.TotalComprado,
			Porcentaje:    v.Porcentaje,
		})
	}
	return out, nil
}

func (s *conciliacionService) Vendors(_ context.Context, pos int64) (*dto.VendorsResponse, error) {
	res, err := s.resultadoPOS(pos)
	if err != nil {
		return nil, err
	}
	out := &dto.VendorsResponse{
		PointOfSaleID:   pos,
		Data:            toOportunidades(res.Oportunidades[pos]),
		TotalPotencial:  decimal.Zero,
		TotalConvertido: decimal.Zero,
	}
	for _, o := range res.Oportunidades[pos] {
		out.TotalPotencial = out.TotalPotencial.Add(o.ValorPotencial)
		out.TotalConvertido = out.TotalConvertido.Add(o.ValorConvertido)
	}
	return out, nil
}

func (s *conciliacionService) Clasificacion(_ context.Context, pos int64, filtro dto.ClasificacionFilter) (*dto.ClasificacionResponse, error) {
	res, err := s.resultadoPOS(pos)
	if err != nil {
		return nil, err
	}
	filas := res.ClasificadasDe(pos, conciliacion.Clasificacion(filtro.Clasificacion))
	out := &dto.ClasificacionResponse{PointOfSaleID: pos, Data: make([]dto.FilaClasificadaResponse, 0, len(filas))}
	for _, f := range filas {
		out.Data = append(out.Data, dto.FilaClasificadaResponse{
			OrderID:              f.OrderID,
			SuperCatalogID:       f.SuperCatalogID,
			DrugManufacturerID:   f.DrugManufacturerID,
			VendorID:             f.VendorID,
			GeoZona:              f.GeoZona,
			Tier:                 string(f.Tier),
			UnidadesPedidas:      f.UnidadesPedidas,
			PrecioMinimo:         f.PrecioMinimo,
			BasePrice:            f.BasePrice,
			Percentage:           f.Percentage,
			PrecioVendedor:       f.PrecioVendedor,
			PrecioTotalVendedor:  f.PrecioTotalVendedor,
			PrecioVendedorMinimo: f.PrecioVendedorMinimo,
			Clasificacion:        string(f.Clasificacion),
			DescripcionStatus:    descripcionStatus(f.Status),
		})
	}
	out.Total = len(out.Data)
	return out, nil
}

// Insights uses the configured threshold unless umbral is given.
func (s *conciliacionService) Insights(_ context.Context, pos int64, umbral *decimal.Decimal) (*dto.InsightsResponse, error) {
	res, err := s.resultadoPOS(pos)
	if err != nil {
		return nil, err
	}
	limite := s.op.UmbralInsights
	if umbral != nil {
		limite = *umbral
	}
	filas := conciliacion.FiltrarInsights(res.Oportunidades[pos], limite)
	out := &dto.InsightsResponse{
		PointOfSaleID:  pos,
		Umbral:         limite,
		Data:           toOportunidades(filas),
		PorStatus:      []dto.ResumenStatusResponse{},
		TotalPotencial: decimal.Zero,
	}
	for _, r := range conciliacion.ResumirPorStatus(filas) {
		out.PorStatus = append(out.PorStatus, dto.ResumenStatusResponse{
			DescripcionStatus: r.DescripcionStatus,
			Vendors:           r.Vendors,
			ValorPotencial:    r.ValorPotencial,
		})
		out.TotalPotencial = out.TotalPotencial.Add(r.ValorPotencial)
	}
	return out, nil
}

func (s *conciliacionService) Fabricantes(_ context.Context, pos int64) (*dto.FabricantesResponse, error) {
	res, err := s.resultadoPOS(pos)
	if err != nil {
		return nil, err
	}
	a := res.Atribuciones[pos]
	out := &dto.FabricantesResponse{
		PointOfSaleID:  pos,
		Metodo:         string(a.Metodo),
		ValorAgregado:  a.ValorAgregado,
		SumaIndividual: a.SumaIndividual,
		Data:           make([]dto.FabricanteResponse, 0, len(a.Fabricantes)),
	}
	for _, f := range a.Fabricantes {
		out.Data = append(out.Data, dto.FabricanteResponse{
			DrugManufacturerID:    f.DrugManufacturerID,
			VendorID:              f.VendorID,
			Nombre:                f.Nombre,
			TotalComprado:         f.TotalComprado,
			PorcentajeCompras:     f.PorcentajeCompras,
			ValorComprasGanadoras: f.ValorComprasGanadoras,
			PorcentajeGanadoras:   f.PorcentajeGanadoras,
		})
	}
	return out, nil
}

// Reporte gathers the data of the PDF report of one POS.
func (s *conciliacionService) Reporte(_ context.Context, pos int64) (*infra.ReportePOS, error) {
	res, err := s.resultadoPOS(pos)
	if err != nil {
		return nil, err
	}
	return &infra.ReportePOS{
		Resumen:       res.Resumenes[pos],
		Oportunidades: res.Oportunidades[pos],
		Atribucion:    res.Atribuciones[pos],
		Umbral:        s.op.UmbralInsights.StringFixed(2),
		GeneradoEn:    s.now(),
	}, nil
}

package infra

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"

	"github.com/shopspring/decimal"
)

// ── Table schemas ─────────────────────────────────────────────────────────────
// Each input file declares which columns it must carry and which ones may be
// absent. The shape is enforced here once; the reconciliation core assumes
// fixed, fully populated structs.

type columna struct {
	nombre      string
	alias       []string
	obligatoria bool
}

type esquema struct {
	tabla    string
	archivo  string
	opcional bool   // the whole file may be missing
	precio   string // price column; rows where it does not parse are dropped
	columnas []columna
}

var (
	esquemaPedidos = esquema{
		tabla:   "pedidos",
		precio:  "precio_minimo",
		archivo: "orders_delivered_pos_vendor_geozone.csv",
		columnas: []columna{
			{nombre: "order_id", obligatoria: true},
			{nombre: "point_of_sale_id", obligatoria: true},
			{nombre: "vendor_id", obligatoria: true},
			{nombre: "super_catalog_id", obligatoria: true},
			{nombre: "unidades_pedidas", obligatoria: true},
			{nombre: "precio_minimo", obligatoria: true},
			{nombre: "total_compra"},
			{nombre: "country"},
		},
	}
	esquemaCatalogo = esquema{
		tabla:   "vendors_catalog",
		precio:  "base_price",
		archivo: "vendors_catalog.csv",
		columnas: []columna{
			{nombre: "vendor_id", obligatoria: true},
			{nombre: "super_catalog_id", obligatoria: true},
			{nombre: "name", obligatoria: true},
			{nombre: "base_price", obligatoria: true},
			{nombre: "percentage"},
		},
	}
	esquemaRelaciones = esquema{
		tabla:   "vendor_pos_relations",
		archivo: "vendor_pos_relations.csv",
		columnas: []columna{
			{nombre: "vendor_id", obligatoria: true},
			{nombre: "point_of_sale_id", obligatoria: true},
			{nombre: "status"},
		},
	}
	esquemaFabricantes = esquema{
		tabla:    "vendors_dm",
		archivo:  "vendors_dm.csv",
		opcional: true,
		columnas: []columna{
			{nombre: "vendor_id", alias: []string{"client_id"}, obligatoria: true},
			{nombre: "drug_manufacturer_id", obligatoria: true},
			{nombre: "name"},
		},
	}
	esquemaComprasMinimas = esquema{
		tabla:    "minimum_purchase",
		precio:   "min_purchase",
		archivo:  "minimum_purchase.csv",
		opcional: true,
		columnas: []columna{
			{nombre: "vendor_id", obligatoria: true},
			{nombre: "name", obligatoria: true},
			{nombre: "min_purchase", obligatoria: true},
		},
	}
	esquemaDirecciones = esquema{
		tabla:   "pos_address",
		archivo: "pos_address.csv",
		columnas: []columna{
			{nombre: "point_of_sale_id", obligatoria: true},
			{nombre: "address", obligatoria: true},
		},
	}
)

// ErrArchivoObligatorio is returned when a non-optional input file is missing.
var ErrArchivoObligatorio = errors.New("required input file not found")

// FuenteCSV loads the reference bundle from a directory of CSV exports.
type FuenteCSV struct {
	dir string
}

func NewFuenteCSV(dir string) *FuenteCSV {
	return &FuenteCSV{dir: dir}
}

// Nombre identifies the source in logs and status output.
func (f *FuenteCSV) Nombre() string { return "csv:" + f.dir }

// Cargar reads every table once and returns the bundle. Missing optional
// files and missing mandatory columns degrade to empty tables with a warning.
func (f *FuenteCSV) Cargar(ctx context.Context) (*conciliacion.DatosReferencia, error) {
	datos := &conciliacion.DatosReferencia{}

	pasos := []struct {
		esq   esquema
		armar func([]registro) int
	}{
		{esquemaPedidos, func(rs []registro) (descartadas int) {
			datos.Pedidos, descartadas = armarPedidos(rs)
			return descartadas
		}},
		{esquemaCatalogo, func(rs []registro) (descartadas int) {
			datos.Catalogo, descartadas = armarCatalogo(rs)
			return descartadas
		}},
		{esquemaRelaciones, func(rs []registro) int { datos.Relaciones = armarRelaciones(rs); return 0 }},
		{esquemaFabricantes, func(rs []registro) int { datos.Fabricantes = armarFabricantes(rs); return 0 }},
		{esquemaComprasMinimas, func(rs []registro) (descartadas int) {
			datos.ComprasMinimas, descartadas = armarComprasMinimas(rs)
			return descartadas
		}},
		{esquemaDirecciones, func(rs []registro) int { datos.Direcciones = armarDirecciones(rs); return 0 }},
	}
	for _, p := range pasos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		registros, advertencias, err := leerTabla(filepath.Join(f.dir, p.esq.archivo), p.esq)
		if err != nil {
			return nil, err
		}
		datos.Advertencias = append(datos.Advertencias, advertencias...)
		if n := p.armar(registros); n > 0 {
			datos.Advertencias = append(datos.Advertencias,
				fmt.Sprintf("%s: %d rows dropped, unparseable %s", p.esq.tabla, n, p.esq.precio))
		}
	}
	return datos, nil
}

// registro is one CSV row keyed by canonical column name. Optional columns
// absent from the file are simply not present.
type registro map[string]string

func leerTabla(path string, esq esquema) ([]registro, []string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if esq.opcional {
			return nil, []string{fmt.Sprintf("%s: %s not found, using empty table", esq.tabla, esq.archivo)}, nil
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrArchivoObligatorio, esq.archivo)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", esq.archivo, err)
	}
	defer file.Close()
	return parsearTabla(file, esq)
}

func parsearTabla(r io.Reader, esq esquema) ([]registro, []string, error) {
	lector := csv.NewReader(r)
	lector.FieldsPerRecord = -1
	lector.TrimLeadingSpace = true

	encabezado, err := lector.Read()
	if errors.Is(err, io.EOF) {
		return nil, []string{fmt.Sprintf("%s: empty file", esq.tabla)}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", esq.archivo, err)
	}

	posiciones := make(map[string]int, len(encabezado))
	for i, h := range encabezado {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		posiciones[h] = i
	}

	indice := make(map[string]int, len(esq.columnas))
	var faltantes []string
	for _, c := range esq.columnas {
		pos, ok := posiciones[c.nombre]
		for _, a := range c.alias {
			if ok {
				break
			}
			pos, ok = posiciones[a]
		}
		switch {
		case ok:
			indice[c.nombre] = pos
		case c.obligatoria:
			faltantes = append(faltantes, c.nombre)
		}
	}
	if len(faltantes) > 0 {
		return nil, []string{fmt.Sprintf("%s: missing columns %s, table left empty",
			esq.tabla, strings.Join(faltantes, ", "))}, nil
	}

	var registros []registro
	for {
		fila, err := lector.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", esq.archivo, err)
		}
		reg := make(registro, len(indice))
		for nombre, pos := range indice {
			if pos < len(fila) {
				reg[nombre] = strings.TrimSpace(fila[pos])
			}
		}
		registros = append(registros, reg)
	}
	return registros, nil, nil
}

// ── Coercion ──────────────────────────────────────────────────────────────────
// Unparseable identifiers become 0, the "unknown" id that never joins.
// Unparseable prices are unknown: the row is dropped rather than priced at 0.

func parsearID(s string) int64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Exports coming from dataframes write integer columns with NaN as floats.
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == float64(int64(v)) {
		return int64(v)
	}
	return 0
}

func parsearEntero(s string) int {
	return int(parsearID(s))
}

// parsearDecimal reports false for blank, NaN, infinite or malformed values.
func parsearDecimal(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parsearDecimalOCero is for nullable columns where absent means 0.
func parsearDecimalOCero(s string) decimal.Decimal {
	d, _ := parsearDecimal(s)
	return d
}

func parsearStatus(s string) *int {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != float64(int(v)) {
		return nil
	}
	status := int(v)
	return &status
}

// armarPedidos drops lines whose paid price is unknown and cannot be derived
// from total_compra and units.
func armarPedidos(rs []registro) ([]model.Pedido, int) {
	out := make([]model.Pedido, 0, len(rs))
	descartadas := 0
	for _, r := range rs {
		p := model.Pedido{
			OrderID:         parsearID(r["order_id"]),
			PointOfSaleID:   parsearID(r["point_of_sale_id"]),
			VendorID:        parsearID(r["vendor_id"]),
			SuperCatalogID:  parsearID(r["super_catalog_id"]),
			UnidadesPedidas: parsearEntero(r["unidades_pedidas"]),
			TotalCompra:     parsearDecimalOCero(r["total_compra"]),
		}
		precio, ok := parsearDecimal(r["precio_minimo"])
		if !ok {
			if p.UnidadesPedidas <= 0 || !p.TotalCompra.IsPositive() {
				descartadas++
				continue
			}
			precio = p.TotalCompra.Div(decimal.NewFromInt(int64(p.UnidadesPedidas)))
		}
		p.PrecioMinimo = precio
		if c := r["country"]; c != "" {
			p.Country = &c
		}
		out = append(out, p)
	}
	return out, descartadas
}

func armarCatalogo(rs []registro) ([]model.EntradaCatalogo, int) {
	out := make([]model.EntradaCatalogo, 0, len(rs))
	descartadas := 0
	for _, r := range rs {
		base, ok := parsearDecimal(r["base_price"])
		if !ok {
			descartadas++
			continue
		}
		out = append(out, model.EntradaCatalogo{
			VendorID:       parsearID(r["vendor_id"]),
			SuperCatalogID: parsearID(r["super_catalog_id"]),
			Name:           r["name"],
			BasePrice:      base,
			Percentage:     parsearDecimalOCero(r["percentage"]),
		})
	}
	return out, descartadas
}

func armarRelaciones(rs []registro) []model.RelacionVendorPOS {
	out := make([]model.RelacionVendorPOS, 0, len(rs))
	for _, r := range rs {
		out = append(out, model.RelacionVendorPOS{
			VendorID:      parsearID(r["vendor_id"]),
			PointOfSaleID: parsearID(r["point_of_sale_id"]),
			Status:        parsearStatus(r["status"]),
		})
	}
	return out
}

func armarFabricantes(rs []registro) []model.VinculoFabricante {
	out := make([]model.VinculoFabricante, 0, len(rs))
	for _, r := range rs {
		out = append(out, model.VinculoFabricante{
			VendorID:           parsearID(r["vendor_id"]),
			Name:               r["name"],
			DrugManufacturerID: parsearID(r["drug_manufacturer_id"]),
		})
	}
	return out
}

func armarComprasMinimas(rs []registro) ([]model.CompraMinima, int) {
	out := make([]model.CompraMinima, 0, len(rs))
	descartadas := 0
	for _, r := range rs {
		minimo, ok := parsearDecimal(r["min_purchase"])
		if !ok {
			descartadas++
			continue
		}
		out = append(out, model.CompraMinima{
			VendorID:    parsearID(r["vendor_id"]),
			Name:        r["name"],
			MinPurchase: minimo,
		})
	}
	return out, descartadas
}

func armarDirecciones(rs []registro) []model.DireccionPOS {
	out := make([]model.DireccionPOS, 0, len(rs))
	for _, r := range rs {
		out = append(out, model.DireccionPOS{
			PointOfSaleID: parsearID(r["point_of_sale_id"]),
			Address:       r["address"],
		})
	}
	return out
}

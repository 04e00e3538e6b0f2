package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ClasificacionFilter struct {
	Clasificacion string `form:"clasificacion" validate:"omitempty,oneof='Precio droguería mínimo' 'Precio vendor mínimo' 'Precio vendor no mínimo'"`
}

type InsightsFilter struct {
	Umbral string `form:"umbral" validate:"omitempty,numeric"`
}

type EnviarReporteRequest struct {
	Email  string `json:"email"  validate:"required,email"`
	Asunto string `json:"asunto" validate:"omitempty,max=150"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type POSItem struct {
	PointOfSaleID  int64           `json:"point_of_sale_id"`
	GeoZona        string          `json:"geo_zona"`
	TotalCompras   decimal.Decimal `json:"total_compras"`
	Vendors        int             `json:"vendors"`
	ValorPotencial decimal.Decimal `json:"valor_potencial"`
}

type POSListResponse struct {
	Data  []POSItem `json:"data"`
	Total int       `json:"total"`
}

type CompraVendorResponse struct {
	VendorID      int64           `json:"vendor_id"`
	TotalComprado decimal.Decimal `json:"total_comprado"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
}

type AnalisisProductosResponse struct {
	ProductosEnPedidos      int             `json:"productos_en_pedidos"`
	ProductosEnInterseccion int             `json:"productos_en_interseccion"`
	PorcentajeInterseccion  decimal.Decimal `json:"porcentaje_interseccion"`
	ValorComprasReales      decimal.Decimal `json:"valor_compras_reales"`
	ValorOportunidad        decimal.Decimal `json:"valor_oportunidad"`
	AhorroPotencial         decimal.Decimal `json:"ahorro_potencial"`
	PorcentajeAhorro        decimal.Decimal `json:"porcentaje_ahorro"`
}

type ResumenPOSResponse struct {
	PointOfSaleID    int64                     `json:"point_of_sale_id"`
	Pais             string                    `json:"pais"`
	GeoZona          string                    `json:"geo_zona"`
	TotalCompras     decimal.Decimal           `json:"total_compras"`
	NumeroOrdenes    int                       `json:"numero_ordenes"`
	PromedioPorOrden decimal.Decimal           `json:"promedio_por_orden"`
	ComprasPorVendor []CompraVendorResponse    `json:"compras_por_vendor"`
	Productos        AnalisisProductosResponse `json:"productos"`
}

type OportunidadResponse struct {
	VendorID                int64           `json:"vendor_id"`
	ValorPotencial          decimal.Decimal `json:"valor_potencial"`
	ValorConvertido         decimal.Decimal `json:"valor_convertido"`
	CompraMinima            decimal.Decimal `json:"compra_minima"`
	Status                  *int            `json:"status"`
	DescripcionStatus       string          `json:"descripcion_status"`
	EsFabricante            bool            `json:"es_fabricante"`
	TotalCompradoFabricante decimal.Decimal `json:"total_comprado_fabricante"`
	Origen                  string          `json:"origen"`
}

type VendorsResponse struct {
	PointOfSaleID   int64                 `json:"point_of_sale_id"`
	Data            []OportunidadResponse `json:"data"`
	TotalPotencial  decimal.Decimal       `json:"total_potencial"`
	TotalConvertido decimal.Decimal       `json:"total_convertido"`
}

type FilaClasificadaResponse struct {
	OrderID              int64           `json:"order_id"`
	SuperCatalogID       int64           `json:"super_catalog_id"`
	DrugManufacturerID   int64           `json:"drug_manufacturer_id"`
	VendorID             int64           `json:"vendor_id"`
	GeoZona              string          `json:"geo_zona"`
	Tier                 string          `json:"tier"`
	UnidadesPedidas      int             `json:"unidades_pedidas"`
	PrecioMinimo         decimal.Decimal `json:"precio_minimo"`
	BasePrice            decimal.Decimal `json:"base_price"`
	Percentage           decimal.Decimal `json:"percentage"`
	PrecioVendedor       decimal.Decimal `json:"precio_vendedor"`
	PrecioTotalVendedor  decimal.Decimal `json:"precio_total_vendedor"`
	PrecioVendedorMinimo decimal.Decimal `json:"precio_vendedor_minimo"`
	Clasificacion        string          `json:"clasificacion"`
	DescripcionStatus    string          `json:"descripcion_status"`
}

type ClasificacionResponse struct {
	PointOfSaleID int64                     `json:"point_of_sale_id"`
	Data          []FilaClasificadaResponse `json:"data"`
	Total         int                       `json:"total"`
}

type ResumenStatusResponse struct {
	DescripcionStatus string          `json:"descripcion_status"`
	Vendors           int             `json:"vendors"`
	ValorPotencial    decimal.Decimal `json:"valor_potencial"`
}

type InsightsResponse struct {
	PointOfSaleID  int64                   `json:"point_of_sale_id"`
	Umbral         decimal.Decimal         `json:"umbral"`
	Data           []OportunidadResponse   `json:"data"`
	PorStatus      []ResumenStatusResponse `json:"por_status"`
	TotalPotencial decimal.Decimal         `json:"total_potencial"`
}

type FabricanteResponse struct {
	DrugManufacturerID    int64           `json:"drug_manufacturer_id"`
	VendorID              int64           `json:"vendor_id"`
	Nombre                string          `json:"nombre"`
	TotalComprado         decimal.Decimal `json:"total_comprado"`
	PorcentajeCompras     decimal.Decimal `json:"porcentaje_compras"`
	ValorComprasGanadoras decimal.Decimal `json:"valor_compras_ganadoras"`
	PorcentajeGanadoras   decimal.Decimal `json:"porcentaje_ganadoras"`
}

type FabricantesResponse struct {
	PointOfSaleID  int64                `json:"point_of_sale_id"`
	Metodo         string               `json:"metodo"`
	ValorAgregado  decimal.Decimal      `json:"valor_agregado"`
	SumaIndividual decimal.Decimal      `json:"suma_individual"`
	Data           []FabricanteResponse `json:"data"`
}

type AdvertenciaResponse struct {
	PointOfSaleID int64  `json:"point_of_sale_id,omitempty"`
	Etapa         string `json:"etapa"`
	Mensaje       string `json:"mensaje"`
}

type EstadoResponse struct {
	Huella        string                `json:"huella"`
	Fuente        string                `json:"fuente"`
	CalculadoEn   *time.Time            `json:"calculado_en"`
	Reutilizado   bool                  `json:"reutilizado"`
	PuntosDeVenta int                   `json:"puntos_de_venta"`
	Filas         map[string]int        `json:"filas"`
	Advertencias  []AdvertenciaResponse `json:"advertencias"`
	Error         string                `json:"error,omitempty"`
}

type JobResponse struct {
	JobID string `json:"job_id"`
	Tipo  string `json:"tipo"`
	Cola  string `json:"cola"`
}

type HealthResponse struct {
	OK          bool             `json:"ok"`
	DB          string           `json:"db"`
	Redis       string           `json:"redis"`
	Resultado   bool             `json:"resultado"`
	CalculadoEn *time.Time       `json:"calculado_en,omitempty"`
	Breaker     string           `json:"breaker"`
	DLQ         map[string]int64 `json:"dlq,omitempty"`
}

package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/r2flows/pharma-vendor-oportunities/internal/apierror"
	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"
	"github.com/r2flows/pharma-vendor-oportunities/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Encolador enqueues async jobs. Satisfied by *worker.Dispatcher.
type Encolador interface {
	EnqueueRecalculo(ctx context.Context) (string, error)
	EnqueueReporte(ctx context.Context, payload worker.ReporteJobPayload) (string, error)
}

type ConciliacionHandler struct {
	svc  service.ConciliacionService
	jobs Encolador
}

func NewConciliacionHandler(svc service.ConciliacionService, jobs Encolador) *ConciliacionHandler {
	return &ConciliacionHandler{svc: svc, jobs: jobs}
}

// Estado godoc
// @Summary      Estado del último cálculo
// @Description  Huella de los datos, fuente, filas por tabla y advertencias de la última conciliación.
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.EstadoResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/estado [get]
func (h *ConciliacionHandler) Estado(c *gin.Context) {
	resp, err := h.svc.Estado(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalcular godoc
// @Summary      Recalcular la conciliación
// @Description  Encola la recarga de datos de referencia. Con sync=true recalcula en la misma petición.
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Param        sync query    bool false "Recalcular de forma síncrona"
// @Success      200  {object} dto.EstadoResponse
// @Success      202  {object} dto.JobResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/recalcular [post]
func (h *ConciliacionHandler) Recalcular(c *gin.Context) {
	if c.Query("sync") == "true" || h.jobs == nil {
		resp, err := h.svc.Recalcular(c.Request.Context())
		if err != nil {
			responderError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	id, err := h.jobs.EnqueueRecalculo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodigoColaCaida, "No se pudo encolar el recalculo"))
		return
	}
	c.JSON(http.StatusAccepted, dto.JobResponse{JobID: id, Tipo: worker.JobRecalculo, Cola: worker.QueueConciliacion})
}

// ListarPOS godoc
// @Summary      Listar puntos de venta
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.POSListResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/pos [get]
func (h *ConciliacionHandler) ListarPOS(c *gin.Context) {
	resp, err := h.svc.ListarPOS(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary      Resumen de un punto de venta
// @Description  Compras totales, órdenes, compras por vendor y análisis de productos con alternativa más barata.
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Param        pos  path     int true "ID del punto de venta"
// @Success      200  {object} dto.ResumenPOSResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pos/{pos}/resumen [get]
func (h *ConciliacionHandler) Resumen(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), pos)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vendors godoc
// @Summary      Oportunidades por vendor
// @Description  Valor potencial y convertido por vendor, ordenado por potencial descendente.
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Param        pos  path     int true "ID del punto de venta"
// @Success      200  {object} dto.VendorsResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pos/{pos}/vendors [get]
func (h *ConciliacionHandler) Vendors(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Vendors(c.Request.Context(), pos)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clasificacion godoc
// @Summary      Filas clasificadas
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Param        pos           path  int    true  "ID del punto de venta"
// @Param        clasificacion query string false "Filtrar por etiqueta"
// @Success      200  {object} dto.ClasificacionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/pos/{pos}/clasificacion [get]
func (h *ConciliacionHandler) Clasificacion(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	var filtro dto.ClasificacionFilter
	if !bindQuery(c, &filtro) {
		return
	}
	resp, err := h.svc.Clasificacion(c.Request.Context(), pos, filtro)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Insights godoc
// @Summary      Vendors sobre el umbral
// @Description  Oportunidades cuyo valor potencial supera el umbral, agrupadas por status de relación.
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Param        pos    path  int    true  "ID del punto de venta"
// @Param        umbral query string false "Umbral de valor potencial"
// @Success      200  {object} dto.InsightsResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/pos/{pos}/insights [get]
func (h *ConciliacionHandler) Insights(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	var filtro dto.InsightsFilter
	if !bindQuery(c, &filtro) {
		return
	}
	var umbral *decimal.Decimal
	if filtro.Umbral != "" {
		u, err := decimal.NewFromString(filtro.Umbral)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New(apierror.CodigoSolicitudInvalida, "Umbral invalido"))
			return
		}
		umbral = &u
	}
	resp, err := h.svc.Insights(c.Request.Context(), pos, umbral)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Fabricantes godoc
// @Summary      Atribución por fabricante
// @Tags         conciliacion
// @Produce      json
// @Security     BearerAuth
// @Param        pos  path     int true "ID del punto de venta"
// @Success      200  {object} dto.FabricantesResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pos/{pos}/fabricantes [get]
func (h *ConciliacionHandler) Fabricantes(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Fabricantes(c.Request.Context(), pos)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportePDF godoc
// @Summary      Descargar reporte PDF
// @Tags         conciliacion
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        pos  path     int true "ID del punto de venta"
// @Success      200  {file}   binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pos/{pos}/reporte.pdf [get]
func (h *ConciliacionHandler) ReportePDF(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	reporte, err := h.svc.Reporte(c.Request.Context(), pos)
	if err != nil {
		responderError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.EscribirReportePOS(&buf, *reporte); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reporte_pos_%d.pdf"`, pos))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// EnviarReporte godoc
// @Summary      Enviar reporte por email
// @Description  Encola la generación del PDF y su envío por SMTP.
// @Tags         conciliacion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        pos  path     int                      true "ID del punto de venta"
// @Param        body body     dto.EnviarReporteRequest true "Destinatario"
// @Success      202  {object} dto.JobResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/pos/{pos}/reporte/email [post]
func (h *ConciliacionHandler) EnviarReporte(c *gin.Context) {
	pos, ok := posParam(c)
	if !ok {
		return
	}
	var req dto.EnviarReporteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	// Fail fast on an unknown POS instead of dead-lettering the job.
	if _, err := h.svc.Resumen(c.Request.Context(), pos); err != nil {
		responderError(c, err)
		return
	}
	if h.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodigoColaCaida, "Cola de trabajos no disponible"))
		return
	}
	id, err := h.jobs.EnqueueReporte(c.Request.Context(), worker.ReporteJobPayload{
		PointOfSaleID: pos,
		ToEmail:       req.Email,
		Subject:       req.Asunto,
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodigoColaCaida, "No se pudo encolar el reporte"))
		return
	}
	c.JSON(http.StatusAccepted, dto.JobResponse{JobID: id, Tipo: worker.JobReporte, Cola: worker.QueueEmail})
}

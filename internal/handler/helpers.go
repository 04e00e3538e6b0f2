package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/r2flows/pharma-vendor-oportunities/internal/apierror"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodigoSolicitudInvalida, "JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodigoSolicitudInvalida, "Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(apierror.CodigoSolicitudInvalida, err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// posParam parses the :pos path parameter. Writes a 400 when it is not a
// positive integer.
func posParam(c *gin.Context) (int64, bool) {
	pos, err := strconv.ParseInt(c.Param("pos"), 10, 64)
	if err != nil || pos <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodigoSolicitudInvalida, "ID de punto de venta invalido"))
		return 0, false
	}
	return pos, true
}

// responderError maps service errors to HTTP responses.
func responderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPOSNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodigoPOSNoEncontrado, "Punto de venta no encontrado"))
	case errors.Is(err, service.ErrSinResultado):
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodigoSinResultado, "Resultado de conciliacion no disponible"))
	case errors.Is(err, infra.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodigoFuenteCaida, "Fuente de datos no disponible, reintente mas tarde"))
	case errors.Is(err, service.ErrResultadoVacio):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.CodigoResultadoVacio, "La conciliacion no produjo resultados"))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("handler: unexpected error")
		c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodigoInterno, "Error interno del servidor"))
	}
}

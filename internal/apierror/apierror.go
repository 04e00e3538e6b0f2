// Package apierror holds the envelope every 4xx/5xx response is written with.
// Detail is for people; Codigo is stable and tells clients whether the same
// request can be retried later (result not yet computed, data source down,
// queue down) or not. Internal details never reach this envelope.
package apierror

// Codigo classifies a failed request.
type Codigo string

const (
	CodigoSolicitudInvalida Codigo = "solicitud_invalida"
	CodigoValidacion        Codigo = "validacion"
	CodigoNoAutenticado     Codigo = "no_autenticado"
	CodigoSinPermiso        Codigo = "sin_permiso"
	CodigoPOSNoEncontrado   Codigo = "pos_no_encontrado"
	CodigoSinResultado      Codigo = "sin_resultado"
	CodigoFuenteCaida       Codigo = "fuente_no_disponible"
	CodigoResultadoVacio    Codigo = "resultado_vacio"
	CodigoColaCaida         Codigo = "cola_no_disponible"
	CodigoLimiteExcedido    Codigo = "limite_excedido"
	CodigoInterno           Codigo = "interno"
)

// Reintentable reports whether the condition is expected to clear on its own.
func (c Codigo) Reintentable() bool {
	switch c {
	case CodigoSinResultado, CodigoFuenteCaida, CodigoColaCaida, CodigoLimiteExcedido:
		return true
	}
	return false
}

// APIError is the error envelope.
type APIError struct {
	Detail       string `json:"detail"`
	Codigo       Codigo `json:"codigo"`
	Reintentable bool   `json:"reintentable"`
}

func New(codigo Codigo, msg string) *APIError {
	return &APIError{Detail: msg, Codigo: codigo, Reintentable: codigo.Reintentable()}
}

// ValidationError carries the failing validator tag per field.
type ValidationError struct {
	APIError
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{APIError: *New(CodigoValidacion, "Error de validacion"), Fields: fields}
}

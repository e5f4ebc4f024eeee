// Package apierrors defines the stable result codes returned by the consulta
// API and their mapping to HTTP status classes. Codes are part of the public
// contract and must not change between releases.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable result code.
type Code string

const (
	// Input errors.
	CodeCedulaInvalida     Code = "CEDULA_INVALIDA"
	CodeFormatoNoSoportado Code = "FORMATO_NO_SOPORTADO"

	// Business outcomes.
	CodeCiudadanoNoEncontrado Code = "CIUDADANO_NO_ENCONTRADO"

	// Capacity errors.
	CodeRateLimitExcedido Code = "RATE_LIMIT_EXCEDIDO"

	// Upstream integration errors.
	CodeJCENoDisponible      Code = "JCE_NO_DISPONIBLE"
	CodeJCETimeout           Code = "JCE_TIMEOUT"
	CodeJCERespuestaInvalida Code = "JCE_RESPUESTA_INVALIDA"

	// Internal errors.
	CodeErrorProcesamiento Code = "ERROR_PROCESAMIENTO"
	CodeErrorInterno       Code = "ERROR_INTERNO"

	// CodeSuccess marks a successful consultation in the response envelope.
	CodeSuccess Code = "SUCCESS"
)

// Error is a domain error carrying a result code and a caller-safe message.
// Wrapped causes are kept for logging but never serialized to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and caller-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a code and caller-safe message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// FromError extracts a domain error, or classifies unknown errors as internal.
func FromError(err error) *Error {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &Error{Code: CodeErrorInterno, Message: "Error interno del servicio", cause: err}
}

// HTTPStatus maps a result code to its HTTP status class.
func HTTPStatus(code Code) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeCedulaInvalida, CodeFormatoNoSoportado:
		return http.StatusBadRequest
	case CodeCiudadanoNoEncontrado:
		return http.StatusNotFound
	case CodeRateLimitExcedido:
		return http.StatusTooManyRequests
	case CodeJCENoDisponible:
		return http.StatusServiceUnavailable
	case CodeJCETimeout:
		return http.StatusGatewayTimeout
	case CodeJCERespuestaInvalida:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

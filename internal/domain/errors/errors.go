package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code clasifica un fallo de una dependencia externa o de validación.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeRateLimit    Code = "RATE_LIMIT"
	CodeNetwork      Code = "NETWORK"
	CodeTimeout      Code = "TIMEOUT"
	CodeValidation   Code = "VALIDATION"
	CodeUnknown      Code = "UNKNOWN"
)

// PipelineError es el error tipado que atraviesa fetch, procesamiento y guardrails.
// Siempre lleva un Code de la taxonomía; nunca se traga silenciosamente.
type PipelineError struct {
	Code    Code
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// New crea un PipelineError sin causa subyacente.
func New(code Code, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

// Wrap crea un PipelineError envolviendo la causa original.
func Wrap(code Code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// CodeOf extrae el código de un error; UNKNOWN si el error no está clasificado.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// FromStatus mapea un status HTTP al código de la taxonomía.
func FromStatus(status int) Code {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeUnauthorized
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return CodeTimeout
	case status >= 500:
		return CodeNetwork
	default:
		return CodeUnknown
	}
}

// MissingRefError indica que falta el SHA base o head para calcular el diff.
type MissingRefError struct {
	Base string
	Head string
}

func (e *MissingRefError) Error() string {
	return fmt.Sprintf("missing base/head SHA to compute diff (base=%q, head=%q)", e.Base, e.Head)
}

// NewMissingRefError crea un nuevo error de referencia faltante.
func NewMissingRefError(base, head string) *MissingRefError {
	return &MissingRefError{Base: base, Head: head}
}

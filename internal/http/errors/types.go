package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
// Code es el código de error del protocolo (RFC 6749) que va al wire.
type AppError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	HTTPStatus  int    `json:"-"` // No se serializa, usado para el header
	Err         error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Description)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, description string) *AppError {
	return &AppError{
		Code:        code,
		Description: description,
		HTTPStatus:  status,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve server_error conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrServerError.WithCause(err)
}

// WithDescription devuelve una COPIA del error con otra descripción,
// para no mutar las variables globales base.
func (e *AppError) WithDescription(description string) *AppError {
	newErr := *e
	newErr.Description = description
	return &newErr
}

// WithCause devuelve una COPIA del error con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS (taxonomía RFC 6749)
// =================================================================================

var (
	// ErrInvalidRequest: request malformado o con campos faltantes.
	// Se detecta antes de tocar cualquier store.
	ErrInvalidRequest = &AppError{
		Code:        "invalid_request",
		Description: "The request is missing a required parameter or is otherwise malformed.",
		HTTPStatus:  http.StatusBadRequest,
	}

	// ErrInvalidClient: client desconocido, inactivo o con secret incorrecto.
	ErrInvalidClient = &AppError{
		Code:        "invalid_client",
		Description: "Client authentication failed.",
		HTTPStatus:  http.StatusUnauthorized,
	}

	// ErrInvalidGrant: credenciales inválidas, token/code expirado, revocado
	// o consumido, o cuenta inactiva. Todos indistinguibles hacia afuera.
	ErrInvalidGrant = &AppError{
		Code:        "invalid_grant",
		Description: "The provided grant is invalid, expired, or revoked.",
		HTTPStatus:  http.StatusUnauthorized,
	}

	// ErrUnsupportedGrantType: grant_type fuera de {password, authorization_code, refresh_token}.
	ErrUnsupportedGrantType = &AppError{
		Code:        "unsupported_grant_type",
		Description: "The authorization grant type is not supported.",
		HTTPStatus:  http.StatusBadRequest,
	}

	// ErrUnsupportedResponseType: response_type distinto de "code".
	ErrUnsupportedResponseType = &AppError{
		Code:        "unsupported_response_type",
		Description: "Only response_type=code is supported.",
		HTTPStatus:  http.StatusBadRequest,
	}

	// ErrAccessDenied: el usuario negó el consentimiento.
	ErrAccessDenied = &AppError{
		Code:        "access_denied",
		Description: "The resource owner denied the request.",
		HTTPStatus:  http.StatusForbidden,
	}

	// ErrMFARequired: extensión no estándar — el password grant fue correcto
	// pero falta el segundo factor. No es una falla del flujo.
	ErrMFARequired = &AppError{
		Code:        "mfa_required",
		Description: "Multi-factor authentication is required to complete this grant.",
		HTTPStatus:  http.StatusUnauthorized,
	}

	// ErrRateLimited: excedió el límite de requests para el endpoint.
	ErrRateLimited = &AppError{
		Code:        "rate_limited",
		Description: "Too many requests. Retry later.",
		HTTPStatus:  http.StatusTooManyRequests,
	}

	// ErrNotFound: recurso inexistente (tenant/usuario en rutas admin).
	ErrNotFound = &AppError{
		Code:        "not_found",
		Description: "The requested resource does not exist.",
		HTTPStatus:  http.StatusNotFound,
	}

	// ErrServerError: falla interna inesperada. Se loguea con contexto pero
	// nunca se ecoan secretos ni detalles internos al cliente.
	ErrServerError = &AppError{
		Code:        "server_error",
		Description: "An unexpected internal error occurred.",
		HTTPStatus:  http.StatusInternalServerError,
	}
)

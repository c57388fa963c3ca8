package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConsumed indica que un credential de un solo uso ya fue consumido.
	ErrConsumed = errors.New("already consumed")

	// ErrExpired indica que el credential ya expiró.
	ErrExpired = errors.New("expired")

	// ErrRevoked indica que el credential fue revocado.
	ErrRevoked = errors.New("revoked")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

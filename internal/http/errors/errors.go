package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}

// WriteErrorExtra escribe el error con campos adicionales en el body
// (el caso mfa_required, que acompaña el challenge token).
func WriteErrorExtra(w http.ResponseWriter, err error, extra map[string]string) {
	appErr := FromError(err)

	body := map[string]string{
		"error": appErr.Code,
	}
	if appErr.Description != "" {
		body["error_description"] = appErr.Description
	}
	for k, v := range extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}

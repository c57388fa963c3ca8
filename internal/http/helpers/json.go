// Package helpers contiene utilidades compartidas por controllers.
package helpers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializa v con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONNoStore es WriteJSON con los headers de no-cacheo que exigen las
// respuestas que llevan tokens.
func WriteJSONNoStore(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	WriteJSON(w, status, v)
}

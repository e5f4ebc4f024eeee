// Package httputil centralizes JSON response writing so every handler emits
// the same envelope shape and headers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes v with the given status code. Encoding failures after
// the header is written cannot be recovered, so they are ignored.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

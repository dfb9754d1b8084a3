package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		RequestID:        rid,
	})
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON: decodifica JSON de forma tolerante (NO falla por campos desconocidos).
// Valida Content-Type y limita el tamaño del body a 1MB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Content-Type debe ser application/json")
		return false
	}
	// máx 1MB
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "invalid_json", "json inválido")
		return false
	}
	return true
}

// WriteDomainError mapea los errores del dominio a HTTP.
// Los errores de storage nunca exponen el detalle del driver.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, core.ErrInvalid):
		WriteError(w, http.StatusBadRequest, "invalid_request", "")
	case errors.Is(err, core.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "")
	case core.IsStorage(err):
		rid := w.Header().Get("X-Request-ID")
		log.Printf(`{"level":"error","msg":"storage_error","request_id":"%s","err":"%v"}`, rid, err)
		WriteError(w, http.StatusInternalServerError, "storage_error", "")
	default:
		rid := w.Header().Get("X-Request-ID")
		log.Printf(`{"level":"error","msg":"internal_error","request_id":"%s","err":"%v"}`, rid, err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

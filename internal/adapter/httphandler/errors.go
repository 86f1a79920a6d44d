package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
)

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeError maps the core error taxonomy onto HTTP status codes.
// Anything outside the taxonomy is a storage failure and stays
// opaque to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest,
			errorBody{Status: "error", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound,
			errorBody{Status: "error", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict,
			errorBody{Status: "error", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError,
			errorBody{Status: "error", Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

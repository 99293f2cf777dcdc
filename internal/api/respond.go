package api

import (
	"encoding/json"
	"log"
	"net/http"

	"smartparking/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Conflicts are an
// expected outcome under contention and are not logged; storage failures are.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.Authorization:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Conflict:
		status = http.StatusConflict
	case apperr.Storage:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError || kind == apperr.Storage {
		log.Printf("Request failed: %v", err)
	}

	message := "Internal error"
	if kind != 0 {
		message = err.Error()
	}
	writeJSON(w, status, map[string]string{"message": message})
}

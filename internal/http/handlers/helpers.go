package handlers

import (
	"encoding/json"
	"net/http"

	"meterhub/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeTaxonomyError maps the pipeline's error taxonomy onto HTTP statuses.
// Validation errors reach the client verbatim; everything else is summarized.
func writeTaxonomyError(w http.ResponseWriter, err error) bool {
	switch {
	case apperrors.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case apperrors.IsConfiguration(err):
		writeError(w, http.StatusConflict, err.Error())
	case apperrors.IsComputation(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		return false
	}
	return true
}

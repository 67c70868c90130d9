package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an application error to its HTTP status
func respondWithAppError(w http.ResponseWriter, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, "not found")
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, err.Error())
	case apperrors.ErrorTypeStoreUnavailable:
		respondWithError(w, http.StatusServiceUnavailable, "catalog store unavailable")
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, "upstream service error")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

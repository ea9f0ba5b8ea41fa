package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tubedash-backend/internal/models"
	"tubedash-backend/internal/repository"
	"tubedash-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, models.Response{Success: true, Data: data})
}

func okMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, models.Response{Success: true, Message: message})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, models.Response{Success: true, Data: data})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, models.Response{Success: false, Error: message})
}

// respondError is the single place the error taxonomy maps to HTTP.
// Messages stay human-readable; no stack traces or internal ids leak.
//
// The comments-disabled state deliberately answers 200 with
// success:false: the UI relies on that exact contract to show an
// informational banner instead of a generic error page.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	var apiErr *services.APIError

	switch {
	case errors.Is(err, services.ErrCommentsDisabled):
		writeJSON(w, http.StatusOK, models.Response{Success: false, Error: "Comments are disabled for this video"})
	case errors.Is(err, services.ErrInvalidIdentifier):
		writeJSON(w, http.StatusBadRequest, models.Response{Success: false, Error: "Invalid video or comment identifier"})
	case errors.Is(err, services.ErrAuthenticationRequired):
		writeJSON(w, http.StatusUnauthorized, models.Response{Success: false, Error: "This action requires a connected YouTube account"})
	case errors.Is(err, services.ErrUpstreamAuth):
		writeJSON(w, http.StatusUnauthorized, models.Response{Success: false, Error: "YouTube rejected the linked account credentials. Reconnect your account."})
	case errors.Is(err, services.ErrOwnership):
		writeJSON(w, http.StatusForbidden, models.Response{Success: false, Error: "This video does not belong to your channel"})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.Response{Success: false, Error: "The requested resource was not found"})
	case errors.Is(err, repository.ErrNoteNotFound):
		writeJSON(w, http.StatusNotFound, models.Response{Success: false, Error: "Note not found"})
	case errors.Is(err, repository.ErrCorruptRecord):
		// data-integrity fault, logged distinctly from ordinary API errors
		log.Error("corrupt stored record", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.Response{Success: false, Error: "A stored record could not be read"})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, models.Response{Success: false, Error: "The video platform returned an error", Message: apiErr.Message})
	default:
		log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.Response{Success: false, Error: "Internal server error"})
	}
}

// clampMaxResults bounds a page size to [1,50], defaulting to 20.
func clampMaxResults(raw string) int64 {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 20
	}
	if n > 50 {
		return 50
	}
	return int64(n)
}

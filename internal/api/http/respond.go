package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/logger"
	"packbooker-backend/internal/security"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Token
// failures collapse into one generic message so a caller cannot tell a
// wrong token from an expired one.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, security.ErrTokenExpired) || errors.Is(err, security.ErrTokenMismatch) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired link"})
		return
	}

	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
		unavailErr    *domain.ServiceUnavailable
		externalErr   *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorBody{Error: notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorBody{Error: conflictErr.Error()})
	case errors.As(err, &unavailErr):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: unavailErr.Error()})
	case errors.As(err, &externalErr):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: externalErr.Error()})
	default:
		logger.Error("Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "invalid JSON payload"}
	}
	return nil
}

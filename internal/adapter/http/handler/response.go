package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError reports err to the client. Server side failures are logged and
// their details withheld.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusBadGateway:
		log.Error("Upstream failure", zap.Error(err))
		msg = "upstream service unavailable"
	case http.StatusInternalServerError:
		log.Error("Unexpected error", zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, log, status, errorResponse{Message: msg})
}

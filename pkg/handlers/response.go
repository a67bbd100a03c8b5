package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/logging"
	"github.com/dasch-swiss/mls-app-ng/pkg/middleware"
)

// ApiResponse is the envelope of every JSON API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorStatus maps a service error to an HTTP status and error code.
func ErrorStatus(err error) (int, string) {
	var schemaErr *apperrors.SchemaResolutionError
	var upstream *apperrors.UpstreamError

	switch {
	case errors.Is(err, apperrors.ErrUnknownQuery):
		return http.StatusBadRequest, "unknown_query"
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.As(err, &schemaErr):
		if errors.Is(err, apperrors.ErrNotFound) {
			return http.StatusNotFound, "schema_not_found"
		}
		return http.StatusBadGateway, "schema_resolution_failed"
	case errors.As(err, &upstream):
		switch {
		case upstream.StatusCode == http.StatusNotFound:
			return http.StatusNotFound, "not_found"
		case upstream.StatusCode == http.StatusUnauthorized:
			return http.StatusUnauthorized, "unauthorized"
		case upstream.StatusCode == http.StatusForbidden:
			return http.StatusForbidden, "forbidden"
		case upstream.StatusCode == http.StatusBadRequest:
			return http.StatusBadRequest, "upstream_rejected"
		}
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeServiceError logs err and writes it with the status ErrorStatus assigns.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	status, code := ErrorStatus(err)

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.Int("status", status),
		zap.String("error", logging.SanitizeError(err)),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Info("Request rejected", fields...)
	}

	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeData writes data in a successful ApiResponse.
func writeData(w http.ResponseWriter, logger *zap.Logger, data any) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

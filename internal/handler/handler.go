package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"qr-menu/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies; orders are a few kilobytes at most.
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a domain error to its status code. Anything that is
// not a domain error becomes a 500 with fallback as the message.
func writeDomainError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback, logger)
		return
	}

	status := http.StatusBadRequest
	switch de.Code {
	case model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeUnavailable:
		status = http.StatusConflict
	}

	logger.Warn().Str("code", de.Code).Int("status", status).Msg(de.Message)
	writeJSON(w, status, ErrorResponse{Error: de.Message, Code: de.Code})
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// NotFoundJSON answers unmatched routes with a JSON 404.
func NotFoundJSON(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", logger)
	}
}

// MethodNotAllowed answers a known path hit with the wrong method.
func MethodNotAllowed(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", logger)
	}
}

// Health reports liveness. A non-nil check failing turns it into a 503.
func Health(check func(ctx context.Context) error, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.Error().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

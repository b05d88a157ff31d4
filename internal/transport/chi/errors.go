package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain"
)

// ErrorCode is a machine-readable error kind.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest   ErrorCode = "bad_request"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeUnknownStore ErrorCode = "unknown_store"
	ErrorCodeUnknownEvent ErrorCode = "unknown_event"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeRateLimited  ErrorCode = "rate_limited"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		invalidParamHandler,
		sentinelHandler(domain.ErrUnknownStore, http.StatusNotFound, ErrorCodeUnknownStore),
		sentinelHandler(domain.ErrUnknownEvent, http.StatusBadRequest, ErrorCodeUnknownEvent),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Only the sentinel text reaches the client.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// invalidParamHandler names the offending parameter.
func invalidParamHandler(w http.ResponseWriter, err error) bool {
	var ipe *domain.InvalidParamError
	if !errors.As(err, &ipe) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter "+ipe.Param)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

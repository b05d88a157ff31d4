package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain/event"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	healthuc "github.com/kailas-cloud/wikindex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/wikindex/internal/usecase/query"
)

const maxEventBytes = 64 << 10

// StoreRunner executes store queries by name.
type StoreRunner interface {
	Run(ctx context.Context, store string, req request.Request) (queryuc.Response, error)
}

// EventDispatcher applies mutation events to the index tables.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev event.Event) error
}

// HealthChecker reports backend availability.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// EventResponse is the body of an accepted event.
type EventResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
}

// Server serves the store query API and the event webhook.
type Server struct {
	stores        StoreRunner
	events        EventDispatcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
	defaultLimit  int
	maxLimit      int
}

// NewServer creates an HTTP API server. events can be nil to disable the webhook.
func NewServer(stores StoreRunner, events EventDispatcher, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		stores:        stores,
		events:        events,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithPagination overrides the page size used when a request has no limit
// and the largest page a request may ask for.
func (s *Server) WithPagination(defaultLimit, maxLimit int) *Server {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stores/{store}", s.QueryStore)
		if s.events != nil {
			r.Post("/events", s.PostEvent)
		}
	})
}

// QueryStore handles GET /api/v1/stores/{store}.
func (s *Server) QueryStore(w http.ResponseWriter, r *http.Request) {
	params, err := bindQueryStoreParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	req, err := params.toRequest(s.defaultLimit, s.maxLimit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.stores.Run(r.Context(), chi.URLParam(r, "store"), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostEvent handles POST /api/v1/events.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var ev event.Event
	dec := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes))
	if err := dec.Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := ev.Validate(); err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.events.Dispatch(r.Context(), ev); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, EventResponse{Status: "applied", Kind: string(ev.Kind)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

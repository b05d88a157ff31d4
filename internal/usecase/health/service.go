package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db     Pinger
	events Pinger
}

// New creates a Service. events can be nil when the stream consumer is disabled.
func New(db Pinger, events Pinger) *Service {
	return &Service{db: db, events: events}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.events != nil {
		if err := s.events.Ping(ctx); err != nil {
			checks["events"] = CheckError
		} else {
			checks["events"] = CheckOK
		}
	}

	// queries cannot be served without the database
	status := Healthy
	switch {
	case checks["database"] == CheckError:
		status = Unhealthy
	case checks["events"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

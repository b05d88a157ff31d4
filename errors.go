package wikindex

import "github.com/kailas-cloud/wikindex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrUnknownStore   = domain.ErrUnknownStore
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrUnknownEvent   = domain.ErrUnknownEvent
)

// Package event describes primary-store mutation events consumed by index updaters.
package event

import (
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/domain"
)

// Kind names a primary-store lifecycle event.
type Kind string

// Supported event kinds.
const (
	PageSaved          Kind = "page.saved"
	PageMoved          Kind = "page.moved"
	PageDeleted        Kind = "page.deleted"
	PageRestored       Kind = "page.restored"
	PageImported       Kind = "page.imported"
	CategoryMembership Kind = "category.membership"
	UserSaved          Kind = "user.saved"
	UserDeleted        Kind = "user.deleted"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case PageSaved, PageMoved, PageDeleted, PageRestored, PageImported,
		CategoryMembership, UserSaved, UserDeleted:
		return true
	}
	return false
}

// Event is a single mutation notification. Which fields are meaningful depends on Kind.
type Event struct {
	Kind      Kind   `json:"kind"`
	Namespace int    `json:"namespace"`
	Title     string `json:"title"`
	// PageID is the restored page id for PageRestored events.
	PageID int64 `json:"page_id,omitempty"`
	// OldNamespace and OldTitle identify the source of a PageMoved event.
	OldNamespace int    `json:"old_namespace,omitempty"`
	OldTitle     string `json:"old_title,omitempty"`
	// Category is the affected category key for CategoryMembership events.
	Category string `json:"category,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
}

// Target returns the page the event applies to.
func (e Event) Target() domain.Title {
	return domain.NewTitle(e.Namespace, e.Title)
}

// Source returns the pre-move page of a PageMoved event.
func (e Event) Source() domain.Title {
	return domain.NewTitle(e.OldNamespace, e.OldTitle)
}

// Validate checks that the fields required by Kind are present.
func (e Event) Validate() error {
	if !e.Kind.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEvent, e.Kind)
	}
	switch e.Kind {
	case PageMoved:
		if e.OldTitle == "" || e.Title == "" {
			return fmt.Errorf("%w: move requires old_title and title", domain.ErrInvalidRequest)
		}
	case CategoryMembership:
		if e.Category == "" {
			return fmt.Errorf("%w: membership change requires category", domain.ErrInvalidRequest)
		}
	case UserSaved, UserDeleted:
		if e.UserID <= 0 {
			return fmt.Errorf("%w: user event requires user_id", domain.ErrInvalidRequest)
		}
	default:
		if e.Title == "" {
			return fmt.Errorf("%w: page event requires title", domain.ErrInvalidRequest)
		}
	}
	return nil
}

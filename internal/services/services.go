// package services defines interface Service for interacting with AT Protocol PDS hosts
package services

import (
	"context"

	"github.com/desertthunder/skylist/internal/models"
)

// Service defines the interface for an AT Protocol client bound to one account.
//
// A Service instance owns at most one session. The source and destination
// accounts of a migration each get their own instance; sessions are never
// cross-used between accounts.
type Service interface {
	// Authenticate creates a session with the PDS using the account handle
	// and an App Password. Credentials are used for this one call and not
	// retained. Returns an error if authentication fails; no retry is
	// attempted.
	Authenticate(ctx context.Context, handle, appPassword string) error

	// GetList retrieves one page of a list's metadata and members.
	// cursor is the opaque token from the previous page ("" for the first
	// page). The returned cursor is "" when no further pages exist.
	GetList(ctx context.Context, listURI string, limit int, cursor string) (*ListPage, error)

	// CreateList creates a new list record owned by the authenticated
	// account and returns its AT-URI. Exactly one write; not idempotent.
	CreateList(ctx context.Context, spec models.NewListSpec) (string, error)

	// AddListItem creates one membership record linking listURI to
	// subjectDID in the authenticated account's repository.
	AddListItem(ctx context.Context, listURI, subjectDID string) (string, error)

	// Handle returns the handle the session resolved to, or "" before Authenticate.
	Handle() string

	// DID returns the authenticated account's DID, or "" before Authenticate.
	DID() string

	// Name returns the service name for display (e.g. "Bluesky")
	Name() string
}

// ListPage is a single page of app.bsky.graph.getList output.
type ListPage struct {
	List    models.ListInfo
	Members []models.ListMember
	Cursor  string
}

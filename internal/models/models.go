// package models defines the data model for the list migration service
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Model defines the base interface for all persistent models in the list migration service.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Purpose is the app.bsky.graph.defs purpose NSID of a list.
type Purpose string

const (
	PurposeCuration   Purpose = "app.bsky.graph.defs#curatelist"
	PurposeModeration Purpose = "app.bsky.graph.defs#modlist"
)

// ParsePurpose accepts either a short name ("curatelist", "modlist") or a
// full NSID and returns the normalized Purpose.
func ParsePurpose(s string) (Purpose, error) {
	if s == "" {
		return PurposeCuration, nil
	}
	if !strings.HasPrefix(s, "app.bsky.graph.defs#") {
		s = "app.bsky.graph.defs#" + s
	}
	p := Purpose(s)
	switch p {
	case PurposeCuration, PurposeModeration:
		return p, nil
	default:
		return "", fmt.Errorf("unknown list purpose %q (must be curatelist or modlist)", s)
	}
}

// Short returns the purpose without the NSID prefix, for display.
func (p Purpose) Short() string {
	if idx := strings.Index(string(p), "#"); idx >= 0 {
		return string(p)[idx+1:]
	}
	return string(p)
}

// ListInfo represents a Bluesky list's metadata.
type ListInfo struct {
	URI         string  `json:"uri"`
	CID         string  `json:"cid,omitempty"`
	Name        string  `json:"name"`
	Purpose     Purpose `json:"purpose"`
	Description string  `json:"description,omitempty"`
	OwnerDID    string  `json:"owner_did,omitempty"`
	ItemCount   int     `json:"item_count,omitempty"`
}

// ListMember represents a single membership entry from a list.
//
// SubjectDID is the only field the replication pipeline needs; handle and
// display name are carried for rosters and exports.
type ListMember struct {
	SubjectDID    string `json:"subject_did"`
	SubjectHandle string `json:"subject_handle,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

// NewListSpec is the caller-supplied metadata for a list to create.
// It is consumed exactly once per migration run.
type NewListSpec struct {
	Name        string  `json:"name"`
	Purpose     Purpose `json:"purpose"`
	Description string  `json:"description,omitempty"`
}

// Validate checks the spec against the limits app.bsky.graph.list enforces.
func (s NewListSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("list name is required")
	}
	if utf8.RuneCountInString(s.Name) > 64 {
		return fmt.Errorf("list name exceeds 64 characters")
	}
	if utf8.RuneCountInString(s.Description) > 300 {
		return fmt.Errorf("list description exceeds 300 characters")
	}
	if _, err := ParsePurpose(string(s.Purpose)); err != nil {
		return err
	}
	return nil
}

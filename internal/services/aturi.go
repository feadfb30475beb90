package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/skylist/internal/shared"
)

// ListCollection is the NSID of the record collection holding lists.
const ListCollection = "app.bsky.graph.list"

// ListItemCollection is the NSID of the record collection holding list memberships.
const ListItemCollection = "app.bsky.graph.listitem"

var didPattern = regexp.MustCompile(`^did:[a-z]+:[A-Za-z0-9._:%-]+$`)

var rkeyPattern = regexp.MustCompile(`^[A-Za-z0-9._:~-]{1,512}$`)

// ListURI is a parsed at://<did>/app.bsky.graph.list/<rkey> reference.
type ListURI struct {
	DID  string
	RKey string
}

// String reassembles the canonical AT-URI form.
func (u ListURI) String() string {
	return fmt.Sprintf("at://%s/%s/%s", u.DID, ListCollection, u.RKey)
}

// WebURL returns the bsky.app page for the list.
func (u ListURI) WebURL() string {
	return fmt.Sprintf("https://bsky.app/profile/%s/lists/%s", u.DID, u.RKey)
}

// ParseListURI validates a list reference syntactically.
//
// Validation happens before any network call so malformed references are
// rejected as a precondition rather than surfacing mid-pagination.
func ParseListURI(raw string) (ListURI, error) {
	rest, ok := strings.CutPrefix(raw, "at://")
	if !ok {
		return ListURI{}, fmt.Errorf("%w: %q does not start with at://", shared.ErrInvalidListRef, raw)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return ListURI{}, fmt.Errorf("%w: %q must have the form at://<did>/%s/<rkey>", shared.ErrInvalidListRef, raw, ListCollection)
	}

	did, collection, rkey := parts[0], parts[1], parts[2]
	if !didPattern.MatchString(did) {
		return ListURI{}, fmt.Errorf("%w: invalid DID %q", shared.ErrInvalidListRef, did)
	}
	if collection != ListCollection {
		return ListURI{}, fmt.Errorf("%w: collection %q is not %s", shared.ErrInvalidListRef, collection, ListCollection)
	}
	if !rkeyPattern.MatchString(rkey) {
		return ListURI{}, fmt.Errorf("%w: invalid record key %q", shared.ErrInvalidListRef, rkey)
	}

	return ListURI{DID: did, RKey: rkey}, nil
}

// Bluesky PDS implementation of [Service]
//
// XRPC endpoint shapes based on https://docs.bsky.app/docs/category/http-reference
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/shared"
)

// DefaultPDS is the PDS host used when the config leaves pds empty.
const DefaultPDS = "https://bsky.social"

const defaultPageLimit = 100

// xrpcError is the standard XRPC error envelope.
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sessionResponse is the body of com.atproto.server.createSession.
type sessionResponse struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJWT  string `json:"accessJwt"`
	RefreshJWT string `json:"refreshJwt"`
}

// profileRef is the subject of a list item in getList responses.
type profileRef struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// listView is the list object in getList responses.
type listView struct {
	URI           string     `json:"uri"`
	CID           string     `json:"cid"`
	Name          string     `json:"name"`
	Purpose       string     `json:"purpose"`
	Description   string     `json:"description"`
	Creator       profileRef `json:"creator"`
	ListItemCount int        `json:"listItemCount"`
}

// getListResponse is the body of app.bsky.graph.getList.
type getListResponse struct {
	Cursor string   `json:"cursor"`
	List   listView `json:"list"`
	Items  []struct {
		URI     string     `json:"uri"`
		Subject profileRef `json:"subject"`
	} `json:"items"`
}

// createRecordRequest is the body of com.atproto.repo.createRecord.
type createRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	Record     any    `json:"record"`
}

// createRecordResponse is the body returned by com.atproto.repo.createRecord.
type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// listRecord is an app.bsky.graph.list record.
type listRecord struct {
	Type        string `json:"$type"`
	Purpose     string `json:"purpose"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// listItemRecord is an app.bsky.graph.listitem record.
type listItemRecord struct {
	Type      string `json:"$type"`
	Subject   string `json:"subject"`
	List      string `json:"list"`
	CreatedAt string `json:"createdAt"`
}

// BlueskyService implements the Service interface against an AT Protocol PDS.
//
// One instance holds at most one session. The migration pipeline constructs
// two instances so source and destination sessions stay isolated.
type BlueskyService struct {
	baseURL    string
	httpClient *http.Client
	session    *sessionResponse
	now        func() time.Time
}

// NewBlueskyService creates a client for the given PDS host.
// An empty baseURL falls back to [DefaultPDS].
func NewBlueskyService(baseURL string, client *http.Client) *BlueskyService {
	if baseURL == "" {
		baseURL = DefaultPDS
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &BlueskyService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		now:        time.Now,
	}
}

// Name returns the service name.
func (b *BlueskyService) Name() string {
	return "Bluesky"
}

// Handle returns the handle the session resolved to.
func (b *BlueskyService) Handle() string {
	if b.session == nil {
		return ""
	}
	return b.session.Handle
}

// DID returns the authenticated account's DID.
func (b *BlueskyService) DID() string {
	if b.session == nil {
		return ""
	}
	return b.session.DID
}

// Authenticate performs com.atproto.server.createSession with the handle and App Password.
//
// The password is used for this single round trip and is not stored on the
// struct; only the session tokens are retained. Error messages never include
// the password.
func (b *BlueskyService) Authenticate(ctx context.Context, handle, appPassword string) error {
	if handle == "" {
		return fmt.Errorf("%w: handle is required", shared.ErrMissingCredentials)
	}
	if appPassword == "" {
		return fmt.Errorf("%w: app password is required", shared.ErrMissingCredentials)
	}

	body := struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}{Identifier: handle, Password: appPassword}

	var session sessionResponse
	if err := b.doRequest(ctx, http.MethodPost, "com.atproto.server.createSession", nil, body, &session, false); err != nil {
		return err
	}

	b.session = &session
	return nil
}

// GetList retrieves one page of list metadata and members via app.bsky.graph.getList.
func (b *BlueskyService) GetList(ctx context.Context, listURI string, limit int, cursor string) (*ListPage, error) {
	if limit <= 0 || limit > defaultPageLimit {
		limit = defaultPageLimit
	}

	params := url.Values{}
	params.Set("list", listURI)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp getListResponse
	if err := b.doRequest(ctx, http.MethodGet, "app.bsky.graph.getList?"+params.Encode(), nil, nil, &resp, true); err != nil {
		return nil, err
	}

	purpose, err := models.ParsePurpose(resp.List.Purpose)
	if err != nil {
		purpose = models.Purpose(resp.List.Purpose)
	}

	page := &ListPage{
		List: models.ListInfo{
			URI:         resp.List.URI,
			CID:         resp.List.CID,
			Name:        resp.List.Name,
			Purpose:     purpose,
			Description: resp.List.Description,
			OwnerDID:    resp.List.Creator.DID,
			ItemCount:   resp.List.ListItemCount,
		},
		Cursor: resp.Cursor,
	}

	page.Members = make([]models.ListMember, len(resp.Items))
	for i, item := range resp.Items {
		page.Members[i] = models.ListMember{
			SubjectDID:    item.Subject.DID,
			SubjectHandle: item.Subject.Handle,
			DisplayName:   item.Subject.DisplayName,
		}
	}

	return page, nil
}

// CreateList creates an app.bsky.graph.list record in the authenticated account's repository.
func (b *BlueskyService) CreateList(ctx context.Context, spec models.NewListSpec) (string, error) {
	if b.session == nil {
		return "", fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCreateRejected, err)
	}

	body := createRecordRequest{
		Repo:       b.session.DID,
		Collection: ListCollection,
		Record: listRecord{
			Type:        ListCollection,
			Purpose:     string(spec.Purpose),
			Name:        spec.Name,
			Description: spec.Description,
			CreatedAt:   b.now().UTC().Format(time.RFC3339),
		},
	}

	var resp createRecordResponse
	if err := b.doRequest(ctx, http.MethodPost, "com.atproto.repo.createRecord", nil, body, &resp, true); err != nil {
		return "", err
	}

	return resp.URI, nil
}

// AddListItem creates an app.bsky.graph.listitem record linking listURI to subjectDID.
func (b *BlueskyService) AddListItem(ctx context.Context, listURI, subjectDID string) (string, error) {
	if b.session == nil {
		return "", fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	body := createRecordRequest{
		Repo:       b.session.DID,
		Collection: ListItemCollection,
		Record: listItemRecord{
			Type:      ListItemCollection,
			Subject:   subjectDID,
			List:      listURI,
			CreatedAt: b.now().UTC().Format(time.RFC3339),
		},
	}

	var resp createRecordResponse
	if err := b.doRequest(ctx, http.MethodPost, "com.atproto.repo.createRecord", nil, body, &resp, true); err != nil {
		return "", err
	}

	return resp.URI, nil
}

// doRequest performs one XRPC call and decodes the JSON response into result.
//
// authed controls whether the session's access token is attached; createSession
// itself runs unauthenticated.
func (b *BlueskyService) doRequest(ctx context.Context, method, nsid string, _ http.Header, body, result any, authed bool) error {
	apiURL := b.baseURL + "/xrpc/" + nsid

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if authed {
		if b.session == nil {
			return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
		}
		req.Header.Set("Authorization", "Bearer "+b.session.AccessJWT)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return b.classifyError(nsid, resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// classifyError maps an XRPC error response to the shared error taxonomy.
//
// The raw response body is never wrapped into the returned error; only the
// XRPC error code and message, which the PDS guarantees are credential-free.
func (b *BlueskyService) classifyError(nsid string, resp *http.Response) error {
	var xe xrpcError
	_ = json.NewDecoder(resp.Body).Decode(&xe)

	detail := xe.Error
	if xe.Message != "" {
		detail = fmt.Sprintf("%s: %s", xe.Error, xe.Message)
	}
	if detail == "" {
		detail = fmt.Sprintf("status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, detail)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", shared.ErrTransient, detail)
	case resp.StatusCode == http.StatusUnauthorized:
		if nsid == "com.atproto.server.createSession" {
			return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, detail)
		}
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, detail)
	case strings.HasPrefix(nsid, "app.bsky.graph.getList"):
		return fmt.Errorf("%w: %s", shared.ErrListNotFound, detail)
	case nsid == "com.atproto.repo.createRecord":
		return fmt.Errorf("%w: %s", shared.ErrCreateRejected, detail)
	default:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, detail)
	}
}

package services

import (
	"errors"
	"testing"

	"github.com/desertthunder/skylist/internal/shared"
)

func TestParseListURI(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantDID  string
		wantRKey string
		wantErr  bool
	}{
		{
			name:     "valid plc list URI",
			raw:      "at://did:plc:abc123xyz/app.bsky.graph.list/3kowxyz",
			wantDID:  "did:plc:abc123xyz",
			wantRKey: "3kowxyz",
		},
		{
			name:     "valid web did",
			raw:      "at://did:web:example.com/app.bsky.graph.list/self",
			wantDID:  "did:web:example.com",
			wantRKey: "self",
		},
		{
			name:    "missing scheme",
			raw:     "did:plc:abc123/app.bsky.graph.list/3kow",
			wantErr: true,
		},
		{
			name:    "https url instead of at-uri",
			raw:     "https://bsky.app/profile/someone/lists/3kow",
			wantErr: true,
		},
		{
			name:    "wrong collection",
			raw:     "at://did:plc:abc123/app.bsky.feed.generator/3kow",
			wantErr: true,
		},
		{
			name:    "missing rkey",
			raw:     "at://did:plc:abc123/app.bsky.graph.list",
			wantErr: true,
		},
		{
			name:    "extra path segments",
			raw:     "at://did:plc:abc123/app.bsky.graph.list/3kow/extra",
			wantErr: true,
		},
		{
			name:    "invalid did method chars",
			raw:     "at://did:PLC:abc123/app.bsky.graph.list/3kow",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := ParseListURI(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, shared.ErrInvalidListRef) {
					t.Errorf("error = %v, want %v", err, shared.ErrInvalidListRef)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if uri.DID != tt.wantDID {
				t.Errorf("DID = %s, want %s", uri.DID, tt.wantDID)
			}
			if uri.RKey != tt.wantRKey {
				t.Errorf("RKey = %s, want %s", uri.RKey, tt.wantRKey)
			}
			if uri.String() != tt.raw {
				t.Errorf("String() = %s, want %s", uri.String(), tt.raw)
			}
		})
	}
}

func TestListURI_WebURL(t *testing.T) {
	uri := ListURI{DID: "did:plc:abc123", RKey: "3kow"}
	want := "https://bsky.app/profile/did:plc:abc123/lists/3kow"
	if got := uri.WebURL(); got != want {
		t.Errorf("WebURL() = %s, want %s", got, want)
	}
}

package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/shared"
	internaltesting "github.com/desertthunder/skylist/internal/testing"
)

var testList = models.ListInfo{
	URI:         "at://did:plc:abc/app.bsky.graph.list/3kow",
	Name:        "Mutuals",
	Purpose:     models.PurposeCuration,
	Description: "people I like",
}

var testMembers = []models.ListMember{
	{SubjectDID: "did:plc:m1", SubjectHandle: "m1.bsky.social", DisplayName: "Member One"},
	{SubjectDID: "did:plc:m2", SubjectHandle: "m2.bsky.social"},
	{SubjectDID: "did:plc:m3"},
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testList, testMembers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[0] != "Index,DID,Handle,DisplayName" {
		t.Errorf("header = %s", lines[0])
	}
	if lines[1] != "1,did:plc:m1,m1.bsky.social,Member One" {
		t.Errorf("row = %s", lines[1])
	}
	if lines[3] != "3,did:plc:m3,," {
		t.Errorf("row = %s", lines[3])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testList, testMembers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"# Mutuals",
		"**Description**: people I like",
		"**Purpose**: curatelist",
		"**Members**: 3",
		"1. Member One (m1.bsky.social)",
		"`did:plc:m3`",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestExportToText(t *testing.T) {
	data := ExportToText(testList, testMembers)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[0] != "Mutuals (3 members)" {
		t.Errorf("header = %s", lines[0])
	}
	if lines[1] != "did:plc:m1\tm1.bsky.social" {
		t.Errorf("line = %q", lines[1])
	}
	if lines[3] != "did:plc:m3" {
		t.Errorf("line = %q", lines[3])
	}
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(testList, testMembers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		List    models.ListInfo     `json:"list"`
		Members []models.ListMember `json:"members"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.List.Name != "Mutuals" {
		t.Errorf("list name = %s", doc.List.Name)
	}
	if len(doc.Members) != 3 {
		t.Errorf("len(members) = %d, want 3", len(doc.Members))
	}
}

func TestWriteExport(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"csv", "Index,DID,Handle,DisplayName"},
		{"markdown", "# Mutuals"},
		{"md", "# Mutuals"},
		{"txt", "Mutuals (3 members)"},
		{"json", "\"members\""},
		{"", "\"members\""},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "export.out")
			if err := WriteExport(testList, testMembers, tt.format, path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			internaltesting.AssertFileExists(t, path)
			if content := internaltesting.MustReadFile(t, path); !strings.Contains(content, tt.want) {
				t.Errorf("export missing %q", tt.want)
			}
		})
	}
}

func TestWriteExport_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.out")
	err := WriteExport(testList, testMembers, "xml", path)
	if !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("error = %v, want %v", err, shared.ErrInvalidFlag)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no file should be written for unsupported formats")
	}
}

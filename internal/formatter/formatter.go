// package formatter provides functions to export list rosters to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/shared"
)

// ExportToCSV converts a list roster to CSV format with columns: Index, DID, Handle, DisplayName
func ExportToCSV(list models.ListInfo, members []models.ListMember) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "DID", "Handle", "DisplayName"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, member := range members {
		record := []string{
			fmt.Sprintf("%d", i+1),
			member.SubjectDID,
			member.SubjectHandle,
			member.DisplayName,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a list roster to Markdown format
func ExportToMarkdown(list models.ListInfo, members []models.ListMember) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", list.Name))

	if list.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", list.Description))
	}

	buf.WriteString(fmt.Sprintf("**Purpose**: %s\n", list.Purpose.Short()))
	buf.WriteString(fmt.Sprintf("**URI**: `%s`\n", list.URI))
	buf.WriteString(fmt.Sprintf("**Members**: %d\n\n", len(members)))

	buf.WriteString("## Members\n\n")
	for i, member := range members {
		label := member.SubjectHandle
		if label == "" {
			label = member.SubjectDID
		}
		if member.DisplayName != "" {
			buf.WriteString(fmt.Sprintf("%d. %s (%s) - `%s`\n", i+1, member.DisplayName, label, member.SubjectDID))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s - `%s`\n", i+1, label, member.SubjectDID))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a list roster to plain text, one member per line
func ExportToText(list models.ListInfo, members []models.ListMember) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%d members)\n", list.Name, len(members)))
	for _, member := range members {
		if member.SubjectHandle != "" {
			buf.WriteString(fmt.Sprintf("%s\t%s\n", member.SubjectDID, member.SubjectHandle))
		} else {
			buf.WriteString(member.SubjectDID + "\n")
		}
	}

	return buf.Bytes()
}

// rosterDocument is the JSON export shape.
type rosterDocument struct {
	List    models.ListInfo     `json:"list"`
	Members []models.ListMember `json:"members"`
}

// ExportToJSON converts a list roster to pretty-printed JSON
func ExportToJSON(list models.ListInfo, members []models.ListMember) ([]byte, error) {
	return shared.MarshalJSON(rosterDocument{List: list, Members: members}, true)
}

// WriteExport renders the roster in the given format and writes it to path.
// Supported formats: csv, markdown, txt, json (default).
func WriteExport(list models.ListInfo, members []models.ListMember, format, path string) error {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = ExportToCSV(list, members)
	case "markdown", "md":
		data, err = ExportToMarkdown(list, members)
	case "txt", "text":
		data = ExportToText(list, members)
	case "json", "":
		data, err = ExportToJSON(list, members)
	default:
		return fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	return nil
}

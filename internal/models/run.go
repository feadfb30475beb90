package models

import (
	"fmt"
	"time"
)

// Run status values for [MigrationRun].
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

var _ Model = (*MigrationRun)(nil)

// MigrationRun tracks one list migration run: which list was copied where,
// the final counts, and the last fetch cursor seen (a checkpoint for
// inspection after a crash; runs themselves are not resumed).
type MigrationRun struct {
	id            string
	sequence      int
	sourceHandle  string
	sourceListURI string
	destHandle    string
	destListURI   string
	listName      string
	listPurpose   Purpose
	status        string
	membersFound  int
	membersAdded  int
	membersFailed int
	fetchCursor   string
	errorMessage  string
	startedAt     *time.Time
	completedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewMigrationRun creates a pending run for the given source list and destination list spec.
func NewMigrationRun(sequence int, sourceHandle, sourceListURI, destHandle string, spec NewListSpec) *MigrationRun {
	now := time.Now()
	return &MigrationRun{
		sequence:      sequence,
		sourceHandle:  sourceHandle,
		sourceListURI: sourceListURI,
		destHandle:    destHandle,
		listName:      spec.Name,
		listPurpose:   spec.Purpose,
		status:        RunStatusPending,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (m *MigrationRun) ID() string              { return m.id }
func (m *MigrationRun) Sequence() int           { return m.sequence }
func (m *MigrationRun) SourceHandle() string    { return m.sourceHandle }
func (m *MigrationRun) SourceListURI() string   { return m.sourceListURI }
func (m *MigrationRun) DestHandle() string      { return m.destHandle }
func (m *MigrationRun) DestListURI() string     { return m.destListURI }
func (m *MigrationRun) ListName() string        { return m.listName }
func (m *MigrationRun) ListPurpose() Purpose    { return m.listPurpose }
func (m *MigrationRun) Status() string          { return m.status }
func (m *MigrationRun) MembersFound() int       { return m.membersFound }
func (m *MigrationRun) MembersAdded() int       { return m.membersAdded }
func (m *MigrationRun) MembersFailed() int      { return m.membersFailed }
func (m *MigrationRun) FetchCursor() string     { return m.fetchCursor }
func (m *MigrationRun) ErrorMessage() string    { return m.errorMessage }
func (m *MigrationRun) StartedAt() *time.Time   { return m.startedAt }
func (m *MigrationRun) CompletedAt() *time.Time { return m.completedAt }
func (m *MigrationRun) CreatedAt() time.Time    { return m.createdAt }
func (m *MigrationRun) UpdatedAt() time.Time    { return m.updatedAt }
func (m *MigrationRun) DeletedAt() *time.Time   { return m.deletedAt }

func (m *MigrationRun) SetID(id string)              { m.id = id }
func (m *MigrationRun) SetSequence(seq int)          { m.sequence = seq }
func (m *MigrationRun) SetDestListURI(uri string)    { m.destListURI = uri }
func (m *MigrationRun) SetStatus(status string)      { m.status = status }
func (m *MigrationRun) SetMembersFound(n int)        { m.membersFound = n }
func (m *MigrationRun) SetMembersAdded(n int)        { m.membersAdded = n }
func (m *MigrationRun) SetMembersFailed(n int)       { m.membersFailed = n }
func (m *MigrationRun) SetFetchCursor(cursor string) { m.fetchCursor = cursor }
func (m *MigrationRun) SetErrorMessage(msg string)   { m.errorMessage = msg }
func (m *MigrationRun) SetStartedAt(t *time.Time)    { m.startedAt = t }
func (m *MigrationRun) SetCompletedAt(t *time.Time)  { m.completedAt = t }
func (m *MigrationRun) SetCreatedAt(t time.Time)     { m.createdAt = t }
func (m *MigrationRun) SetUpdatedAt(t time.Time)     { m.updatedAt = t }
func (m *MigrationRun) SetDeletedAt(t *time.Time)    { m.deletedAt = t }

// Validate checks that the run's data is internally consistent.
//
// The app password is deliberately absent from this model: credentials are
// request-scoped and never persisted.
func (m *MigrationRun) Validate() error {
	if m.sourceHandle == "" {
		return fmt.Errorf("source handle is required")
	}
	if m.sourceListURI == "" {
		return fmt.Errorf("source list URI is required")
	}
	if m.destHandle == "" {
		return fmt.Errorf("destination handle is required")
	}
	if m.listName == "" {
		return fmt.Errorf("list name is required")
	}
	switch m.status {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusPartial, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status: %s", m.status)
	}
	if m.membersAdded+m.membersFailed > m.membersFound {
		return fmt.Errorf("member counts exceed members found")
	}
	return nil
}

// RunFailure records one member write that failed during a run.
type RunFailure struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Index      int       `json:"index"`
	SubjectDID string    `json:"subject_did"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

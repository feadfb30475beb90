package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/shared"
)

// RunRepository implements models.Repository[*models.MigrationRun] for run tracking.
//
// Handles run CRUD with soft delete support, status-based queries, and
// per-member failure records. Also satisfies tasks.RunStore.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.MigrationRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetSequence(sequence)
	run.SetID(shared.GenerateID())

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (
			id, sequence, source_handle, source_list_uri, dest_handle,
			dest_list_uri, list_name, list_purpose, status, members_found,
			members_added, members_failed, fetch_cursor, error_message,
			started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.SourceHandle(),
		run.SourceListURI(),
		run.DestHandle(),
		nullable(run.DestListURI()),
		run.ListName(),
		string(run.ListPurpose()),
		run.Status(),
		run.MembersFound(),
		run.MembersAdded(),
		run.MembersFailed(),
		nullable(run.FetchCursor()),
		nullable(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.MigrationRun, error) {
	query := selectRuns + " AND id = ?"
	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query run: %w", err)
		}
		return nil, fmt.Errorf("run not found: %s", id)
	}

	return r.scanRow(rows)
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.MigrationRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET dest_list_uri = ?, status = ?, members_found = ?,
			members_added = ?, members_failed = ?, fetch_cursor = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullable(run.DestListURI()),
		run.Status(),
		run.MembersFound(),
		run.MembersAdded(),
		run.MembersFailed(),
		nullable(run.FetchCursor()),
		nullable(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all runs matching the given criteria, excluding soft-deleted runs
func (r *RunRepository) List(criteria map[string]any) ([]*models.MigrationRun, error) {
	query := selectRuns
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if sourceHandle, ok := criteria["source_handle"].(string); ok && sourceHandle != "" {
		query += " AND source_handle = ?"
		args = append(args, sourceHandle)
	}

	if destHandle, ok := criteria["dest_handle"].(string); ok && destHandle != "" {
		query += " AND dest_handle = ?"
		args = append(args, destHandle)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.MigrationRun
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// AddFailure records a failed member write for a run.
func (r *RunRepository) AddFailure(failure *models.RunFailure) error {
	if failure.ID == "" {
		failure.ID = shared.GenerateID()
	}
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO run_failures (id, run_id, member_index, subject_did, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		failure.ID,
		failure.RunID,
		failure.Index,
		failure.SubjectDID,
		nullable(failure.Reason),
		failure.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run failure: %w", err)
	}

	return nil
}

// Failures retrieves the failed member writes for a run, in source order.
func (r *RunRepository) Failures(runID string) ([]models.RunFailure, error) {
	query := `
		SELECT id, run_id, member_index, subject_did, reason, created_at
		FROM run_failures
		WHERE run_id = ?
		ORDER BY member_index ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}
	defer rows.Close()

	var failures []models.RunFailure
	for rows.Next() {
		var f models.RunFailure
		var reason sql.NullString
		if err := rows.Scan(&f.ID, &f.RunID, &f.Index, &f.SubjectDID, &reason, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run failure: %w", err)
		}
		if reason.Valid {
			f.Reason = reason.String
		}
		failures = append(failures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return failures, nil
}

const selectRuns = `
	SELECT
		id, sequence, source_handle, source_list_uri, dest_handle,
		dest_list_uri, list_name, list_purpose, status, members_found,
		members_added, members_failed, fetch_cursor, error_message,
		started_at, completed_at, created_at, updated_at, deleted_at
	FROM runs
	WHERE deleted_at IS NULL
`

// scanRow scans a row from [sql.Rows] into a [models.MigrationRun]
func (r *RunRepository) scanRow(rows *sql.Rows) (*models.MigrationRun, error) {
	var (
		id            string
		sequence      int
		sourceHandle  string
		sourceListURI string
		destHandle    string
		destListURI   sql.NullString
		listName      string
		listPurpose   string
		status        string
		membersFound  int
		membersAdded  int
		membersFailed int
		fetchCursor   sql.NullString
		errorMessage  sql.NullString
		startedAt     sql.NullTime
		completedAt   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &sourceHandle, &sourceListURI, &destHandle,
		&destListURI, &listName, &listPurpose, &status, &membersFound,
		&membersAdded, &membersFailed, &fetchCursor, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	spec := models.NewListSpec{Name: listName, Purpose: models.Purpose(listPurpose)}
	run := models.NewMigrationRun(sequence, sourceHandle, sourceListURI, destHandle, spec)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.SetStatus(status)
	run.SetMembersFound(membersFound)
	run.SetMembersAdded(membersAdded)
	run.SetMembersFailed(membersFailed)

	if destListURI.Valid {
		run.SetDestListURI(destListURI.String)
	}
	if fetchCursor.Valid {
		run.SetFetchCursor(fetchCursor.String)
	}
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

// nullable converts empty strings to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

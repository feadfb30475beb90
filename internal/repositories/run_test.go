package repositories

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newTestRun() *models.MigrationRun {
	return models.NewMigrationRun(0, "old.bsky.social", "at://did:plc:abc/app.bsky.graph.list/3kow", "new.bsky.social", models.NewListSpec{Name: "Mutuals", Purpose: models.PurposeCuration})
}

func TestNextSequence(t *testing.T) {
	db := newTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("NextSequence = %d, want %d", got, want)
		}
	}
}

func TestRunRepository_CreateAndGet(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := newTestRun()
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if run.ID() == "" {
		t.Fatal("Create must assign an ID")
	}
	if run.Sequence() != 1 {
		t.Errorf("Sequence = %d, want 1", run.Sequence())
	}

	got, err := repo.Get(run.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SourceHandle() != "old.bsky.social" {
		t.Errorf("SourceHandle = %s", got.SourceHandle())
	}
	if got.ListName() != "Mutuals" {
		t.Errorf("ListName = %s", got.ListName())
	}
	if got.ListPurpose() != models.PurposeCuration {
		t.Errorf("ListPurpose = %s", got.ListPurpose())
	}
	if got.Status() != models.RunStatusPending {
		t.Errorf("Status = %s", got.Status())
	}
}

func TestRunRepository_Get_NotFound(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	if _, err := repo.Get("nonexistent"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestRunRepository_Update(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := newTestRun()
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	now := time.Now()
	run.SetStatus(models.RunStatusPartial)
	run.SetDestListURI("at://did:plc:dest/app.bsky.graph.list/3knew")
	run.SetMembersFound(5)
	run.SetMembersAdded(4)
	run.SetMembersFailed(1)
	run.SetFetchCursor("page-3")
	run.SetStartedAt(&now)
	run.SetCompletedAt(&now)

	if err := repo.Update(run); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.Get(run.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status() != models.RunStatusPartial {
		t.Errorf("Status = %s, want partial", got.Status())
	}
	if got.DestListURI() != "at://did:plc:dest/app.bsky.graph.list/3knew" {
		t.Errorf("DestListURI = %s", got.DestListURI())
	}
	if got.MembersAdded() != 4 || got.MembersFailed() != 1 {
		t.Errorf("counts = %d/%d, want 4/1", got.MembersAdded(), got.MembersFailed())
	}
	if got.FetchCursor() != "page-3" {
		t.Errorf("FetchCursor = %s, want page-3", got.FetchCursor())
	}
	if got.StartedAt() == nil || got.CompletedAt() == nil {
		t.Error("timestamps not persisted")
	}
}

func TestRunRepository_Update_MissingRun(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := newTestRun()
	run.SetID("ghost")
	if err := repo.Update(run); err == nil {
		t.Error("expected error updating missing run")
	}
}

func TestRunRepository_Delete(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := newTestRun()
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(run.ID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Soft delete hides the run from reads but keeps the row.
	if _, err := repo.Get(run.ID()); err == nil {
		t.Error("deleted run still visible")
	}
	var count int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM runs WHERE id = ?", run.ID()).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1 (soft delete)", count)
	}

	if err := repo.Delete(run.ID()); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestRunRepository_List(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	first := newTestRun()
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second := newTestRun()
	if err := repo.Create(second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second.SetStatus(models.RunStatusCompleted)
	if err := repo.Update(second); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	all, err := repo.List(map[string]any{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	// Most recent first.
	if all[0].Sequence() != 2 || all[1].Sequence() != 1 {
		t.Errorf("order = %d, %d, want 2, 1", all[0].Sequence(), all[1].Sequence())
	}

	completed, err := repo.List(map[string]any{"status": models.RunStatusCompleted})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID() != second.ID() {
		t.Errorf("status filter returned %d runs", len(completed))
	}
}

func TestRunRepository_Failures(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := newTestRun()
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Insert out of order; reads come back ordered by member index.
	for _, f := range []models.RunFailure{
		{RunID: run.ID(), Index: 4, SubjectDID: "did:plc:m5", Reason: "rate limited"},
		{RunID: run.ID(), Index: 1, SubjectDID: "did:plc:m2", Reason: "record rejected"},
	} {
		failure := f
		if err := repo.AddFailure(&failure); err != nil {
			t.Fatalf("AddFailure failed: %v", err)
		}
	}

	failures, err := repo.Failures(run.ID())
	if err != nil {
		t.Fatalf("Failures failed: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("len(failures) = %d, want 2", len(failures))
	}
	if failures[0].Index != 1 || failures[0].SubjectDID != "did:plc:m2" {
		t.Errorf("failures[0] = %+v", failures[0])
	}
	if failures[1].Index != 4 {
		t.Errorf("failures[1] = %+v", failures[1])
	}
}

func TestRunRepository_Create_InvalidRun(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := models.NewMigrationRun(0, "", "", "", models.NewListSpec{})
	err := repo.Create(run)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("error = %v", err)
	}
}

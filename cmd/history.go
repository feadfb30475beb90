package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/urfave/cli/v3"
)

// runSummary is the JSON shape for history output.
type runSummary struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	Status        string     `json:"status"`
	SourceHandle  string     `json:"source_handle"`
	SourceListURI string     `json:"source_list_uri"`
	DestHandle    string     `json:"dest_handle"`
	DestListURI   string     `json:"dest_list_uri,omitempty"`
	ListName      string     `json:"list_name"`
	MembersFound  int        `json:"members_found"`
	MembersAdded  int        `json:"members_added"`
	MembersFailed int        `json:"members_failed"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func summarize(run *models.MigrationRun) runSummary {
	return runSummary{
		ID:            run.ID(),
		Sequence:      run.Sequence(),
		Status:        run.Status(),
		SourceHandle:  run.SourceHandle(),
		SourceListURI: run.SourceListURI(),
		DestHandle:    run.DestHandle(),
		DestListURI:   run.DestListURI(),
		ListName:      run.ListName(),
		MembersFound:  run.MembersFound(),
		MembersAdded:  run.MembersAdded(),
		MembersFailed: run.MembersFailed(),
		ErrorMessage:  run.ErrorMessage(),
		StartedAt:     run.StartedAt(),
		CompletedAt:   run.CompletedAt(),
		CreatedAt:     run.CreatedAt(),
	}
}

// requireRepo returns the run repository or an error directing the user to setup.
func (r *Runner) requireRepo() error {
	if r.repo == nil {
		return fmt.Errorf("%w: run database not initialized (run 'skylist setup database' first)", shared.ErrServiceUnavailable)
	}
	return nil
}

// HistoryList lists recorded migration runs, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRepo(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	runs, err := r.repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summaries := make([]runSummary, len(runs))
		for i, run := range runs {
			summaries[i] = summarize(run)
		}
		return r.writeJSON(summaries, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded runs.\n")
	}

	for _, run := range runs {
		r.writePlain("#%d  %-9s  %q  %s → %s  (%d/%d added)\n",
			run.Sequence(), run.Status(), run.ListName(),
			run.SourceHandle(), run.DestHandle(),
			run.MembersAdded(), run.MembersFound(),
		)
		r.writePlain("     id: %s  created: %s\n", run.ID(), run.CreatedAt().Format(time.RFC3339))
	}

	return nil
}

// HistoryShow prints one run in full, including its failed member writes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRepo(); err != nil {
		return err
	}

	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: run id is required", shared.ErrMissingArgument)
	}

	run, err := r.repo.Get(id)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence(), run.Status()))
	r.writePlain("ID: %s\n", run.ID())
	r.writePlain("List: %q (%s)\n", run.ListName(), run.ListPurpose().Short())
	r.writePlain("Source: %s\n", run.SourceHandle())
	r.writePlain("  %s\n", run.SourceListURI())
	r.writePlain("Destination: %s\n", run.DestHandle())
	if run.DestListURI() != "" {
		r.writePlain("  %s\n", run.DestListURI())
	}
	r.writePlain("Members: %d found, %d added, %d failed\n",
		run.MembersFound(), run.MembersAdded(), run.MembersFailed())

	if run.StartedAt() != nil {
		r.writePlain("Started: %s\n", run.StartedAt().Format(time.RFC3339))
	}
	if run.CompletedAt() != nil {
		r.writePlain("Completed: %s\n", run.CompletedAt().Format(time.RFC3339))
	}
	if run.ErrorMessage() != "" {
		r.writePlain("Error: %s\n", run.ErrorMessage())
	}

	failures, err := r.repo.Failures(run.ID())
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		r.writePlain("\nFailed member writes:\n")
		for _, failure := range failures {
			r.writePlain("  - [%d] %s: %s\n", failure.Index+1, failure.SubjectDID, failure.Reason)
		}
	}

	return nil
}

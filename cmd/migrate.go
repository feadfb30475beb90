package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/desertthunder/skylist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MigrateRun runs a full source → destination list migration.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	sourceList := cmd.String("source-list")
	name := cmd.String("name")

	if err := r.config.Credentials.Source.Validate(); err != nil {
		return fmt.Errorf("source account: %w", err)
	}
	if err := r.config.Credentials.Destination.Validate(); err != nil {
		return fmt.Errorf("destination account: %w", err)
	}

	purpose, err := models.ParsePurpose(cmd.String("purpose"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	req := tasks.MigrationRequest{
		SourceHandle:   r.config.Credentials.Source.Handle,
		SourcePassword: r.config.Credentials.Source.AppPassword,
		SourceListURI:  sourceList,
		DestHandle:     r.config.Credentials.Destination.Handle,
		DestPassword:   r.config.Credentials.Destination.AppPassword,
		Spec: models.NewListSpec{
			Name:        name,
			Purpose:     purpose,
			Description: cmd.String("description"),
		},
	}
	if cmd.Bool("skip-duplicates") {
		req.Duplicates = tasks.DuplicateSkip
	}

	r.logger.Info("starting migration", "source", req.SourceHandle, "dest", req.DestHandle, "list", sourceList)

	if cmd.Bool("dry-run") {
		return r.migrateDryRun(ctx, req)
	}

	r.writePlain("Starting list migration...\n")
	r.writePlain("Source: %s\n", req.SourceHandle)
	r.writePlain("Destination: %s\n\n", req.DestHandle)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.AuthSource, tasks.AuthDest:
				r.writePlain("🔐 %s\n", update.Message)
			case tasks.FetchMembers:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.CreateList:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.AddMembers:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	// Run the engine operation
	result, err := r.engine.Run(ctx, req, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	// Output summary
	r.writePlain("\n")
	if result.MembersFailed == 0 {
		r.writePlainHeader("Migration Complete!")
	} else {
		r.writePlainHeader("Migration Finished With Failures")
	}
	r.writePlain("Source: %s (%d members)\n", result.SourceList.Name, result.MembersFound)
	r.writePlain("New list: %s\n", result.DestListURI)

	webURL := ""
	if uri, err := services.ParseListURI(result.DestListURI); err == nil {
		webURL = uri.WebURL()
		r.writePlain("Web URL: %s\n", webURL)
	}
	r.writePlain("Added: %d/%d members\n", result.MembersAdded, result.MembersFound)
	if result.RunID != "" {
		r.writePlain("Run ID: %s\n", result.RunID)
	}

	if result.MembersFailed > 0 {
		r.writePlain("\nFailed to add %d members:\n", result.MembersFailed)
		for _, failure := range result.Failures {
			r.writePlain("  - [%d] %s: %v\n", failure.Index+1, failure.SubjectDID, failure.Err)
		}
	}

	if cmd.Bool("open") && webURL != "" {
		if err := shared.OpenBrowser(webURL); err != nil {
			r.logger.Warn("failed to open browser", "url", webURL, "error", err)
		}
	}

	return nil
}

// migrateDryRun fetches the source roster and reports what a real run would do.
func (r *Runner) migrateDryRun(ctx context.Context, req tasks.MigrationRequest) error {
	r.writePlain("Dry run: nothing will be written to %s\n\n", req.DestHandle)

	if err := r.source.Authenticate(ctx, req.SourceHandle, req.SourcePassword); err != nil {
		return fmt.Errorf("%w: source account: %v", shared.ErrAuthFailed, err)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	roster, err := r.engine.FetchAllMembers(ctx, r.source, req.SourceListURI, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	members := roster.Members
	skipped := 0
	if req.Duplicates == tasks.DuplicateSkip {
		seen := make(map[string]bool, len(members))
		kept := members[:0:0]
		for _, m := range members {
			if seen[m.SubjectDID] {
				skipped++
				continue
			}
			seen[m.SubjectDID] = true
			kept = append(kept, m)
		}
		members = kept
	}

	r.writePlain("\n")
	r.writePlainHeader("Dry Run Summary")
	r.writePlain("Source list: %s (%d members)\n", roster.List.Name, len(roster.Members))
	r.writePlain("Would create: %q (%s) on %s\n", req.Spec.Name, req.Spec.Purpose.Short(), req.DestHandle)
	if skipped > 0 {
		r.writePlain("Would skip %d duplicate members\n", skipped)
	}
	r.writePlain("Would add %d members:\n", len(members))
	for i, member := range members {
		if member.SubjectHandle != "" {
			r.writePlain("  %d. @%s (%s)\n", i+1, member.SubjectHandle, member.SubjectDID)
		} else {
			r.writePlain("  %d. %s\n", i+1, member.SubjectDID)
		}
	}

	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/skylist/internal/formatter"
	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/desertthunder/skylist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ListMembers fetches a list's complete membership and renders it.
func (r *Runner) ListMembers(ctx context.Context, cmd *cli.Command) error {
	listURI := cmd.String("source-list")
	format := cmd.String("format")
	outputPath := cmd.String("output")

	account := r.config.Credentials.Source
	if err := account.Validate(); err != nil {
		return fmt.Errorf("source account: %w", err)
	}

	r.logger.Info("fetching list members", "list", listURI)

	if err := r.source.Authenticate(ctx, account.Handle, account.AppPassword); err != nil {
		return fmt.Errorf("%w: source account: %v", shared.ErrAuthFailed, err)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	roster, err := r.engine.FetchAllMembers(ctx, r.source, listURI, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := formatter.WriteExport(roster.List, roster.Members, format, outputPath); err != nil {
			return err
		}
		return r.writePlain("Wrote %d members to %s\n", len(roster.Members), outputPath)
	}

	var data []byte
	switch format {
	case "csv":
		data, err = formatter.ExportToCSV(roster.List, roster.Members)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(roster.List, roster.Members)
	case "txt", "text", "":
		data = formatter.ExportToText(roster.List, roster.Members)
	case "json":
		data, err = formatter.ExportToJSON(roster.List, roster.Members)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// ListCreate creates an empty list on the chosen account.
func (r *Runner) ListCreate(ctx context.Context, cmd *cli.Command) error {
	svc, account, err := r.resolveAccount(cmd.String("account"))
	if err != nil {
		return err
	}
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%s account: %w", cmd.String("account"), err)
	}

	purpose, err := models.ParsePurpose(cmd.String("purpose"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	spec := models.NewListSpec{
		Name:        cmd.String("name"),
		Purpose:     purpose,
		Description: cmd.String("description"),
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("creating list", "name", spec.Name, "account", account.Handle)

	if err := svc.Authenticate(ctx, account.Handle, account.AppPassword); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, account.Handle, err)
	}

	uri, err := svc.CreateList(ctx, spec)
	if err != nil {
		return err
	}

	r.writePlain("Created list %q\n", spec.Name)
	r.writePlain("URI: %s\n", uri)
	if parsed, err := services.ParseListURI(uri); err == nil {
		r.writePlain("Web URL: %s\n", parsed.WebURL())
	}

	return nil
}

package main

import (
	"strings"
	"testing"

	"github.com/desertthunder/skylist/internal/shared"
)

func TestRunner_MigrateRun(t *testing.T) {
	source, dest := testServices()
	runner, output := newTestRunner(source, dest)

	err := run(t, runner, "migrate", "run", "--source-list", testListURI, "--name", "Mutuals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dest.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", dest.createCalls)
	}
	if len(dest.added) != 3 {
		t.Errorf("added %d members, want 3", len(dest.added))
	}

	got := output.String()
	if !strings.Contains(got, "Migration Complete!") {
		t.Errorf("output missing summary header: %q", got)
	}
	if !strings.Contains(got, "Mutuals (3 members)") {
		t.Errorf("output missing source summary: %q", got)
	}
	if !strings.Contains(got, "at://did:plc:dest456/app.bsky.graph.list/3knew") {
		t.Errorf("output missing new list URI: %q", got)
	}
	if !strings.Contains(got, "https://bsky.app/profile/did:plc:dest456/lists/3knew") {
		t.Errorf("output missing web URL: %q", got)
	}
	if !strings.Contains(got, "Added: 3/3") {
		t.Errorf("output missing counts: %q", got)
	}
}

func TestRunner_MigrateRun_DryRun(t *testing.T) {
	source, dest := testServices()
	runner, output := newTestRunner(source, dest)

	err := run(t, runner, "migrate", "run", "--source-list", testListURI, "--name", "Mutuals", "--dry-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dest.authCalls != 0 || dest.createCalls != 0 || len(dest.added) != 0 {
		t.Error("dry run must not touch the destination account")
	}

	got := output.String()
	if !strings.Contains(got, "Dry Run Summary") {
		t.Errorf("output missing dry run header: %q", got)
	}
	if !strings.Contains(got, "Would add 3 members") {
		t.Errorf("output missing member count: %q", got)
	}
	if !strings.Contains(got, "@m1.bsky.social") {
		t.Errorf("output missing member listing: %q", got)
	}
}

func TestRunner_MigrateRun_InvalidURI(t *testing.T) {
	source, dest := testServices()
	runner, _ := newTestRunner(source, dest)

	err := run(t, runner, "migrate", "run", "--source-list", "https://bsky.app/profile/x/lists/y", "--name", "Mutuals")
	if err == nil {
		t.Fatal("expected error for non-AT-URI list reference")
	}
	if source.authCalls != 0 {
		t.Error("malformed input must be rejected before any network call")
	}
}

func TestRunner_MigrateRun_InvalidPurpose(t *testing.T) {
	runner, _ := newTestRunner(testServices())

	err := run(t, runner, "migrate", "run", "--source-list", testListURI, "--name", "Mutuals", "--purpose", "blocklist")
	if err == nil {
		t.Fatal("expected error for unknown purpose")
	}
}

func TestRunner_MigrateRun_MissingCredentials(t *testing.T) {
	source, dest := testServices()
	runner, _ := newTestRunner(source, dest)
	runner.config.Credentials.Destination.AppPassword = ""

	err := run(t, runner, "migrate", "run", "--source-list", testListURI, "--name", "Mutuals")
	if err == nil {
		t.Fatal("expected error for missing destination credentials")
	}
	if source.authCalls != 0 {
		t.Error("credential validation must happen before any network call")
	}
}

func TestRunner_ListMembers(t *testing.T) {
	source, dest := testServices()
	runner, output := newTestRunner(source, dest)

	if err := run(t, runner, "list", "members", "--source-list", testListURI); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "Mutuals (3 members)") {
		t.Errorf("output missing header: %q", got)
	}
	for _, did := range []string{"did:plc:m1", "did:plc:m2", "did:plc:m3"} {
		if !strings.Contains(got, did) {
			t.Errorf("output missing %s: %q", did, got)
		}
	}
	if source.getCalls != 2 {
		t.Errorf("getCalls = %d, want 2 (one per page)", source.getCalls)
	}
}

func TestRunner_ListMembers_UnsupportedFormat(t *testing.T) {
	runner, _ := newTestRunner(testServices())

	err := run(t, runner, "list", "members", "--source-list", testListURI, "--format", "xml")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRunner_ListCreate(t *testing.T) {
	source, dest := testServices()
	runner, output := newTestRunner(source, dest)

	err := run(t, runner, "list", "create", "--name", "Fresh", "--purpose", "modlist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dest.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", dest.createCalls)
	}
	if source.createCalls != 0 {
		t.Error("list create defaults to the destination account")
	}
	if !strings.Contains(output.String(), "at://did:plc:dest456/app.bsky.graph.list/3knew") {
		t.Errorf("output missing list URI: %q", output.String())
	}
}

func TestRunner_ListCreate_Rejected(t *testing.T) {
	source, dest := testServices()
	dest.createErr = shared.ErrCreateRejected
	runner, _ := newTestRunner(source, dest)

	if err := run(t, runner, "list", "create", "--name", "Fresh"); err == nil {
		t.Fatal("expected error when the PDS rejects the record")
	}
}

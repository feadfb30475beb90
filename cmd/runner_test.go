package main

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/desertthunder/skylist/internal/tasks"
	internaltesting "github.com/desertthunder/skylist/internal/testing"
	"github.com/urfave/cli/v3"
)

const testListURI = "at://did:plc:source123/app.bsky.graph.list/3kabc"

type mockService struct {
	name   string
	did    string
	handle string
	list   models.ListInfo
	pages  [][]models.ListMember

	authErr   error
	createErr error

	authCalls   int
	getCalls    int
	createCalls int
	added       []string
}

func (m *mockService) Name() string   { return m.name }
func (m *mockService) DID() string    { return m.did }
func (m *mockService) Handle() string { return m.handle }

func (m *mockService) Authenticate(ctx context.Context, handle, appPassword string) error {
	m.authCalls++
	return m.authErr
}

func (m *mockService) GetList(ctx context.Context, listURI string, limit int, cursor string) (*services.ListPage, error) {
	m.getCalls++

	page := 0
	if cursor != "" {
		page, _ = strconv.Atoi(cursor)
	}

	resp := &services.ListPage{List: m.list}
	if page < len(m.pages) {
		resp.Members = m.pages[page]
	}
	if page+1 < len(m.pages) {
		resp.Cursor = strconv.Itoa(page + 1)
	}
	return resp, nil
}

func (m *mockService) CreateList(ctx context.Context, spec models.NewListSpec) (string, error) {
	m.createCalls++
	if m.createErr != nil {
		return "", m.createErr
	}
	return "at://" + m.did + "/app.bsky.graph.list/3knew", nil
}

func (m *mockService) AddListItem(ctx context.Context, listURI, subjectDID string) (string, error) {
	m.added = append(m.added, subjectDID)
	return "at://" + m.did + "/app.bsky.graph.listitem/" + strconv.Itoa(len(m.added)), nil
}

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials.Source = shared.AccountConfig{Handle: "old.bsky.social", AppPassword: "aaaa-bbbb-cccc-dddd"}
	config.Credentials.Destination = shared.AccountConfig{Handle: "new.bsky.social", AppPassword: "eeee-ffff-gggg-hhhh"}
	return config
}

func testServices() (*mockService, *mockService) {
	source := &mockService{
		name:   "Bluesky",
		did:    "did:plc:source123",
		handle: "old.bsky.social",
		list:   models.ListInfo{URI: testListURI, Name: "Mutuals", Purpose: models.PurposeCuration},
		pages: [][]models.ListMember{
			{
				{SubjectDID: "did:plc:m1", SubjectHandle: "m1.bsky.social"},
				{SubjectDID: "did:plc:m2"},
			},
			{
				{SubjectDID: "did:plc:m3"},
			},
		},
	}
	dest := &mockService{name: "Bluesky", did: "did:plc:dest456", handle: "new.bsky.social"}
	return source, dest
}

// newTestRunner wires a Runner around mock services with instant pacing.
func newTestRunner(source, dest *mockService) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	pacer := &tasks.FixedPacer{Success: time.Microsecond, Failure: time.Microsecond, Page: time.Microsecond}
	logger := shared.NewLogger(io.Discard)

	runner := NewRunner(RunnerOpts{
		Config: testConfig(),
		Source: source,
		Dest:   dest,
		Logger: logger,
		Output: output,
		Engine: tasks.NewMigrationEngine(source, dest, pacer, nil),
	})
	return runner, output
}

// run executes one CLI invocation against the runner's registered commands.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "skylist", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"skylist"}, args...))
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(RunnerOpts{})

	if runner.config == nil {
		t.Error("config not defaulted")
	}
	if runner.logger == nil {
		t.Error("logger not defaulted")
	}
	if runner.output == nil {
		t.Error("output not defaulted")
	}
	if runner.engine == nil {
		t.Error("engine not constructed")
	}
}

func TestRunner_ResolveAccount(t *testing.T) {
	source, dest := testServices()
	runner, _ := newTestRunner(source, dest)

	tests := []struct {
		name       string
		account    string
		wantHandle string
		wantErr    bool
	}{
		{"source", "source", "old.bsky.social", false},
		{"destination", "destination", "new.bsky.social", false},
		{"dest alias", "dest", "new.bsky.social", false},
		{"unknown", "backup", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, account, err := runner.resolveAccount(tt.account)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.Handle != tt.wantHandle {
				t.Errorf("handle = %s, want %s", account.Handle, tt.wantHandle)
			}
		})
	}
}

func TestRunner_WriteJSON(t *testing.T) {
	runner, output := newTestRunner(testServices())

	if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := output.String(); got != "{\"key\":\"value\"}\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunner_WriteJSON_WriterError(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &internaltesting.FWriter{}, Logger: shared.NewLogger(io.Discard)})

	if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
		t.Error("expected write error")
	}
}

func TestRunner_WritePlain(t *testing.T) {
	runner, output := newTestRunner(testServices())

	runner.writePlain("hello %s\n", "world")
	runner.writePlainln("done")

	got := output.String()
	if !strings.Contains(got, "hello world\n") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, "\ndone\n") {
		t.Errorf("output = %q", got)
	}
}

func TestRunner_AuthCheck(t *testing.T) {
	source, dest := testServices()
	runner, output := newTestRunner(source, dest)

	if err := run(t, runner, "auth", "check"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "@old.bsky.social") || !strings.Contains(got, "did:plc:source123") {
		t.Errorf("output missing source identity: %q", got)
	}
	if !strings.Contains(got, "@new.bsky.social") {
		t.Errorf("output missing destination identity: %q", got)
	}
	if source.authCalls != 1 || dest.authCalls != 1 {
		t.Errorf("auth calls = %d/%d, want 1/1", source.authCalls, dest.authCalls)
	}
}

func TestRunner_AuthCheck_SingleAccount(t *testing.T) {
	source, dest := testServices()
	runner, _ := newTestRunner(source, dest)

	if err := run(t, runner, "auth", "check", "--account", "source"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.authCalls != 1 || dest.authCalls != 0 {
		t.Errorf("auth calls = %d/%d, want 1/0", source.authCalls, dest.authCalls)
	}
}

func TestRunner_AuthCheck_Failure(t *testing.T) {
	source, dest := testServices()
	source.authErr = shared.ErrInvalidCredentials
	runner, _ := newTestRunner(source, dest)

	if err := run(t, runner, "auth", "check"); err == nil {
		t.Error("expected error for failed login")
	}
}

func TestRunner_HistoryRequiresDatabase(t *testing.T) {
	runner, _ := newTestRunner(testServices())

	err := run(t, runner, "history", "list")
	if err == nil {
		t.Fatal("expected error without run database")
	}
	if !strings.Contains(err.Error(), "setup database") {
		t.Errorf("error = %v, want pointer to setup", err)
	}
}

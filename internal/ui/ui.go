package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/desertthunder/skylist/internal/tasks"
)

// view identifies which screen the model is rendering.
type view int

const (
	formView view = iota
	fetchingView
	rosterView
	confirmView
	migratingView
	doneView
	errorView
)

// Form input ordering.
const (
	inputListURI = iota
	inputName
	inputPurpose
	inputDescription
	inputCount
)

const progressLogSize = 8

type rosterMsg struct {
	roster *tasks.Roster
}

type progressMsg tasks.ProgressUpdate

type doneMsg struct {
	result *tasks.MigrationResult
	err    error
}

type errMsg struct {
	err error
}

// Model is the top-level bubbletea model for the migration TUI.
type Model struct {
	ctx     context.Context
	engine  tasks.Engine
	source  services.Service
	request tasks.MigrationRequest
	logger  *log.Logger

	view    view
	keys    keyMap
	spinner spinner.Model
	inputs  []textinput.Model
	focused int
	members list.Model

	roster     *tasks.Roster
	progressCh chan tasks.ProgressUpdate
	resultCh   chan doneMsg
	lines      []string
	added      int
	failed     int
	total      int
	result     *tasks.MigrationResult
	err        error

	width  int
	height int
}

// NewModel builds the TUI model. Account credentials come from cfg; the list
// URI and new-list metadata are collected interactively.
func NewModel(ctx context.Context, cfg *shared.Config, engine tasks.Engine, source services.Service, logger *log.Logger) Model {
	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 300
		inputs[i].Width = 60
	}
	inputs[inputListURI].Placeholder = "at://did:plc:.../app.bsky.graph.list/..."
	inputs[inputListURI].Prompt = "Source list URI: "
	inputs[inputListURI].Focus()
	inputs[inputName].Placeholder = "My migrated list"
	inputs[inputName].Prompt = "New list name:   "
	inputs[inputPurpose].Prompt = "Purpose:         "
	inputs[inputPurpose].SetValue(models.PurposeCuration.Short())
	inputs[inputDescription].Prompt = "Description:     "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	members := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	members.Title = "List members"
	members.SetShowStatusBar(false)

	return Model{
		ctx:    ctx,
		engine: engine,
		source: source,
		logger: logger,
		request: tasks.MigrationRequest{
			SourceHandle:   cfg.Credentials.Source.Handle,
			SourcePassword: cfg.Credentials.Source.AppPassword,
			DestHandle:     cfg.Credentials.Destination.Handle,
			DestPassword:   cfg.Credentials.Destination.AppPassword,
		},
		view:    formView,
		keys:    newKeyMap(),
		spinner: sp,
		inputs:  inputs,
		members: members,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.members.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.view != formView {
			return m, tea.Quit
		}
		return m.updateKeys(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case rosterMsg:
		m.roster = msg.roster
		items := make([]list.Item, len(msg.roster.Members))
		for i, member := range msg.roster.Members {
			items[i] = memberItem{member: member}
		}
		m.members.SetItems(items)
		m.members.Title = fmt.Sprintf("%s (%d members)", msg.roster.List.Name, len(msg.roster.Members))
		m.view = rosterView
		return m, nil
	case progressMsg:
		m.recordProgress(tasks.ProgressUpdate(msg))
		return m, waitForProgress(m.progressCh)
	case doneMsg:
		m.result = msg.result
		m.err = msg.err
		if msg.err != nil {
			m.view = errorView
		} else {
			m.view = doneView
		}
		return m, nil
	case errMsg:
		m.err = msg.err
		m.view = errorView
		return m, nil
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case formView:
		return m.updateForm(msg)
	case rosterView:
		if key.Matches(msg, m.keys.enter) {
			m.view = confirmView
			return m, nil
		}
		if key.Matches(msg, m.keys.back) {
			m.view = formView
			return m, nil
		}
		var cmd tea.Cmd
		m.members, cmd = m.members.Update(msg)
		return m, cmd
	case confirmView:
		switch {
		case key.Matches(msg, m.keys.yes):
			m.view = migratingView
			return m, m.startMigration()
		case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
			m.view = rosterView
			return m, nil
		}
	case doneView, errorView:
		if key.Matches(msg, m.keys.restart) {
			return m.reset()
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		return m.focusInput(m.focused + 1)
	case "shift+tab", "up":
		return m.focusInput(m.focused - 1)
	case "enter":
		if m.focused < inputCount-1 {
			return m.focusInput(m.focused + 1)
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) focusInput(idx int) (tea.Model, tea.Cmd) {
	if idx < 0 {
		idx = inputCount - 1
	}
	if idx >= inputCount {
		idx = 0
	}
	m.inputs[m.focused].Blur()
	m.focused = idx
	return m, m.inputs[m.focused].Focus()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	uri := strings.TrimSpace(m.inputs[inputListURI].Value())
	if _, err := services.ParseListURI(uri); err != nil {
		m.err = err
		m.view = errorView
		return m, nil
	}
	purpose, err := models.ParsePurpose(strings.TrimSpace(m.inputs[inputPurpose].Value()))
	if err != nil {
		m.err = err
		m.view = errorView
		return m, nil
	}

	m.request.SourceListURI = uri
	m.request.Spec = models.NewListSpec{
		Name:        strings.TrimSpace(m.inputs[inputName].Value()),
		Purpose:     purpose,
		Description: strings.TrimSpace(m.inputs[inputDescription].Value()),
	}
	if err := m.request.Spec.Validate(); err != nil {
		m.err = err
		m.view = errorView
		return m, nil
	}

	m.view = fetchingView
	return m, tea.Batch(m.spinner.Tick, m.fetchRoster())
}

// fetchRoster authenticates the source account and loads the full membership
// for review before anything is written to the destination.
func (m Model) fetchRoster() tea.Cmd {
	req := m.request
	return func() tea.Msg {
		if err := m.source.Authenticate(m.ctx, req.SourceHandle, req.SourcePassword); err != nil {
			return errMsg{err: fmt.Errorf("%w: source account: %v", shared.ErrAuthFailed, err)}
		}
		roster, err := m.engine.FetchAllMembers(m.ctx, m.source, req.SourceListURI, nil)
		if err != nil {
			return errMsg{err: err}
		}
		return rosterMsg{roster: roster}
	}
}

func (m *Model) startMigration() tea.Cmd {
	m.progressCh = make(chan tasks.ProgressUpdate, 256)
	m.resultCh = make(chan doneMsg, 1)
	m.lines = nil
	m.added, m.failed = 0, 0
	m.total = len(m.roster.Members)

	progress := m.progressCh
	results := m.resultCh
	req := m.request
	go func() {
		result, err := m.engine.Run(m.ctx, req, progress)
		close(progress)
		results <- doneMsg{result: result, err: err}
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(progress), waitForDone(results))
}

func (m *Model) recordProgress(update tasks.ProgressUpdate) {
	if mp, ok := update.Data.(tasks.MemberProgress); ok {
		if mp.Added {
			m.added++
		} else {
			m.failed++
		}
		m.total = mp.Total
	}
	if m.logger != nil {
		m.logger.Info(update.Message, "phase", update.Phase.String())
	}
	m.lines = append(m.lines, update.Message)
	if len(m.lines) > progressLogSize {
		m.lines = m.lines[len(m.lines)-progressLogSize:]
	}
}

func (m Model) reset() (tea.Model, tea.Cmd) {
	m.view = formView
	m.err = nil
	m.result = nil
	m.roster = nil
	m.lines = nil
	m.added, m.failed, m.total = 0, 0, 0
	return m.focusInput(inputListURI)
}

// waitForProgress blocks for the next engine progress update.
func waitForProgress(ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg(update)
	}
}

func waitForDone(ch <-chan doneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("skylist: Bluesky list migration"))
	b.WriteString("\n\n")

	switch m.view {
	case formView:
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.help.Render("tab/shift+tab to move • enter on the last field to continue • ctrl+c to quit"))
	case fetchingView:
		b.WriteString(m.spinner.View())
		b.WriteString(" Fetching list members from ")
		b.WriteString(m.request.SourceHandle)
		b.WriteString("...")
	case rosterView:
		b.WriteString(m.members.View())
		b.WriteString("\n")
		b.WriteString(styles.help.Render("enter to continue • esc to go back • q to quit"))
	case confirmView:
		b.WriteString(fmt.Sprintf(
			"Create list %q on %s and copy %d members from %q?\n\n",
			m.request.Spec.Name, m.request.DestHandle, len(m.roster.Members), m.roster.List.Name,
		))
		b.WriteString(styles.warn.Render("This writes records to the destination account."))
		b.WriteString("\n\n")
		b.WriteString(styles.help.Render("y to migrate • n to go back • q to quit"))
	case migratingView:
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" Migrating... %d added, %d failed of %d\n\n", m.added, m.failed, m.total))
		for _, line := range m.lines {
			b.WriteString("  " + line + "\n")
		}
	case doneView:
		b.WriteString(m.renderResult())
		b.WriteString("\n")
		b.WriteString(styles.help.Render("r to start over • q to quit"))
	case errorView:
		b.WriteString(styles.err.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(styles.help.Render("r to start over • q to quit"))
	}

	return b.String()
}

func (m Model) renderResult() string {
	var b strings.Builder
	if m.result.MembersFailed == 0 {
		b.WriteString(styles.ok.Render("Migration complete"))
	} else {
		b.WriteString(styles.warn.Render("Migration finished with failures"))
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  New list:  %s\n", m.result.DestListURI))
	if uri, err := services.ParseListURI(m.result.DestListURI); err == nil {
		b.WriteString(fmt.Sprintf("  Web URL:   %s\n", uri.WebURL()))
	}
	b.WriteString(fmt.Sprintf("  Members:   %d found, %d added, %d failed\n", m.result.MembersFound, m.result.MembersAdded, m.result.MembersFailed))
	for _, f := range m.result.Failures {
		b.WriteString(styles.err.Render(fmt.Sprintf("  ✗ [%d] %s: %v", f.Index+1, f.SubjectDID, f.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

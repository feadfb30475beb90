// package tasks implements list migration operations between Bluesky accounts.
//
// The core abstraction is Engine, which orchestrates membership fetches, list
// creation, and paced membership replay. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/skylist/internal/models"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
)

// DuplicatePolicy controls what happens when the source list contains the
// same subject DID more than once. The upstream protocol stores duplicates
// as distinct records, so pass-through is the default.
type DuplicatePolicy int

const (
	// DuplicatePassThrough replays duplicates as duplicates.
	DuplicatePassThrough DuplicatePolicy = iota
	// DuplicateSkip writes only the first occurrence of each DID.
	DuplicateSkip
)

// MigrationRequest carries everything one migration run needs.
//
// The two app passwords are used only for the session-creation calls and are
// never logged, persisted, or copied into results.
type MigrationRequest struct {
	SourceHandle   string
	SourcePassword string
	SourceListURI  string
	DestHandle     string
	DestPassword   string
	Spec           models.NewListSpec
	Duplicates     DuplicatePolicy
}

// Roster is a source list's full membership in server order.
type Roster struct {
	List    models.ListInfo
	Members []models.ListMember
}

// MemberFailure records one membership write that failed.
type MemberFailure struct {
	Index      int    // Position in the source ordering
	SubjectDID string // The member that could not be added
	Err        error  // The write error
}

// MigrationResult contains the accumulated outcome of one run.
// It is built incrementally and immutable once Run returns.
type MigrationResult struct {
	SourceList    models.ListInfo
	DestListURI   string
	MembersFound  int
	MembersAdded  int
	MembersFailed int
	Failures      []MemberFailure
	RunID         string
}

// ReplicationOutcome is the result of replaying members into a list.
type ReplicationOutcome struct {
	Added    int
	Failed   int
	Failures []MemberFailure
}

// Engine defines operations for migrating lists between accounts.
type Engine interface {
	// Run performs a full source → destination migration: authenticate source,
	// fetch membership, authenticate destination, create list, replicate members.
	Run(ctx context.Context, req MigrationRequest, progress chan<- ProgressUpdate) (*MigrationResult, error)

	// FetchAllMembers reads a list's complete membership via cursor pagination.
	FetchAllMembers(ctx context.Context, svc services.Service, listURI string, progress chan<- ProgressUpdate) (*Roster, error)

	// AddMembers replays members into destListURI in order, pacing writes and
	// tolerating per-item failures.
	AddMembers(ctx context.Context, svc services.Service, destListURI string, members []models.ListMember, progress chan<- ProgressUpdate) *ReplicationOutcome
}

// RunStore persists migration runs and their failures.
// Implemented by repositories.RunRepository; optional.
type RunStore interface {
	Create(run *models.MigrationRun) error
	Update(run *models.MigrationRun) error
	AddFailure(failure *models.RunFailure) error
}

// MigrationEngine implements Engine for Bluesky list operations.
// Contains dependencies on the two account services, a pacing policy, and an
// optional run store.
type MigrationEngine struct {
	source services.Service
	dest   services.Service
	pacer  Pacer
	store  RunStore
}

var _ Engine = (*MigrationEngine)(nil)

// NewMigrationEngine creates a MigrationEngine with the provided services.
// pacer defaults to a FixedPacer with the original delays; store may be nil.
func NewMigrationEngine(source, dest services.Service, pacer Pacer, store RunStore) *MigrationEngine {
	if pacer == nil {
		pacer = NewFixedPacer(shared.PacingConfig{})
	}
	return &MigrationEngine{
		source: source,
		dest:   dest,
		pacer:  pacer,
		store:  store,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MigrationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full list migration.
//
// Setup failures (validation, either authentication, fetch, list creation)
// abort the run and are returned as errors with no result. Per-member write
// failures during replication are collected into the result instead; even a
// run where every write failed returns a result and a nil error.
func (e *MigrationEngine) Run(ctx context.Context, req MigrationRequest, progress chan<- ProgressUpdate) (*MigrationResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: account service not initialized", shared.ErrServiceUnavailable)
	}

	// Reject malformed input before any network round trip.
	if _, err := services.ParseListURI(req.SourceListURI); err != nil {
		return nil, err
	}
	if err := req.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	run := models.NewMigrationRun(0, req.SourceHandle, req.SourceListURI, req.DestHandle, req.Spec)
	e.storeCreate(run)

	e.sendProgress(progress, authSourceUpdate(req.SourceHandle))
	if err := e.source.Authenticate(ctx, req.SourceHandle, req.SourcePassword); err != nil {
		e.storeFinish(run, models.RunStatusFailed, err)
		return nil, fmt.Errorf("%w: source account: %v", shared.ErrAuthFailed, err)
	}

	roster, err := e.fetchAllMembers(ctx, e.source, req.SourceListURI, progress, run)
	if err != nil {
		e.storeFinish(run, models.RunStatusFailed, err)
		return nil, err
	}

	e.sendProgress(progress, authDestUpdate(req.DestHandle))
	if err := e.dest.Authenticate(ctx, req.DestHandle, req.DestPassword); err != nil {
		e.storeFinish(run, models.RunStatusFailed, err)
		return nil, fmt.Errorf("%w: destination account: %v", shared.ErrAuthFailed, err)
	}

	e.sendProgress(progress, creatingListUpdate(req.Spec.Name))
	destURI, err := e.dest.CreateList(ctx, req.Spec)
	if err != nil {
		e.storeFinish(run, models.RunStatusFailed, err)
		return nil, err
	}
	e.sendProgress(progress, createdListUpdate(models.ListInfo{
		URI:         destURI,
		Name:        req.Spec.Name,
		Purpose:     req.Spec.Purpose,
		Description: req.Spec.Description,
		OwnerDID:    e.dest.DID(),
	}))

	result := &MigrationResult{
		SourceList:   roster.List,
		DestListURI:  destURI,
		MembersFound: len(roster.Members),
		RunID:        run.ID(),
	}

	members := roster.Members
	if req.Duplicates == DuplicateSkip {
		members = dedupeMembers(members)
	}

	now := time.Now()
	run.SetStartedAt(&now)
	run.SetStatus(models.RunStatusRunning)
	run.SetDestListURI(destURI)
	run.SetMembersFound(result.MembersFound)
	e.storeUpdate(run)

	outcome := e.addMembers(ctx, e.dest, destURI, members, progress, run)
	result.MembersAdded = outcome.Added
	result.MembersFailed = outcome.Failed
	result.Failures = outcome.Failures

	status := models.RunStatusCompleted
	if result.MembersFailed > 0 {
		status = models.RunStatusPartial
	}

	if err := ctx.Err(); err != nil {
		e.storeFinish(run, models.RunStatusFailed, err)
		return result, err
	}

	run.SetMembersAdded(result.MembersAdded)
	run.SetMembersFailed(result.MembersFailed)
	e.storeFinish(run, status, nil)

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// FetchAllMembers reads the complete membership of a list in server order.
//
// A failure on any page fails the whole fetch; the accumulated prefix is
// discarded rather than returned as a partial result.
func (e *MigrationEngine) FetchAllMembers(ctx context.Context, svc services.Service, listURI string, progress chan<- ProgressUpdate) (*Roster, error) {
	if _, err := services.ParseListURI(listURI); err != nil {
		return nil, err
	}
	return e.fetchAllMembers(ctx, svc, listURI, progress, nil)
}

func (e *MigrationEngine) fetchAllMembers(ctx context.Context, svc services.Service, listURI string, progress chan<- ProgressUpdate, run *models.MigrationRun) (*Roster, error) {
	roster := &Roster{}
	cursor := ""

	for page := 1; ; page++ {
		resp, err := svc.GetList(ctx, listURI, 0, cursor)
		if err != nil {
			return nil, err
		}

		if page == 1 {
			roster.List = resp.List
		}
		roster.Members = append(roster.Members, resp.Members...)
		e.sendProgress(progress, fetchPageUpdate(page, len(roster.Members)))

		cursor = resp.Cursor
		if run != nil {
			run.SetFetchCursor(cursor)
			e.storeUpdate(run)
		}
		if cursor == "" {
			break
		}
		// A cursor promises another page; an empty page alongside one means
		// the server is misbehaving. Fail loudly instead of truncating.
		if len(resp.Members) == 0 {
			return nil, fmt.Errorf("%w: empty page with cursor %q", shared.ErrAPIRequest, cursor)
		}

		// Courtesy pause between pages.
		if err := e.pacer.Wait(ctx, OutcomePage); err != nil {
			return nil, err
		}
	}

	e.sendProgress(progress, fetchedMembersUpdate(roster))
	return roster, nil
}

// AddMembers replays members into destListURI, one write per member in source
// order. Individual failures are recorded and skipped, never fatal.
func (e *MigrationEngine) AddMembers(ctx context.Context, svc services.Service, destListURI string, members []models.ListMember, progress chan<- ProgressUpdate) *ReplicationOutcome {
	return e.addMembers(ctx, svc, destListURI, members, progress, nil)
}

func (e *MigrationEngine) addMembers(ctx context.Context, svc services.Service, destListURI string, members []models.ListMember, progress chan<- ProgressUpdate, run *models.MigrationRun) *ReplicationOutcome {
	outcome := &ReplicationOutcome{}
	total := len(members)

	for i, member := range members {
		// Cooperative cancellation between writes, never mid-write.
		if ctx.Err() != nil {
			return outcome
		}

		_, err := svc.AddListItem(ctx, destListURI, member.SubjectDID)
		if err != nil {
			outcome.Failed++
			outcome.Failures = append(outcome.Failures, MemberFailure{
				Index:      i,
				SubjectDID: member.SubjectDID,
				Err:        err,
			})
			e.sendProgress(progress, memberUpdate(MemberProgress{
				Index: i, Total: total, SubjectDID: member.SubjectDID, Added: false, Err: err,
			}))
			if run != nil {
				e.storeFailure(run, i, member.SubjectDID, err)
			}
		} else {
			outcome.Added++
			e.sendProgress(progress, memberUpdate(MemberProgress{
				Index: i, Total: total, SubjectDID: member.SubjectDID, Added: true,
			}))
		}

		if i+1 < total {
			pace := OutcomeSuccess
			if err != nil {
				pace = OutcomeFailure
			}
			if werr := e.pacer.Wait(ctx, pace); werr != nil {
				return outcome
			}
		}
	}

	return outcome
}

// dedupeMembers keeps the first occurrence of each subject DID.
func dedupeMembers(members []models.ListMember) []models.ListMember {
	seen := make(map[string]bool, len(members))
	out := make([]models.ListMember, 0, len(members))
	for _, m := range members {
		if seen[m.SubjectDID] {
			continue
		}
		seen[m.SubjectDID] = true
		out = append(out, m)
	}
	return out
}

// Run bookkeeping is best-effort: store errors never disrupt a migration.

func (e *MigrationEngine) storeCreate(run *models.MigrationRun) {
	if e.store == nil {
		return
	}
	_ = e.store.Create(run)
}

func (e *MigrationEngine) storeUpdate(run *models.MigrationRun) {
	if e.store == nil || run.ID() == "" {
		return
	}
	_ = e.store.Update(run)
}

func (e *MigrationEngine) storeFailure(run *models.MigrationRun, index int, subjectDID string, err error) {
	if e.store == nil || run.ID() == "" {
		return
	}
	_ = e.store.AddFailure(&models.RunFailure{
		RunID:      run.ID(),
		Index:      index,
		SubjectDID: subjectDID,
		Reason:     err.Error(),
		CreatedAt:  time.Now(),
	})
}

func (e *MigrationEngine) storeFinish(run *models.MigrationRun, status string, cause error) {
	if e.store == nil || run.ID() == "" {
		return
	}
	now := time.Now()
	run.SetStatus(status)
	run.SetCompletedAt(&now)
	if cause != nil {
		run.SetErrorMessage(cause.Error())
	}
	_ = e.store.Update(run)
}

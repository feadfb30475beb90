package tasks

import (
	"fmt"

	"github.com/desertthunder/skylist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	AuthSource Phase = iota
	FetchMembers
	AuthDest
	CreateList
	AddMembers
	Complete
)

func (p Phase) String() string {
	switch p {
	case AuthSource:
		return "auth_source"
	case FetchMembers:
		return "fetch_members"
	case AuthDest:
		return "auth_dest"
	case CreateList:
		return "create_list"
	case AddMembers:
		return "add_members"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// MemberProgress is the Data payload of per-member [AddMembers] updates.
type MemberProgress struct {
	Index      int    // Zero-based position in the source ordering
	Total      int    // Total members being replicated
	SubjectDID string // The member's DID
	Added      bool   // Whether the write succeeded
	Err        error  // The write error when Added is false
}

func authSourceUpdate(handle string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AuthSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Logging in to source account %s...", handle),
	}
}

func authDestUpdate(handle string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AuthDest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Logging in to destination account %s...", handle),
	}
}

func fetchPageUpdate(page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMembers,
		Step:    page,
		Total:   0,
		Message: fmt.Sprintf("Fetched page %d (%d members so far)...", page, fetched),
	}
}

func fetchedMembersUpdate(roster *Roster) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMembers,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d members in list '%s'", len(roster.Members), roster.List.Name),
		Data:    roster,
	}
}

func creatingListUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateList,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating list '%s'...", name),
	}
}

func createdListUpdate(info models.ListInfo) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateList,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("List created: %s", info.URI),
		Data:    info,
	}
}

func memberUpdate(mp MemberProgress) ProgressUpdate {
	status := "✓"
	if !mp.Added {
		status = "✗"
	}
	return ProgressUpdate{
		Phase:   AddMembers,
		Step:    mp.Index + 1,
		Total:   mp.Total,
		Message: fmt.Sprintf("[%d/%d] %s %s", mp.Index+1, mp.Total, status, mp.SubjectDID),
		Data:    mp,
	}
}

func completeUpdate(result *MigrationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Migration finished: %d added, %d failed", result.MembersAdded, result.MembersFailed),
		Data:    result,
	}
}

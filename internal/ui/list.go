package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/skylist/internal/models"
)

var _ list.Item = memberItem{}

// memberItem wraps [models.ListMember] to implement [list.Item].
type memberItem struct {
	member models.ListMember
}

func (i memberItem) FilterValue() string {
	if i.member.SubjectHandle != "" {
		return i.member.SubjectHandle
	}
	return i.member.SubjectDID
}

func (i memberItem) Title() string {
	if i.member.DisplayName != "" {
		return i.member.DisplayName
	}
	if i.member.SubjectHandle != "" {
		return "@" + i.member.SubjectHandle
	}
	return i.member.SubjectDID
}

func (i memberItem) Description() string {
	if i.member.DisplayName != "" && i.member.SubjectHandle != "" {
		return "@" + i.member.SubjectHandle + " • " + i.member.SubjectDID
	}
	return i.member.SubjectDID
}

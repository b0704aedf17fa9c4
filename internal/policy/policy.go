// Package policy decides who may do what to reports, issues and documents.
// Every function here is pure; callers load the resource and pass its owner.
package policy

import (
	"errors"

	"github.com/yukikurage/report-tracker-api/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrNotFound        = errors.New("resource not found")
)

type Action string

const (
	ActionReadReport     Action = "report:read"
	ActionEditReport     Action = "report:edit"
	ActionCompleteReport Action = "report:complete"
	ActionApproveReport  Action = "report:approve"
	ActionDeleteReport   Action = "report:delete"

	ActionReadIssue         Action = "issue:read"
	ActionEditIssue         Action = "issue:edit"
	ActionUpdateIssueStatus Action = "issue:status"
	ActionDeleteIssue       Action = "issue:delete"

	ActionManageDocuments Action = "document:manage"
	ActionManageUsers     Action = "user:manage"
)

// ownerActions are the only actions a non-admin may perform, and only on resources they own.
var ownerActions = map[Action]struct{}{
	ActionReadReport:        {},
	ActionEditReport:        {},
	ActionCompleteReport:    {},
	ActionDeleteReport:      {},
	ActionReadIssue:         {},
	ActionEditIssue:         {},
	ActionUpdateIssueStatus: {},
	ActionDeleteIssue:       {},
}

// Actor is an authenticated caller.
type Actor struct {
	ID   uint64
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// CanAct reports whether actor may perform action on a resource owned by ownerID.
// A nil owner (e.g. an issue whose creator was deleted) is owned by nobody.
func CanAct(actor Actor, ownerID *uint64, action Action) bool {
	if actor.IsAdmin() {
		return true
	}
	if _, ok := ownerActions[action]; !ok {
		return false
	}
	return ownerID != nil && *ownerID == actor.ID
}

// Authorize combines the existence check with CanAct. Absence wins over denial
// so callers never learn about resources they cannot see.
func Authorize(actor *Actor, exists bool, ownerID *uint64, action Action) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !exists {
		return ErrNotFound
	}
	if !CanAct(*actor, ownerID, action) {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin is Authorize for actions that have no owning resource.
func RequireAdmin(actor *Actor) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Scope is the owner filter applied at the query boundary for list reads.
// A nil OwnerID means unscoped.
type Scope struct {
	OwnerID *uint64
}

func ScopeFor(actor Actor) Scope {
	if actor.IsAdmin() {
		return Scope{}
	}
	id := actor.ID
	return Scope{OwnerID: &id}
}

func (s Scope) Global() bool {
	return s.OwnerID == nil
}

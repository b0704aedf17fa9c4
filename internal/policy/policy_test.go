package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/report-tracker-api/internal/models"
)

func ptr(v uint64) *uint64 { return &v }

func TestCanAct(t *testing.T) {
	owner := Actor{ID: 1, Role: models.RoleUser}
	other := Actor{ID: 2, Role: models.RoleUser}
	admin := Actor{ID: 3, Role: models.RoleAdmin}

	tests := []struct {
		name   string
		actor  Actor
		owner  *uint64
		action Action
		want   bool
	}{
		{"owner edits own report", owner, ptr(1), ActionEditReport, true},
		{"owner completes own report", owner, ptr(1), ActionCompleteReport, true},
		{"owner cannot approve own report", owner, ptr(1), ActionApproveReport, false},
		{"other cannot edit", other, ptr(1), ActionEditReport, false},
		{"other cannot delete issue", other, ptr(1), ActionDeleteIssue, false},
		{"owner deletes own issue", owner, ptr(1), ActionDeleteIssue, true},
		{"orphaned issue denied to users", owner, nil, ActionEditIssue, false},
		{"admin approves", admin, ptr(1), ActionApproveReport, true},
		{"admin edits orphaned issue", admin, nil, ActionEditIssue, true},
		{"user cannot manage documents", owner, nil, ActionManageDocuments, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAct(tt.actor, tt.owner, tt.action))
		})
	}
}

func TestAuthorize_NotFoundBeforeForbidden(t *testing.T) {
	other := &Actor{ID: 2, Role: models.RoleUser}

	assert.ErrorIs(t, Authorize(other, false, ptr(1), ActionEditReport), ErrNotFound)
	assert.ErrorIs(t, Authorize(other, true, ptr(1), ActionEditReport), ErrForbidden)
	assert.ErrorIs(t, Authorize(nil, false, nil, ActionEditReport), ErrUnauthenticated)
	assert.NoError(t, Authorize(&Actor{ID: 1}, true, ptr(1), ActionEditReport))
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(nil), ErrUnauthenticated)
	assert.ErrorIs(t, RequireAdmin(&Actor{ID: 1, Role: models.RoleUser}), ErrForbidden)
	assert.NoError(t, RequireAdmin(&Actor{ID: 1, Role: models.RoleAdmin}))
}

func TestScopeFor(t *testing.T) {
	s := ScopeFor(Actor{ID: 7, Role: models.RoleUser})
	assert.False(t, s.Global())
	assert.Equal(t, uint64(7), *s.OwnerID)

	assert.True(t, ScopeFor(Actor{ID: 1, Role: models.RoleAdmin}).Global())
}

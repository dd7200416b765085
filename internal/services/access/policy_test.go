package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessLevelOrdering(t *testing.T) {
	assert.True(t, AccessLevelFull.AtLeast(AccessLevelLimited))
	assert.True(t, AccessLevelFull.AtLeast(AccessLevelFull))
	assert.False(t, AccessLevelLimited.AtLeast(AccessLevelFull))
	assert.False(t, AccessLevelNoAccess.AtLeast(AccessLevelProfileOnly))
}

func TestParseAccessLevel(t *testing.T) {
	assert.Equal(t, AccessLevelFull, ParseAccessLevel("FULL"))
	assert.Equal(t, AccessLevelProfileOnly, ParseAccessLevel("PROFILE_ONLY"))

	// Unknown and empty names must never widen access.
	assert.Equal(t, AccessLevelNoAccess, ParseAccessLevel(""))
	assert.Equal(t, AccessLevelNoAccess, ParseAccessLevel("SUPERUSER"))
}

func TestAccountStatusBlocked(t *testing.T) {
	assert.True(t, AccountStatusPending.IsBlocked())
	assert.True(t, AccountStatusRejected.IsBlocked())
	assert.True(t, AccountStatusSuspended.IsBlocked())
	assert.False(t, AccountStatusActive.IsBlocked())
	assert.False(t, AccountStatusInactive.IsBlocked())
	assert.False(t, AccountStatusPendingValidation.IsBlocked())
}

func TestMemoizedEvaluator(t *testing.T) {
	memo := NewMemoizedEvaluator(NewEvaluator(DefaultPaths()))

	snap := validatedSeller()
	req := Requirement{Permissions: []string{"parcels:create"}}

	first := memo.Evaluate(snap, req, false)
	second := memo.Evaluate(snap, req, false)
	assert.Equal(t, first, second)
	assert.True(t, first.Allowed)

	// Permission set order must not produce distinct cache entries.
	a := memo.Evaluate(snap, Requirement{Permissions: []string{"a", "b"}}, false)
	b := memo.Evaluate(snap, Requirement{Permissions: []string{"b", "a"}}, false)
	assert.Equal(t, a, b)

	// A relevant input change yields a fresh decision.
	snap.Permissions = nil
	denied := memo.Evaluate(snap, req, false)
	assert.False(t, denied.Allowed)
}

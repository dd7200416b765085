package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validatedSeller() SessionSnapshot {
	return SessionSnapshot{
		Authenticated:    true,
		UserID:           "user_2abc",
		UserType:         UserTypeSeller,
		AccountStatus:    AccountStatusActive,
		ValidationStatus: ValidationStatusValidated,
		AccessLevel:      AccessLevelFull,
		Permissions:      []string{"parcels:create"},
		Roles:            []string{"seller"},
	}
}

func level(l AccessLevel) *AccessLevel {
	return &l
}

func TestEvaluateUnauthenticated(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	requirements := []Requirement{
		{},
		{AccessLevel: level(AccessLevelFull)},
		{Permissions: []string{"parcels:create"}, RequireValidation: true},
	}

	for _, req := range requirements {
		decision := e.Evaluate(SessionSnapshot{}, req, false)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "/auth/login", decision.Redirect)
		assert.False(t, decision.Notify, "authentication denial must stay silent")
	}

	// A user record without an ID is treated the same as no user at all.
	decision := e.Evaluate(SessionSnapshot{Authenticated: true}, Requirement{}, false)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "/auth/login", decision.Redirect)
}

func TestEvaluateBlockedAccount(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	tests := []struct {
		status   AccountStatus
		severity Severity
	}{
		{AccountStatusPending, SeverityInfo},
		{AccountStatusRejected, SeverityError},
		{AccountStatusSuspended, SeverityError},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			snap := validatedSeller()
			snap.AccountStatus = tt.status

			// Blocked accounts are rejected before any requirement field is
			// consulted.
			decision := e.Evaluate(snap, Requirement{
				AccessLevel: level(AccessLevelNoAccess),
				Permissions: []string{"parcels:create"},
			}, false)

			require.False(t, decision.Allowed)
			assert.Equal(t, "/auth/login", decision.Redirect)
			assert.True(t, decision.Notify)
			assert.Equal(t, tt.severity, decision.Severity)
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestEvaluateProfileCompletion(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	snap.AccountStatus = AccountStatusInactive

	decision := e.Evaluate(snap, Requirement{}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/profile/complete", decision.Redirect)
	assert.Equal(t, SeverityInfo, decision.Severity)
	assert.True(t, decision.Notify)

	// Already on an exempt route: let the request through instead of
	// redirecting the client onto the page it is loading.
	decision = e.Evaluate(snap, Requirement{}, true)
	assert.True(t, decision.Allowed)
}

func TestEvaluateAccessLevelOrdinal(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	snap.AccessLevel = AccessLevelLimited

	decision := e.Evaluate(snap, Requirement{AccessLevel: level(AccessLevelFull)}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/dashboard", decision.Redirect)
	assert.Equal(t, SeverityWarning, decision.Severity)

	// Higher level satisfies a lower requirement: ordinal comparison, not
	// equality.
	snap.AccessLevel = AccessLevelFull
	decision = e.Evaluate(snap, Requirement{AccessLevel: level(AccessLevelLimited)}, false)
	assert.True(t, decision.Allowed)
}

func TestEvaluateAccessLevelValidationReason(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	snap.AccessLevel = AccessLevelProfileOnly
	snap.ValidationStatus = ValidationStatusPending

	decision := e.Evaluate(snap, Requirement{AccessLevel: level(AccessLevelFull)}, false)
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "validated")

	// Same shortfall but already validated: generic message.
	snap.ValidationStatus = ValidationStatusValidated
	decision = e.Evaluate(snap, Requirement{AccessLevel: level(AccessLevelFull)}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "Insufficient access level", decision.Reason)
}

func TestEvaluateAccountStatusAllowList(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	snap.AccountStatus = AccountStatusPendingValidation

	decision := e.Evaluate(snap, Requirement{
		AccountStatuses: []AccountStatus{AccountStatusActive},
	}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/dashboard", decision.Redirect)
	assert.Equal(t, SeverityWarning, decision.Severity)
}

func TestEvaluateValidationRequirement(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	snap.ValidationStatus = ValidationStatusPending

	decision := e.Evaluate(snap, Requirement{RequireValidation: true}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, SeverityWarning, decision.Severity)

	snap.ValidationStatus = ValidationStatusValidated
	decision = e.Evaluate(snap, Requirement{RequireValidation: true}, false)
	assert.True(t, decision.Allowed)
}

func TestEvaluateUserTypeAndRoles(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()

	decision := e.Evaluate(snap, Requirement{
		UserTypes: []UserType{UserTypeAdmin, UserTypeManager},
	}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/unauthorized", decision.Redirect)
	assert.Equal(t, SeverityError, decision.Severity)

	decision = e.Evaluate(snap, Requirement{
		UserTypes: []UserType{UserTypeSeller, UserTypeAdmin},
	}, false)
	assert.True(t, decision.Allowed)

	decision = e.Evaluate(snap, Requirement{Roles: []string{"supervisor"}}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/unauthorized", decision.Redirect)

	decision = e.Evaluate(snap, Requirement{Roles: []string{"supervisor", "seller"}}, false)
	assert.True(t, decision.Allowed)
}

func TestEvaluatePermissionsAnyOf(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	snap.Permissions = []string{"B"}

	// Holding any one of the required permissions is enough.
	decision := e.Evaluate(snap, Requirement{Permissions: []string{"A", "B"}}, false)
	assert.True(t, decision.Allowed)

	snap.Permissions = nil
	decision = e.Evaluate(snap, Requirement{Permissions: []string{"A", "B"}}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/unauthorized", decision.Redirect)
	assert.Equal(t, SeverityError, decision.Severity)
}

func TestEvaluateFullScenario(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	req := Requirement{
		AccessLevel:       level(AccessLevelFull),
		Permissions:       []string{"parcels:create"},
		AccountStatuses:   []AccountStatus{AccountStatusActive},
		RequireValidation: true,
	}

	decision := e.Evaluate(validatedSeller(), req, false)
	assert.Equal(t, Allowed(), decision)

	// Same snapshot, suspended: denied at the blocked-account check.
	snap := validatedSeller()
	snap.AccountStatus = AccountStatusSuspended
	decision = e.Evaluate(snap, req, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/auth/login", decision.Redirect)
	assert.Equal(t, SeverityError, decision.Severity)
	assert.True(t, decision.Notify)
}

func TestEvaluateIsPure(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	snap := validatedSeller()
	req := Requirement{
		AccessLevel: level(AccessLevelFull),
		Permissions: []string{"parcels:create"},
	}

	first := e.Evaluate(snap, req, false)
	second := e.Evaluate(snap, req, false)
	assert.Equal(t, first, second)
}

func TestCheckOrdering(t *testing.T) {
	e := NewEvaluator(DefaultPaths())

	// A snapshot failing several checks at once must report the earliest one.
	snap := validatedSeller()
	snap.AccountStatus = AccountStatusSuspended
	snap.AccessLevel = AccessLevelNoAccess
	snap.Permissions = nil

	decision := e.Evaluate(snap, Requirement{
		AccessLevel: level(AccessLevelFull),
		Permissions: []string{"parcels:create"},
	}, false)
	require.False(t, decision.Allowed)
	assert.Equal(t, "/auth/login", decision.Redirect, "blocked-account check must win over later checks")
}

package access

// Paths carries the redirect destinations a denial can point the client at.
// The SPA owns the actual navigation; the backend only names the target.
type Paths struct {
	Login           string
	CompleteProfile string
	Landing         string
	Unauthorized    string
}

func DefaultPaths() Paths {
	return Paths{
		Login:           "/auth/login",
		CompleteProfile: "/profile/complete",
		Landing:         "/dashboard",
		Unauthorized:    "/unauthorized",
	}
}

var blockedStatusMessages = map[AccountStatus]string{
	AccountStatusPending:   "Your account is awaiting approval",
	AccountStatusRejected:  "Your account has been rejected. Contact support for assistance",
	AccountStatusSuspended: "Your account has been suspended. Contact support for assistance",
}

// Evaluator computes access decisions. It holds only immutable path
// configuration, so a single instance is safe to share.
type Evaluator struct {
	paths Paths
}

func NewEvaluator(paths Paths) *Evaluator {
	return &Evaluator{paths: paths}
}

// Evaluate runs the ordered checks against one snapshot and one requirement.
// The first failing check fully determines the decision; later checks never
// run. Evaluate is pure: same inputs, same decision, no side effects.
//
// onExemptRoute marks requests already targeting an exempt destination
// (profile completion, auth screens) so the profile-completion denial cannot
// redirect the client back onto itself.
func (e *Evaluator) Evaluate(snap SessionSnapshot, req Requirement, onExemptRoute bool) Decision {
	// 1. Authentication. Silent denial: the client is simply sent to login.
	if !snap.Authenticated || snap.UserID == "" {
		return Decision{
			Reason:   "Authentication required",
			Redirect: e.paths.Login,
		}
	}

	// 2. Blocked account. PENDING is informational, the rest are hard errors.
	if snap.AccountStatus.IsBlocked() {
		severity := SeverityError
		if snap.AccountStatus == AccountStatusPending {
			severity = SeverityInfo
		}
		return Decision{
			Reason:   blockedStatusMessages[snap.AccountStatus],
			Redirect: e.paths.Login,
			Notify:   true,
			Severity: severity,
		}
	}

	// 3. Profile completion. Allowed through when already heading to an
	// exempt route, otherwise the client would loop on the redirect.
	if snap.NeedsProfileCompletion() && !onExemptRoute {
		return Decision{
			Reason:   "Please complete your profile to continue",
			Redirect: e.paths.CompleteProfile,
			Notify:   true,
			Severity: SeverityInfo,
		}
	}

	// 4. Access level, by ordinal. A FULL requirement against an account
	// that still needs validation gets the specific validation message.
	if req.AccessLevel != nil && !snap.AccessLevel.AtLeast(*req.AccessLevel) {
		reason := "Insufficient access level"
		if *req.AccessLevel == AccessLevelFull && snap.NeedsValidation() {
			reason = "Your profile must be validated to access this feature"
		}
		return Decision{
			Reason:   reason,
			Redirect: e.paths.Landing,
			Notify:   true,
			Severity: SeverityWarning,
		}
	}

	// 5. Account status allow-list.
	if len(req.AccountStatuses) > 0 && !containsStatus(req.AccountStatuses, snap.AccountStatus) {
		return Decision{
			Reason:   "Your account status does not permit this action",
			Redirect: e.paths.Landing,
			Notify:   true,
			Severity: SeverityWarning,
		}
	}

	// 6. Validation requirement.
	if req.RequireValidation && snap.ValidationStatus != ValidationStatusValidated {
		return Decision{
			Reason:   "A validated account is required for this action",
			Redirect: e.paths.Landing,
			Notify:   true,
			Severity: SeverityWarning,
		}
	}

	// 7. User type.
	if len(req.UserTypes) > 0 && !containsUserType(req.UserTypes, snap.UserType) {
		return Decision{
			Reason:   "This area is restricted to specific user types",
			Redirect: e.paths.Unauthorized,
			Notify:   true,
			Severity: SeverityError,
		}
	}

	// 8. Roles, ANY-of.
	if len(req.Roles) > 0 && !snap.HasAnyRole(req.Roles) {
		return Decision{
			Reason:   "Your role does not grant access to this area",
			Redirect: e.paths.Unauthorized,
			Notify:   true,
			Severity: SeverityError,
		}
	}

	// 9. Permissions, ANY-of.
	if len(req.Permissions) > 0 && !snap.HasAnyPermission(req.Permissions) {
		return Decision{
			Reason:   "You don't have permission to perform this action",
			Redirect: e.paths.Unauthorized,
			Notify:   true,
			Severity: SeverityError,
		}
	}

	// 10. Everything passed.
	return Allowed()
}

func containsStatus(set []AccountStatus, status AccountStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func containsUserType(set []UserType, userType UserType) bool {
	for _, t := range set {
		if t == userType {
			return true
		}
	}
	return false
}

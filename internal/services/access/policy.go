package access

type AccessLevel int

const (
	AccessLevelNoAccess AccessLevel = iota
	AccessLevelProfileOnly
	AccessLevelLimited
	AccessLevelFull
)

var accessLevelNames = map[AccessLevel]string{
	AccessLevelNoAccess:    "NO_ACCESS",
	AccessLevelProfileOnly: "PROFILE_ONLY",
	AccessLevelLimited:     "LIMITED",
	AccessLevelFull:        "FULL",
}

var accessLevelValues = map[string]AccessLevel{
	"NO_ACCESS":    AccessLevelNoAccess,
	"PROFILE_ONLY": AccessLevelProfileOnly,
	"LIMITED":      AccessLevelLimited,
	"FULL":         AccessLevelFull,
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return "NO_ACCESS"
}

// ParseAccessLevel maps a stored level name to its ordinal. Unknown or empty
// names fall back to NO_ACCESS so a malformed user record can never widen
// access.
func ParseAccessLevel(name string) AccessLevel {
	if level, ok := accessLevelValues[name]; ok {
		return level
	}
	return AccessLevelNoAccess
}

// AtLeast compares by ordinal position. Level ordering is total and fixed;
// never compare the string forms.
func (l AccessLevel) AtLeast(required AccessLevel) bool {
	return l >= required
}

type AccountStatus string

const (
	AccountStatusPending           AccountStatus = "PENDING"
	AccountStatusInactive          AccountStatus = "INACTIVE"
	AccountStatusPendingValidation AccountStatus = "PENDING_VALIDATION"
	AccountStatusActive            AccountStatus = "ACTIVE"
	AccountStatusRejected          AccountStatus = "REJECTED"
	AccountStatusSuspended         AccountStatus = "SUSPENDED"
)

// blockedStatuses are accounts that must never get past the guard, regardless
// of what the route asks for.
var blockedStatuses = map[AccountStatus]bool{
	AccountStatusPending:   true,
	AccountStatusRejected:  true,
	AccountStatusSuspended: true,
}

func (s AccountStatus) IsBlocked() bool {
	return blockedStatuses[s]
}

type ValidationStatus string

const (
	ValidationStatusPending   ValidationStatus = "PENDING"
	ValidationStatusValidated ValidationStatus = "VALIDATED"
	ValidationStatusRejected  ValidationStatus = "REJECTED"
)

type UserType string

const (
	UserTypeAdmin         UserType = "ADMIN"
	UserTypeManager       UserType = "MANAGER"
	UserTypeSeller        UserType = "SELLER"
	UserTypeCustomer      UserType = "CUSTOMER"
	UserTypeDeliveryAgent UserType = "DELIVERY_AGENT"
)

// SessionSnapshot is the identity state a single evaluation runs against.
// It is produced by the session source and read-only here.
type SessionSnapshot struct {
	Authenticated    bool
	UserID           string
	UserType         UserType
	AccountStatus    AccountStatus
	ValidationStatus ValidationStatus
	AccessLevel      AccessLevel
	Permissions      []string
	Roles            []string
}

// NeedsProfileCompletion reports whether the account exists but its profile
// has not been filled in yet.
func (s SessionSnapshot) NeedsProfileCompletion() bool {
	return s.AccountStatus == AccountStatusInactive
}

// NeedsValidation reports whether the profile is complete but still awaiting
// review.
func (s SessionSnapshot) NeedsValidation() bool {
	return s.ValidationStatus != ValidationStatusValidated
}

func (s SessionSnapshot) HasAnyPermission(required []string) bool {
	return anyMatch(s.Permissions, required)
}

func (s SessionSnapshot) HasAnyRole(required []string) bool {
	return anyMatch(s.Roles, required)
}

func anyMatch(held, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]bool, len(held))
	for _, h := range held {
		set[h] = true
	}
	for _, r := range required {
		if set[r] {
			return true
		}
	}
	return false
}

// Requirement declares what a protected route demands. All set fields use
// ANY-of semantics; empty sets do not constrain.
type Requirement struct {
	AccessLevel       *AccessLevel
	Permissions       []string
	Roles             []string
	UserTypes         []UserType
	AccountStatuses   []AccountStatus
	RequireValidation bool
}

func RequireLevel(level AccessLevel) Requirement {
	return Requirement{AccessLevel: &level}
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Decision is the full outcome of one evaluation. It is recomputed from its
// inputs and never mutated; Reason, Redirect, Notify and Severity are only
// meaningful when Allowed is false.
type Decision struct {
	Allowed  bool     `json:"allowed"`
	Reason   string   `json:"reason,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
	Notify   bool     `json:"notify,omitempty"`
	Severity Severity `json:"severity,omitempty"`
}

func Allowed() Decision {
	return Decision{Allowed: true}
}

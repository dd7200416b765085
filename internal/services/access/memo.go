package access

import (
	"sort"
	"strings"
	"sync"
)

// decisionKey captures every evaluator input as its own typed field so two
// keys compare structurally. Set-valued fields are canonicalized (sorted,
// deduplicated order is irrelevant for the decision) before they land here.
type decisionKey struct {
	authenticated    bool
	userID           string
	userType         UserType
	accountStatus    AccountStatus
	validationStatus ValidationStatus
	accessLevel      AccessLevel
	permissions      string
	roles            string
	reqLevel         AccessLevel
	reqLevelSet      bool
	reqPermissions   string
	reqRoles         string
	reqUserTypes     string
	reqStatuses      string
	requireValidated bool
	onExemptRoute    bool
}

const memoMaxEntries = 4096

// MemoizedEvaluator wraps an Evaluator with a decision cache so the guard
// does not recompute when nothing it reads has changed. Snapshots for a given
// key are immutable, so entries never go stale; the map is flushed wholesale
// when it grows past its cap.
type MemoizedEvaluator struct {
	evaluator *Evaluator

	mu        sync.RWMutex
	decisions map[decisionKey]Decision
}

func NewMemoizedEvaluator(evaluator *Evaluator) *MemoizedEvaluator {
	return &MemoizedEvaluator{
		evaluator: evaluator,
		decisions: make(map[decisionKey]Decision),
	}
}

func (m *MemoizedEvaluator) Evaluate(snap SessionSnapshot, req Requirement, onExemptRoute bool) Decision {
	key := makeDecisionKey(snap, req, onExemptRoute)

	m.mu.RLock()
	decision, ok := m.decisions[key]
	m.mu.RUnlock()
	if ok {
		return decision
	}

	decision = m.evaluator.Evaluate(snap, req, onExemptRoute)

	m.mu.Lock()
	if len(m.decisions) >= memoMaxEntries {
		m.decisions = make(map[decisionKey]Decision)
	}
	m.decisions[key] = decision
	m.mu.Unlock()

	return decision
}

func makeDecisionKey(snap SessionSnapshot, req Requirement, onExemptRoute bool) decisionKey {
	key := decisionKey{
		authenticated:    snap.Authenticated,
		userID:           snap.UserID,
		userType:         snap.UserType,
		accountStatus:    snap.AccountStatus,
		validationStatus: snap.ValidationStatus,
		accessLevel:      snap.AccessLevel,
		permissions:      canonicalSet(snap.Permissions),
		roles:            canonicalSet(snap.Roles),
		reqPermissions:   canonicalSet(req.Permissions),
		reqRoles:         canonicalSet(req.Roles),
		requireValidated: req.RequireValidation,
		onExemptRoute:    onExemptRoute,
	}
	if req.AccessLevel != nil {
		key.reqLevel = *req.AccessLevel
		key.reqLevelSet = true
	}

	userTypes := make([]string, len(req.UserTypes))
	for i, t := range req.UserTypes {
		userTypes[i] = string(t)
	}
	key.reqUserTypes = canonicalSet(userTypes)

	statuses := make([]string, len(req.AccountStatuses))
	for i, s := range req.AccountStatuses {
		statuses[i] = string(s)
	}
	key.reqStatuses = canonicalSet(statuses)

	return key
}

func canonicalSet(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

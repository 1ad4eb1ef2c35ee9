package intent

import "fmt"

// #region source

// Source names where a candidate intent came from.
type Source string

const (
	SourceGoalDriven Source = "goal-driven"
	SourceReactive   Source = "reactive"
	SourceReflective Source = "reflective"
)

// #endregion source

// #region scope

// Scope is the authorization scope an intent asks for. Scopes widen in the order
// runtime < session < user < system.
type Scope string

const (
	ScopeRuntime Scope = "runtime"
	ScopeSession Scope = "session"
	ScopeUser    Scope = "user"
	ScopeSystem  Scope = "system"
)

var scopeRank = map[Scope]int{
	ScopeRuntime: 0,
	ScopeSession: 1,
	ScopeUser:    2,
	ScopeSystem:  3,
}

// Rank returns the position of s in the widening order. ok is false for unknown scopes.
func (s Scope) Rank() (rank int, ok bool) {
	rank, ok = scopeRank[s]
	return rank, ok
}

// Exceeds reports whether s is strictly wider than max. Unknown scopes exceed everything.
func (s Scope) Exceeds(max Scope) bool {
	r, ok := s.Rank()
	if !ok {
		return true
	}
	m, ok := max.Rank()
	if !ok {
		m = scopeRank[ScopeRuntime]
	}
	return r > m
}

// ParseScope converts a configuration string into a Scope.
func ParseScope(s string) (Scope, error) {
	sc := Scope(s)
	if _, ok := sc.Rank(); !ok {
		return "", fmt.Errorf("unknown authorization scope %q", s)
	}
	return sc, nil
}

// #endregion scope

// #region candidate

// Candidate is an ephemeral action proposal. One is generated per active goal per tick
// and discarded when the tick ends.
type Candidate struct {
	ID                   string         `json:"id"`
	Source               Source         `json:"source"`
	Confidence           float64        `json:"confidence"`
	Priority             int            `json:"priority"`
	Payload              map[string]any `json:"payload"`
	Rationale            string         `json:"rationale,omitempty"`
	ExclusiveKey         string         `json:"exclusiveKey,omitempty"`
	RequiresCapabilities []string       `json:"requiresCapabilities,omitempty"`
	DeniesCapabilities   []string       `json:"deniesCapabilities,omitempty"`
	AuthorizationScope   Scope          `json:"authorizationScope,omitempty"`
}

// #endregion candidate

// #region failure

// Subsystem identifies the stage that produced a failure artifact.
type Subsystem string

const (
	SubsystemGeneration    Subsystem = "B3:IntentGeneration"
	SubsystemArbitration   Subsystem = "B1:Arbitration"
	SubsystemAuthorization Subsystem = "B1:Authorization"
)

// Failure is an explicit, non-fatal artifact returned upward instead of an error.
type Failure struct {
	Subsystem   Subsystem      `json:"subsystem"`
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	Recoverable bool           `json:"recoverable"`
}

// #endregion failure

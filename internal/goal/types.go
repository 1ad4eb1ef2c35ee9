package goal

// #region status

// Status is the lifecycle state of a goal. Only StatusActive goals produce intents.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDormant   Status = "dormant"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDormant, StatusCompleted, StatusFailed, StatusAbandoned:
		return true
	}
	return false
}

// #endregion status

// #region strength

// Strength is the preference signal carried by a goal. Current is in [0, 1].
type Strength struct {
	Current           float64  `json:"current"`
	DecayRate         *float64 `json:"decayRate,omitempty"`
	StrengtheningRate *float64 `json:"strengtheningRate,omitempty"`
}

// #endregion strength

// #region relationships

// Relationships links a goal to others in the external goal store.
type Relationships struct {
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
	Blockers []string `json:"blockers,omitempty"`
}

// #endregion relationships

// #region goal

// Goal is a read-only snapshot of a persistent preference owned by the goal store.
type Goal struct {
	ID            string         `json:"id"`
	Status        Status         `json:"status"`
	Strength      Strength       `json:"strength"`
	Relationships *Relationships `json:"relationships,omitempty"`
}

// #endregion goal

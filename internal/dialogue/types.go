package dialogue

// #region specialist

// Specialist is a read-only advisor consulted at the start of every iteration. Its output is
// advisory text only; errors and panics contribute nothing.
type Specialist interface {
	ID() string
	Advise(question, trigger string, snapshot []string) ([]string, error)
}

// AdviseFunc adapts a plain function into a Specialist.
type AdviseFunc func(question, trigger string, snapshot []string) ([]string, error)

type funcSpecialist struct {
	id string
	fn AdviseFunc
}

// NewSpecialist wraps fn as a Specialist named id.
func NewSpecialist(id string, fn AdviseFunc) Specialist {
	return funcSpecialist{id: id, fn: fn}
}

func (s funcSpecialist) ID() string { return s.id }

func (s funcSpecialist) Advise(question, trigger string, snapshot []string) ([]string, error) {
	return s.fn(question, trigger, snapshot)
}

// SnapshotReader gives the loop read-only access to short-term memory. Implementations must
// not perform I/O.
type SnapshotReader interface {
	ReadSnapshot(limit int) []string
}

// #endregion specialist

// #region config

// Hard ceilings applied on top of any caller configuration.
const (
	HardMaxIterations        = 256
	HardMaxTraceEntries      = 256
	HardMaxThoughts          = 32
	HardMaxPatternCandidates = 64

	// SnapshotLimit caps how many memory lines one run looks at.
	SnapshotLimit = 10
)

// Config bounds a dialogue run. Non-positive fields take the defaults; fields above the
// hard ceilings are clamped to them.
type Config struct {
	Termination             TerminationConfig `json:"termination" yaml:"termination"`
	MaxThoughtsPerIteration int               `json:"maxThoughtsPerIteration" yaml:"max_thoughts_per_iteration"`
	MaxTraceEntries         int               `json:"maxTraceEntries" yaml:"max_trace_entries"`
	MaxPatternCandidates    int               `json:"maxPatternCandidates" yaml:"max_pattern_candidates"`
}

// DefaultConfig returns the stock dialogue bounds.
func DefaultConfig() Config {
	return Config{
		Termination:             DefaultTerminationConfig(),
		MaxThoughtsPerIteration: 5,
		MaxTraceEntries:         20,
		MaxPatternCandidates:    5,
	}
}

// Normalized returns c with defaults filled in and hard ceilings applied.
func (c Config) Normalized() Config {
	d := DefaultConfig()
	c.Termination = c.Termination.withDefaults()
	c.Termination.MaxIterations = min(c.Termination.MaxIterations, HardMaxIterations)
	c.MaxThoughtsPerIteration = bound(c.MaxThoughtsPerIteration, d.MaxThoughtsPerIteration, HardMaxThoughts)
	c.MaxTraceEntries = bound(c.MaxTraceEntries, d.MaxTraceEntries, HardMaxTraceEntries)
	c.MaxPatternCandidates = bound(c.MaxPatternCandidates, d.MaxPatternCandidates, HardMaxPatternCandidates)
	return c
}

func bound(v, def, ceiling int) int {
	if v <= 0 {
		v = def
	}
	return min(v, ceiling)
}

// #endregion config

// #region request

// Request is one invocation of the loop. Reader, when set, replaces MemorySnapshot.
type Request struct {
	Trigger        string
	MemorySnapshot []string
	Specialists    []Specialist
	Reader         SnapshotReader
}

// #endregion request

// #region result

// TraceEntry records one iteration.
type TraceEntry struct {
	Iteration int      `json:"iteration"`
	Depth     int      `json:"depth"`
	Question  string   `json:"question"`
	BestScore float64  `json:"bestScore"`
	Notes     []string `json:"notes"`
}

// Result is what a run returns. Terminated is always true.
type Result struct {
	Terminated        bool               `json:"terminated"`
	Reason            TerminationReason  `json:"reason"`
	Iterations        int                `json:"iterations"`
	FinalAnswer       string             `json:"finalAnswer,omitempty"`
	Trace             []TraceEntry       `json:"trace"`
	PatternCandidates []PatternCandidate `json:"patternCandidates"`
}

// #endregion result

package advisor

import (
	"fmt"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/danielpatrickdp/alive-runtime/internal/logging"
)

// DefaultMaxSteps is the execution budget of one script call.
const DefaultMaxSteps = 100_000

// #region script-specialist

// ScriptSpecialist runs a Starlark script that defines
//
//	def advise(question, trigger, snapshot): ...
//
// returning a string or a list of strings. Scripts have no builtins beyond the Starlark
// language and run under a step budget. Globals are frozen after loading, so calls may run
// concurrently.
type ScriptSpecialist struct {
	id       string
	advise   starlark.Callable
	maxSteps uint64
}

// NewScriptSpecialist compiles src (a string, []byte or nil to read filename) and looks up
// its advise function. maxSteps <= 0 uses DefaultMaxSteps.
func NewScriptSpecialist(id, filename string, src any, maxSteps int) (*ScriptSpecialist, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	thread := newThread(id, uint64(maxSteps))
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", filename, err)
	}
	globals.Freeze()

	fn, ok := globals["advise"].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("load script %s: no advise function", filename)
	}
	return &ScriptSpecialist{id: id, advise: fn, maxSteps: uint64(maxSteps)}, nil
}

// LoadScript reads a script specialist from path.
func LoadScript(id, path string, maxSteps int) (*ScriptSpecialist, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return NewScriptSpecialist(id, path, src, maxSteps)
}

// ID returns the specialist id.
func (s *ScriptSpecialist) ID() string { return s.id }

// Advise calls the script's advise function.
func (s *ScriptSpecialist) Advise(question, trigger string, snapshot []string) ([]string, error) {
	snap := make([]starlark.Value, len(snapshot))
	for i, line := range snapshot {
		snap[i] = starlark.String(line)
	}
	args := starlark.Tuple{starlark.String(question), starlark.String(trigger), starlark.NewList(snap)}

	v, err := starlark.Call(newThread(s.id, s.maxSteps), s.advise, args, nil)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", s.id, err)
	}
	return adviceOf(v)
}

// #endregion script-specialist

// #region convert
func newThread(id string, maxSteps uint64) *starlark.Thread {
	log := logging.New("advisor")
	thread := &starlark.Thread{
		Name: id,
		Print: func(_ *starlark.Thread, msg string) {
			log.Debug("script print", "specialist", id, "msg", msg)
		},
	}
	thread.SetMaxExecutionSteps(maxSteps)
	return thread
}

// adviceOf accepts None, a string, or an iterable of strings.
func adviceOf(v starlark.Value) ([]string, error) {
	if v == starlark.None {
		return nil, nil
	}
	if s, ok := starlark.AsString(v); ok {
		return []string{s}, nil
	}
	iter, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("advise returned %s, want string or list", v.Type())
	}
	it := iter.Iterate()
	defer it.Done()

	var out []string
	var item starlark.Value
	for it.Next(&item) {
		s, ok := starlark.AsString(item)
		if !ok {
			return nil, fmt.Errorf("advise returned a %s item, want string", item.Type())
		}
		out = append(out, s)
	}
	return out, nil
}

// #endregion convert

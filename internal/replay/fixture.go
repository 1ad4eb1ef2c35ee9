package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/goal"
	"github.com/danielpatrickdp/alive-runtime/internal/pipeline"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Context         FixtureContext          `json:"context"`
	Ticks           []FixtureTick           `json:"ticks"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
	Deliberations   []FixtureDeliberation   `json:"deliberations,omitempty"`
}

// FixtureContext holds the snapshots shared by every tick of the fixture. Capabilities is
// kept raw so any accepted snapshot shape can be recorded.
type FixtureContext struct {
	Constraints  *gate.Constraints               `json:"constraints,omitempty"`
	Capabilities json.RawMessage                 `json:"capabilities,omitempty"`
	Declarations map[string]pipeline.Declaration `json:"declarations,omitempty"`
	Dialogue     dialogue.Config                 `json:"dialogue"`
}

// FixtureTick is one recorded goal snapshot.
type FixtureTick struct {
	TickID string      `json:"tick_id"`
	Goals  []goal.Goal `json:"goals"`
}

// FixtureExpectedResult captures the expected outcome per tick. Eliminated, Denied and
// Failures are only checked when present.
type FixtureExpectedResult struct {
	TickID     string             `json:"tick_id"`
	Authorized []string           `json:"authorized"`
	Eliminated []gate.Elimination `json:"eliminated,omitempty"`
	Denied     []gate.Denial      `json:"denied,omitempty"`
	Failures   []string           `json:"failures,omitempty"`
}

// FixtureDeliberation is one recorded dialogue run and its expected termination.
type FixtureDeliberation struct {
	Trigger            string   `json:"trigger"`
	Snapshot           []string `json:"snapshot,omitempty"`
	ExpectedReason     string   `json:"expected_reason"`
	ExpectedIterations int      `json:"expected_iterations,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToContext converts the fixture context to a pipeline context.
func (fc *FixtureContext) ToContext() (pipeline.Context, error) {
	caps, err := gate.DecodeCapabilitySnapshot(fc.Capabilities)
	if err != nil {
		return pipeline.Context{}, err
	}
	return pipeline.Context{
		Constraints:  fc.Constraints,
		Capabilities: caps,
		Declarations: fc.Declarations,
		Dialogue:     fc.Dialogue,
	}, nil
}

// #endregion fixture-loader

// #region fixture-export

// BuildFixture records the current outcome of every tick as its expectation, producing a
// regression baseline that replays cleanly until the rules change.
func BuildFixture(description string, fc FixtureContext, ticks []FixtureTick) (*Fixture, error) {
	ctx, err := fc.ToContext()
	if err != nil {
		return nil, err
	}
	f := &Fixture{
		Description:     description,
		Context:         fc,
		Ticks:           ticks,
		ExpectedResults: make([]FixtureExpectedResult, 0, len(ticks)),
	}
	for _, r := range Replay(ctx, ticks) {
		failures := make([]string, 0, len(r.Result.Failures))
		for _, fl := range r.Result.Failures {
			failures = append(failures, fl.Code)
		}
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{
			TickID:     r.TickID,
			Authorized: intentIDs(r.Result),
			Eliminated: r.Result.Eliminated,
			Denied:     r.Result.Denied,
			Failures:   failures,
		})
	}
	return f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(f *Fixture, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-export

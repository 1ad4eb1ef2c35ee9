package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/alive-runtime/internal/advisor"
	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
	"github.com/danielpatrickdp/alive-runtime/internal/logging"
	"github.com/danielpatrickdp/alive-runtime/internal/memory"
	"github.com/danielpatrickdp/alive-runtime/internal/pipeline"
)

// #region types

// Config is the YAML document read by the alive CLI.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Logging       logging.Config      `yaml:"logging"`
	Dialogue      dialogue.Config     `yaml:"dialogue"`
	Memory        MemoryConfig        `yaml:"memory"`
	Authorization AuthorizationConfig `yaml:"authorization"`
	Advisor       AdvisorConfig       `yaml:"advisor"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MemoryConfig tunes memory derivation.
type MemoryConfig struct {
	EventLimit int                     `yaml:"event_limit"`
	Stream     memory.StreamOptions    `yaml:"stream"`
	Working    memory.WorkingOptions   `yaml:"working"`
	LongTerm   memory.LongTermOptions  `yaml:"long_term"`
	Recall     memory.RecallOptions    `yaml:"recall"`
	Reset      *memory.ResetThresholds `yaml:"reset"`
}

// AuthorizationConfig holds the capability and constraints snapshots and the per-intent
// declarations.
type AuthorizationConfig struct {
	Capabilities []string                        `yaml:"capabilities"`
	Constraints  ConstraintsConfig               `yaml:"constraints"`
	Declarations map[string]pipeline.Declaration `yaml:"declarations"`
}

// ConstraintsConfig mirrors gate.Constraints.
type ConstraintsConfig struct {
	RejectedIntentIDs []string `yaml:"rejected_intent_ids"`
	DeniedIntentIDs   []string `yaml:"denied_intent_ids"`
	AllowedScopes     []string `yaml:"allowed_scopes"`
	MaxScope          string   `yaml:"max_scope"`
}

// AdvisorConfig configures external specialists and the advisor server.
type AdvisorConfig struct {
	Addr    string         `yaml:"addr"`
	Timeout time.Duration  `yaml:"timeout"`
	Listen  string         `yaml:"listen"`
	Scripts []ScriptConfig `yaml:"scripts"`
}

// ScriptConfig is one Starlark specialist.
type ScriptConfig struct {
	ID       string `yaml:"id"`
	Path     string `yaml:"path"`
	MaxSteps int    `yaml:"max_steps"`
}

// #endregion types

// #region defaults

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	rt := pipeline.DefaultRuntimeConfig()
	return &Config{
		Database: DatabaseConfig{Path: "alive.db"},
		Logging:  logging.Config{Level: "info", Format: "text"},
		Dialogue: dialogue.DefaultConfig(),
		Memory: MemoryConfig{
			EventLimit: rt.EventLimit,
			Stream:     rt.Memory.Stream,
			Working:    rt.Memory.Working,
			LongTerm:   rt.Memory.LongTerm,
		},
		Advisor: AdvisorConfig{
			Timeout: advisor.DefaultTimeout,
			Listen:  "localhost:50061",
		},
	}
}

// #endregion defaults

// #region load

// Load reads path over the defaults and applies environment overrides. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Database.Path = envOr("ALIVE_DB", c.Database.Path)
	c.Logging.Level = envOr("ALIVE_LOG_LEVEL", c.Logging.Level)
	c.Advisor.Addr = envOr("ALIVE_ADVISOR_ADDR", c.Advisor.Addr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate

// Validate reports every invalid key at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(key string, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: "+format, append([]any{key}, args...)...))
	}
	nonNegative := func(key string, v int) {
		if v < 0 {
			bad(key, "must not be negative, got %d", v)
		}
	}
	nonNegativeDuration := func(key string, d time.Duration) {
		if d < 0 {
			bad(key, "must not be negative, got %s", d)
		}
	}
	scope := func(key, s string) {
		if s == "" {
			return
		}
		if _, err := intent.ParseScope(s); err != nil {
			bad(key, "%v", err)
		}
	}

	if c.Database.Path == "" {
		bad("database.path", "must be set")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		bad("logging.format", "unknown format %q", c.Logging.Format)
	}

	t := c.Dialogue.Termination
	nonNegative("dialogue.termination.max_iterations", t.MaxIterations)
	nonNegative("dialogue.termination.max_depth", t.MaxDepth)
	nonNegative("dialogue.termination.contradiction_stall_limit", t.ContradictionStallLimit)
	if t.DiminishingReturnsThreshold < 0 || t.DiminishingReturnsThreshold > 1 {
		bad("dialogue.termination.diminishing_returns_threshold", "must be within [0, 1], got %v", t.DiminishingReturnsThreshold)
	}
	nonNegative("dialogue.max_thoughts_per_iteration", c.Dialogue.MaxThoughtsPerIteration)
	nonNegative("dialogue.max_trace_entries", c.Dialogue.MaxTraceEntries)
	nonNegative("dialogue.max_pattern_candidates", c.Dialogue.MaxPatternCandidates)

	m := c.Memory
	nonNegative("memory.event_limit", m.EventLimit)
	nonNegative("memory.stream.active_max_size", m.Stream.ActiveMaxSize)
	nonNegative("memory.stream.relaxed_max_size", m.Stream.RelaxedMaxSize)
	nonNegative("memory.stream.idle_max_size", m.Stream.IdleMaxSize)
	nonNegativeDuration("memory.stream.active_window", m.Stream.ActiveWindow)
	nonNegativeDuration("memory.stream.relaxed_window", m.Stream.RelaxedWindow)
	nonNegativeDuration("memory.working.decay_threshold", m.Working.DecayThreshold)
	nonNegative("memory.long_term.promotion_threshold", m.LongTerm.PromotionThreshold)
	nonNegative("memory.long_term.max_entries", m.LongTerm.MaxEntries)
	nonNegativeDuration("memory.long_term.promotion_window", m.LongTerm.PromotionWindow)
	nonNegativeDuration("memory.long_term.demotion_age", m.LongTerm.DemotionAge)
	nonNegative("memory.recall.max_results", m.Recall.MaxResults)
	nonNegativeDuration("memory.recall.half_life", m.Recall.HalfLife)

	a := c.Authorization
	for i, s := range a.Constraints.AllowedScopes {
		scope(fmt.Sprintf("authorization.constraints.allowed_scopes[%d]", i), s)
	}
	scope("authorization.constraints.max_scope", a.Constraints.MaxScope)
	for id, d := range a.Declarations {
		scope(fmt.Sprintf("authorization.declarations[%s].authorization_scope", id), string(d.AuthorizationScope))
	}

	nonNegativeDuration("advisor.timeout", c.Advisor.Timeout)
	for i, s := range c.Advisor.Scripts {
		if s.ID == "" || s.Path == "" {
			bad(fmt.Sprintf("advisor.scripts[%d]", i), "id and path are required")
		}
		nonNegative(fmt.Sprintf("advisor.scripts[%d].max_steps", i), s.MaxSteps)
	}

	return errors.Join(errs...)
}

// #endregion validate

// #region convert

// ToConstraints converts the constraints section. Scopes must already be validated.
func (a AuthorizationConfig) ToConstraints() *gate.Constraints {
	c := a.Constraints
	out := &gate.Constraints{
		RejectedIntentIDs:     c.RejectedIntentIDs,
		DeniedIntentIDs:       c.DeniedIntentIDs,
		MaxAuthorizationScope: intent.Scope(c.MaxScope),
	}
	for _, s := range c.AllowedScopes {
		out.AllowedAuthorizationScopes = append(out.AllowedAuthorizationScopes, intent.Scope(s))
	}
	return out
}

// PipelineContext builds the pipeline context, without specialists.
func (c *Config) PipelineContext() pipeline.Context {
	return pipeline.Context{
		Constraints:  c.Authorization.ToConstraints(),
		Capabilities: gate.NewCapabilityIDSet(c.Authorization.Capabilities...),
		Declarations: c.Authorization.Declarations,
		Dialogue:     c.Dialogue,
	}
}

// RuntimeConfig builds the runtime memory tuning.
func (c *Config) RuntimeConfig() pipeline.RuntimeConfig {
	return pipeline.RuntimeConfig{
		Memory: memory.Options{
			Stream:   c.Memory.Stream,
			Working:  c.Memory.Working,
			LongTerm: c.Memory.LongTerm,
		},
		Recall:     c.Memory.Recall,
		Reset:      c.Memory.Reset,
		EventLimit: c.Memory.EventLimit,
	}
}

// Specialists loads the configured script specialists and, when an address is set, the
// remote advisor. The returned func closes the remote connection.
func (c *Config) Specialists() ([]dialogue.Specialist, func() error, error) {
	var out []dialogue.Specialist
	closer := func() error { return nil }

	for _, s := range c.Advisor.Scripts {
		sp, err := advisor.LoadScript(s.ID, s.Path, s.MaxSteps)
		if err != nil {
			return nil, closer, err
		}
		out = append(out, sp)
	}
	if c.Advisor.Addr != "" {
		client, err := advisor.NewClient("remote", c.Advisor.Addr)
		if err != nil {
			return nil, closer, err
		}
		client.SetTimeout(c.Advisor.Timeout)
		out = append(out, client)
		closer = client.Close
	}
	return out, closer, nil
}

// #endregion convert

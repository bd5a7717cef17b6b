package training

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-qroute/pkg/agent"
	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/traffic"
	"github.com/dd0wney/cluso-qroute/pkg/validation"
)

// ErrInvalidConfig wraps every configuration problem reported by Validate
var ErrInvalidConfig = errors.New("invalid training config")

const (
	DefaultEpisodes = 3000
	DefaultLogEvery = 100
)

// Config holds every knob of a training run
type Config struct {
	Episodes int `yaml:"episodes" validate:"gte=1"`

	// Agent
	Alpha        float64 `yaml:"alpha" validate:"gt=0,lte=1"`
	Gamma        float64 `yaml:"gamma" validate:"gte=0,lte=1"`
	Epsilon      float64 `yaml:"epsilon" validate:"gte=0,lte=1"`
	MinEpsilon   float64 `yaml:"min_epsilon" validate:"gte=0,lte=1"`
	EpsilonDecay float64 `yaml:"epsilon_decay" validate:"gt=0,lte=1"`

	// Environment
	MaxSteps       int     `yaml:"max_steps" validate:"gte=1"`
	LoopWindow     int     `yaml:"loop_window" validate:"gte=1"`
	RevisitPenalty float64 `yaml:"revisit_penalty" validate:"gte=0"`
	GoalBonus      float64 `yaml:"goal_bonus"`

	// Randomness and synthetic traffic
	Seed     uint64 `yaml:"seed"`
	CostLow  int    `yaml:"cost_low" validate:"gte=0"`
	CostHigh int    `yaml:"cost_high" validate:"gtefield=CostLow"`

	// LogEvery controls progress logging; 0 disables it
	LogEvery int `yaml:"log_every" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	a := agent.DefaultOptions()
	e := environment.DefaultOptions()
	return Config{
		Episodes:       DefaultEpisodes,
		Alpha:          a.Alpha,
		Gamma:          a.Gamma,
		Epsilon:        a.Epsilon,
		MinEpsilon:     a.MinEpsilon,
		EpsilonDecay:   a.EpsilonDecay,
		MaxSteps:       e.MaxSteps,
		LoopWindow:     e.LoopWindow,
		RevisitPenalty: e.RevisitPenalty,
		GoalBonus:      e.GoalBonus,
		Seed:           1,
		CostLow:        traffic.DefaultLow,
		CostHigh:       traffic.DefaultHigh,
		LogEvery:       DefaultLogEvery,
	}
}

// Validate reports every problem with the config at once
func (c Config) Validate() error {
	var errs []error
	if err := validation.Struct(c); err != nil {
		errs = append(errs, err)
	}

	v := validation.NewConfigValidator("Config").
		Positive("Episodes", c.Episodes).
		Rate("Alpha", c.Alpha).
		Probability("Gamma", c.Gamma).
		Probability("Epsilon", c.Epsilon).
		Probability("MinEpsilon", c.MinEpsilon).
		AtMostFloat("MinEpsilon", c.MinEpsilon, "Epsilon", c.Epsilon).
		Rate("EpsilonDecay", c.EpsilonDecay).
		MinInt("MaxSteps", c.MaxSteps, 1).
		MinInt("LoopWindow", c.LoopWindow, 1).
		NonNegativeFloat("RevisitPenalty", c.RevisitPenalty).
		PositiveFloat("GoalBonus", c.GoalBonus).
		RangeInt("CostLow", c.CostLow, 0, c.CostHigh).
		MinInt("LogEvery", c.LogEvery, 0)
	if v.HasErrors() {
		errs = append(errs, v.Errors()...)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// AgentOptions extracts the learning hyperparameters
func (c Config) AgentOptions() agent.Options {
	return agent.Options{
		Alpha:        c.Alpha,
		Gamma:        c.Gamma,
		Epsilon:      c.Epsilon,
		MinEpsilon:   c.MinEpsilon,
		EpsilonDecay: c.EpsilonDecay,
	}
}

// EnvironmentOptions extracts the episode rules
func (c Config) EnvironmentOptions() environment.Options {
	return environment.Options{
		MaxSteps:       c.MaxSteps,
		LoopWindow:     c.LoopWindow,
		RevisitPenalty: c.RevisitPenalty,
		GoalBonus:      c.GoalBonus,
	}
}

// ParseConfig overlays YAML onto DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse training config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read training config: %w", err)
	}
	return ParseConfig(data)
}

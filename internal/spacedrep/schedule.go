package spacedrep

import (
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

// LearningIntervals is the fixed interval sequence, in days, used while an
// item is in the learning phase. Level n (1-based) uses entry n-1.
var LearningIntervals = []int{1, 3, 7}

// HesitationStep shrinks the interval of a correct answer whose response
// time is below Below. Answers slower than the last step use SlowFactor.
type HesitationStep struct {
	Below  time.Duration `mapstructure:"below"`
	Factor float64       `mapstructure:"factor"`
}

// Config holds the tunable constants of the scheduler. The defaults were
// tuned empirically; they are kept as configuration so they can be
// adjusted without touching the algorithm.
type Config struct {
	// LearningIntervals used while level < len(LearningIntervals).
	LearningIntervals []int `mapstructure:"learning_intervals"`

	EaseBonus   float64 `mapstructure:"ease_bonus"`
	EasePenalty float64 `mapstructure:"ease_penalty"`
	MinEase     float64 `mapstructure:"min_ease"`
	MaxEase     float64 `mapstructure:"max_ease"`

	MinIntervalDays int `mapstructure:"min_interval_days"`
	MaxIntervalDays int `mapstructure:"max_interval_days"`

	// SomewhatSureFactor scales the interval of a correct answer the
	// learner was only somewhat sure about.
	SomewhatSureFactor float64 `mapstructure:"somewhat_sure_factor"`

	// HesitationSteps must be sorted by Below ascending.
	HesitationSteps []HesitationStep `mapstructure:"hesitation_steps"`
	SlowFactor      float64          `mapstructure:"slow_factor"`

	// LegacyDueAfter is how long after the last attempt an item without
	// SRS state becomes due.
	LegacyDueAfter time.Duration `mapstructure:"legacy_due_after"`

	// OverdueGrace is the fraction of the interval an item may stay due
	// before it is reported as overdue.
	OverdueGrace float64 `mapstructure:"overdue_grace"`
}

// DefaultConfig returns the scheduler constants.
func DefaultConfig() Config {
	return Config{
		LearningIntervals: append([]int(nil), LearningIntervals...),
		EaseBonus:         0.1,
		EasePenalty:       0.2,
		MinEase:           item.MinEase,
		MaxEase:           item.MaxEase,
		MinIntervalDays:   item.MinInterval,
		MaxIntervalDays:   item.MaxInterval,

		SomewhatSureFactor: 0.7,
		HesitationSteps: []HesitationStep{
			{Below: 5 * time.Second, Factor: 1.0},
			{Below: 15 * time.Second, Factor: 0.85},
			{Below: 30 * time.Second, Factor: 0.70},
		},
		SlowFactor: 0.50,

		LegacyDueAfter: 24 * time.Hour,
		OverdueGrace:   0.5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.LearningIntervals) == 0 {
		c.LearningIntervals = d.LearningIntervals
	}
	if c.MinEase == 0 {
		c.MinEase = d.MinEase
	}
	if c.MaxEase == 0 {
		c.MaxEase = d.MaxEase
	}
	if c.MinIntervalDays == 0 {
		c.MinIntervalDays = d.MinIntervalDays
	}
	if c.MaxIntervalDays == 0 {
		c.MaxIntervalDays = d.MaxIntervalDays
	}
	if c.SomewhatSureFactor == 0 {
		c.SomewhatSureFactor = d.SomewhatSureFactor
	}
	if len(c.HesitationSteps) == 0 {
		c.HesitationSteps = d.HesitationSteps
	}
	if c.SlowFactor == 0 {
		c.SlowFactor = d.SlowFactor
	}
	if c.LegacyDueAfter == 0 {
		c.LegacyDueAfter = d.LegacyDueAfter
	}
	return c
}

// learningPhaseLevels is the number of levels spent in the learning phase.
func (c Config) learningPhaseLevels() int {
	return len(c.LearningIntervals)
}

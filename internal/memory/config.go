package memory

import "github.com/abhisek/adaptiq/internal/item"

// Config holds the memory model constants. Times are in milliseconds.
type Config struct {
	// Expected reading time: MsPerChar per content character plus a base
	// thinking time.
	MsPerChar   float64 `mapstructure:"ms_per_char"`
	BaseThinkMs float64 `mapstructure:"base_think_ms"`

	// GraceMs is forgiven beyond the expected time before an answer counts
	// as hesitant. Flashcards use FlashcardGraceMs on the raw view time.
	GraceMs          float64 `mapstructure:"grace_ms"`
	FlashcardGraceMs float64 `mapstructure:"flashcard_grace_ms"`

	CorrectDelta    float64 `mapstructure:"correct_delta"`
	FastBonus       float64 `mapstructure:"fast_bonus"`
	FastThresholdMs float64 `mapstructure:"fast_threshold_ms"`
	CertainBonus    float64 `mapstructure:"certain_bonus"`
	GuessedPenalty  float64 `mapstructure:"guessed_penalty"`

	IncorrectPenalty      float64 `mapstructure:"incorrect_penalty"`
	ConfidentWrongPenalty float64 `mapstructure:"confident_wrong_penalty"`

	HesitationPenalty     float64 `mapstructure:"hesitation_penalty"`
	HesitationThresholdMs float64 `mapstructure:"hesitation_threshold_ms"`

	// Streak bonus is StreakBonus * min(streak-(StreakMin-1), StreakBonusCap)
	// once the streak reaches StreakMin.
	StreakBonus    float64 `mapstructure:"streak_bonus"`
	StreakMin      int     `mapstructure:"streak_min"`
	StreakBonusCap int     `mapstructure:"streak_bonus_cap"`

	// HoursPerStrength is the decay constant contributed by one unit of
	// strength.
	HoursPerStrength float64 `mapstructure:"hours_per_strength"`
}

// DefaultConfig returns the memory model constants.
func DefaultConfig() Config {
	return Config{
		MsPerChar:        50,
		BaseThinkMs:      2000,
		GraceMs:          3000,
		FlashcardGraceMs: 5000,

		CorrectDelta:    0.5,
		FastBonus:       0.3,
		FastThresholdMs: 1000,
		CertainBonus:    0.3,
		GuessedPenalty:  0.2,

		IncorrectPenalty:      0.8,
		ConfidentWrongPenalty: 0.3,

		HesitationPenalty:     0.2,
		HesitationThresholdMs: 5000,

		StreakBonus:    0.2,
		StreakMin:      3,
		StreakBonusCap: 3,

		HoursPerStrength: 24,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HoursPerStrength == 0 {
		c.HoursPerStrength = d.HoursPerStrength
	}
	if c.StreakMin == 0 {
		c.StreakMin = d.StreakMin
	}
	if c.StreakBonusCap == 0 {
		c.StreakBonusCap = d.StreakBonusCap
	}
	return c
}

func clampStrength(s float64) float64 {
	return clamp(s, item.MinStrength, item.MaxStrength)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package difficulty

// Config holds the estimator thresholds and heuristic weights.
type Config struct {
	// AccuracyThresholds are the minimum historical accuracies for Easy,
	// Medium, Hard and Expert. Anything below the last is Master.
	AccuracyThresholds []float64 `mapstructure:"accuracy_thresholds"`

	// Content heuristics for never-attempted items.
	BaseScore         float64  `mapstructure:"base_score"`
	LongTextChars     int      `mapstructure:"long_text_chars"`
	VeryLongTextChars int      `mapstructure:"very_long_text_chars"`
	LongTextBonus     float64  `mapstructure:"long_text_bonus"`
	DigitsBonus       float64  `mapstructure:"digits_bonus"`
	NegationBonus     float64  `mapstructure:"negation_bonus"`
	NegationKeywords  []string `mapstructure:"negation_keywords"`
	LongOptionChars   float64  `mapstructure:"long_option_chars"`
	LongOptionBonus   float64  `mapstructure:"long_option_bonus"`

	// User level blend: AccuracyWeight*accuracy + StreakWeight*min(avgStreak/StreakCap, 1).
	AccuracyWeight float64 `mapstructure:"accuracy_weight"`
	StreakWeight   float64 `mapstructure:"streak_weight"`
	StreakCap      float64 `mapstructure:"streak_cap"`

	// LevelThresholds are the minimum blended scores for Master, Expert,
	// Hard and Medium. Anything below the last is Easy.
	LevelThresholds []float64 `mapstructure:"level_thresholds"`

	MatchPerStep float64 `mapstructure:"match_per_step"`
	MatchFloor   float64 `mapstructure:"match_floor"`
}

// DefaultConfig returns the estimator constants.
func DefaultConfig() Config {
	return Config{
		AccuracyThresholds: []float64{0.9, 0.7, 0.5, 0.3},

		BaseScore:         float64(Medium),
		LongTextChars:     300,
		VeryLongTextChars: 500,
		LongTextBonus:     0.5,
		DigitsBonus:       0.3,
		NegationBonus:     0.5,
		NegationKeywords: []string{
			"except",
			"not true",
			"contraindicated",
			"least likely",
			"incorrect",
			"false",
			"exception",
		},
		LongOptionChars: 100,
		LongOptionBonus: 0.3,

		AccuracyWeight:  0.7,
		StreakWeight:    0.3,
		StreakCap:       5,
		LevelThresholds: []float64{0.85, 0.70, 0.55, 0.40},

		MatchPerStep: 0.3,
		MatchFloor:   0.1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.AccuracyThresholds) == 0 {
		c.AccuracyThresholds = d.AccuracyThresholds
	}
	if c.BaseScore == 0 {
		c.BaseScore = d.BaseScore
	}
	if c.LongTextChars == 0 {
		c.LongTextChars = d.LongTextChars
	}
	if c.VeryLongTextChars == 0 {
		c.VeryLongTextChars = d.VeryLongTextChars
	}
	if len(c.NegationKeywords) == 0 {
		c.NegationKeywords = d.NegationKeywords
	}
	if c.LongOptionChars == 0 {
		c.LongOptionChars = d.LongOptionChars
	}
	if c.AccuracyWeight == 0 && c.StreakWeight == 0 {
		c.AccuracyWeight = d.AccuracyWeight
		c.StreakWeight = d.StreakWeight
	}
	if c.StreakCap == 0 {
		c.StreakCap = d.StreakCap
	}
	if len(c.LevelThresholds) == 0 {
		c.LevelThresholds = d.LevelThresholds
	}
	if c.MatchPerStep == 0 {
		c.MatchPerStep = d.MatchPerStep
	}
	return c
}

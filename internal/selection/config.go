package selection

// Config holds the weighting constants. Bonuses and ShortFormRatio may be
// zero; the remaining zero fields fall back to DefaultConfig.
type Config struct {
	BaseWeight       float64 `mapstructure:"base_weight"`
	DueBonus         float64 `mapstructure:"due_bonus"`
	AtRiskBonus      float64 `mapstructure:"at_risk_bonus"`
	AtRiskRetention  float64 `mapstructure:"at_risk_retention"`
	NewBonus         float64 `mapstructure:"new_bonus"`
	LowStrengthBonus float64 `mapstructure:"low_strength_bonus"`
	LowStrength      float64 `mapstructure:"low_strength"`

	// CandidateFactor bounds the randomized draw to the top
	// CandidateFactor*count items by weight.
	CandidateFactor int `mapstructure:"candidate_factor"`

	ShortFormRatio    float64 `mapstructure:"short_form_ratio"`
	MaxShortFormRatio float64 `mapstructure:"max_short_form_ratio"`
}

// DefaultConfig returns the weighting constants.
func DefaultConfig() Config {
	return Config{
		BaseWeight:       1,
		DueBonus:         3,
		AtRiskBonus:      2,
		AtRiskRetention:  0.5,
		NewBonus:         0.5,
		LowStrengthBonus: 1,
		LowStrength:      3,

		CandidateFactor: 3,

		ShortFormRatio:    0.3,
		MaxShortFormRatio: 0.4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseWeight == 0 {
		c.BaseWeight = d.BaseWeight
	}
	if c.AtRiskRetention == 0 {
		c.AtRiskRetention = d.AtRiskRetention
	}
	if c.LowStrength == 0 {
		c.LowStrength = d.LowStrength
	}
	if c.CandidateFactor <= 0 {
		c.CandidateFactor = d.CandidateFactor
	}
	if c.MaxShortFormRatio == 0 {
		c.MaxShortFormRatio = d.MaxShortFormRatio
	}
	return c
}

// Options toggles the signals of one selection call. The zero value
// disables every optional signal; use DefaultOptions for the usual set.
type Options struct {
	IncludeDue          bool `json:"include_due"`
	PrioritizeAtRisk    bool `json:"prioritize_at_risk"`
	PrioritizeWeakSpots bool `json:"prioritize_weak_spots"`
	MatchDifficulty     bool `json:"match_difficulty"`

	// ShortFormRatio is the share of short-form items in the result. Zero
	// uses the configured default; values above the configured maximum
	// are capped.
	ShortFormRatio float64 `json:"short_form_ratio,omitempty"`
}

// DefaultOptions enables every signal.
func DefaultOptions() Options {
	return Options{
		IncludeDue:          true,
		PrioritizeAtRisk:    true,
		PrioritizeWeakSpots: true,
		MatchDifficulty:     true,
	}
}

func (c Config) shortFormRatio(o Options) float64 {
	r := o.ShortFormRatio
	if r <= 0 {
		r = c.ShortFormRatio
	}
	return min(r, c.MaxShortFormRatio)
}

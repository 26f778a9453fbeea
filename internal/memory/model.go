// Package memory tracks a continuous per-item memory strength and predicts
// recall with an exponential forgetting curve.
package memory

import (
	"math"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

// Attempt is the memory model's view of an answered question. A zero
// ResponseTime means the response time was not recorded.
type Attempt struct {
	Correct      bool
	ResponseTime time.Duration
	Confidence   item.Confidence
}

// Update is the outcome of one review. The caller persists it into the
// item's memory fields.
type Update struct {
	MemoryStrength float64 `json:"memory_strength"`

	// PredictedRetention is what the model expected the learner to recall
	// at the moment of this review, based on the previous strength.
	PredictedRetention float64   `json:"predicted_retention"`
	CorrectStreak      int       `json:"correct_streak"`
	HesitationMs       float64   `json:"hesitation_ms"`
	AvgHesitationMs    float64   `json:"avg_hesitation_ms"`
	LastReviewedAt     time.Time `json:"last_reviewed_at"`
}

// Model applies strength deltas. It is stateless apart from its config.
type Model struct {
	cfg Config
}

// NewModel creates a model. Only HoursPerStrength and the streak bounds
// fall back to DefaultConfig when zero; every delta and time may be zero.
func NewModel(cfg Config) *Model {
	return &Model{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (m *Model) Config() Config {
	return m.cfg
}

// ExpectedTimeMs estimates how long reading and thinking about content of
// the given length should take.
func (m *Model) ExpectedTimeMs(chars int) float64 {
	return float64(max(chars, 0))*m.cfg.MsPerChar + m.cfg.BaseThinkMs
}

// Hesitation returns the time spent beyond the expected time plus grace.
func (m *Model) Hesitation(actualMs float64, chars int) float64 {
	return math.Max(0, actualMs-m.ExpectedTimeMs(chars)-m.cfg.GraceMs)
}

// RecordAttempt computes the memory update for a multiple-choice answer.
func (m *Model) RecordAttempt(it item.Item, a Attempt, now time.Time) Update {
	actual := durationMs(a.ResponseTime)
	hesitation := 0.0
	if actual > 0 {
		hesitation = m.Hesitation(actual, it.ContentLength())
	}

	delta := m.baseDelta(a.Correct, actual, hesitation)
	if a.Correct {
		switch a.Confidence {
		case item.ConfidenceCertain:
			delta += m.cfg.CertainBonus
		case item.ConfidenceGuessed:
			delta -= m.cfg.GuessedPenalty
		}
	} else if a.Confidence == item.ConfidenceCertain {
		delta -= m.cfg.ConfidentWrongPenalty
	}

	return m.finish(it, a.Correct, delta, hesitation, now)
}

// RecordFlashcard computes the memory update for a flashcard view. There is
// no confidence rating and the grace period is flat.
func (m *Model) RecordFlashcard(it item.Item, remembered bool, viewTime time.Duration, now time.Time) Update {
	actual := durationMs(viewTime)
	hesitation := math.Max(0, actual-m.cfg.FlashcardGraceMs)
	delta := m.baseDelta(remembered, actual, hesitation)
	return m.finish(it, remembered, delta, hesitation, now)
}

// Retention is the probability of recall hoursSince hours after a review
// at the given strength.
func (m *Model) Retention(strength, hoursSince float64) float64 {
	if math.IsNaN(strength) || strength <= 0 {
		return 0
	}
	hoursSince = math.Max(hoursSince, 0)
	return clamp(math.Exp(-hoursSince/(strength*m.cfg.HoursPerStrength)), 0, 1)
}

// PredictedRetention returns the item's current retention. The second
// result is false for items that were never reviewed.
func (m *Model) PredictedRetention(it item.Item, now time.Time) (float64, bool) {
	last, ok := it.LastSeen()
	if !ok {
		return 0, false
	}
	return m.Retention(it.State.MemoryStrength, now.Sub(last).Hours()), true
}

// Apply writes an update into a state's memory fields.
func Apply(st item.State, u Update) item.State {
	reviewed := u.LastReviewedAt
	st.MemoryStrength = u.MemoryStrength
	st.CorrectStreak = u.CorrectStreak
	st.AvgHesitationMs = u.AvgHesitationMs
	st.LastReviewedAt = &reviewed
	return st
}

func (m *Model) baseDelta(correct bool, actualMs, hesitation float64) float64 {
	var delta float64
	if correct {
		delta = m.cfg.CorrectDelta
		if actualMs > 0 && actualMs < m.cfg.FastThresholdMs {
			delta += m.cfg.FastBonus
		}
	} else {
		delta = -m.cfg.IncorrectPenalty
	}
	if hesitation > m.cfg.HesitationThresholdMs {
		delta -= m.cfg.HesitationPenalty
	}
	return delta
}

func (m *Model) finish(it item.Item, correct bool, delta, hesitation float64, now time.Time) Update {
	st := it.State.Normalize()

	streak := 0
	if correct {
		streak = st.CorrectStreak + 1
		if streak >= m.cfg.StreakMin {
			steps := min(streak-(m.cfg.StreakMin-1), m.cfg.StreakBonusCap)
			delta += m.cfg.StreakBonus * float64(steps)
		}
	}

	prior := 1.0
	if r, ok := m.PredictedRetention(it, now); ok {
		prior = r
	}

	// Running mean over all reviews, including this one.
	n := float64(max(it.TimesAttempted, 0) + 1)
	avg := st.AvgHesitationMs + (hesitation-st.AvgHesitationMs)/n

	return Update{
		MemoryStrength:     clampStrength(st.MemoryStrength + delta),
		PredictedRetention: prior,
		CorrectStreak:      streak,
		HesitationMs:       hesitation,
		AvgHesitationMs:    math.Max(avg, 0),
		LastReviewedAt:     now,
	}
}

func durationMs(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

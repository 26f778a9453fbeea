package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

// Result is the outcome of scheduling one answer. The caller persists it
// into the item's SRS fields.
type Result struct {
	NextReviewAt time.Time `json:"next_review_at"`
	Interval     int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	Level        int       `json:"level"`
	Message      string    `json:"message"`
}

// Answer is the scheduler's view of a submitted answer.
type Answer struct {
	Correct      bool
	Confidence   item.Confidence
	ResponseTime time.Duration
}

// Scheduler computes review intervals. It holds no per-item state; every
// method is a pure function of its inputs.
type Scheduler struct {
	cfg Config
}

// NewScheduler creates a scheduler. Zero-valued config fields fall back to
// DefaultConfig, except EaseBonus, EasePenalty and OverdueGrace, which may
// be zero.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Next applies the base state machine for a plain correct/incorrect answer.
func (s *Scheduler) Next(st item.State, wasCorrect bool, now time.Time) Result {
	st = st.Normalize()
	ease := s.clampEase(st.SRSEaseFactor)

	var r Result
	if !wasCorrect {
		r = Result{
			Level:      0,
			Interval:   s.cfg.MinIntervalDays,
			EaseFactor: s.clampEase(ease - s.cfg.EasePenalty),
		}
		return s.finish(r, now)
	}

	newEase := s.clampEase(ease + s.cfg.EaseBonus)
	r = Result{EaseFactor: newEase, Level: st.SRSLevel + 1}

	if st.SRSLevel < s.cfg.learningPhaseLevels() {
		idx := min(r.Level-1, len(s.cfg.LearningIntervals)-1)
		r.Interval = s.cfg.LearningIntervals[idx]
	} else {
		r.Interval = int(math.Round(float64(st.SRSInterval) * newEase))
	}
	return s.finish(r, now)
}

// Schedule applies Next and then the confidence and hesitation overrides.
// A correct answer the learner guessed is scheduled exactly like a wrong
// one. Overrides only ever shorten the interval.
func (s *Scheduler) Schedule(st item.State, a Answer, now time.Time) Result {
	if !a.Correct || a.Confidence == item.ConfidenceGuessed {
		return s.Next(st, false, now)
	}

	r := s.Next(st, true, now)
	factor := 1.0
	if a.Confidence == item.ConfidenceSomewhat {
		factor *= s.cfg.SomewhatSureFactor
	}
	factor *= s.HesitationFactor(a.ResponseTime)

	if factor < 1 {
		r.Interval = int(math.Round(float64(r.Interval) * factor))
		r = s.finish(r, now)
	}
	return r
}

// HesitationFactor returns the interval multiplier for a correct answer
// given after elapsed response time d. It never exceeds 1.
func (s *Scheduler) HesitationFactor(d time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	for _, step := range s.cfg.HesitationSteps {
		if d < step.Below {
			return math.Min(step.Factor, 1)
		}
	}
	return math.Min(s.cfg.SlowFactor, 1)
}

// Apply writes a result into a state's SRS fields and returns the new state.
func Apply(st item.State, r Result) item.State {
	next := r.NextReviewAt
	st.SRSLevel = r.Level
	st.SRSInterval = r.Interval
	st.SRSEaseFactor = r.EaseFactor
	st.SRSNextReviewAt = &next
	return st
}

func (s *Scheduler) finish(r Result, now time.Time) Result {
	r.Interval = min(max(r.Interval, s.cfg.MinIntervalDays), s.cfg.MaxIntervalDays)
	r.NextReviewAt = now.AddDate(0, 0, r.Interval)
	r.Message = Message(r.Interval)
	return r
}

func (s *Scheduler) clampEase(e float64) float64 {
	if math.IsNaN(e) {
		return item.InitialEase
	}
	return math.Min(math.Max(e, s.cfg.MinEase), s.cfg.MaxEase)
}

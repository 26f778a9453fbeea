package item

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Bounds and initial values of the persisted scheduling state.
const (
	InitialLevel    = 0
	InitialInterval = 1
	InitialEase     = 2.5
	InitialStrength = 2.5

	MinInterval = 1
	MaxInterval = 180
	MinEase     = 1.3
	MaxEase     = 3.0
	MinStrength = 0.0
	MaxStrength = 10.0
)

// State holds the per-item spaced repetition and memory fields. The SRS
// scheduler owns the SRS* fields, the memory model owns the rest.
type State struct {
	SRSLevel        int        `json:"srs_level"`
	SRSInterval     int        `json:"srs_interval"`
	SRSEaseFactor   float64    `json:"srs_ease_factor"`
	SRSNextReviewAt *time.Time `json:"srs_next_review_at,omitempty"`

	MemoryStrength  float64    `json:"memory_strength"`
	CorrectStreak   int        `json:"correct_streak"`
	AvgHesitationMs float64    `json:"avg_hesitation_ms"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
}

// DefaultState returns the state of an item that has never been scheduled.
func DefaultState() State {
	return State{
		SRSLevel:       InitialLevel,
		SRSInterval:    InitialInterval,
		SRSEaseFactor:  InitialEase,
		MemoryStrength: InitialStrength,
	}
}

// IsZero reports whether the state was never initialized.
func (s State) IsZero() bool {
	return s == State{}
}

// OrDefault returns DefaultState for an uninitialized state and the
// normalized state otherwise.
func (s State) OrDefault() State {
	if s.IsZero() {
		return DefaultState()
	}
	return s.Normalize()
}

// HasSRS reports whether the item has ever been scheduled. Items imported
// from older pools carry attempt counters but no review date.
func (s State) HasSRS() bool {
	return s.SRSNextReviewAt != nil
}

// Normalize clamps every field into its valid range. NaN or infinite
// values fall back to the initial state's value.
func (s State) Normalize() State {
	if s.SRSLevel < 0 {
		s.SRSLevel = 0
	}
	s.SRSInterval = min(max(s.SRSInterval, MinInterval), MaxInterval)
	s.SRSEaseFactor = clampFinite(s.SRSEaseFactor, MinEase, MaxEase, InitialEase)
	s.MemoryStrength = clampFinite(s.MemoryStrength, MinStrength, MaxStrength, InitialStrength)
	if s.CorrectStreak < 0 {
		s.CorrectStreak = 0
	}
	s.AvgHesitationMs = clampFinite(s.AvgHesitationMs, 0, math.MaxFloat64, 0)
	return s
}

func (s State) clone() State {
	c := s
	c.SRSNextReviewAt = cloneTime(s.SRSNextReviewAt)
	c.LastReviewedAt = cloneTime(s.LastReviewedAt)
	return c
}

// UnmarshalJSON starts from DefaultState so fields absent from a partial
// record keep their initial values instead of zero.
func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	p := plain(DefaultState())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = State(p)
	return nil
}

// EncodeState serializes a state as the flat JSON record stored per item.
func EncodeState(s State) ([]byte, error) {
	return json.Marshal(s.Normalize())
}

// DecodeState parses a persisted record. Missing or corrupted records yield
// DefaultState together with an error describing the problem; the caller is
// expected to log it and carry on with the returned state.
func DecodeState(raw []byte) (State, error) {
	if len(raw) == 0 {
		return DefaultState(), nil
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultState(), fmt.Errorf("decode item state: %w", err)
	}
	return s.Normalize(), nil
}

func clampFinite(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

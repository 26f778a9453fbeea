package spacedrep

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler() *Scheduler {
	return NewScheduler(DefaultConfig())
}

func srsState(level, interval int, ease float64) item.State {
	st := item.DefaultState()
	st.SRSLevel = level
	st.SRSInterval = interval
	st.SRSEaseFactor = ease
	return st
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNext_ReviewPhaseCorrect(t *testing.T) {
	// Review phase, interval 7, ease 2.5 -> ease 2.6, interval round(7*2.6) = 18.
	r := newTestScheduler().Next(srsState(3, 7, 2.5), true, testNow)

	if !approxEqual(r.EaseFactor, 2.6) {
		t.Errorf("EaseFactor = %v, want 2.6", r.EaseFactor)
	}
	if r.Interval != 18 {
		t.Errorf("Interval = %d, want 18", r.Interval)
	}
	if r.Level != 4 {
		t.Errorf("Level = %d, want 4", r.Level)
	}
	if want := testNow.AddDate(0, 0, 18); !r.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", r.NextReviewAt, want)
	}
}

func TestNext_IncorrectResets(t *testing.T) {
	// Level 1, interval 3, ease 2.0 -> level 0, interval 1, ease 1.8.
	r := newTestScheduler().Next(srsState(1, 3, 2.0), false, testNow)

	if r.Level != 0 {
		t.Errorf("Level = %d, want 0", r.Level)
	}
	if r.Interval != 1 {
		t.Errorf("Interval = %d, want 1", r.Interval)
	}
	if !approxEqual(r.EaseFactor, 1.8) {
		t.Errorf("EaseFactor = %v, want 1.8", r.EaseFactor)
	}
	if want := testNow.AddDate(0, 0, 1); !r.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", r.NextReviewAt, want)
	}
}

func TestNext_LearningPhaseSequence(t *testing.T) {
	s := newTestScheduler()
	st := item.DefaultState()

	wantIntervals := []int{1, 3, 7}
	for i, want := range wantIntervals {
		r := s.Next(st, true, testNow)
		if r.Level != i+1 {
			t.Errorf("step %d: Level = %d, want %d", i, r.Level, i+1)
		}
		if r.Interval != want {
			t.Errorf("step %d: Interval = %d, want %d", i, r.Interval, want)
		}
		st = Apply(st, r)
	}

	// Fourth correct answer leaves the learning phase: 7 * (2.5+0.4) = 20.3.
	r := s.Next(st, true, testNow)
	if r.Interval != 20 {
		t.Errorf("first review-phase Interval = %d, want 20", r.Interval)
	}
}

func TestNext_EaseCapped(t *testing.T) {
	r := newTestScheduler().Next(srsState(5, 10, 2.95), true, testNow)
	if r.EaseFactor != 3.0 {
		t.Errorf("EaseFactor = %v, want 3.0", r.EaseFactor)
	}
}

func TestNext_EaseFloored(t *testing.T) {
	r := newTestScheduler().Next(srsState(0, 1, 1.35), false, testNow)
	if r.EaseFactor != 1.3 {
		t.Errorf("EaseFactor = %v, want 1.3", r.EaseFactor)
	}
}

func TestNext_IntervalCapped(t *testing.T) {
	r := newTestScheduler().Next(srsState(9, 120, 3.0), true, testNow)
	if r.Interval != 180 {
		t.Errorf("Interval = %d, want 180", r.Interval)
	}
}

func TestNext_CorruptStateClamped(t *testing.T) {
	st := item.State{SRSLevel: 4, SRSInterval: -5, SRSEaseFactor: math.NaN()}
	r := newTestScheduler().Next(st, true, testNow)
	if r.EaseFactor < 1.3 || r.EaseFactor > 3.0 {
		t.Errorf("EaseFactor = %v out of bounds", r.EaseFactor)
	}
	if r.Interval < 1 || r.Interval > 180 {
		t.Errorf("Interval = %d out of bounds", r.Interval)
	}
}

func TestNext_BoundsHoldForAllStates(t *testing.T) {
	s := newTestScheduler()
	for level := 0; level < 8; level++ {
		for _, interval := range []int{1, 2, 7, 30, 90, 180} {
			for _, ease := range []float64{1.3, 1.9, 2.5, 3.0} {
				for _, correct := range []bool{true, false} {
					r := s.Next(srsState(level, interval, ease), correct, testNow)
					if r.EaseFactor < 1.3 || r.EaseFactor > 3.0 {
						t.Fatalf("ease %v out of bounds (level=%d interval=%d ease=%v correct=%v)",
							r.EaseFactor, level, interval, ease, correct)
					}
					if r.Interval < 1 || r.Interval > 180 {
						t.Fatalf("interval %d out of bounds (level=%d interval=%d ease=%v correct=%v)",
							r.Interval, level, interval, ease, correct)
					}
					if !correct && (r.Level != 0 || r.Interval != 1) {
						t.Fatalf("incorrect answer must reset, got level=%d interval=%d", r.Level, r.Interval)
					}
				}
			}
		}
	}
}

func TestSchedule_GuessedCorrectEqualsIncorrect(t *testing.T) {
	s := newTestScheduler()
	st := srsState(4, 20, 2.4)

	guessed := s.Schedule(st, Answer{Correct: true, Confidence: item.ConfidenceGuessed}, testNow)
	wrong := s.Schedule(st, Answer{Correct: false}, testNow)

	if guessed != wrong {
		t.Errorf("guessed-correct = %+v, want identical to incorrect %+v", guessed, wrong)
	}
}

func TestSchedule_SomewhatSureShortens(t *testing.T) {
	s := newTestScheduler()
	st := srsState(3, 7, 2.5)

	plain := s.Schedule(st, Answer{Correct: true, Confidence: item.ConfidenceCertain, ResponseTime: time.Second}, testNow)
	somewhat := s.Schedule(st, Answer{Correct: true, Confidence: item.ConfidenceSomewhat, ResponseTime: time.Second}, testNow)

	if plain.Interval != 18 {
		t.Fatalf("plain Interval = %d, want 18", plain.Interval)
	}
	// round(18 * 0.7) = 13
	if somewhat.Interval != 13 {
		t.Errorf("somewhat Interval = %d, want 13", somewhat.Interval)
	}
	if somewhat.EaseFactor != plain.EaseFactor || somewhat.Level != plain.Level {
		t.Errorf("somewhat-sure must not change ease or level: %+v vs %+v", somewhat, plain)
	}
	if want := testNow.AddDate(0, 0, 13); !somewhat.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", somewhat.NextReviewAt, want)
	}
}

func TestSchedule_HesitationBuckets(t *testing.T) {
	s := newTestScheduler()
	st := srsState(3, 10, 2.5) // correct -> round(10*2.6) = 26

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{2 * time.Second, 26},
		{10 * time.Second, 22}, // round(26*0.85) = 22.1
		{20 * time.Second, 18}, // round(26*0.70) = 18.2
		{45 * time.Second, 13}, // round(26*0.50) = 13
	}
	for _, tt := range tests {
		r := s.Schedule(st, Answer{Correct: true, ResponseTime: tt.elapsed}, testNow)
		if r.Interval != tt.want {
			t.Errorf("elapsed %v: Interval = %d, want %d", tt.elapsed, r.Interval, tt.want)
		}
	}
}

func TestSchedule_HesitationIgnoredOnIncorrect(t *testing.T) {
	s := newTestScheduler()
	st := srsState(3, 10, 2.5)
	slow := s.Schedule(st, Answer{Correct: false, ResponseTime: time.Minute}, testNow)
	fast := s.Schedule(st, Answer{Correct: false, ResponseTime: time.Second}, testNow)
	if slow != fast {
		t.Errorf("hesitation must not affect incorrect answers: %+v vs %+v", slow, fast)
	}
}

func TestSchedule_NeverLengthens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HesitationSteps = []HesitationStep{{Below: time.Hour, Factor: 1.5}}
	cfg.SlowFactor = 2
	s := NewScheduler(cfg)
	st := srsState(3, 10, 2.5)
	r := s.Schedule(st, Answer{Correct: true, ResponseTime: time.Second}, testNow)
	if r.Interval != 26 {
		t.Errorf("Interval = %d, want 26 (factors above 1 are ignored)", r.Interval)
	}
}

func TestSchedule_ShortenedIntervalStaysAtLeastOneDay(t *testing.T) {
	s := newTestScheduler()
	r := s.Schedule(item.DefaultState(), Answer{
		Correct:      true,
		Confidence:   item.ConfidenceSomewhat,
		ResponseTime: time.Minute,
	}, testNow)
	if r.Interval != 1 {
		t.Errorf("Interval = %d, want 1", r.Interval)
	}
}

func TestApply(t *testing.T) {
	r := newTestScheduler().Next(srsState(3, 7, 2.5), true, testNow)
	st := Apply(item.DefaultState(), r)
	if st.SRSLevel != r.Level || st.SRSInterval != r.Interval || st.SRSEaseFactor != r.EaseFactor {
		t.Errorf("Apply did not copy SRS fields: %+v", st)
	}
	if st.SRSNextReviewAt == nil || !st.SRSNextReviewAt.Equal(r.NextReviewAt) {
		t.Errorf("SRSNextReviewAt = %v, want %v", st.SRSNextReviewAt, r.NextReviewAt)
	}
	if st.MemoryStrength != item.InitialStrength {
		t.Errorf("Apply must not touch memory fields, got strength %v", st.MemoryStrength)
	}
}

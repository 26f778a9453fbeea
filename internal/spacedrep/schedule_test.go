package spacedrep

import (
	"testing"
	"time"
)

func TestLearningIntervals_Values(t *testing.T) {
	expected := []int{1, 3, 7}
	if len(LearningIntervals) != len(expected) {
		t.Fatalf("expected %d learning intervals, got %d", len(expected), len(LearningIntervals))
	}
	for i, v := range expected {
		if LearningIntervals[i] != v {
			t.Errorf("LearningIntervals[%d] = %d, want %d", i, LearningIntervals[i], v)
		}
	}
}

func TestDefaultConfig_Constants(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.EaseBonus != 0.1 {
		t.Errorf("EaseBonus = %v, want 0.1", cfg.EaseBonus)
	}
	if cfg.EasePenalty != 0.2 {
		t.Errorf("EasePenalty = %v, want 0.2", cfg.EasePenalty)
	}
	if cfg.MinEase != 1.3 || cfg.MaxEase != 3.0 {
		t.Errorf("ease bounds = [%v, %v], want [1.3, 3.0]", cfg.MinEase, cfg.MaxEase)
	}
	if cfg.MinIntervalDays != 1 || cfg.MaxIntervalDays != 180 {
		t.Errorf("interval bounds = [%d, %d], want [1, 180]", cfg.MinIntervalDays, cfg.MaxIntervalDays)
	}
	if cfg.LegacyDueAfter != 24*time.Hour {
		t.Errorf("LegacyDueAfter = %v, want 24h", cfg.LegacyDueAfter)
	}
}

func TestDefaultConfig_IsCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LearningIntervals[0] = 99
	if LearningIntervals[0] != 1 {
		t.Fatal("DefaultConfig must not alias the package-level sequence")
	}
}

func TestWithDefaults_FillsZeroFields(t *testing.T) {
	cfg := Config{EaseBonus: 0.15}.withDefaults()
	if cfg.EaseBonus != 0.15 {
		t.Errorf("EaseBonus = %v, want 0.15 (explicit value kept)", cfg.EaseBonus)
	}
	if cfg.EasePenalty != 0 {
		t.Errorf("EasePenalty = %v, want 0 (zero penalty is a valid setting)", cfg.EasePenalty)
	}
	if cfg.MinEase != 1.3 || cfg.MaxIntervalDays != 180 {
		t.Errorf("bounds = %v/%v, want defaults 1.3/180", cfg.MinEase, cfg.MaxIntervalDays)
	}
	if len(cfg.HesitationSteps) != 3 {
		t.Errorf("HesitationSteps = %d entries, want 3", len(cfg.HesitationSteps))
	}
}

func TestNext_ZeroEaseDeltasKeepEase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EaseBonus = 0
	cfg.EasePenalty = 0
	s := NewScheduler(cfg)
	st := srsState(3, 10, 2.5)
	if r := s.Next(st, true, testNow); r.EaseFactor != 2.5 || r.Interval != 25 {
		t.Errorf("correct: ease %v interval %d, want 2.5 and 25", r.EaseFactor, r.Interval)
	}
	if r := s.Next(st, false, testNow); r.EaseFactor != 2.5 {
		t.Errorf("incorrect: ease %v, want 2.5", r.EaseFactor)
	}
}

func TestMessage_Buckets(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "Let's see this one again tomorrow."},
		{3, "Good. Next review in 3 days."},
		{7, "Nice! Coming back in 7 days."},
		{10, "Solid. Review in about two weeks."},
		{30, "Strong recall. Review in about a month."},
		{45, "Well learned. Review in about two months."},
		{90, "Locked in. Review in about three months."},
		{180, "Mastered. Next review in several months."},
	}
	for _, tt := range tests {
		if got := Message(tt.days); got != tt.want {
			t.Errorf("Message(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

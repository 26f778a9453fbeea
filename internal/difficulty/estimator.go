package difficulty

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/adaptiq/internal/item"
)

// Estimator classifies items and learners into tiers.
type Estimator struct {
	cfg Config
}

// NewEstimator creates an estimator. Zero thresholds, sizes and keyword
// lists fall back to DefaultConfig; zero bonuses and MatchFloor are kept.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Estimate returns the item's tier: from historical accuracy once it has
// been attempted, from content heuristics otherwise.
func (e *Estimator) Estimate(it item.Item) Tier {
	if it.Attempted() {
		return e.FromAccuracy(it.Accuracy())
	}
	return e.FromContent(it)
}

// FromAccuracy maps a historical accuracy to a tier. Higher accuracy means
// an easier item.
func (e *Estimator) FromAccuracy(accuracy float64) Tier {
	for i, threshold := range e.cfg.AccuracyThresholds {
		if accuracy >= threshold {
			return (Easy + Tier(i)).Clamp()
		}
	}
	return Master
}

// FromContent estimates the tier of a never-attempted item.
func (e *Estimator) FromContent(it item.Item) Tier {
	score := e.cfg.BaseScore

	n := utf8.RuneCountInString(it.Question)
	if n > e.cfg.LongTextChars {
		score += e.cfg.LongTextBonus
	}
	if n > e.cfg.VeryLongTextChars {
		score += e.cfg.LongTextBonus
	}
	if strings.IndexFunc(it.Question, unicode.IsDigit) >= 0 {
		score += e.cfg.DigitsBonus
	}
	if e.hasNegation(it.Question) {
		score += e.cfg.NegationBonus
	}
	if len(it.Options) > 0 {
		total := 0
		for _, o := range it.Options {
			total += utf8.RuneCountInString(o.Text)
		}
		if float64(total)/float64(len(it.Options)) > e.cfg.LongOptionChars {
			score += e.cfg.LongOptionBonus
		}
	}

	return Tier(math.Round(score)).Clamp()
}

func (e *Estimator) hasNegation(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range e.cfg.NegationKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// UserLevel blends accuracy with the average correct streak into the tier
// the learner currently performs at.
func (e *Estimator) UserLevel(accuracy, avgStreak float64) Tier {
	streak := 0.0
	if e.cfg.StreakCap > 0 {
		streak = math.Min(math.Max(avgStreak, 0)/e.cfg.StreakCap, 1)
	}
	score := e.cfg.AccuracyWeight*accuracy + e.cfg.StreakWeight*streak

	for i, threshold := range e.cfg.LevelThresholds {
		if score >= threshold {
			return (Master - Tier(i)).Clamp()
		}
	}
	return Easy
}

// TargetTier is one tier above the learner's level, capped at Master.
func TargetTier(level Tier) Tier {
	return min(level+1, Master)
}

// TopicTargets returns the target tier per topic. Topics without any
// attempts target Medium.
func (e *Estimator) TopicTargets(items []item.Item) map[string]Tier {
	type agg struct {
		attempts  int
		correct   int
		streakSum int
		attempted int
	}
	byTopic := make(map[string]*agg)
	for _, it := range items {
		a := byTopic[it.Topic]
		if a == nil {
			a = &agg{}
			byTopic[it.Topic] = a
		}
		if !it.Attempted() {
			continue
		}
		a.attempts += it.TimesAttempted
		a.correct += min(max(it.CorrectAttempts, 0), it.TimesAttempted)
		a.streakSum += max(it.State.CorrectStreak, 0)
		a.attempted++
	}

	targets := make(map[string]Tier, len(byTopic))
	for topic, a := range byTopic {
		if a.attempts == 0 {
			targets[topic] = Medium
			continue
		}
		accuracy := float64(a.correct) / float64(a.attempts)
		avgStreak := float64(a.streakSum) / float64(a.attempted)
		targets[topic] = TargetTier(e.UserLevel(accuracy, avgStreak))
	}
	return targets
}

// Match scores an item tier against a target tier.
func (e *Estimator) Match(itemTier, target Tier) float64 {
	return MatchScore(itemTier, target, e.cfg.MatchPerStep, e.cfg.MatchFloor)
}

// Package difficulty classifies items into five ordinal tiers and derives
// the tier a learner should be challenged at per topic.
package difficulty

import (
	"fmt"
	"math"
	"strings"
)

// Tier is an ordinal difficulty level.
type Tier int

const (
	Easy Tier = iota + 1
	Medium
	Hard
	Expert
	Master
)

// AllTiers returns all tiers from easiest to hardest.
func AllTiers() []Tier {
	return []Tier{Easy, Medium, Hard, Expert, Master}
}

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	case Master:
		return "master"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier maps a tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range AllTiers() {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty tier %q", s)
}

// Clamp returns t limited to [Easy, Master].
func (t Tier) Clamp() Tier {
	return min(max(t, Easy), Master)
}

// MatchScore scores how well an item tier fits a target tier. A perfect
// match scores 1; each tier of distance costs perStep, floored at floor.
func MatchScore(itemTier, target Tier, perStep, floor float64) float64 {
	diff := math.Abs(float64(itemTier - target))
	return math.Max(floor, 1-diff*perStep)
}

package spacedrep

import "fmt"

// Message describes a review interval for the learner. It is informational
// only and never feeds back into scheduling.
func Message(intervalDays int) string {
	switch {
	case intervalDays <= 1:
		return "Let's see this one again tomorrow."
	case intervalDays <= 3:
		return fmt.Sprintf("Good. Next review in %d days.", intervalDays)
	case intervalDays <= 7:
		return fmt.Sprintf("Nice! Coming back in %d days.", intervalDays)
	case intervalDays <= 14:
		return "Solid. Review in about two weeks."
	case intervalDays <= 30:
		return "Strong recall. Review in about a month."
	case intervalDays <= 60:
		return "Well learned. Review in about two months."
	case intervalDays <= 90:
		return "Locked in. Review in about three months."
	default:
		return "Mastered. Next review in several months."
	}
}

package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNew     ReviewStatus = "new"
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// IsDue reports whether an item should be reviewed at now. Scheduled items
// are due at or after their review date. Items without SRS state are due
// once LegacyDueAfter has passed since their last attempt, and items that
// were never attempted are always due.
func (s *Scheduler) IsDue(it item.Item, now time.Time) bool {
	if next := it.State.SRSNextReviewAt; next != nil {
		return !now.Before(*next)
	}
	if it.LastAttemptedAt == nil {
		return true
	}
	return now.Sub(*it.LastAttemptedAt) > s.cfg.LegacyDueAfter
}

// DueAt returns when the item becomes due. Never-attempted items are due
// immediately, reported as the zero time.
func (s *Scheduler) DueAt(it item.Item) time.Time {
	if next := it.State.SRSNextReviewAt; next != nil {
		return *next
	}
	if it.LastAttemptedAt == nil {
		return time.Time{}
	}
	return it.LastAttemptedAt.Add(s.cfg.LegacyDueAfter)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not
// yet due or never attempted.
func (s *Scheduler) OverdueDays(it item.Item, now time.Time) float64 {
	due := s.DueAt(it)
	if due.IsZero() || now.Before(due) {
		return 0
	}
	return now.Sub(due).Hours() / 24.0
}

// Status returns the review status for display.
func (s *Scheduler) Status(it item.Item, now time.Time) ReviewStatus {
	if !it.Attempted() && !it.State.HasSRS() {
		return ReviewNew
	}
	if !s.IsDue(it, now) {
		return ReviewNotDue
	}
	interval := float64(max(it.State.SRSInterval, 1))
	if s.OverdueDays(it, now) > interval*s.cfg.OverdueGrace {
		return ReviewOverdue
	}
	return ReviewDue
}

// DaysUntilReview returns the number of days until the item is due.
// Returns 0 if already due.
func (s *Scheduler) DaysUntilReview(it item.Item, now time.Time) int {
	if s.IsDue(it, now) {
		return 0
	}
	return int(s.DueAt(it).Sub(now).Hours()/24.0) + 1
}

// DueItems returns the previously attempted items that are due, most
// overdue first. Never-attempted items are left to the new-content signal.
func (s *Scheduler) DueItems(items []item.Item, now time.Time) []item.Item {
	type dueItem struct {
		it      item.Item
		overdue float64
	}
	var due []dueItem
	for _, it := range items {
		if !it.Attempted() && !it.State.HasSRS() {
			continue
		}
		if s.IsDue(it, now) {
			due = append(due, dueItem{it: it, overdue: s.OverdueDays(it, now)})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].it.ID < due[j].it.ID
	})

	out := make([]item.Item, len(due))
	for i, d := range due {
		out[i] = d.it
	}
	return out
}

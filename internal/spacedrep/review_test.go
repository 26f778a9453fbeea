package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

func scheduledItem(id string, next time.Time, interval int) item.Item {
	st := item.DefaultState()
	st.SRSNextReviewAt = &next
	st.SRSInterval = interval
	last := next.AddDate(0, 0, -interval)
	return item.Item{ID: id, TimesAttempted: 1, LastAttemptedAt: &last, State: st}
}

func TestIsDue_BeforeDate(t *testing.T) {
	it := scheduledItem("a", testNow.Add(24*time.Hour), 1)
	if newTestScheduler().IsDue(it, testNow) {
		t.Error("expected not due before review date")
	}
}

func TestIsDue_OnDate(t *testing.T) {
	it := scheduledItem("a", testNow, 1)
	if !newTestScheduler().IsDue(it, testNow) {
		t.Error("expected due on review date")
	}
}

func TestIsDue_NeverAttempted(t *testing.T) {
	it := item.Item{ID: "new", State: item.DefaultState()}
	if !newTestScheduler().IsDue(it, testNow) {
		t.Error("expected never-attempted item to be due")
	}
}

func TestIsDue_LegacyItem(t *testing.T) {
	s := newTestScheduler()

	recent := testNow.Add(-23 * time.Hour)
	it := item.Item{ID: "legacy", TimesAttempted: 2, LastAttemptedAt: &recent, State: item.DefaultState()}
	if s.IsDue(it, testNow) {
		t.Error("expected legacy item attempted 23h ago to be not due")
	}

	old := testNow.Add(-25 * time.Hour)
	it.LastAttemptedAt = &old
	if !s.IsDue(it, testNow) {
		t.Error("expected legacy item attempted 25h ago to be due")
	}
}

func TestOverdueDays(t *testing.T) {
	s := newTestScheduler()
	reviewDate := testNow.Add(-3 * 24 * time.Hour)

	got := s.OverdueDays(scheduledItem("a", reviewDate, 7), testNow)
	if got < 2.99 || got > 3.01 {
		t.Errorf("OverdueDays() = %f, want ~3.0", got)
	}

	if got := s.OverdueDays(scheduledItem("b", testNow.Add(48*time.Hour), 7), testNow); got != 0 {
		t.Errorf("OverdueDays() = %f, want 0", got)
	}
}

func TestStatus(t *testing.T) {
	s := newTestScheduler()
	tests := []struct {
		name string
		it   item.Item
		want ReviewStatus
	}{
		{"new", item.Item{ID: "n", State: item.DefaultState()}, ReviewNew},
		{"not due", scheduledItem("a", testNow.Add(time.Hour), 7), ReviewNotDue},
		// 7-day interval, 2 days overdue, grace is 3.5 days.
		{"due within grace", scheduledItem("b", testNow.Add(-48*time.Hour), 7), ReviewDue},
		{"overdue past grace", scheduledItem("c", testNow.Add(-5*24*time.Hour), 7), ReviewOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Status(tt.it, testNow); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaysUntilReview(t *testing.T) {
	s := newTestScheduler()
	if got := s.DaysUntilReview(scheduledItem("a", testNow.Add(36*time.Hour), 3), testNow); got != 2 {
		t.Errorf("DaysUntilReview() = %d, want 2", got)
	}
	if got := s.DaysUntilReview(scheduledItem("b", testNow.Add(-time.Hour), 3), testNow); got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0", got)
	}
}

func TestDueItems_SortedMostOverdueFirst(t *testing.T) {
	s := newTestScheduler()
	items := []item.Item{
		scheduledItem("slightly", testNow.Add(-1*time.Hour), 3),
		scheduledItem("future", testNow.Add(5*time.Hour), 3),
		scheduledItem("very", testNow.Add(-72*time.Hour), 3),
		{ID: "never", State: item.DefaultState()},
	}

	due := s.DueItems(items, testNow)
	if len(due) != 2 {
		t.Fatalf("len(DueItems) = %d, want 2", len(due))
	}
	if due[0].ID != "very" || due[1].ID != "slightly" {
		t.Errorf("order = [%s %s], want [very slightly]", due[0].ID, due[1].ID)
	}
}

func TestDueItems_TiesBrokenByID(t *testing.T) {
	s := newTestScheduler()
	at := testNow.Add(-time.Hour)
	due := s.DueItems([]item.Item{scheduledItem("b", at, 1), scheduledItem("a", at, 1)}, testNow)
	if len(due) != 2 || due[0].ID != "a" {
		t.Errorf("expected tie broken by ID, got %v", due)
	}
}

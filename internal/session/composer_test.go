package session

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/memory"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

var testNow = time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

type prereqMap map[string][]string

func (m prereqMap) Prerequisites(topic string) []string { return m[topic] }

func newTestComposer(prereqs PrerequisiteSource, seed uint64) *Composer {
	sched := spacedrep.NewScheduler(spacedrep.DefaultConfig())
	w := selection.NewWeighter(
		selection.DefaultConfig(),
		sched,
		memory.NewModel(memory.DefaultConfig()),
		difficulty.NewEstimator(difficulty.DefaultConfig()),
		weakspot.NewDetector(weakspot.DefaultConfig()),
	)
	return NewComposer(DefaultConfig(), w, sched, prereqs, rand.New(rand.NewPCG(seed, seed)))
}

func newItem(id, topic string, format item.Format) item.Item {
	return item.Item{ID: id, Topic: topic, Question: "Q " + id, Format: format, State: item.DefaultState()}
}

func dueItem(id, topic string, overdue time.Duration) item.Item {
	it := newItem(id, topic, item.FormatStandard)
	next := testNow.Add(-overdue)
	last := next.AddDate(0, 0, -3)
	it.TimesAttempted = 4
	it.CorrectAttempts = 4
	it.LastAttemptedAt = &last
	it.State.SRSLevel = 2
	it.State.SRSInterval = 3
	it.State.SRSNextReviewAt = &next
	it.State.LastReviewedAt = &last
	it.State.MemoryStrength = 8
	return it
}

func practiced(id, topic string, total, correct int) item.Item {
	it := newItem(id, topic, item.FormatStandard)
	last := testNow.Add(-time.Hour)
	next := testNow.Add(72 * time.Hour)
	it.TimesAttempted = total
	it.CorrectAttempts = correct
	it.LastAttemptedAt = &last
	it.State.SRSNextReviewAt = &next
	it.State.LastReviewedAt = &last
	it.State.MemoryStrength = 8
	return it
}

func newItems(prefix, topic string, n int, format item.Format) []item.Item {
	var out []item.Item
	for i := 0; i < n; i++ {
		out = append(out, newItem(fmt.Sprintf("%s-%02d", prefix, i), topic, format))
	}
	return out
}

func request(count int) Request {
	return Request{Count: count, Options: selection.DefaultOptions()}
}

func assertDistinct(t *testing.T, items []item.Item) {
	t.Helper()
	seen := make(map[string]bool)
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate item %s", it.ID)
		seen[it.ID] = true
	}
}

func TestCompose_EmptyPool(t *testing.T) {
	c := newTestComposer(nil, 1)
	res := c.Compose(nil, request(10), NewPrereqQueue(), testNow)
	require.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, Breakdown{}, res.Breakdown)
}

func TestCompose_SmallPoolReturnedWhole(t *testing.T) {
	c := newTestComposer(nil, 1)
	all := []item.Item{
		dueItem("due-1", "cardio", time.Hour),
		newItem("new-1", "cardio", item.FormatStandard),
		newItem("new-2", "cardio", item.FormatShortForm),
	}
	res := c.Compose(all, request(10), NewPrereqQueue(), testNow)

	require.Len(t, res.Items, 3)
	assertDistinct(t, res.Items)
	assert.Equal(t, 1, res.Breakdown.DueForReview)
	assert.Equal(t, 2, res.Breakdown.NewContent)
	assert.Equal(t, CategoryDue, res.Categories["due-1"])
}

func TestCompose_Quotas(t *testing.T) {
	c := newTestComposer(prereqMap{"cardio": {"anatomy"}}, 3)
	var all []item.Item
	for i := 0; i < 6; i++ {
		all = append(all, dueItem(fmt.Sprintf("due-%d", i), "cardio", time.Duration(i+1)*time.Hour))
	}
	all = append(all, newItems("new", "cardio", 12, item.FormatStandard)...)
	all = append(all, newItems("anat", "anatomy", 3, item.FormatStandard)...)

	queue := NewPrereqQueue()
	queue.Enqueue("anatomy")

	res := c.Compose(all, request(10), queue, testNow)
	require.Len(t, res.Items, 10)
	assertDistinct(t, res.Items)

	// 40% due, most overdue first.
	assert.Equal(t, []string{"due-5", "due-4", "due-3", "due-2"}, idsOf(res.Items[:4]))
	assert.Equal(t, "anatomy", res.Items[4].Topic)
	assert.Equal(t, CategoryPrerequisite, res.Categories[res.Items[4].ID])
	assert.Equal(t, 1, res.Breakdown.Prerequisites)
	assert.GreaterOrEqual(t, res.Breakdown.DueForReview, 4)
	assert.Equal(t, 1, queue.Len(), "unmastered prerequisite stays queued")
}

func TestCompose_UnusedQuotaFlowsToGeneral(t *testing.T) {
	c := newTestComposer(nil, 5)
	all := append([]item.Item{dueItem("due-0", "cardio", time.Hour)},
		newItems("new", "cardio", 20, item.FormatStandard)...)

	res := c.Compose(all, request(10), NewPrereqQueue(), testNow)
	require.Len(t, res.Items, 10)
	assertDistinct(t, res.Items)
	assert.Equal(t, "due-0", res.Items[0].ID)
	assert.Equal(t, 1, res.Breakdown.DueForReview)
	assert.Equal(t, 9, res.Breakdown.NewContent)
	assert.Equal(t, 0, res.Breakdown.Prerequisites)
}

func TestCompose_IncludeDueOff(t *testing.T) {
	c := newTestComposer(nil, 5)
	var all []item.Item
	for i := 0; i < 8; i++ {
		all = append(all, dueItem(fmt.Sprintf("due-%d", i), "cardio", time.Hour))
	}
	all = append(all, newItems("new", "cardio", 8, item.FormatStandard)...)

	req := request(4)
	req.Options.IncludeDue = false
	res := c.Compose(all, req, NewPrereqQueue(), testNow)
	require.Len(t, res.Items, 4)
	assertDistinct(t, res.Items)
}

func TestCompose_TopicFilter(t *testing.T) {
	c := newTestComposer(nil, 9)
	all := append(newItems("c", "cardio", 10, item.FormatStandard), newItems("r", "renal", 10, item.FormatStandard)...)

	res := c.Compose(all, Request{Count: 5, TopicFilter: "renal", Options: selection.DefaultOptions()}, nil, testNow)
	require.Len(t, res.Items, 5)
	for _, it := range res.Items {
		assert.Equal(t, "renal", it.Topic)
	}
}

func TestCompose_DefaultCount(t *testing.T) {
	c := newTestComposer(nil, 9)
	all := newItems("c", "cardio", 30, item.FormatStandard)
	res := c.Compose(all, Request{Options: selection.DefaultOptions()}, nil, testNow)
	assert.Len(t, res.Items, DefaultConfig().DefaultCount)
}

func TestCompose_FormatBalance(t *testing.T) {
	c := newTestComposer(nil, 11)
	all := append(newItems("std", "cardio", 20, item.FormatStandard),
		newItems("short", "cardio", 5, item.FormatShortForm)...)

	for seed := uint64(0); seed < 10; seed++ {
		c.rng = selection.Locked(rand.New(rand.NewPCG(seed, 1)))
		res := c.Compose(all, request(10), nil, testNow)
		short := 0
		for _, it := range res.Items {
			if it.IsShortForm() {
				short++
			}
		}
		assert.Equal(t, 3, short, "seed %d", seed)
	}
}

func TestCompose_WeakSpotBreakdown(t *testing.T) {
	c := newTestComposer(nil, 2)
	all := []item.Item{
		practiced("weak-1", "renal", 5, 1),
		practiced("weak-2", "renal", 5, 1),
	}
	all = append(all, newItems("new", "cardio", 10, item.FormatStandard)...)

	res := c.Compose(all, request(12), nil, testNow)
	require.Len(t, res.Items, 12)
	assert.Equal(t, CategoryWeakSpot, res.Categories["weak-1"])
	assert.Equal(t, CategoryWeakSpot, res.Categories["weak-2"])
	assert.Equal(t, 2, res.Breakdown.WeakSpots)
	assert.Equal(t, 10, res.Breakdown.NewContent)
}

func TestCompose_MasteredPrerequisiteLeavesQueue(t *testing.T) {
	c := newTestComposer(prereqMap{"cardio": {"anatomy"}}, 4)
	all := append(newItems("new", "cardio", 20, item.FormatStandard),
		practiced("anat-1", "anatomy", 5, 5))

	queue := NewPrereqQueue()
	queue.Enqueue("anatomy")
	res := c.Compose(all, request(10), queue, testNow)

	assert.Equal(t, 0, res.Breakdown.Prerequisites)
	assert.Equal(t, 0, queue.Len())
}

func TestNoteFailure(t *testing.T) {
	c := newTestComposer(prereqMap{"cardio": {"anatomy", "physio"}}, 1)
	all := []item.Item{
		practiced("anat-1", "anatomy", 4, 2),
		practiced("phys-1", "physio", 10, 9),
	}
	queue := NewPrereqQueue()

	queued := c.NoteFailure(all, "cardio", queue)
	assert.Equal(t, []string{"anatomy"}, queued)
	assert.Equal(t, []string{"anatomy"}, queue.Pending())

	// Topics without prerequisites queue nothing.
	assert.Empty(t, c.NoteFailure(all, "anatomy", queue))
	assert.Nil(t, c.NoteFailure(all, "cardio", nil))
}

func TestTopicMastered_MemoizedUntilInvalidated(t *testing.T) {
	c := newTestComposer(nil, 1)
	queue := NewPrereqQueue()
	all := []item.Item{practiced("anat-1", "anatomy", 4, 2)}

	require.False(t, c.TopicMastered(all, "anatomy", queue))

	all[0].TimesAttempted = 10
	all[0].CorrectAttempts = 9
	assert.False(t, c.TopicMastered(all, "anatomy", queue), "stale until invalidated")

	queue.InvalidateTopic("anatomy")
	assert.True(t, c.TopicMastered(all, "anatomy", queue))
	assert.True(t, c.TopicMastered(all, "anatomy", nil))
}

func idsOf(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

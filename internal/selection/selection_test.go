package selection

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
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

var testNow = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

// scripted replays a fixed sequence of values.
type scripted struct {
	vals []float64
	i    int
}

func (s *scripted) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func newTestWeighter() *Weighter {
	return NewWeighter(
		DefaultConfig(),
		spacedrep.NewScheduler(spacedrep.DefaultConfig()),
		memory.NewModel(memory.DefaultConfig()),
		difficulty.NewEstimator(difficulty.DefaultConfig()),
		weakspot.NewDetector(weakspot.DefaultConfig()),
	)
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// reviewed builds an attempted item with SRS state.
func reviewed(id string, strength float64, lastReview, nextReview time.Time) item.Item {
	st := item.DefaultState()
	st.MemoryStrength = strength
	st.SRSLevel = 2
	st.SRSInterval = 3
	st.SRSNextReviewAt = &nextReview
	st.LastReviewedAt = &lastReview
	return item.Item{
		ID:              id,
		Topic:           "cardio",
		Question:        "Which valve?",
		TimesAttempted:  3,
		CorrectAttempts: 3,
		LastAttemptedAt: &lastReview,
		State:           st,
	}
}

func fresh(id string, format item.Format) item.Item {
	return item.Item{ID: id, Topic: "cardio", Question: "Which valve?", Format: format, State: item.DefaultState()}
}

func weights(totals map[string]float64, short ...string) []Weight {
	isShort := make(map[string]bool)
	for _, id := range short {
		isShort[id] = true
	}
	var ws []Weight
	for id, total := range totals {
		f := item.FormatStandard
		if isShort[id] {
			f = item.FormatShortForm
		}
		ws = append(ws, Weight{Item: fresh(id, f), Total: total})
	}
	sortWeights(ws)
	return ws
}

func ids(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func weightIDs(ws []Weight) []string {
	return ids(Items(ws))
}

func TestWeighOne_Due(t *testing.T) {
	w := newTestWeighter()
	it := reviewed("due", 5, testNow.Add(-time.Hour), testNow.Add(-time.Minute))

	got := w.WeighOne(it, Signals{Now: testNow}, Options{IncludeDue: true})
	assert.Equal(t, 4.0, got.Total)
	assert.Equal(t, []Reason{ReasonDue}, got.Reasons)

	got = w.WeighOne(it, Signals{Now: testNow}, Options{})
	assert.Equal(t, 1.0, got.Total, "due bonus is off without IncludeDue")
}

func TestWeighOne_AtRisk(t *testing.T) {
	w := newTestWeighter()
	// strength 5 after 10 days: e^-2, well below 0.5
	it := reviewed("risky", 5, testNow.Add(-240*time.Hour), testNow.Add(24*time.Hour))

	got := w.WeighOne(it, Signals{Now: testNow}, Options{PrioritizeAtRisk: true})
	assert.Equal(t, 3.0, got.Total)
	assert.Equal(t, []Reason{ReasonAtRisk}, got.Reasons)

	safe := reviewed("safe", 5, testNow.Add(-time.Hour), testNow.Add(24*time.Hour))
	got = w.WeighOne(safe, Signals{Now: testNow}, Options{PrioritizeAtRisk: true})
	assert.Equal(t, 1.0, got.Total)
}

func TestWeighOne_NewItem(t *testing.T) {
	w := newTestWeighter()
	it := fresh("new", item.FormatStandard)

	got := w.WeighOne(it, Signals{Now: testNow}, Options{IncludeDue: true, PrioritizeAtRisk: true})
	// base 1 + due 3 + new 0.5 + low strength 1; unseen items are never at risk
	assert.Equal(t, 5.5, got.Total)
	assert.Equal(t, []Reason{ReasonNew, ReasonLowStrength}, got.Reasons)
}

func TestWeighOne_ZeroNewBonus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NewBonus = 0
	w := NewWeighter(
		cfg,
		spacedrep.NewScheduler(spacedrep.DefaultConfig()),
		memory.NewModel(memory.DefaultConfig()),
		difficulty.NewEstimator(difficulty.DefaultConfig()),
		weakspot.NewDetector(weakspot.DefaultConfig()),
	)
	got := w.WeighOne(fresh("new", item.FormatStandard), Signals{Now: testNow}, Options{IncludeDue: true})
	// base 1 + due 3 + low strength 1
	assert.Equal(t, 5.0, got.Total)
}

func TestWeighOne_WeakSpot(t *testing.T) {
	w := newTestWeighter()
	it := reviewed("weak", 5, testNow.Add(-time.Hour), testNow.Add(48*time.Hour))
	it.Subtopic = "valves"
	it.CorrectAttempts = 1 // 1/3, recent: priority 0.667 + 0.2

	sig := w.Signals([]item.Item{it}, testNow)
	require.True(t, sig.WeakSpots.IsWeakSpot("cardio", "valves"))

	got := w.WeighOne(it, sig, Options{PrioritizeWeakSpots: true})
	assert.InDelta(t, 1+1+(1-1.0/3.0)+0.2, got.Total, 1e-9)
	assert.True(t, got.Has(ReasonWeakSpot))

	got = w.WeighOne(it, sig, Options{})
	assert.Equal(t, 1.0, got.Total)
}

func TestWeighOne_Difficulty(t *testing.T) {
	w := newTestWeighter()
	it := fresh("plain", item.FormatStandard) // content estimate: medium

	got := w.WeighOne(it, Signals{Now: testNow}, Options{MatchDifficulty: true})
	// base 1 + match 1 (unknown topic targets medium) + new 0.5 + low strength 1
	assert.Equal(t, 3.5, got.Total)
	assert.True(t, got.Has(ReasonDifficulty))

	sig := Signals{Now: testNow, Targets: map[string]difficulty.Tier{"cardio": difficulty.Expert}}
	got = w.WeighOne(it, sig, Options{MatchDifficulty: true})
	assert.InDelta(t, 1+0.4+0.5+1, got.Total, 1e-9)
	assert.False(t, got.Has(ReasonDifficulty))
}

func TestWeigh_SortedHeaviestFirst(t *testing.T) {
	w := newTestWeighter()
	pool := []item.Item{
		reviewed("b-notdue", 5, testNow.Add(-time.Hour), testNow.Add(time.Hour)),
		fresh("c-new", item.FormatStandard),
		reviewed("a-due", 5, testNow.Add(-time.Hour), testNow.Add(-time.Hour)),
		reviewed("a-notdue", 5, testNow.Add(-time.Hour), testNow.Add(time.Hour)),
	}
	got := w.Weigh(pool, Signals{Now: testNow}, Options{IncludeDue: true})
	assert.Equal(t, []string{"c-new", "a-due", "a-notdue", "b-notdue"}, weightIDs(got))
}

func TestDraw_ProportionalPick(t *testing.T) {
	w := newTestWeighter()
	ws := weights(map[string]float64{"a": 4, "b": 3, "c": 2, "d": 1})

	// Candidates a,b,c (top 3): r = 0.5*9 = 4.5 falls in b's band [4, 7).
	got := w.Draw(ws, 1, &scripted{vals: []float64{0.5}})
	assert.Equal(t, []string{"b"}, weightIDs(got))
}

func TestDraw_WithoutReplacement(t *testing.T) {
	w := newTestWeighter()
	ws := weights(map[string]float64{"a": 4, "b": 3, "c": 2, "d": 1})

	// Round 1 over a,b,c,d (total 10): r = 0 picks a.
	// Round 2 over b,c,d (total 6): r = 5.94 picks d.
	got := w.Draw(ws, 2, &scripted{vals: []float64{0, 0.99}})
	assert.Equal(t, []string{"a", "d"}, weightIDs(got))
}

func TestDraw_TruncatesCandidates(t *testing.T) {
	w := newTestWeighter()
	ws := weights(map[string]float64{"a": 4, "b": 3, "c": 2, "d": 100})
	ws = append(ws[1:], ws[0]) // d is heaviest but placed outside the top three

	got := w.Draw(ws, 1, &scripted{vals: []float64{0.999}})
	assert.Equal(t, []string{"c"}, weightIDs(got))
}

func TestDraw_HeavyItemsWinMoreOften(t *testing.T) {
	w := newTestWeighter()
	ws := weights(map[string]float64{"heavy": 10, "light": 1})
	rng := seededRand(7)

	heavy := 0
	for i := 0; i < 3000; i++ {
		if w.Draw(ws, 1, rng)[0].Item.ID == "heavy" {
			heavy++
		}
	}
	assert.Greater(t, heavy, 2400)
}

func TestDraw_ZeroCount(t *testing.T) {
	w := newTestWeighter()
	assert.Empty(t, w.Draw(weights(map[string]float64{"a": 1}), 0, nil))
}

func TestBalance_AddsShortForm(t *testing.T) {
	w := newTestWeighter()
	selected := weights(map[string]float64{
		"s1": 10, "s2": 9, "s3": 8, "s4": 7, "s5": 6,
		"s6": 5, "s7": 4, "s8": 3, "s9": 2, "s10": 1.5,
	})
	pool := append(append([]Weight(nil), selected...),
		weights(map[string]float64{"q1": 1, "q2": 0.9, "q3": 0.8, "q4": 0.7}, "q1", "q2", "q3", "q4")...)

	got := w.Balance(selected, pool, 0.3)
	require.Len(t, got, 10)

	short := 0
	for _, g := range got {
		if g.Item.IsShortForm() {
			short++
		}
	}
	assert.Equal(t, 3, short)
	// The three lightest standard items make room for the three heaviest short ones.
	assert.Equal(t, "q3", got[7].Item.ID)
	assert.Equal(t, "q2", got[8].Item.ID)
	assert.Equal(t, "q1", got[9].Item.ID)
	assert.Equal(t, "s1", got[0].Item.ID)
}

func TestBalance_LimitedSupply(t *testing.T) {
	w := newTestWeighter()
	selected := weights(map[string]float64{"s1": 5, "s2": 4, "s3": 3, "s4": 2, "s5": 1})
	pool := append(append([]Weight(nil), selected...),
		weights(map[string]float64{"q1": 1}, "q1")...)

	got := w.Balance(selected, pool, 0.4)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4", "q1"}, weightIDs(got))
}

func TestBalance_RemovesExcessShortForm(t *testing.T) {
	w := newTestWeighter()
	selected := weights(map[string]float64{"q1": 5, "q2": 4, "q3": 3, "s1": 2}, "q1", "q2", "q3")
	pool := append(append([]Weight(nil), selected...),
		weights(map[string]float64{"s2": 1, "s3": 0.5})...)

	// 4 items at 0.3 -> one short-form item; q3 and q2 are replaced.
	got := w.Balance(selected, pool, 0.3)
	assert.Equal(t, []string{"q1", "s3", "s2", "s1"}, weightIDs(got))
}

func TestBalance_AlreadyBalanced(t *testing.T) {
	w := newTestWeighter()
	selected := weights(map[string]float64{"q1": 5, "s1": 4, "s2": 3}, "q1")
	got := w.Balance(selected, selected, 0.3)
	assert.Equal(t, weightIDs(selected), weightIDs(got))
}

func TestSelect_EmptyPool(t *testing.T) {
	w := newTestWeighter()
	got := w.Select(nil, 5, Signals{Now: testNow}, DefaultOptions(), seededRand(1))
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelect_SmallPoolReturnedWhole(t *testing.T) {
	w := newTestWeighter()
	pool := []item.Item{fresh("a", item.FormatStandard), fresh("b", item.FormatShortForm), fresh("c", item.FormatStandard)}

	got := w.Select(pool, 5, Signals{Now: testNow}, DefaultOptions(), seededRand(3))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(got))

	got = w.Select(pool, 3, Signals{Now: testNow}, DefaultOptions(), seededRand(3))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(got))
}

func TestSelect_NoDuplicatesAndBounded(t *testing.T) {
	w := newTestWeighter()
	var pool []item.Item
	for i := 0; i < 40; i++ {
		f := item.FormatStandard
		if i%4 == 0 {
			f = item.FormatShortForm
		}
		it := fresh(fmt.Sprintf("item-%02d", i), f)
		if i%3 == 0 {
			it = reviewed(it.ID, float64(i%10), testNow.Add(-time.Duration(i)*time.Hour), testNow.Add(-time.Minute))
			it.Format = f
		}
		pool = append(pool, it)
	}
	pool = append(pool, pool[0], pool[5]) // duplicates in the input

	for seed := uint64(0); seed < 50; seed++ {
		for _, count := range []int{1, 5, 10, 20} {
			got := w.Select(pool, count, w.Signals(pool, testNow), DefaultOptions(), seededRand(seed))
			assert.LessOrEqual(t, len(got), count)
			assert.Len(t, got, count, "pool is large enough to fill the request")

			seen := make(map[string]bool)
			for _, it := range got {
				assert.False(t, seen[it.ID], "duplicate %s (seed %d, count %d)", it.ID, seed, count)
				seen[it.ID] = true
			}
		}
	}
}

func TestSelect_Deterministic(t *testing.T) {
	w := newTestWeighter()
	var pool []item.Item
	for i := 0; i < 20; i++ {
		pool = append(pool, fresh(fmt.Sprintf("q%02d", i), item.FormatStandard))
	}
	sig := w.Signals(pool, testNow)

	a := w.Select(pool, 6, sig, DefaultOptions(), seededRand(42))
	b := w.Select(pool, 6, sig, DefaultOptions(), seededRand(42))
	assert.Equal(t, ids(a), ids(b))
}

func TestShortFormRatio(t *testing.T) {
	w := newTestWeighter()
	assert.Equal(t, 0.3, w.ShortFormRatio(Options{}))
	assert.Equal(t, 0.35, w.ShortFormRatio(Options{ShortFormRatio: 0.35}))
	assert.Equal(t, 0.4, w.ShortFormRatio(Options{ShortFormRatio: 0.9}))
}

func TestShuffle_Permutation(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(s, seededRand(9))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, s)

	// A source pinned at the top of its range must still stay in bounds.
	Shuffle(s, &scripted{vals: []float64{0.9999999}})
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, s)
}

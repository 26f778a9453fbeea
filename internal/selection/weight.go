// Package selection combines scheduling, memory, weak-spot and difficulty
// signals into one weight per item and samples a practice set from them.
package selection

import (
	"sort"
	"time"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/memory"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

// Reason explains one bonus an item received.
type Reason string

const (
	ReasonDue         Reason = "due_for_review"
	ReasonAtRisk      Reason = "at_risk"
	ReasonWeakSpot    Reason = "weak_spot"
	ReasonDifficulty  Reason = "difficulty_match"
	ReasonNew         Reason = "new"
	ReasonLowStrength Reason = "low_strength"
)

// Weight is an item's score for one selection call.
type Weight struct {
	Item    item.Item `json:"item"`
	Total   float64   `json:"total"`
	Reasons []Reason  `json:"reasons,omitempty"`
}

// Has reports whether the weight carries reason r.
func (w Weight) Has(r Reason) bool {
	for _, x := range w.Reasons {
		if x == r {
			return true
		}
	}
	return false
}

// Signals are the pool-wide aggregates a selection call is weighted
// against. Build them once per call with Weighter.Signals.
type Signals struct {
	Now       time.Time
	WeakSpots weakspot.Report
	Targets   map[string]difficulty.Tier
}

// Target returns the difficulty target for topic, Medium when unknown.
func (s Signals) Target(topic string) difficulty.Tier {
	if t, ok := s.Targets[topic]; ok {
		return t
	}
	return difficulty.Medium
}

// Weighter scores and samples items.
type Weighter struct {
	cfg       Config
	scheduler *spacedrep.Scheduler
	memory    *memory.Model
	estimator *difficulty.Estimator
	detector  *weakspot.Detector
}

// NewWeighter creates a weighter over the given signal sources.
func NewWeighter(cfg Config, scheduler *spacedrep.Scheduler, mem *memory.Model,
	estimator *difficulty.Estimator, detector *weakspot.Detector) *Weighter {
	return &Weighter{
		cfg:       cfg.withDefaults(),
		scheduler: scheduler,
		memory:    mem,
		estimator: estimator,
		detector:  detector,
	}
}

// Config returns the effective configuration.
func (w *Weighter) Config() Config {
	return w.cfg
}

// Signals computes the weak-spot report and difficulty targets from the
// learner's full item set.
func (w *Weighter) Signals(all []item.Item, now time.Time) Signals {
	return Signals{
		Now:       now,
		WeakSpots: w.detector.Detect(all, now),
		Targets:   w.estimator.TopicTargets(all),
	}
}

// IsAtRisk reports whether a previously seen item's predicted retention
// has dropped below the at-risk threshold.
func (w *Weighter) IsAtRisk(it item.Item, now time.Time) bool {
	r, ok := w.memory.PredictedRetention(it, now)
	return ok && r < w.cfg.AtRiskRetention
}

// IsDueForReview reports whether a previously attempted item is due.
func (w *Weighter) IsDueForReview(it item.Item, now time.Time) bool {
	if !it.Attempted() && !it.State.HasSRS() {
		return false
	}
	return w.scheduler.IsDue(it, now)
}

// WeighOne scores a single item.
func (w *Weighter) WeighOne(it item.Item, sig Signals, opts Options) Weight {
	wt := Weight{Item: it, Total: w.cfg.BaseWeight}
	add := func(v float64, r Reason) {
		wt.Total += v
		if r != "" {
			wt.Reasons = append(wt.Reasons, r)
		}
	}

	isNew := !it.Attempted()
	if opts.IncludeDue && w.scheduler.IsDue(it, sig.Now) {
		// Never-attempted items are due by definition; they are reported
		// as new rather than as reviews.
		if isNew {
			add(w.cfg.DueBonus, "")
		} else {
			add(w.cfg.DueBonus, ReasonDue)
		}
	}
	if opts.PrioritizeAtRisk && w.IsAtRisk(it, sig.Now) {
		add(w.cfg.AtRiskBonus, ReasonAtRisk)
	}
	if opts.PrioritizeWeakSpots && sig.WeakSpots.IsWeakSpot(it.Topic, it.Subtopic) {
		add(sig.WeakSpots.Weight(it.Topic, it.Subtopic), ReasonWeakSpot)
	}
	if opts.MatchDifficulty {
		tier := w.estimator.Estimate(it)
		target := sig.Target(it.Topic)
		var r Reason
		if tier == target {
			r = ReasonDifficulty
		}
		add(w.estimator.Match(tier, target), r)
	}
	if isNew {
		add(w.cfg.NewBonus, ReasonNew)
	}
	if it.State.MemoryStrength < w.cfg.LowStrength {
		add(w.cfg.LowStrengthBonus, ReasonLowStrength)
	}
	return wt
}

// Weigh scores every item, heaviest first. Ties are ordered by ID.
func (w *Weighter) Weigh(pool []item.Item, sig Signals, opts Options) []Weight {
	out := make([]Weight, len(pool))
	for i, it := range pool {
		out[i] = w.WeighOne(it, sig, opts)
	}
	sortWeights(out)
	return out
}

func sortWeights(ws []Weight) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Total != ws[j].Total {
			return ws[i].Total > ws[j].Total
		}
		return ws[i].Item.ID < ws[j].Item.ID
	})
}

// Items unwraps weights into their items, preserving order.
func Items(ws []Weight) []item.Item {
	out := make([]item.Item, len(ws))
	for i, w := range ws {
		out[i] = w.Item
	}
	return out
}

// Package session composes practice sessions from due reviews, queued
// prerequisite topics and general weighted selection.
package session

import (
	"math"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

// Category is the primary reason an item is in a session.
type Category string

const (
	CategoryPrerequisite Category = "prerequisite"
	CategoryDue          Category = "due_for_review"
	CategoryWeakSpot     Category = "weak_spot"
	CategoryAtRisk       Category = "at_risk"
	CategoryNew          Category = "new_content"
	CategoryGeneral      Category = "general"
)

// Config holds the session quotas. A zero share disables its bucket.
type Config struct {
	DefaultCount int     `mapstructure:"default_count"`
	DueShare     float64 `mapstructure:"due_share"`
	PrereqShare  float64 `mapstructure:"prereq_share"`

	// A topic counts as mastered once it has MasteryMinAttempts attempts
	// at MasteryAccuracy or better. Mastered prerequisites leave the queue.
	MasteryAccuracy    float64 `mapstructure:"mastery_accuracy"`
	MasteryMinAttempts int     `mapstructure:"mastery_min_attempts"`
}

// DefaultConfig returns the session constants.
func DefaultConfig() Config {
	return Config{
		DefaultCount:       10,
		DueShare:           0.4,
		PrereqShare:        0.1,
		MasteryAccuracy:    0.8,
		MasteryMinAttempts: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultCount <= 0 {
		c.DefaultCount = d.DefaultCount
	}
	if c.MasteryAccuracy == 0 {
		c.MasteryAccuracy = d.MasteryAccuracy
	}
	if c.MasteryMinAttempts == 0 {
		c.MasteryMinAttempts = d.MasteryMinAttempts
	}
	return c
}

// Request describes the session to build.
type Request struct {
	Count       int               `json:"count"`
	TopicFilter string            `json:"topic_filter,omitempty"`
	Options     selection.Options `json:"options"`
}

// Breakdown counts session items by primary reason.
type Breakdown struct {
	DueForReview  int `json:"due_for_review"`
	WeakSpots     int `json:"weak_spots"`
	AtRisk        int `json:"at_risk"`
	Prerequisites int `json:"prerequisites"`
	NewContent    int `json:"new_content"`
}

func (b *Breakdown) add(c Category) {
	switch c {
	case CategoryPrerequisite:
		b.Prerequisites++
	case CategoryDue:
		b.DueForReview++
	case CategoryWeakSpot:
		b.WeakSpots++
	case CategoryAtRisk:
		b.AtRisk++
	case CategoryNew:
		b.NewContent++
	}
}

// Result is a composed session.
type Result struct {
	Items      []item.Item         `json:"items"`
	Categories map[string]Category `json:"categories"`
	Breakdown  Breakdown           `json:"breakdown"`
}

// Composer builds sessions. It is safe for concurrent use when its random
// source is.
type Composer struct {
	cfg       Config
	weighter  *selection.Weighter
	scheduler *spacedrep.Scheduler
	prereqs   PrerequisiteSource
	rng       selection.RandomSource
}

// NewComposer creates a composer. A nil prereqs disables the prerequisite
// bucket; a nil rng uses the process-wide generator.
func NewComposer(cfg Config, weighter *selection.Weighter, scheduler *spacedrep.Scheduler,
	prereqs PrerequisiteSource, rng selection.RandomSource) *Composer {
	if prereqs == nil {
		prereqs = NoPrerequisites{}
	}
	return &Composer{
		cfg:       cfg.withDefaults(),
		weighter:  weighter,
		scheduler: scheduler,
		prereqs:   prereqs,
		rng:       selection.Locked(rng),
	}
}

// Config returns the effective configuration.
func (c *Composer) Config() Config {
	return c.cfg
}

// TopicMastered reports whether the learner has mastered topic, memoized
// in queue.
func (c *Composer) TopicMastered(all []item.Item, topic string, queue *PrereqQueue) bool {
	compute := func() bool {
		var s weakspot.Stats
		for _, it := range all {
			if it.Topic != topic {
				continue
			}
			s.Total += it.TimesAttempted
			s.Correct += min(max(it.CorrectAttempts, 0), it.TimesAttempted)
		}
		return s.Total >= c.cfg.MasteryMinAttempts && s.Accuracy() >= c.cfg.MasteryAccuracy
	}
	if queue == nil {
		return compute()
	}
	return queue.Mastered(topic, compute)
}

// NoteFailure queues the unmastered prerequisites of topic after a failed
// answer. It returns the topics that were queued.
func (c *Composer) NoteFailure(all []item.Item, topic string, queue *PrereqQueue) []string {
	if queue == nil {
		return nil
	}
	var queued []string
	for _, p := range c.prereqs.Prerequisites(topic) {
		if c.TopicMastered(all, p, queue) {
			continue
		}
		queue.Enqueue(p)
		queued = append(queued, p)
	}
	return queued
}

// Compose builds a session from the learner's full item set. About
// DueShare of the session are the most overdue reviews, about PrereqShare
// come from queued prerequisite topics and the rest from weighted
// selection. Quota a bucket cannot fill is taken by the others. A pool
// no larger than the requested count is returned whole, shuffled.
func (c *Composer) Compose(all []item.Item, req Request, queue *PrereqQueue, now time.Time) Result {
	count := req.Count
	if count <= 0 {
		count = c.cfg.DefaultCount
	}
	pool := selection.Distinct(item.FilterTopic(all, req.TopicFilter))
	res := Result{Items: []item.Item{}, Categories: make(map[string]Category)}
	if len(pool) == 0 {
		return res
	}

	sig := c.weighter.Signals(all, now)
	opts := req.Options

	if len(pool) <= count {
		items := append([]item.Item(nil), pool...)
		selection.Shuffle(items, c.rng)
		prereqTopics := c.activePrereqs(all, queue)
		for _, it := range items {
			cat := c.classify(it, prereqTopics[it.Topic], sig)
			res.add(it, cat)
		}
		return res
	}

	chosen := make(map[string]bool)

	// Due reviews, most overdue first.
	dueQuota := 0
	if opts.IncludeDue {
		dueQuota = int(math.Round(c.cfg.DueShare * float64(count)))
	}
	var due []item.Item
	for _, it := range c.scheduler.DueItems(pool, now) {
		if len(due) >= dueQuota {
			break
		}
		due = append(due, it)
		chosen[it.ID] = true
	}

	// Queued prerequisite topics.
	prereqQuota := int(math.Round(c.cfg.PrereqShare * float64(count)))
	prereqTopics := c.activePrereqs(all, queue)
	var prereq []selection.Weight
	if prereqQuota > 0 && len(prereqTopics) > 0 {
		var candidates []item.Item
		for _, it := range pool {
			if prereqTopics[it.Topic] && !chosen[it.ID] {
				candidates = append(candidates, it)
			}
		}
		ws := c.weighter.Weigh(candidates, sig, opts)
		prereq = c.weighter.Draw(ws, prereqQuota, c.rng)
		for _, w := range prereq {
			chosen[w.Item.ID] = true
		}
	}

	// Everything else, including quota the buckets above left unused.
	remaining := count - len(due) - len(prereq)
	var rest []item.Item
	for _, it := range pool {
		if !chosen[it.ID] {
			rest = append(rest, it)
		}
	}
	restWeights := c.weighter.Weigh(rest, sig, opts)
	general := c.weighter.Draw(restWeights, remaining, c.rng)

	// Balance formats over the whole session, swapping only general picks.
	total := len(due) + len(prereq) + len(general)
	wantShort := int(math.Round(c.weighter.ShortFormRatio(opts) * float64(total)))
	for _, it := range due {
		if it.IsShortForm() {
			wantShort--
		}
	}
	for _, w := range prereq {
		if w.Item.IsShortForm() {
			wantShort--
		}
	}
	general = c.weighter.BalanceTo(general, restWeights, wantShort)

	for _, it := range due {
		res.add(it, CategoryDue)
	}
	for _, w := range prereq {
		res.add(w.Item, CategoryPrerequisite)
	}
	for _, w := range general {
		res.add(w.Item, c.classify(w.Item, false, sig))
	}
	return res
}

// activePrereqs returns the queued prerequisite topics that are still
// unmastered, dropping mastered ones from the queue.
func (c *Composer) activePrereqs(all []item.Item, queue *PrereqQueue) map[string]bool {
	active := make(map[string]bool)
	if queue == nil {
		return active
	}
	for _, topic := range queue.Pending() {
		if c.TopicMastered(all, topic, queue) {
			queue.Remove(topic)
			continue
		}
		active[topic] = true
	}
	return active
}

// classify returns the primary reason for an item, checked in the order
// prerequisite, due, weak spot, at risk, new.
func (c *Composer) classify(it item.Item, prereq bool, sig selection.Signals) Category {
	switch {
	case prereq:
		return CategoryPrerequisite
	case c.weighter.IsDueForReview(it, sig.Now):
		return CategoryDue
	case sig.WeakSpots.IsWeakSpot(it.Topic, it.Subtopic):
		return CategoryWeakSpot
	case c.weighter.IsAtRisk(it, sig.Now):
		return CategoryAtRisk
	case !it.Attempted():
		return CategoryNew
	default:
		return CategoryGeneral
	}
}

func (r *Result) add(it item.Item, c Category) {
	r.Items = append(r.Items, it)
	r.Categories[it.ID] = c
	r.Breakdown.add(c)
}

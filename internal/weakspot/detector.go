// Package weakspot aggregates attempt history per topic and subtopic and
// flags areas where the learner is below an accuracy threshold.
package weakspot

import (
	"sort"
	"time"

	"github.com/abhisek/adaptiq/internal/item"
)

// Area identifies a topic/subtopic pair. An empty Subtopic groups the
// topic's items without a subtopic.
type Area struct {
	Topic    string `json:"topic"`
	Subtopic string `json:"subtopic,omitempty"`
}

// Stats is the aggregate attempt history of an area or topic.
type Stats struct {
	Correct         int        `json:"correct"`
	Total           int        `json:"total"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
}

// Accuracy returns Correct/Total, or 0 with no attempts.
func (s Stats) Accuracy() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

func (s *Stats) add(it item.Item) {
	if !it.Attempted() {
		return
	}
	s.Total += it.TimesAttempted
	s.Correct += min(max(it.CorrectAttempts, 0), it.TimesAttempted)
	if t := it.LastAttemptedAt; t != nil && (s.LastAttemptedAt == nil || t.After(*s.LastAttemptedAt)) {
		v := *t
		s.LastAttemptedAt = &v
	}
}

// WeakSpot is a flagged area.
type WeakSpot struct {
	Area
	Accuracy      float64 `json:"accuracy"`
	TotalAttempts int     `json:"total_attempts"`
	Priority      float64 `json:"priority"`
}

// Config holds the detector thresholds.
type Config struct {
	MinAttempts      int           `mapstructure:"min_attempts"`
	Threshold        float64       `mapstructure:"threshold"`
	RecencyWindow    time.Duration `mapstructure:"recency_window"`
	RecencyBonus     float64       `mapstructure:"recency_bonus"`
	TopicMinAttempts int           `mapstructure:"topic_min_attempts"`
}

// DefaultConfig returns the detector constants.
func DefaultConfig() Config {
	return Config{
		MinAttempts:      3,
		Threshold:        0.6,
		RecencyWindow:    7 * 24 * time.Hour,
		RecencyBonus:     0.2,
		TopicMinAttempts: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinAttempts == 0 {
		c.MinAttempts = d.MinAttempts
	}
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	if c.RecencyWindow == 0 {
		c.RecencyWindow = d.RecencyWindow
	}
	if c.TopicMinAttempts == 0 {
		c.TopicMinAttempts = d.TopicMinAttempts
	}
	return c
}

// Performance recomputes per-area stats from scratch.
func Performance(items []item.Item) map[Area]Stats {
	perf := make(map[Area]Stats)
	for _, it := range items {
		a := Area{Topic: it.Topic, Subtopic: it.Subtopic}
		s := perf[a]
		s.add(it)
		perf[a] = s
	}
	return perf
}

// TopicPerformance recomputes per-topic stats, ignoring subtopics.
func TopicPerformance(items []item.Item) map[string]Stats {
	perf := make(map[string]Stats)
	for _, it := range items {
		s := perf[it.Topic]
		s.add(it)
		perf[it.Topic] = s
	}
	return perf
}

// Detector flags weak areas.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector. Zero-valued config fields other than
// RecencyBonus fall back to DefaultConfig.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect returns the weak spots of items, most urgent first.
func (d *Detector) Detect(items []item.Item, now time.Time) Report {
	var spots []WeakSpot
	for area, s := range Performance(items) {
		if s.Total < d.cfg.MinAttempts {
			continue
		}
		acc := s.Accuracy()
		if acc >= d.cfg.Threshold {
			continue
		}
		priority := 1 - acc
		if s.LastAttemptedAt != nil && now.Sub(*s.LastAttemptedAt) <= d.cfg.RecencyWindow {
			priority += d.cfg.RecencyBonus
		}
		spots = append(spots, WeakSpot{
			Area:          area,
			Accuracy:      acc,
			TotalAttempts: s.Total,
			Priority:      priority,
		})
	}

	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Priority != spots[j].Priority {
			return spots[i].Priority > spots[j].Priority
		}
		if spots[i].Topic != spots[j].Topic {
			return spots[i].Topic < spots[j].Topic
		}
		return spots[i].Subtopic < spots[j].Subtopic
	})

	idx := make(map[Area]int, len(spots))
	for i, s := range spots {
		idx[s.Area] = i
	}
	return Report{Spots: spots, index: idx}
}

// TopicSpot is the weakest whole topic chosen for targeted drilling.
type TopicSpot struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
	Total    int     `json:"total_attempts"`
}

// WeakestTopic returns the whole topic with the lowest accuracy among those
// with enough attempts and accuracy below the threshold.
func (d *Detector) WeakestTopic(items []item.Item) (TopicSpot, bool) {
	var best TopicSpot
	found := false
	for topic, s := range TopicPerformance(items) {
		if s.Total < d.cfg.TopicMinAttempts {
			continue
		}
		acc := s.Accuracy()
		if acc >= d.cfg.Threshold {
			continue
		}
		if !found || acc < best.Accuracy || (acc == best.Accuracy && topic < best.Topic) {
			best = TopicSpot{Topic: topic, Accuracy: acc, Total: s.Total}
			found = true
		}
	}
	return best, found
}

// Report is the result of one detection call. It is only valid for the
// item snapshot it was computed from.
type Report struct {
	Spots []WeakSpot
	index map[Area]int
}

// IsWeakSpot reports whether the area was flagged.
func (r Report) IsWeakSpot(topic, subtopic string) bool {
	_, ok := r.index[Area{Topic: topic, Subtopic: subtopic}]
	return ok
}

// Weight returns 1 + priority for a flagged area and 1 otherwise.
func (r Report) Weight(topic, subtopic string) float64 {
	i, ok := r.index[Area{Topic: topic, Subtopic: subtopic}]
	if !ok {
		return 1
	}
	return 1 + r.Spots[i].Priority
}

// Topics returns the distinct topics that have at least one weak area, in
// priority order.
func (r Report) Topics() []string {
	seen := make(map[string]bool)
	var topics []string
	for _, s := range r.Spots {
		if !seen[s.Topic] {
			seen[s.Topic] = true
			topics = append(topics, s.Topic)
		}
	}
	return topics
}

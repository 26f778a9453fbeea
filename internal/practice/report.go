package practice

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

// DueItem is an item waiting for review.
type DueItem struct {
	Item        item.Item              `json:"item"`
	Status      spacedrep.ReviewStatus `json:"status"`
	OverdueDays float64                `json:"overdue_days"`
}

// DueItems returns the previously attempted items that are due, most
// overdue first. An empty topic means every topic.
func (s *Service) DueItems(ctx context.Context, topic string) ([]DueItem, error) {
	items, err := s.itemsOf(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("due items: %w", err)
	}
	now := s.now()
	due := s.scheduler.DueItems(items, now)
	out := make([]DueItem, len(due))
	for i, it := range due {
		out[i] = DueItem{
			Item:        it,
			Status:      s.scheduler.Status(it, now),
			OverdueDays: s.scheduler.OverdueDays(it, now),
		}
	}
	return out, nil
}

// WeakSpots returns the weak topic/subtopic areas, highest priority first.
func (s *Service) WeakSpots(ctx context.Context) ([]weakspot.WeakSpot, error) {
	all, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("weak spots: %w", err)
	}
	spots := s.detector.Detect(all, s.now()).Spots
	if spots == nil {
		spots = []weakspot.WeakSpot{}
	}
	return spots, nil
}

// WeakestTopic returns the whole topic most in need of drilling. The
// second result is false when no topic qualifies.
func (s *Service) WeakestTopic(ctx context.Context) (weakspot.TopicSpot, bool, error) {
	all, err := s.items.GetAll(ctx)
	if err != nil {
		return weakspot.TopicSpot{}, false, fmt.Errorf("weakest topic: %w", err)
	}
	spot, ok := s.detector.WeakestTopic(all)
	return spot, ok, nil
}

// TopicStats summarizes one topic.
type TopicStats struct {
	Topic          string          `json:"topic"`
	Items          int             `json:"items"`
	Attempted      int             `json:"attempted"`
	Attempts       int             `json:"attempts"`
	Accuracy       float64         `json:"accuracy"`
	Due            int             `json:"due"`
	AtRisk         int             `json:"at_risk"`
	AvgStrength    float64         `json:"avg_strength"`
	TargetTier     difficulty.Tier `json:"target_tier"`
	TargetTierName string          `json:"target_tier_name"`
}

// Stats summarizes the whole pool.
type Stats struct {
	Items       int          `json:"items"`
	Attempted   int          `json:"attempted"`
	New         int          `json:"new"`
	Attempts    int          `json:"attempts"`
	Accuracy    float64      `json:"accuracy"`
	Due         int          `json:"due"`
	Overdue     int          `json:"overdue"`
	AtRisk      int          `json:"at_risk"`
	AvgStrength float64      `json:"avg_strength"`
	Topics      []TopicStats `json:"topics"`
}

// Stats computes pool-wide and per-topic progress.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.items.GetAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	now := s.now()
	targets := s.estimator.TopicTargets(all)

	st := Stats{Topics: []TopicStats{}}
	byTopic := make(map[string]*TopicStats)
	tStrength := make(map[string]float64)
	tCorrect := make(map[string]int)
	correct, strength := 0, 0.0
	for _, it := range all {
		ts, ok := byTopic[it.Topic]
		if !ok {
			ts = &TopicStats{Topic: it.Topic}
			byTopic[it.Topic] = ts
		}

		st.Items++
		ts.Items++
		strength += it.State.MemoryStrength
		tStrength[it.Topic] += it.State.MemoryStrength

		if !it.Attempted() {
			st.New++
			continue
		}
		st.Attempted++
		ts.Attempted++
		st.Attempts += it.TimesAttempted
		ts.Attempts += it.TimesAttempted
		right := min(max(it.CorrectAttempts, 0), it.TimesAttempted)
		correct += right
		tCorrect[it.Topic] += right

		switch s.scheduler.Status(it, now) {
		case spacedrep.ReviewOverdue:
			st.Overdue++
			st.Due++
			ts.Due++
		case spacedrep.ReviewDue:
			st.Due++
			ts.Due++
		}
		if s.weighter.IsAtRisk(it, now) {
			st.AtRisk++
			ts.AtRisk++
		}
	}

	st.Accuracy = ratio(correct, st.Attempts)
	if st.Items > 0 {
		st.AvgStrength = strength / float64(st.Items)
	}
	for topic, ts := range byTopic {
		ts.Accuracy = ratio(tCorrect[topic], ts.Attempts)
		ts.AvgStrength = tStrength[topic] / float64(ts.Items)
		ts.TargetTier = targets[topic]
		ts.TargetTierName = ts.TargetTier.String()
		st.Topics = append(st.Topics, *ts)
	}
	sort.Slice(st.Topics, func(i, j int) bool { return st.Topics[i].Topic < st.Topics[j].Topic })
	return st, nil
}

func (s *Service) itemsOf(ctx context.Context, topic string) ([]item.Item, error) {
	if topic == "" {
		return s.items.GetAll(ctx)
	}
	return s.items.GetByTopic(ctx, topic)
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}

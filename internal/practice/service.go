// Package practice wires the scheduling components to an item store and an
// event log: it records answers, builds sessions and reports progress.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/memory"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

// ErrInvalidInput is returned for malformed requests.
var ErrInvalidInput = errors.New("invalid input")

// EventSink receives the attempt and session event logs. *store.EventRepo
// implements it.
type EventSink interface {
	AppendAttempt(ctx context.Context, e *store.AttemptEvent) error
	AppendSession(ctx context.Context, e *store.SessionEvent) error
}

// stateResetter is implemented by stores that can reset every item in one
// statement.
type stateResetter interface {
	ResetStates(ctx context.Context) error
}

// Deps are the collaborators of a Service. Only Items is required.
type Deps struct {
	Items   item.Store
	Events  EventSink
	Prereqs session.PrerequisiteSource
	Rand    selection.RandomSource
	Clock   func() time.Time
}

// Service is the entry point for recording answers and building sessions.
// It is safe for concurrent use; concurrent answers to the same item are
// not coordinated and the last write wins.
type Service struct {
	items     item.Store
	events    EventSink
	scheduler *spacedrep.Scheduler
	memory    *memory.Model
	estimator *difficulty.Estimator
	detector  *weakspot.Detector
	weighter  *selection.Weighter
	composer  *session.Composer
	queue     *session.PrereqQueue
	now       func() time.Time
}

// New creates a service.
func New(cfg Config, deps Deps) *Service {
	sched := spacedrep.NewScheduler(cfg.SpacedRep)
	mem := memory.NewModel(cfg.Memory)
	est := difficulty.NewEstimator(cfg.Difficulty)
	det := weakspot.NewDetector(cfg.WeakSpot)
	w := selection.NewWeighter(cfg.Selection, sched, mem, est, det)

	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		items:     deps.Items,
		events:    deps.Events,
		scheduler: sched,
		memory:    mem,
		estimator: est,
		detector:  det,
		weighter:  w,
		composer:  session.NewComposer(cfg.Session, w, sched, deps.Prereqs, deps.Rand),
		queue:     session.NewPrereqQueue(),
		now:       now,
	}
}

// Scheduler returns the SRS scheduler in use.
func (s *Service) Scheduler() *spacedrep.Scheduler {
	return s.scheduler
}

// PendingPrerequisites returns the prerequisite topics queued after failed
// answers.
func (s *Service) PendingPrerequisites() []string {
	return s.queue.Pending()
}

// AttemptInput is one submitted answer. When the item has a correct option
// and SelectedOptionKey is set, correctness is graded from the key and
// Correct is ignored.
type AttemptInput struct {
	ItemID            string          `json:"item_id"`
	SessionID         string          `json:"session_id,omitempty"`
	Correct           bool            `json:"correct"`
	ResponseTimeMs    int64           `json:"response_time_ms"`
	SelectedOptionKey string          `json:"selected_option_key,omitempty"`
	Confidence        item.Confidence `json:"confidence,omitempty"`
}

// FlashcardInput is one flashcard view.
type FlashcardInput struct {
	ItemID     string `json:"item_id"`
	SessionID  string `json:"session_id,omitempty"`
	Remembered bool   `json:"remembered"`
	ViewTimeMs int64  `json:"view_time_ms"`
}

// AttemptResult is what recording an answer produced.
type AttemptResult struct {
	ItemID   string           `json:"item_id"`
	Correct  bool             `json:"correct"`
	Schedule spacedrep.Result `json:"schedule"`
	Memory   memory.Update    `json:"memory"`
	Message  string           `json:"message"`

	// QueuedPrerequisites lists prerequisite topics added to the queue by
	// this answer.
	QueuedPrerequisites []string `json:"queued_prerequisites,omitempty"`
}

// RecordAttempt grades and records a multiple-choice answer.
func (s *Service) RecordAttempt(ctx context.Context, in AttemptInput) (AttemptResult, error) {
	if in.ItemID == "" {
		return AttemptResult{}, fmt.Errorf("record attempt: %w: missing item id", ErrInvalidInput)
	}
	all, idx, err := s.load(ctx, in.ItemID)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("record attempt: %w", err)
	}
	it := all[idx]
	now := s.now()

	correct := in.Correct
	if in.SelectedOptionKey != "" && it.CorrectOption != "" {
		correct = strings.EqualFold(strings.TrimSpace(in.SelectedOptionKey), it.CorrectOption)
	}
	rt := time.Duration(max(in.ResponseTimeMs, 0)) * time.Millisecond

	mu := s.memory.RecordAttempt(it, memory.Attempt{Correct: correct, ResponseTime: rt, Confidence: in.Confidence}, now)
	sr := s.scheduler.Schedule(it.State, spacedrep.Answer{Correct: correct, Confidence: in.Confidence, ResponseTime: rt}, now)

	res, err := s.commit(ctx, all, idx, correct, mu, sr, now)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("record attempt: %w", err)
	}

	s.appendAttempt(ctx, &store.AttemptEvent{
		ItemID:         it.ID,
		Topic:          it.Topic,
		SessionID:      in.SessionID,
		Correct:        correct,
		ResponseTimeMs: max(in.ResponseTimeMs, 0),
		SelectedOption: in.SelectedOptionKey,
		Confidence:     string(in.Confidence),
	}, res, now)

	slog.Debug("attempt recorded", "item", it.ID, "correct", correct,
		"level", sr.Level, "interval", sr.Interval, "strength", mu.MemoryStrength)
	return res, nil
}

// RecordFlashcard records a flashcard view. Flashcards carry no confidence
// or response-time overrides; the SRS sees a plain remembered/forgotten.
func (s *Service) RecordFlashcard(ctx context.Context, in FlashcardInput) (AttemptResult, error) {
	if in.ItemID == "" {
		return AttemptResult{}, fmt.Errorf("record flashcard: %w: missing item id", ErrInvalidInput)
	}
	all, idx, err := s.load(ctx, in.ItemID)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("record flashcard: %w", err)
	}
	it := all[idx]
	now := s.now()
	view := time.Duration(max(in.ViewTimeMs, 0)) * time.Millisecond

	mu := s.memory.RecordFlashcard(it, in.Remembered, view, now)
	sr := s.scheduler.Next(it.State, in.Remembered, now)

	res, err := s.commit(ctx, all, idx, in.Remembered, mu, sr, now)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("record flashcard: %w", err)
	}

	s.appendAttempt(ctx, &store.AttemptEvent{
		ItemID:         it.ID,
		Topic:          it.Topic,
		SessionID:      in.SessionID,
		Flashcard:      true,
		Correct:        in.Remembered,
		ResponseTimeMs: max(in.ViewTimeMs, 0),
	}, res, now)
	return res, nil
}

// commit persists the memory and schedule outcome of one review and
// maintains the prerequisite queue.
func (s *Service) commit(ctx context.Context, all []item.Item, idx int, correct bool,
	mu memory.Update, sr spacedrep.Result, now time.Time) (AttemptResult, error) {
	it := all[idx]
	st := spacedrep.Apply(memory.Apply(it.State, mu), sr)
	times := it.TimesAttempted + 1
	right := it.CorrectAttempts
	if correct {
		right++
	}
	patch := item.Patch{
		TimesAttempted:  &times,
		CorrectAttempts: &right,
		LastAttemptedAt: &now,
		State:           &st,
	}
	if err := s.items.Update(ctx, it.ID, patch); err != nil {
		return AttemptResult{}, fmt.Errorf("save item %q: %w", it.ID, err)
	}
	patch.Apply(&all[idx])
	s.queue.InvalidateTopic(it.Topic)

	res := AttemptResult{
		ItemID:   it.ID,
		Correct:  correct,
		Schedule: sr,
		Memory:   mu,
		Message:  sr.Message,
	}
	if !correct {
		res.QueuedPrerequisites = s.composer.NoteFailure(all, it.Topic, s.queue)
	}
	return res, nil
}

func (s *Service) appendAttempt(ctx context.Context, e *store.AttemptEvent, res AttemptResult, now time.Time) {
	if s.events == nil {
		return
	}
	next := res.Schedule.NextReviewAt
	e.Timestamp = now
	e.MemoryStrength = res.Memory.MemoryStrength
	e.SRSLevel = res.Schedule.Level
	e.SRSInterval = res.Schedule.Interval
	e.NextReviewAt = &next
	// The item state is already saved; a lost event is logged, not fatal.
	if err := s.events.AppendAttempt(ctx, e); err != nil {
		slog.Warn("failed to append attempt event", "item", e.ItemID, "error", err)
	}
}

// load reads every item and locates id among them.
func (s *Service) load(ctx context.Context, id string) ([]item.Item, int, error) {
	all, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load items: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return all, i, nil
		}
	}
	return nil, 0, fmt.Errorf("item %q: %w", id, item.ErrNotFound)
}

// Session is a composed practice session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	session.Result
}

// BuildSession composes a session over the whole pool and logs it.
func (s *Service) BuildSession(ctx context.Context, req session.Request) (Session, error) {
	if req.Count < 0 {
		return Session{}, fmt.Errorf("build session: %w: negative count", ErrInvalidInput)
	}
	all, err := s.items.GetAll(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("build session: load items: %w", err)
	}
	now := s.now()
	res := s.composer.Compose(all, req, s.queue, now)
	sess := Session{ID: uuid.NewString(), CreatedAt: now, Result: res}

	if s.events != nil {
		ids := make([]string, len(res.Items))
		for i, it := range res.Items {
			ids[i] = it.ID
		}
		err := s.events.AppendSession(ctx, &store.SessionEvent{
			Timestamp:   now,
			SessionID:   sess.ID,
			Requested:   req.Count,
			TopicFilter: req.TopicFilter,
			ItemIDs:     ids,
			Breakdown:   breakdownMap(res.Breakdown),
		})
		if err != nil {
			slog.Warn("failed to append session event", "session", sess.ID, "error", err)
		}
	}

	slog.Debug("session built", "session", sess.ID, "items", len(res.Items),
		"due", res.Breakdown.DueForReview, "weak", res.Breakdown.WeakSpots)
	return sess, nil
}

func breakdownMap(b session.Breakdown) map[string]int {
	return map[string]int{
		string(session.CategoryDue):          b.DueForReview,
		string(session.CategoryWeakSpot):     b.WeakSpots,
		string(session.CategoryAtRisk):       b.AtRisk,
		string(session.CategoryPrerequisite): b.Prerequisites,
		string(session.CategoryNew):          b.NewContent,
	}
}

// Reset returns every item to its initial state and clears the
// prerequisite queue. Item content is kept.
func (s *Service) Reset(ctx context.Context) error {
	defer s.queue.Reset()
	if r, ok := s.items.(stateResetter); ok {
		if err := r.ResetStates(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		return nil
	}

	all, err := s.items.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("reset: load items: %w", err)
	}
	for _, it := range all {
		zero := 0
		st := item.DefaultState()
		if err := s.items.Update(ctx, it.ID, item.Patch{TimesAttempted: &zero, CorrectAttempts: &zero, State: &st}); err != nil {
			return fmt.Errorf("reset item %q: %w", it.ID, err)
		}
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	ItemID string    // attempts only
}

// AttemptEvent records one answered item and the state it produced.
type AttemptEvent struct {
	Sequence       int64      `json:"sequence"`
	ID             string     `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	ItemID         string     `json:"item_id"`
	Topic          string     `json:"topic"`
	SessionID      string     `json:"session_id,omitempty"`
	Flashcard      bool       `json:"flashcard,omitempty"`
	Correct        bool       `json:"correct"`
	ResponseTimeMs int64      `json:"response_time_ms"`
	SelectedOption string     `json:"selected_option,omitempty"`
	Confidence     string     `json:"confidence,omitempty"`
	MemoryStrength float64    `json:"memory_strength"`
	SRSLevel       int        `json:"srs_level"`
	SRSInterval    int        `json:"srs_interval"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
}

// SessionEvent records one composed session.
type SessionEvent struct {
	Sequence    int64          `json:"sequence"`
	Timestamp   time.Time      `json:"timestamp"`
	SessionID   string         `json:"session_id"`
	Requested   int            `json:"requested"`
	TopicFilter string         `json:"topic_filter,omitempty"`
	ItemIDs     []string       `json:"item_ids"`
	Breakdown   map[string]int `json:"breakdown,omitempty"`
}

// EventRepo appends and queries the attempt and session event logs.
// Events are append-only and share one global sequence.
type EventRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

// AppendAttempt stores e, filling in its sequence, a random ID and the
// current time when unset.
func (r *EventRepo) AppendAttempt(ctx context.Context, e *AttemptEvent) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	e.Sequence = seqNum
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	query, args := r.b.Insert(attemptsTable).
		Columns("sequence", "event_id", "timestamp", "item_id", "topic", "session_id", "flashcard",
			"correct", "response_time_ms", "selected_option", "confidence", "memory_strength",
			"srs_level", "srs_interval", "next_review_at").
		Values(e.Sequence, e.ID, millis(e.Timestamp), e.ItemID, e.Topic, e.SessionID, e.Flashcard,
			e.Correct, e.ResponseTimeMs, e.SelectedOption, e.Confidence, e.MemoryStrength,
			e.SRSLevel, e.SRSInterval, nullMillis(e.NextReviewAt)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

// RecentAttempts returns attempt events matching opts, newest first.
func (r *EventRepo) RecentAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	t := r.b.Table(attemptsTable)
	sel := r.b.Select("sequence", "event_id", "timestamp", "item_id", "topic", "session_id", "flashcard",
		"correct", "response_time_ms", "selected_option", "confidence", "memory_strength",
		"srs_level", "srs_interval", "next_review_at").
		From(t).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)
	if opts.ItemID != "" {
		sel.Where(entsql.EQ("item_id", opts.ItemID))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	defer rows.Close()

	var events []AttemptEvent
	for rows.Next() {
		var (
			e      AttemptEvent
			ts     int64
			nextAt sql.NullInt64
		)
		if err := rows.Scan(&e.Sequence, &e.ID, &ts, &e.ItemID, &e.Topic, &e.SessionID, &e.Flashcard,
			&e.Correct, &e.ResponseTimeMs, &e.SelectedOption, &e.Confidence, &e.MemoryStrength,
			&e.SRSLevel, &e.SRSInterval, &nextAt); err != nil {
			return nil, fmt.Errorf("scan attempt event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		e.NextReviewAt = fromNullMillis(nextAt)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt events: %w", err)
	}
	return events, nil
}

// AppendSession stores e, filling in its sequence and the current time when
// unset.
func (r *EventRepo) AppendSession(ctx context.Context, e *SessionEvent) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	e.Sequence = seqNum
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	itemIDs, err := json.Marshal(e.ItemIDs)
	if err != nil {
		return fmt.Errorf("encode session items: %w", err)
	}
	breakdown, err := json.Marshal(e.Breakdown)
	if err != nil {
		return fmt.Errorf("encode session breakdown: %w", err)
	}

	query, args := r.b.Insert(sessionsTable).
		Columns("sequence", "timestamp", "session_id", "requested", "topic_filter", "item_ids", "breakdown").
		Values(e.Sequence, millis(e.Timestamp), e.SessionID, e.Requested, e.TopicFilter,
			string(itemIDs), string(breakdown)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

// QuerySessions returns session events matching opts, newest first.
func (r *EventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	sel := r.b.Select("sequence", "timestamp", "session_id", "requested", "topic_filter", "item_ids", "breakdown").
		From(r.b.Table(sessionsTable)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var (
			e         SessionEvent
			ts        int64
			itemIDs   []byte
			breakdown []byte
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.Requested, &e.TopicFilter,
			&itemIDs, &breakdown); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		if len(itemIDs) > 0 {
			if err := json.Unmarshal(itemIDs, &e.ItemIDs); err != nil {
				return nil, fmt.Errorf("decode session items: %w", err)
			}
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &e.Breakdown); err != nil {
				return nil, fmt.Errorf("decode session breakdown: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}
	return events, nil
}

// LastSequence returns the highest sequence handed out so far, or 0.
func (r *EventRepo) LastSequence(ctx context.Context) (int64, error) {
	query, args := r.b.Select("next_val").
		From(r.b.Table(sequenceTable)).
		Where(entsql.EQ("id", 1)).
		Query()
	var next int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return next - 1, nil
}

func applyOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", millis(opts.From)))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", millis(opts.To)))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/item"
)

// ItemRepo implements item.Store on top of the items and item_states
// tables.
type ItemRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

var _ item.Store = (*ItemRepo)(nil)

// GetAll returns every item ordered by ID.
func (r *ItemRepo) GetAll(ctx context.Context) ([]item.Item, error) {
	return r.query(ctx, nil)
}

// GetByTopic returns the items of one topic ordered by ID.
func (r *ItemRepo) GetByTopic(ctx context.Context, topic string) ([]item.Item, error) {
	return r.query(ctx, func(t *entsql.SelectTable) *entsql.Predicate {
		return entsql.EQ(t.C("topic"), topic)
	})
}

// Get returns one item, or item.ErrNotFound.
func (r *ItemRepo) Get(ctx context.Context, id string) (item.Item, error) {
	items, err := r.query(ctx, func(t *entsql.SelectTable) *entsql.Predicate {
		return entsql.EQ(t.C("id"), id)
	})
	if err != nil {
		return item.Item{}, err
	}
	if len(items) == 0 {
		return item.Item{}, fmt.Errorf("get item %q: %w", id, item.ErrNotFound)
	}
	return items[0], nil
}

func (r *ItemRepo) query(ctx context.Context, where func(*entsql.SelectTable) *entsql.Predicate) ([]item.Item, error) {
	it := r.b.Table(itemsTable)
	st := r.b.Table(itemStatesTable)
	sel := r.b.Select(
		it.C("id"), it.C("topic"), it.C("subtopic"), it.C("format"), it.C("question"),
		it.C("options"), it.C("correct_option"), it.C("flashcard"),
		it.C("times_attempted"), it.C("correct_attempts"), it.C("last_attempted_at"),
		st.C("data"),
	).
		From(it).
		LeftJoin(st).On(it.C("id"), st.C("item_id")).
		OrderBy(it.C("id"))
	if where != nil {
		sel.Where(where(it))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []item.Item{}
	for rows.Next() {
		var (
			x       item.Item
			format  string
			options []byte
			lastAt  sql.NullInt64
			state   []byte
		)
		if err := rows.Scan(&x.ID, &x.Topic, &x.Subtopic, &format, &x.Question,
			&options, &x.CorrectOption, &x.Flashcard,
			&x.TimesAttempted, &x.CorrectAttempts, &lastAt, &state); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		x.Format = item.ParseFormat(format)
		x.LastAttemptedAt = fromNullMillis(lastAt)
		if len(options) > 0 {
			if err := json.Unmarshal(options, &x.Options); err != nil {
				slog.Warn("discarding corrupted item options", "item", x.ID, "error", err)
				x.Options = nil
			}
		}
		x.State, err = item.DecodeState(state)
		if err != nil {
			slog.Warn("resetting corrupted item state", "item", x.ID, "error", err)
		}
		items = append(items, x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Update applies a patch to one item. Only the fields set in the patch are
// written.
func (r *ItemRepo) Update(ctx context.Context, id string, patch item.Patch) error {
	now := time.Now()
	return r.inTx(ctx, func(tx *sql.Tx) error {
		upd := r.b.Update(itemsTable).
			Set("updated_at", millis(now)).
			Where(entsql.EQ("id", id))
		if patch.TimesAttempted != nil {
			upd.Set("times_attempted", *patch.TimesAttempted)
		}
		if patch.CorrectAttempts != nil {
			upd.Set("correct_attempts", *patch.CorrectAttempts)
		}
		if patch.LastAttemptedAt != nil {
			upd.Set("last_attempted_at", millis(*patch.LastAttemptedAt))
		}

		query, args := upd.Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update item %q: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update item %q: %w", id, item.ErrNotFound)
		}

		if patch.State != nil {
			return r.putState(ctx, tx, id, *patch.State, now)
		}
		return nil
	})
}

// Upsert inserts items or replaces existing ones, including their
// aggregates and state.
func (r *ItemRepo) Upsert(ctx context.Context, items ...item.Item) error {
	now := time.Now()
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, x := range items {
			if x.ID == "" {
				return fmt.Errorf("upsert item: empty id")
			}
			options, err := json.Marshal(x.Options)
			if err != nil {
				return fmt.Errorf("encode options of %q: %w", x.ID, err)
			}
			format := x.Format
			if format == "" {
				format = item.FormatStandard
			}

			query, args := r.b.Insert(itemsTable).
				Columns("id", "topic", "subtopic", "format", "question", "options", "correct_option",
					"flashcard", "times_attempted", "correct_attempts", "last_attempted_at",
					"created_at", "updated_at").
				Values(x.ID, x.Topic, x.Subtopic, string(format), x.Question, string(options), x.CorrectOption,
					x.Flashcard, x.TimesAttempted, x.CorrectAttempts, nullMillis(x.LastAttemptedAt),
					millis(now), millis(now)).
				OnConflict(
					entsql.ConflictColumns("id"),
					entsql.ResolveWithNewValues(),
					entsql.ResolveWith(func(u *entsql.UpdateSet) {
						u.SetIgnore("created_at")
					}),
				).
				Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert item %q: %w", x.ID, err)
			}

			state := x.State
			if state.IsZero() {
				state = item.DefaultState()
			}
			if err := r.putState(ctx, tx, x.ID, state, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored items.
func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	query, args := r.b.Select(entsql.Count("*")).From(r.b.Table(itemsTable)).Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// ResetStates clears every item's aggregates and learning state. Item
// content is kept.
func (r *ItemRepo) ResetStates(ctx context.Context) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		query, args := r.b.Update(itemsTable).
			Set("times_attempted", 0).
			Set("correct_attempts", 0).
			SetNull("last_attempted_at").
			Set("updated_at", millis(time.Now())).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset items: %w", err)
		}

		query, args = r.b.Delete(itemStatesTable).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset item states: %w", err)
		}
		return nil
	})
}

func (r *ItemRepo) putState(ctx context.Context, tx *sql.Tx, id string, s item.State, now time.Time) error {
	data, err := item.EncodeState(s)
	if err != nil {
		return fmt.Errorf("encode state of %q: %w", id, err)
	}
	query, args := r.b.Insert(itemStatesTable).
		Columns("item_id", "data", "updated_at").
		Values(id, string(data), millis(now)).
		OnConflict(entsql.ConflictColumns("item_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save state of %q: %w", id, err)
	}
	return nil
}

func (r *ItemRepo) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return withTx(ctx, r.db, fn)
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

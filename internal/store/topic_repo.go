package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/topicgraph"
)

// TopicRepo stores the topic prerequisite graph.
type TopicRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

// Replace stores topics as the complete topic set, in the given order.
func (r *TopicRepo) Replace(ctx context.Context, topics []topicgraph.Topic) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := r.b.Delete(topicsTable).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear topics: %w", err)
		}
		for i, t := range topics {
			prereqs, err := json.Marshal(t.Prerequisites)
			if err != nil {
				return fmt.Errorf("encode prerequisites of %q: %w", t.ID, err)
			}
			query, args := r.b.Insert(topicsTable).
				Columns("id", "name", "description", "prerequisites", "position").
				Values(t.ID, t.Name, t.Description, string(prereqs), i).
				Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert topic %q: %w", t.ID, err)
			}
		}
		return nil
	})
}

// All returns the stored topics in their original order.
func (r *TopicRepo) All(ctx context.Context) ([]topicgraph.Topic, error) {
	query, args := r.b.Select("id", "name", "description", "prerequisites").
		From(r.b.Table(topicsTable)).
		OrderBy("position", "id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var topics []topicgraph.Topic
	for rows.Next() {
		var (
			t       topicgraph.Topic
			prereqs []byte
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &prereqs); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		if len(prereqs) > 0 {
			if err := json.Unmarshal(prereqs, &t.Prerequisites); err != nil {
				slog.Warn("discarding corrupted topic prerequisites", "topic", t.ID, "error", err)
				t.Prerequisites = nil
			}
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return topics, nil
}

// Graph loads the stored topics into a prerequisite graph. An empty table
// yields an empty graph.
func (r *TopicRepo) Graph(ctx context.Context) (*topicgraph.Graph, error) {
	topics, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return topicgraph.Empty(), nil
	}
	g, err := topicgraph.New(topics)
	if err != nil {
		return nil, fmt.Errorf("load topic graph: %w", err)
	}
	return g, nil
}

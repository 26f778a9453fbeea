package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AttemptEvent records one answer or flashcard view and the schedule it
// produced.
type AttemptEvent struct {
	ent.Schema
}

func (AttemptEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AttemptEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("event_id").
			Unique().
			Immutable().
			Comment("UUID of the event"),
		field.String("item_id").
			NotEmpty(),
		field.String("topic").
			Default(""),
		field.String("session_id").
			Default(""),
		field.Bool("flashcard").
			Default(false),
		field.Bool("correct"),
		field.Int64("response_time_ms").
			Default(0),
		field.String("selected_option").
			Default(""),
		field.String("confidence").
			Default(""),
		field.Float("memory_strength").
			Default(0),
		field.Int("srs_level").
			Default(0),
		field.Int("srs_interval").
			Default(0),
		field.Int64("next_review_at").
			Optional().
			Nillable().
			Comment("Unix milliseconds"),
	}
}

func (AttemptEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("item_id"),
	}
}

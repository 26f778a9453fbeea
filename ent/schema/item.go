package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/abhisek/adaptiq/internal/item"
)

// Item holds a practice question and its attempt aggregate.
type Item struct {
	ent.Schema
}

func (Item) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Catalog item ID"),
		field.String("topic").
			NotEmpty(),
		field.String("subtopic").
			Default(""),
		field.String("format").
			Default(string(item.FormatStandard)).
			Comment("standard or short_form"),
		field.Text("question"),
		field.JSON("options", []item.Option{}).
			Optional(),
		field.String("correct_option").
			Default(""),
		field.Bool("flashcard").
			Default(false),
		field.Int("times_attempted").
			Default(0),
		field.Int("correct_attempts").
			Default(0),
		field.Int64("last_attempted_at").
			Optional().
			Nillable().
			Comment("Unix milliseconds"),
		field.Int64("created_at"),
		field.Int64("updated_at"),
	}
}

func (Item) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("topic"),
	}
}

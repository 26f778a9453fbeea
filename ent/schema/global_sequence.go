package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// GlobalSequence is the single-row counter shared by every event table.
type GlobalSequence struct {
	ent.Schema
}

func (GlobalSequence) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.Int64("next_val").
			Default(1),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Topic persists one node of the prerequisite graph.
type Topic struct {
	ent.Schema
}

func (Topic) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("name").
			Default(""),
		field.Text("description").
			Default(""),
		field.Strings("prerequisites").
			Optional(),
		field.Int("position").
			Default(0).
			Comment("Catalog order"),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/adaptiq/internal/item"
)

// ItemState is the learning state of one item, stored as a single JSON
// record so new state fields need no migration. Rows are deleted with
// their item.
type ItemState struct {
	ent.Schema
}

func (ItemState) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("item_id").
			NotEmpty().
			Immutable(),
		field.JSON("data", item.State{}),
		field.Int64("updated_at"),
	}
}

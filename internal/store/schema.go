package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/adaptiq/ent/schema"
)

const (
	itemsTable      = "items"
	itemStatesTable = "item_states"
	topicsTable     = "topics"
	attemptsTable   = "attempt_events"
	sessionsTable   = "session_events"
	sequenceTable   = "global_sequence"
)

// entity maps an ent schema to the table it is stored in.
type entity struct {
	table  string
	typ    string
	schema ent.Interface
}

var entities = []entity{
	{itemsTable, "Item", entschema.Item{}},
	{itemStatesTable, "ItemState", entschema.ItemState{}},
	{topicsTable, "Topic", entschema.Topic{}},
	{attemptsTable, "AttemptEvent", entschema.AttemptEvent{}},
	{sessionsTable, "SessionEvent", entschema.SessionEvent{}},
	{sequenceTable, "GlobalSequence", entschema.GlobalSequence{}},
}

// buildTables converts the ent schemas into migration tables.
func buildTables() ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(entities))
	byName := make(map[string]*schema.Table, len(entities))
	for _, e := range entities {
		t, err := tableOf(e)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", e.table, err)
		}
		tables = append(tables, t)
		byName[e.table] = t
	}

	// Item states are deleted with their item.
	items, states := byName[itemsTable], byName[itemStatesTable]
	states.ForeignKeys = append(states.ForeignKeys, &schema.ForeignKey{
		Symbol:     "item_states_items_state",
		Columns:    states.PrimaryKey,
		RefTable:   items,
		RefColumns: items.PrimaryKey,
		OnDelete:   schema.Cascade,
	})
	return tables, nil
}

func tableOf(e entity) (*schema.Table, error) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range e.schema.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, e.schema.Fields()...)
	indexes = append(indexes, e.schema.Indexes()...)

	t := &schema.Table{Name: e.table}
	columns := make(map[string]*schema.Column, len(fields)+1)
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("field %s: %w", d.Name, d.Err)
		}
		c := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     d.Size,
			Unique:   d.Unique,
			Nullable: d.Optional || d.Nillable,
		}
		if d.StorageKey != "" {
			c.Name = d.StorageKey
		}
		switch v := d.Default.(type) {
		case string, bool, int, int64, float64:
			c.Default = v
		}
		if d.Name == "id" {
			t.PrimaryKey = []*schema.Column{c}
		}
		t.Columns = append(t.Columns, c)
		columns[d.Name] = c
	}
	if t.PrimaryKey == nil {
		id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
		t.Columns = append([]*schema.Column{id}, t.Columns...)
		t.PrimaryKey = []*schema.Column{id}
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		name := d.StorageKey
		if name == "" {
			name = strings.ToLower(e.typ) + "_" + strings.Join(d.Fields, "_")
		}
		i := &schema.Index{Name: name, Unique: d.Unique}
		for _, fname := range d.Fields {
			c, ok := columns[fname]
			if !ok {
				return nil, fmt.Errorf("index %s: unknown field %q", name, fname)
			}
			i.Columns = append(i.Columns, c)
		}
		t.Indexes = append(t.Indexes, i)
	}
	return t, nil
}

// migrate creates or upgrades every table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	tables, err := buildTables()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// FindItVerdict records one submitted line selection for a challenge.
type FindItVerdict struct {
	ent.Schema
}

func (FindItVerdict) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "find_it_verdicts"},
	}
}

func (FindItVerdict) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (FindItVerdict) Fields() []ent.Field {
	return []ent.Field{
		field.String("challenge_key").
			NotEmpty().
			Comment("Challenge the selection was submitted for"),
		field.Bool("verdict").
			Comment("Whether the selection was correct"),
		field.String("selected_lines").
			Optional().
			Nillable().
			Comment("JSON array of selected lines, NULL when nothing was submitted"),
	}
}

func (FindItVerdict) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("challenge_key"),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Review is a product review left by a signed-in user.
type Review struct {
	ent.Schema
}

func (Review) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID"),
		field.String("product").
			NotEmpty(),
		field.Text("message"),
		field.String("author").
			NotEmpty().
			Comment("Email of the signed-in user"),
		field.Int("likes_count").
			Default(0),
		field.String("liked_by").
			Default("[]").
			Comment("JSON array of emails"),
		field.Time("created_at").
			Immutable(),
	}
}

func (Review) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("product"),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// ChallengeSolve marks the first correct "find it" verdict of a challenge.
type ChallengeSolve struct {
	ent.Schema
}

func (ChallengeSolve) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "coding_challenge_solves"},
	}
}

func (ChallengeSolve) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("challenge_key").
			NotEmpty().
			Immutable(),
		field.Time("find_it_solved_at").
			Immutable(),
	}
}

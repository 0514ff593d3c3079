package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableFindItVerdicts = "find_it_verdicts"
	tableSolves         = "coding_challenge_solves"
	tableReviews        = "reviews"
)

var (
	// FindItVerdictsColumns holds the columns for the "find_it_verdicts" table.
	FindItVerdictsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "challenge_key", Type: field.TypeString},
		{Name: "verdict", Type: field.TypeBool},
		{Name: "selected_lines", Type: field.TypeString, Nullable: true},
	}
	// FindItVerdictsTable holds the schema information for the "find_it_verdicts" table.
	FindItVerdictsTable = &schema.Table{
		Name:       tableFindItVerdicts,
		Columns:    FindItVerdictsColumns,
		PrimaryKey: []*schema.Column{FindItVerdictsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "finditverdict_challenge_key",
				Unique:  false,
				Columns: []*schema.Column{FindItVerdictsColumns[3]},
			},
			{
				Name:    "finditverdict_timestamp",
				Unique:  false,
				Columns: []*schema.Column{FindItVerdictsColumns[2]},
			},
		},
	}

	// SolvesColumns holds the columns for the "coding_challenge_solves" table.
	SolvesColumns = []*schema.Column{
		{Name: "challenge_key", Type: field.TypeString, Unique: true},
		{Name: "find_it_solved_at", Type: field.TypeTime},
	}
	// SolvesTable holds the schema information for the "coding_challenge_solves" table.
	SolvesTable = &schema.Table{
		Name:       tableSolves,
		Columns:    SolvesColumns,
		PrimaryKey: []*schema.Column{SolvesColumns[0]},
	}

	// ReviewsColumns holds the columns for the "reviews" table.
	ReviewsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "product", Type: field.TypeString},
		{Name: "message", Type: field.TypeString, Size: 2147483647},
		{Name: "author", Type: field.TypeString},
		{Name: "likes_count", Type: field.TypeInt, Default: 0},
		{Name: "liked_by", Type: field.TypeString, Default: "[]"},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ReviewsTable holds the schema information for the "reviews" table.
	ReviewsTable = &schema.Table{
		Name:       tableReviews,
		Columns:    ReviewsColumns,
		PrimaryKey: []*schema.Column{ReviewsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "review_product",
				Unique:  false,
				Columns: []*schema.Column{ReviewsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		FindItVerdictsTable,
		SolvesTable,
		ReviewsTable,
	}
)

// migrate creates or upgrades all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}

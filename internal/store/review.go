package store

import (
	"context"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// reviewRepo implements ReviewRepo using the ent SQL driver.
type reviewRepo struct {
	drv *entsql.Driver
}

func (r *reviewRepo) Create(ctx context.Context, review *Review) error {
	likedBy := review.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	likedByJSON, err := json.Marshal(likedBy)
	if err != nil {
		return fmt.Errorf("marshal liked by: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableReviews).
		Columns("id", "product", "message", "author", "likes_count", "liked_by", "created_at").
		Values(review.ID, review.Product, review.Message, review.Author, review.LikesCount, string(likedByJSON), review.CreatedAt.UTC()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, product string) ([]Review, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "product", "message", "author", "likes_count", "liked_by", "created_at").
		From(b.Table(tableReviews)).
		Where(entsql.EQ("product", product)).
		OrderBy("created_at", "id").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var (
			rev     Review
			likedBy string
		)
		if err := rows.Scan(&rev.ID, &rev.Product, &rev.Message, &rev.Author, &rev.LikesCount, &likedBy, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if err := json.Unmarshal([]byte(likedBy), &rev.LikedBy); err != nil {
			return nil, fmt.Errorf("decode liked by: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

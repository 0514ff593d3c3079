package store

import (
	"context"
	"time"
)

// FindItVerdictData captures one "find it" verdict check.
type FindItVerdictData struct {
	ChallengeKey string
	Verdict      bool

	// SelectedLines is nil when the user submitted no selection.
	SelectedLines []int

	// Timestamp defaults to the current UTC time.
	Timestamp time.Time
}

// FindItVerdictRecord is a persisted verdict event.
type FindItVerdictRecord struct {
	ID            int
	Sequence      int64
	Timestamp     time.Time
	ChallengeKey  string
	Verdict       bool
	SelectedLines []int
}

// FindItSummary aggregates the verdict history of one challenge.
type FindItSummary struct {
	ChallengeKey string
	Attempts     int
	Solved       bool
	SolvedAt     time.Time
}

// VerdictRepo records verdict attempts and challenge solves.
type VerdictRepo interface {
	// AppendFindItVerdict records a verdict check.
	AppendFindItVerdict(ctx context.Context, data FindItVerdictData) error

	// FindItAttempts counts the recorded verdicts for key.
	FindItAttempts(ctx context.Context, key string) (int, error)

	// QueryFindItVerdicts returns the verdicts for key in sequence order.
	QueryFindItVerdicts(ctx context.Context, key string) ([]FindItVerdictRecord, error)

	// MarkFindItSolved records the first solve of key. Returns false if the
	// key was already solved.
	MarkFindItSolved(ctx context.Context, key string, at time.Time) (bool, error)

	// FindItSolved reports whether key has been solved.
	FindItSolved(ctx context.Context, key string) (bool, error)

	// FindItSummaries returns per-challenge attempts and solve state,
	// ordered by key.
	FindItSummaries(ctx context.Context) ([]FindItSummary, error)

	// ResetFindIt forgets attempts and solves for key, or for every
	// challenge when key is empty.
	ResetFindIt(ctx context.Context, key string) error
}

// Review is a product review.
type Review struct {
	ID         string    `json:"_id"`
	Product    string    `json:"product"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	LikesCount int       `json:"likesCount"`
	LikedBy    []string  `json:"likedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewRepo stores product reviews.
type ReviewRepo interface {
	// Create inserts a review. ID and CreatedAt must be set.
	Create(ctx context.Context, review *Review) error

	// ListByProduct returns a product's reviews, oldest first.
	ListByProduct(ctx context.Context, product string) ([]Review, error)
}

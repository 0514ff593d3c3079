package reviews

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juiceshop/findit/internal/auth"
	"github.com/juiceshop/findit/internal/store"
)

// mockReviewRepo implements store.ReviewRepo in memory.
type mockReviewRepo struct {
	reviews []store.Review
	err     error
}

func (m *mockReviewRepo) Create(_ context.Context, r *store.Review) error {
	if m.err != nil {
		return m.err
	}
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *mockReviewRepo) ListByProduct(_ context.Context, product string) ([]store.Review, error) {
	var out []store.Review
	for _, r := range m.reviews {
		if r.Product == product {
			out = append(out, r)
		}
	}
	return out, m.err
}

func TestService_Create(t *testing.T) {
	admin := &auth.User{ID: 1, Email: "admin@juice-sh.op"}

	tests := []struct {
		name    string
		user    *auth.User
		message string
		author  string
		wantErr error
	}{
		{"own author", admin, "Great juice", "admin@juice-sh.op", nil},
		{"author defaults to user", admin, "Great juice", "", nil},
		{"anonymous", nil, "Great juice", "admin@juice-sh.op", ErrForbidden},
		{"forged author", admin, "Great juice", "bender@juice-sh.op", ErrForbidden},
		{"blank message", admin, "   ", "", ErrInvalidReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReviewRepo{}
			svc := NewService(repo, nil)

			got, err := svc.Create(context.Background(), tt.user, "1", tt.message, tt.author)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.reviews)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "admin@juice-sh.op", got.Author)
			assert.Equal(t, 0, got.LikesCount)
			assert.Equal(t, []string{}, got.LikedBy)
			assert.False(t, got.CreatedAt.IsZero())
			require.Len(t, repo.reviews, 1)
		})
	}
}

func TestService_CreateRepoError(t *testing.T) {
	svc := NewService(&mockReviewRepo{err: errors.New("disk full")}, nil)
	_, err := svc.Create(context.Background(), &auth.User{Email: "a@b.c"}, "1", "msg", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_List(t *testing.T) {
	repo := &mockReviewRepo{}
	svc := NewService(repo, nil)
	user := &auth.User{Email: "a@b.c"}
	ctx := context.Background()

	_, err := svc.Create(ctx, user, "1", "first", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, user, "2", "other", "")
	require.NoError(t, err)

	got, err := svc.List(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Message)
}

// Package reviews creates and lists product reviews.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juiceshop/findit/internal/auth"
	"github.com/juiceshop/findit/internal/store"
)

var (
	// ErrForbidden indicates an anonymous request or an author that is not
	// the signed-in user.
	ErrForbidden = errors.New("unauthorized")

	// ErrInvalidReview indicates a review without a message.
	ErrInvalidReview = errors.New("review message must not be empty")
)

// Service manages product reviews.
type Service struct {
	repo store.ReviewRepo
	log  *zap.Logger
	now  func() time.Time
}

// NewService creates a review service over repo.
func NewService(repo store.ReviewRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log.Named("reviews"), now: time.Now}
}

// Create stores a review written by user. author defaults to the user's
// email and must match it when given.
func (s *Service) Create(ctx context.Context, user *auth.User, product, message, author string) (*store.Review, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	if author == "" {
		author = user.Email
	}
	if author != user.Email {
		s.log.Warn("rejected review with forged author",
			zap.String("user", user.Email),
			zap.String("author", author),
			zap.String("product", product))
		return nil, ErrForbidden
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrInvalidReview
	}

	review := &store.Review{
		ID:         uuid.NewString(),
		Product:    product,
		Message:    message,
		Author:     author,
		LikesCount: 0,
		LikedBy:    []string{},
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// List returns the reviews of product, oldest first.
func (s *Service) List(ctx context.Context, product string) ([]store.Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

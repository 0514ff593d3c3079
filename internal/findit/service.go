// Package findit runs the "find it" phase of coding challenges: serving
// snippets, judging line selections and handing out hints.
package findit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/juiceshop/findit/internal/challenges"
	"github.com/juiceshop/findit/internal/snippets"
	"github.com/juiceshop/findit/internal/verdict"
)

// ErrNotFound indicates that no code challenge exists for a key.
var ErrNotFound = errors.New("no code challenge for challenge key")

// SnippetSource looks up challenge snippets by key.
type SnippetSource interface {
	Get(ctx context.Context, key string) (*snippets.Challenge, error)
	Keys(ctx context.Context) ([]string, error)
}

// InfoSource loads hint lists. A nil Info means the challenge has none.
type InfoSource interface {
	Load(ctx context.Context, key string) (*challenges.Info, error)
}

// AttemptTracker records verdicts per challenge key. StoreFindItVerdict
// returns the attempt count including the verdict just stored.
type AttemptTracker interface {
	StoreFindItVerdict(ctx context.Context, key string, correct bool, selected verdict.Selection) (int, error)
}

// Result is the outcome of one verdict check.
type Result struct {
	Verdict bool   `json:"verdict"`
	Hint    string `json:"hint,omitempty"`
}

// Service wires the snippet repository, info loader and tracker together.
type Service struct {
	snippets SnippetSource
	infos    InfoSource
	tracker  AttemptTracker
	log      *zap.Logger
}

// NewService creates a find-it service.
func NewService(src SnippetSource, infos InfoSource, tracker AttemptTracker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		snippets: src,
		infos:    infos,
		tracker:  tracker,
		log:      log.Named("findit"),
	}
}

// Keys lists every challenge that has a code snippet.
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	return s.snippets.Keys(ctx)
}

// Snippet returns the challenge for key or an error wrapping ErrNotFound.
func (s *Service) Snippet(ctx context.Context, key string) (*snippets.Challenge, error) {
	c, err := s.snippets.Get(ctx, key)
	if errors.Is(err, snippets.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CheckVulnLines judges the lines selected for key. A wrong answer is
// recorded as an attempt and, when the challenge has hints, answered with the
// hint for that attempt.
func (s *Service) CheckVulnLines(ctx context.Context, key string, selected verdict.Selection) (*Result, error) {
	c, err := s.Snippet(ctx, key)
	if err != nil {
		return nil, err
	}

	if verdict.Evaluate(c.VulnLines, c.NeutralLines, selected) {
		if _, err := s.tracker.StoreFindItVerdict(ctx, key, true, selected); err != nil {
			s.log.Warn("failed to record solved verdict", zap.String("challenge", key), zap.Error(err))
		}
		return &Result{Verdict: true}, nil
	}

	attempt, err := s.tracker.StoreFindItVerdict(ctx, key, false, selected)
	if err != nil {
		// An unrecorded attempt counts as the first one.
		s.log.Warn("failed to record verdict", zap.String("challenge", key), zap.Error(err))
	}

	info, err := s.infos.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load challenge info: %w", err)
	}
	if info == nil || len(info.Hints) == 0 {
		return &Result{Verdict: false}, nil
	}

	res := &Result{Verdict: false}
	if hint, ok := verdict.SelectHint(info.Hints, attempt, c.VulnLines); ok {
		res.Hint = hint
	}
	s.log.Debug("wrong selection",
		zap.String("challenge", key),
		zap.Int("attempt", attempt),
		zap.Bool("hint", res.Hint != ""))
	return res, nil
}

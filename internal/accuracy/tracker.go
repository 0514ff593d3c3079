// Package accuracy tracks how many attempts each coding challenge took and
// derives accuracy figures from them.
package accuracy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/juiceshop/findit/internal/store"
	"github.com/juiceshop/findit/internal/verdict"
)

// Tracker records "find it" verdicts per challenge key. Once a challenge is
// solved further verdicts are ignored, so the attempt count freezes at the
// number of tries it took.
type Tracker struct {
	repo store.VerdictRepo
	log  *zap.Logger
	now  func() time.Time

	// mu makes the solved-check and the append one step.
	mu sync.Mutex
}

// NewTracker creates a Tracker over repo.
func NewTracker(repo store.VerdictRepo, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		repo: repo,
		log:  log.Named("accuracy"),
		now:  time.Now,
	}
}

// StoreFindItVerdict records one verdict for key and returns the attempt
// count including it. A correct verdict also marks the challenge solved.
// Once solved, nothing is recorded and the frozen count is returned.
func (t *Tracker) StoreFindItVerdict(ctx context.Context, key string, correct bool, selected verdict.Selection) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	solved, err := t.repo.FindItSolved(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("check solved: %w", err)
	}
	if !solved {
		if err := t.record(ctx, key, correct, selected); err != nil {
			return 0, err
		}
	}

	attempts, err := t.repo.FindItAttempts(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	if correct && !solved {
		t.log.Info("find it phase solved",
			zap.String("challenge", key),
			zap.Int("attempts", attempts),
			zap.Float64("accuracy", Ratio(attempts)))
	}
	return attempts, nil
}

// record appends the verdict and marks a correct one as the solve. Callers
// hold t.mu.
func (t *Tracker) record(ctx context.Context, key string, correct bool, selected verdict.Selection) error {
	now := t.now().UTC()
	err := t.repo.AppendFindItVerdict(ctx, store.FindItVerdictData{
		ChallengeKey:  key,
		Verdict:       correct,
		SelectedLines: selected.Lines(),
		Timestamp:     now,
	})
	if err != nil {
		return fmt.Errorf("append verdict: %w", err)
	}
	if !correct {
		return nil
	}
	if _, err := t.repo.MarkFindItSolved(ctx, key, now); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}

// FindItAttempts returns how many verdicts have been recorded for key.
func (t *Tracker) FindItAttempts(ctx context.Context, key string) (int, error) {
	return t.repo.FindItAttempts(ctx, key)
}

// FindItAccuracy is 1/attempts for a solved challenge and 0 otherwise.
func (t *Tracker) FindItAccuracy(ctx context.Context, key string) (float64, error) {
	solved, err := t.repo.FindItSolved(ctx, key)
	if err != nil {
		return 0, err
	}
	if !solved {
		return 0, nil
	}
	attempts, err := t.repo.FindItAttempts(ctx, key)
	if err != nil {
		return 0, err
	}
	return Ratio(attempts), nil
}

// TotalFindItAccuracy averages the accuracy of every solved challenge.
// Returns 0 when nothing is solved.
func (t *Tracker) TotalFindItAccuracy(ctx context.Context) (float64, error) {
	summaries, err := t.repo.FindItSummaries(ctx)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for _, s := range summaries {
		if !s.Solved {
			continue
		}
		sum += Ratio(s.Attempts)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

// Summaries returns the per-challenge history.
func (t *Tracker) Summaries(ctx context.Context) ([]store.FindItSummary, error) {
	return t.repo.FindItSummaries(ctx)
}

// Reset forgets the history of key, or of every challenge when key is empty.
func (t *Tracker) Reset(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repo.ResetFindIt(ctx, key)
}

// Ratio is the accuracy of a challenge solved after attempts tries: 1 for a
// first-try solve, 0 when there are no attempts.
func Ratio(attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return 1 / float64(attempts)
}

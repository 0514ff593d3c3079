// Package app wires the findit components together from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/juiceshop/findit/internal/accuracy"
	"github.com/juiceshop/findit/internal/auth"
	"github.com/juiceshop/findit/internal/challenges"
	"github.com/juiceshop/findit/internal/config"
	"github.com/juiceshop/findit/internal/findit"
	"github.com/juiceshop/findit/internal/reviews"
	"github.com/juiceshop/findit/internal/server"
	"github.com/juiceshop/findit/internal/snippets"
	"github.com/juiceshop/findit/internal/store"
)

// Options holds the dependencies the app is built from.
type Options struct {
	Config config.Config
	Store  *store.Store
	Logger *zap.Logger
}

// App is a fully wired findit instance.
type App struct {
	cfg config.Config
	log *zap.Logger

	Snippets *snippets.Repository
	Tracker  *accuracy.Tracker
	FindIt   *findit.Service
	Reviews  *reviews.Service
	Users    *auth.Users
	Server   *server.Server
}

// New builds an App. The store stays owned by the caller.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config

	repo := snippets.NewRepository(cfg.Snippets.Sources, log)
	tracker := accuracy.NewTracker(opts.Store.VerdictRepo(), log)
	fi := findit.NewService(repo, challenges.NewLoader(cfg.Snippets.InfoDir), tracker, log)
	rv := reviews.NewService(opts.Store.ReviewRepo(), log)
	users := auth.NewUsers(cfg.Users)

	return &App{
		cfg:      cfg,
		log:      log,
		Snippets: repo,
		Tracker:  tracker,
		FindIt:   fi,
		Reviews:  rv,
		Users:    users,
		Server:   server.New(cfg.Server, fi, rv, users, log),
	}
}

// Run loads the snippets, then serves HTTP (and watches the sources when
// enabled) until ctx is done or one of them fails.
func (a *App) Run(ctx context.Context) error {
	// A broken snippet is reported per request, so it does not stop startup.
	if err := a.Snippets.Reload(ctx); err != nil {
		a.log.Warn("initial snippet load failed", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx)
	})
	if a.cfg.Snippets.Watch {
		g.Go(func() error {
			if err := a.Snippets.Watch(gctx); err != nil {
				return fmt.Errorf("watch snippets: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

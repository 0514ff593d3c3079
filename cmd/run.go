package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juiceshop/findit/internal/app"
	"github.com/juiceshop/findit/internal/config"
	"github.com/juiceshop/findit/internal/logging"
	"github.com/juiceshop/findit/internal/store"
)

// env is what every subcommand works with. close releases the store and
// flushes the logger.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	store *store.Store
	app   *app.App
}

func (e *env) close() {
	e.store.Close()
	_ = e.log.Sync()
}

// openEnv loads config, applies overrides, builds the logger, opens the
// store and wires the app.
func openEnv(cmd *cobra.Command, overrides ...func(*config.Config)) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &env{
		cfg:   cfg,
		log:   log,
		store: st,
		app:   app.New(app.Options{Config: cfg, Store: st, Logger: log}),
	}, nil
}

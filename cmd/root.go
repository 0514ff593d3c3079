package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juiceshop/findit/internal/config"
	"github.com/juiceshop/findit/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "findit",
	Short:        "Code challenge \"find it\" server",
	Long:         "findit serves vulnerable code snippets, judges which lines a player marks as vulnerable and hands out hints.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "findit.yml", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FINDIT_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snippetsCmd)
	rootCmd.AddCommand(verdictCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the file named by --config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then store.path from the config (which FINDIT_DB overrides), then the
// default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

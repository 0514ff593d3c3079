package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juiceshop/findit/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		watch, _ := cmd.Flags().GetBool("watch")

		e, err := openEnv(cmd, func(cfg *config.Config) {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if watch {
				cfg.Snippets.Watch = true
			}
		})
		if err != nil {
			return err
		}
		defer e.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e.log.Info("starting findit",
			zap.String("version", version),
			zap.String("addr", e.cfg.Server.Addr),
			zap.Strings("sources", e.cfg.Snippets.Sources))
		return e.app.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr and FINDIT_ADDR)")
	serveCmd.Flags().Bool("watch", false, "Reload snippets when source files change")
}

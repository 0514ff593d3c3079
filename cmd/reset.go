package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [challenge]",
	Short: "Forget recorded verdicts for one challenge or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if len(args) == 0 && !all {
			return fmt.Errorf("name a challenge or pass --all")
		}
		if len(args) == 1 && all {
			return fmt.Errorf("use a challenge or --all, not both")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		if err := e.app.Tracker.Reset(cmd.Context(), key); err != nil {
			return fmt.Errorf("reset: %w", err)
		}

		if key == "" {
			fmt.Println("Reset all challenges.")
		} else {
			fmt.Printf("Reset %s.\n", key)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Reset every challenge")
}

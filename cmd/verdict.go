package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juiceshop/findit/internal/verdict"
)

var verdictCmd = &cobra.Command{
	Use:   "verdict <challenge>",
	Short: "Submit a line selection for a challenge",
	Long:  "Submit the lines you think are vulnerable, e.g. `findit verdict loginAdminChallenge --lines 3,5`. The attempt is recorded like one made over HTTP.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var selected verdict.Selection
		if cmd.Flags().Changed("lines") {
			raw, _ := cmd.Flags().GetString("lines")
			lines, err := verdict.ParseLines(raw)
			if err != nil {
				return err
			}
			selected = verdict.Select(lines...)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.app.FindIt.CheckVulnLines(cmd.Context(), args[0], selected)
		if err != nil {
			return err
		}

		if res.Verdict {
			fmt.Println("\033[32m✓ Correct!\033[0m")
			return nil
		}
		fmt.Println("\033[31m✗ Wrong.\033[0m")
		if res.Hint != "" {
			fmt.Printf("Hint: %s\n", res.Hint)
		}
		return nil
	},
}

func init() {
	verdictCmd.Flags().String("lines", "", "Comma-separated line numbers (omit to submit no selection)")
}

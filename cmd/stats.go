package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juiceshop/findit/internal/accuracy"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show find-it attempts and accuracy per challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		summaries, err := e.app.Tracker.Summaries(ctx)
		if err != nil {
			return fmt.Errorf("query summaries: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Println("No verdicts recorded.")
			return nil
		}

		fmt.Printf("%-40s  %8s  %8s  %-19s\n", "Challenge", "Attempts", "Accuracy", "Solved")
		fmt.Println(strings.Repeat("─", 82))
		for _, s := range summaries {
			solved := "-"
			acc := "-"
			if s.Solved {
				solved = s.SolvedAt.Local().Format("2006-01-02 15:04:05")
				acc = fmt.Sprintf("%.0f%%", 100*accuracy.Ratio(s.Attempts))
			}
			fmt.Printf("%-40s  %8d  %8s  %-19s\n", s.ChallengeKey, s.Attempts, acc, solved)
		}

		total, err := e.app.Tracker.TotalFindItAccuracy(ctx)
		if err != nil {
			return fmt.Errorf("total accuracy: %w", err)
		}
		fmt.Printf("\nOverall accuracy: %.0f%%\n", total*100)
		return nil
	},
}

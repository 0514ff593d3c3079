package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juiceshop/findit/internal/verdict"
)

var snippetsCmd = &cobra.Command{
	Use:   "snippets",
	Short: "Browse code challenge snippets",
}

var snippetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every challenge that has a code snippet",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		keys, err := e.app.FindIt.Keys(ctx)
		if err != nil {
			return fmt.Errorf("load snippets: %w", err)
		}
		if len(keys) == 0 {
			fmt.Println("No code challenges found.")
			return nil
		}

		fmt.Printf("%-40s  %-12s  %s\n", "Challenge", "Vuln lines", "File")
		fmt.Println(strings.Repeat("─", 90))
		for _, k := range keys {
			c, err := e.app.FindIt.Snippet(ctx, k)
			if err != nil {
				return err
			}
			fmt.Printf("%-40s  %-12s  %s\n", k, verdict.JoinLines(c.VulnLines), c.File)
		}
		fmt.Printf("\n%d challenges\n", len(keys))
		return nil
	},
}

var snippetsShowCmd = &cobra.Command{
	Use:   "show <challenge>",
	Short: "Print a challenge snippet with line numbers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		c, err := e.app.FindIt.Snippet(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		reveal, _ := cmd.Flags().GetBool("reveal")
		vuln := lineSet(c.VulnLines)
		neutral := lineSet(c.NeutralLines)
		for i, line := range strings.Split(c.Snippet, "\n") {
			n := i + 1
			mark := " "
			if reveal {
				switch {
				case vuln[n]:
					mark = "*"
				case neutral[n]:
					mark = "~"
				}
			}
			fmt.Printf("%s%4d  %s\n", mark, n, line)
		}
		return nil
	},
}

func lineSet(lines []int) map[int]bool {
	set := make(map[int]bool, len(lines))
	for _, l := range lines {
		set[l] = true
	}
	return set
}

func init() {
	snippetsShowCmd.Flags().Bool("reveal", false, "Mark vulnerable (*) and neutral (~) lines")

	snippetsCmd.AddCommand(snippetsListCmd)
	snippetsCmd.AddCommand(snippetsShowCmd)
}

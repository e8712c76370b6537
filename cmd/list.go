package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/model"
)

var listCompetitions []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringSliceVar(&listCompetitions, "competition", nil, "only these competition codes (e.g. epl,laliga)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches(listCompetitions...)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'squawka parse <feed.xml>' or 'squawka export' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-8s  %-10s  %-22s  %5s  %-22s  %s\n",
		"COMP", "MATCH", "DATE", "HOME", "SCORE", "AWAY", "ATT")
	fmt.Fprintf(os.Stdout, "%-10s  %-8s  %-10s  %-22s  %5s  %-22s  %s\n",
		"──────────", "────────", "──────────", "──────────────────────", "─────", "──────────────────────", "───")
	for _, m := range matches {
		comp := m.Competition
		if name, ok := model.Competitions[comp]; ok && len(name) <= 10 {
			comp = name
		}
		score := fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore)
		fmt.Fprintf(os.Stdout, "%-10s  %-8s  %-10s  %-22s  %5s  %-22s  %d\n",
			comp, m.MatchID, m.Kickoff.Format("2006-01-02"), trunc(m.HomeTeam, 22), score, trunc(m.AwayTeam, 22), m.Attempts)
	}
	return nil
}

func trunc(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

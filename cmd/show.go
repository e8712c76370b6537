package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/report"
)

var (
	showTeam    string
	showAttempt int
)

var showCmd = &cobra.Command{
	Use:   "show <competition> <match-id>",
	Short: "Show stored attempts of a match",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showTeam, "team", "", "highlight attempts by this team id")
	showCmd.Flags().IntVar(&showAttempt, "attempt", -1, "print the build-up of this attempt")
}

func runShow(cmd *cobra.Command, args []string) error {
	comp, matchID := args[0], args[1]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.GetMatch(comp, matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "No match %s/%s stored\n", comp, matchID)
		return nil
	}

	attempts, err := db.GetAttempts(comp, matchID)
	if err != nil {
		return fmt.Errorf("get attempts: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, m.Background, m.HomeTeam, m.AwayTeam)
	if showAttempt < 0 {
		report.PrintAttemptTable(os.Stdout, attempts, showTeam)
		return nil
	}
	for i, a := range attempts {
		if a.Features.AttemptIdx == showAttempt {
			report.PrintAttemptTable(os.Stdout, attempts[i:i+1], showTeam)
			fmt.Fprintln(os.Stdout)
			report.PrintSequenceTable(os.Stdout, a.Seq)
			return nil
		}
	}
	return fmt.Errorf("attempt %d not stored for %s/%s", showAttempt, comp, matchID)
}

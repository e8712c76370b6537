package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/aggregator"
	"github.com/pable/squawka-xg/internal/report"
)

var (
	parseTeam    string
	parseAttempt int
	parseNoStore bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <path|url>",
	Short: "Sequence every attempt in a match feed and store its features",
	Long: `Load a match feed (stored document, local file or URL), rebuild the
build-up to every goal attempt, compute its features and store them.

Examples:
  squawka parse data/epl_4071.xml
  squawka parse --breaks 2 --attempt 3 http://s3-irl-epl.squawka.com/dp/ingame/4071`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseTeam, "team", "", "highlight attempts by this team id")
	parseCmd.Flags().IntVar(&parseAttempt, "attempt", -1, "also print the build-up of this attempt")
	parseCmd.Flags().BoolVar(&parseNoStore, "no-store", false, "do not write results to the database")
}

func runParse(cmd *cobra.Command, args []string) error {
	src := args[0]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Parsing %s...\n", src)
	m, err := loadMatch(cmd.Context(), db, src)
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}

	res, err := aggregator.Aggregate(m, sequenceOptions())
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	home, away, err := teamNames(m)
	if err != nil {
		return fmt.Errorf("team names: %w", err)
	}

	if !parseNoStore {
		if err := db.InsertMatchXG(res, home, away); err != nil {
			return fmt.Errorf("store match: %w", err)
		}
	}

	report.PrintMatchSummary(os.Stdout, res.Background, home, away)
	report.PrintAttemptTable(os.Stdout, res.Attempts, parseTeam)
	if parseAttempt >= 0 {
		if parseAttempt >= len(res.Attempts) {
			return fmt.Errorf("attempt %d out of range (match has %d)", parseAttempt, len(res.Attempts))
		}
		fmt.Fprintf(os.Stdout, "\nAttempt %d build-up:\n", parseAttempt)
		report.PrintSequenceTable(os.Stdout, res.Attempts[parseAttempt].Seq)
	}
	return nil
}

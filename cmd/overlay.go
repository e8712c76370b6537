package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/aggregator"
	"github.com/pable/squawka-xg/internal/report"
)

var (
	overlayAttempt int
	overlayOut     string
)

var overlayCmd = &cobra.Command{
	Use:   "overlay <path|url>",
	Short: "Write pitch-plot JSON for a match's attempts",
	Long: `Emit, per attempt and per event category, the event coordinates with team
and player names and the side's kit colour, ready for a pitch plotter.`,
	Args: cobra.ExactArgs(1),
	RunE: runOverlay,
}

func init() {
	overlayCmd.Flags().IntVar(&overlayAttempt, "attempt", -1, "only this attempt")
	overlayCmd.Flags().StringVarP(&overlayOut, "out", "o", "-", "output path (- for stdout)")
}

func runOverlay(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := loadMatch(cmd.Context(), db, args[0])
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}
	res, err := aggregator.Aggregate(m, sequenceOptions())
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	o, err := report.BuildOverlay(res, m, overlayAttempt)
	if err != nil {
		return fmt.Errorf("build overlay: %w", err)
	}
	if overlayAttempt >= 0 && len(o.Attempts) == 0 {
		return fmt.Errorf("attempt %d out of range (match has %d)", overlayAttempt, len(res.Attempts))
	}

	var w io.Writer = os.Stdout
	if overlayOut != "-" {
		f, err := os.Create(overlayOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", overlayOut, err)
		}
		defer f.Close()
		w = f
	}
	return report.WriteOverlay(w, o)
}

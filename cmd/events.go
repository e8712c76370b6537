package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/model"
)

var eventsCategory string

var eventsCmd = &cobra.Command{
	Use:   "events <path|url>",
	Short: "Print the match's timed events in clock order",
	Long: `Print every timed event of a match feed in (mins, secs) order. With
--category only that filter is shown, including untimed events. Without it,
the filters present in the document are listed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsCategory, "category", "c", "", "only this category, e.g. goals_attempts")
}

func runEvents(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := loadMatch(cmd.Context(), db, args[0])
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("CLOCK", "CATEGORY", "TEAM", "PLAYER", "WHERE", "TYPE")

	n := 0
	if eventsCategory != "" {
		c, err := model.ParseCategory(eventsCategory)
		if err != nil {
			return err
		}
		evs, err := m.Events(c)
		if err != nil {
			return err
		}
		for _, e := range evs {
			table.Append(eventRow(model.TimedEvent{Category: c, Event: e})...)
			n++
		}
	} else {
		fmt.Fprintf(os.Stdout, "Filters: %v\n\n", m.Filters())
		sorted, err := m.SortedTimedEvents()
		if err != nil {
			return err
		}
		for _, te := range sorted {
			table.Append(eventRow(te)...)
			n++
		}
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d events)\n", n)
	return nil
}

func eventRow(te model.TimedEvent) []any {
	clock := "—"
	if model.IsTimed(te.Event) {
		mins, secs := te.Clock()
		clock = fmt.Sprintf("%d:%02d", mins, secs)
	}
	where := "—"
	if s, ok := te.Event.Coord("start"); ok {
		where = fmt.Sprintf("%.1f,%.1f", s.X, s.Y)
		if e, ok := te.Event.Coord("end"); ok {
			where += fmt.Sprintf(" → %.1f,%.1f", e.X, e.Y)
		}
	} else if l, ok := te.Event.Coord("loc"); ok {
		where = fmt.Sprintf("%.1f,%.1f", l.X, l.Y)
	}
	return []any{clock, string(te.Category), model.TeamID(te.Event), te.Event.String("player_id"), where, te.Event.String("type")}
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the xG database",
	Long: `Run an arbitrary SQL query against the xG database and print results as a table.

Schema overview:
  documents(url, data BLOB, fetched_at)
  matches(competition, match_id, source, kickoff, season, venue,
    home_team_id, away_team_id, home_team, away_team, home_score, away_score)
  attempts(competition, match_id, attempt_idx, team_id, player_id, is_home,
    headed, is_goal, distance, angle, possession, mins, secs, seq_len)
  attempt_events(competition, match_id, attempt_idx, idx, category, mins, secs,
    x, y, end_x, end_y, has_end, team_id, player_id, action_type, type, flipped)
  export_runs(id, started_at, finished_at, output, documents, failed, attempts)

Note: ids are stored as TEXT. Use quotes: WHERE team_id = '31'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}


package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/squawka-xg/internal/model"
)

var (
	cTitle = color.New(color.Bold)
	cScore = color.New(color.FgGreen, color.Bold)
	cMuted = color.New(color.Faint)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, bg model.Background, homeName, awayName string) {
	fmt.Fprintln(w)
	cTitle.Fprintf(w, "%s %s", bg.Competition, bg.MatchID)
	fmt.Fprintf(w, "  |  %s  |  %s ", bg.Kickoff.Format("2006-01-02 15:04"), homeName)
	cScore.Fprintf(w, "%d – %d", bg.HomeScore, bg.AwayScore)
	fmt.Fprintf(w, " %s  |  Season %d", awayName, bg.Season)
	if bg.Venue != "" {
		cMuted.Fprintf(w, "  |  %s", bg.Venue)
	}
	fmt.Fprint(w, "\n\n")
}

// PrintAttemptTable prints one row per attempt. If focusTeam is non-empty,
// that team's rows are marked with ">".
func PrintAttemptTable(w io.Writer, attempts []model.XGAttempt, focusTeam string) {
	table := newTable(w)
	table.Header(" ", "#", "CLOCK", "TEAM", "PLAYER", "SIDE", "GOAL", "HEAD", "DIST_M", "ANGLE", "POSS%", "SEQ")

	for _, xa := range attempts {
		f := xa.Features
		marker := " "
		if focusTeam != "" && f.TeamID == focusTeam {
			marker = ">"
		}
		side := "A"
		if f.IsHome {
			side = "H"
		}
		table.Append(
			marker,
			strconv.Itoa(f.AttemptIdx),
			fmt.Sprintf("%d:%02d", f.Mins, f.Secs),
			f.TeamID,
			f.PlayerID,
			side,
			yesNo(f.IsGoal),
			yesNo(f.Headed),
			fmt.Sprintf("%.1f", f.Distance),
			fmt.Sprintf("%.1f°", f.Angle),
			pct(f.Possession),
			strconv.Itoa(f.SeqLen),
		)
	}
	table.Render()
}

// PrintSequenceTable prints the build-up events of a single attempt.
func PrintSequenceTable(w io.Writer, seq []model.SeqRow) {
	table := newTable(w)
	table.Header("IDX", "CLOCK", "CATEGORY", "TEAM", "PLAYER", "FROM", "TO", "TYPE", "FLIP")

	for _, r := range seq {
		to := "—"
		if r.HasEnd {
			to = fmt.Sprintf("%.1f,%.1f", r.EndX, r.EndY)
		}
		typ := r.Type
		if r.ActionType != "" {
			typ = r.ActionType + "/" + typ
		}
		table.Append(
			strconv.Itoa(r.Idx),
			fmt.Sprintf("%d:%02d", r.Mins, r.Secs),
			r.Category,
			r.TeamID,
			r.PlayerID,
			fmt.Sprintf("%.1f,%.1f", r.X, r.Y),
			to,
			typ,
			yesNo(r.Flipped),
		)
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%.0f%%", v)
}

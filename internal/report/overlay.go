package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pable/squawka-xg/internal/model"
)

// Kit colours used to tell the two sides apart on a pitch plot.
const (
	HomeColour = "#130c05"
	AwayColour = "#ffb204"
)

// Names resolves feed ids to their team and player records.
type Names interface {
	Team(id string) (model.Event, error)
	Player(id string) (model.Event, error)
}

// OverlayPoint is one plotted event.
type OverlayPoint struct {
	Idx        int          `json:"idx"`
	Clock      string       `json:"clock"`
	From       model.Coord  `json:"from"`
	To         *model.Coord `json:"to,omitempty"`
	TeamID     string       `json:"team_id"`
	TeamName   string       `json:"team_name"`
	PlayerID   string       `json:"player_id,omitempty"`
	PlayerName string       `json:"player_name,omitempty"`
	Colour     string       `json:"colour"`
	Flipped    bool         `json:"flipped"`
	Shot       bool         `json:"shot"`
}

// OverlayAttempt groups an attempt's points by category.
type OverlayAttempt struct {
	AttemptIdx int                       `json:"attempt_idx"`
	IsGoal     bool                      `json:"is_goal"`
	Distance   float64                   `json:"distance"`
	Angle      float64                   `json:"angle"`
	Categories map[string][]OverlayPoint `json:"categories"`
}

// Overlay is the plotting payload for one match.
type Overlay struct {
	Competition string           `json:"competition"`
	MatchID     string           `json:"match_id"`
	HomeTeam    string           `json:"home_team"`
	AwayTeam    string           `json:"away_team"`
	Attempts    []OverlayAttempt `json:"attempts"`
}

// BuildOverlay resolves names for every attempt in res. If only is
// non-negative, just that attempt is included.
func BuildOverlay(res *model.MatchXG, names Names, only int) (*Overlay, error) {
	bg := res.Background
	teams := map[string]string{}
	teamName := func(id string) (string, error) {
		if n, ok := teams[id]; ok {
			return n, nil
		}
		t, err := names.Team(id)
		if err != nil {
			return "", fmt.Errorf("team %s: %w", id, err)
		}
		teams[id] = t.String("long_name")
		return teams[id], nil
	}

	out := &Overlay{Competition: bg.Competition, MatchID: bg.MatchID}
	var err error
	if out.HomeTeam, err = teamName(bg.HomeTeamID); err != nil {
		return nil, err
	}
	if out.AwayTeam, err = teamName(bg.AwayTeamID); err != nil {
		return nil, err
	}

	for _, xa := range res.Attempts {
		if only >= 0 && xa.Features.AttemptIdx != only {
			continue
		}
		oa := OverlayAttempt{
			AttemptIdx: xa.Features.AttemptIdx,
			IsGoal:     xa.Features.IsGoal,
			Distance:   xa.Features.Distance,
			Angle:      xa.Features.Angle,
			Categories: map[string][]OverlayPoint{},
		}
		for i, r := range xa.Seq {
			p := OverlayPoint{
				Idx:      r.Idx,
				Clock:    fmt.Sprintf("%d:%02d", r.Mins, r.Secs),
				From:     model.Coord{X: r.X, Y: r.Y},
				TeamID:   r.TeamID,
				PlayerID: r.PlayerID,
				Colour:   AwayColour,
				Flipped:  r.Flipped,
				Shot:     i == len(xa.Seq)-1,
			}
			if r.HasEnd {
				p.To = &model.Coord{X: r.EndX, Y: r.EndY}
			}
			if r.TeamID == bg.HomeTeamID {
				p.Colour = HomeColour
			}
			if p.TeamName, err = teamName(r.TeamID); err != nil {
				return nil, err
			}
			if r.PlayerID != "" {
				pl, err := names.Player(r.PlayerID)
				if err != nil {
					return nil, fmt.Errorf("player %s: %w", r.PlayerID, err)
				}
				p.PlayerName = pl.String("name")
			}
			oa.Categories[r.Category] = append(oa.Categories[r.Category], p)
		}
		out.Attempts = append(out.Attempts, oa)
	}
	return out, nil
}

// WriteOverlay writes o as indented JSON.
func WriteOverlay(w io.Writer, o *Overlay) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	return nil
}

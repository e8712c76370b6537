package aggregator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pable/squawka-xg/internal/model"
	"github.com/pable/squawka-xg/internal/squawka"
)

// Pitch scaling from percent-of-pitch units to meters.
const (
	LengthScale = 1.05 // x axis
	WidthScale  = 0.6  // y axis

	goalWidthMeters = 7.32
)

var (
	// GoalCentre is the centre of the attacked goal in percent-of-pitch units.
	GoalCentre = model.Coord{X: 100, Y: 50}

	postOffset = goalWidthMeters / WidthScale / 2
	leftPost   = model.Coord{X: 100, Y: 50 - postOffset}
	rightPost  = model.Coord{X: 100, Y: 50 + postOffset}
)

// XGHeader is the fixed column order of an xG row.
var XGHeader = []string{
	"seq",
	"competition", "match_id", "kickoff", "home_team_id", "away_team_id",
	"home_score", "away_score", "season",
	"attempt_idx", "team_id", "player_id", "is_home", "headed", "is_goal",
	"distance", "angle", "possession", "mins", "secs", "seq_len",
}

// Aggregate sequences every attempt in the match and computes its features.
func Aggregate(m *squawka.Match, opts squawka.SequenceOptions) (*model.MatchXG, error) {
	if m == nil {
		return nil, fmt.Errorf("nil Match")
	}

	bg, err := BackgroundInfo(m)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	attempts, err := m.Attempts(opts)
	if err != nil {
		return nil, fmt.Errorf("sequence attempts: %w", err)
	}

	out := &model.MatchXG{Source: m.Source(), Background: bg}
	for i, a := range attempts {
		feats, err := ExtractFeatures(m, bg, i, a)
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", i, err)
		}
		out.Attempts = append(out.Attempts, model.XGAttempt{
			Attempt:  a,
			Seq:      SequenceRows(a),
			Features: feats,
		})
	}
	return out, nil
}

// BackgroundInfo collects the per-match fields shared by every attempt.
func BackgroundInfo(m *squawka.Match) (model.Background, error) {
	comp, matchID, err := m.Identity()
	if err != nil {
		return model.Background{}, err
	}
	kickoff, err := m.Kickoff()
	if err != nil {
		return model.Background{}, err
	}
	home, err := m.TeamHome()
	if err != nil {
		return model.Background{}, err
	}
	away, err := m.TeamAway()
	if err != nil {
		return model.Background{}, err
	}
	hs, as, err := m.Score()
	if err != nil {
		return model.Background{}, err
	}
	return model.Background{
		Competition: comp,
		MatchID:     matchID,
		Kickoff:     kickoff,
		HomeTeamID:  home.String("id"),
		AwayTeamID:  away.String("id"),
		HomeScore:   hs,
		AwayScore:   as,
		Season:      Season(kickoff),
		Venue:       m.Venue(),
	}, nil
}

// Season returns the starting year of the season containing kickoff.
// Seasons roll over in July.
func Season(kickoff time.Time) int {
	if kickoff.Month() >= time.July {
		return kickoff.Year()
	}
	return kickoff.Year() - 1
}

// ExtractFeatures computes the scalar features of one attempt.
func ExtractFeatures(m *squawka.Match, bg model.Background, idx int, a model.Attempt) (model.Features, error) {
	shot := a.Shot().Event
	team := model.TeamID(shot)
	mins, secs := a.Shot().Clock()

	f := model.Features{
		AttemptIdx: idx,
		TeamID:     team,
		PlayerID:   shot.String("player_id"),
		IsHome:     team == bg.HomeTeamID,
		Headed:     shot.Bool("headed"),
		IsGoal:     shot.String("type") == "goal",
		Mins:       mins,
		Secs:       secs,
		SeqLen:     len(a),
	}

	if origin, ok := ShotOrigin(shot); ok {
		f.Distance = Distance(origin)
		f.Angle = ShotAngle(origin)
	}

	pos, err := m.Possession(mins, secs, team, model.IsInjuryTime(shot))
	switch {
	case errors.Is(err, squawka.ErrNotFound):
		f.Possession = math.NaN()
	case err != nil:
		return model.Features{}, err
	default:
		f.Possession = pos
	}
	return f, nil
}

// ShotOrigin returns where the shot was taken from: start, else loc.
func ShotOrigin(shot model.Event) (model.Coord, bool) {
	if c, ok := shot.Coord("start"); ok {
		return c, true
	}
	return shot.Coord("loc")
}

// meters converts a percent-of-pitch offset into meters.
func meters(dx, dy float64) (float64, float64) {
	return dx * LengthScale, dy * WidthScale
}

// Distance is the distance in meters from p to the goal centre.
func Distance(p model.Coord) float64 {
	dx, dy := meters(GoalCentre.X-p.X, GoalCentre.Y-p.Y)
	return math.Hypot(dx, dy)
}

// ShotAngle is the angle in degrees, seen from the goal centre, between p and
// the post on p's side of the goal. When both refs are given it is the angle
// between refs[0] and refs[1] instead.
func ShotAngle(p model.Coord, refs ...model.Coord) float64 {
	a, b := p, nearPost(p)
	if len(refs) >= 2 {
		a, b = refs[0], refs[1]
	}
	return angleAt(GoalCentre, a, b)
}

func nearPost(p model.Coord) model.Coord {
	if p.Y > GoalCentre.Y {
		return rightPost
	}
	return leftPost
}

// angleAt is the angle at vertex v between a and b, in meters-scaled space.
func angleAt(v, a, b model.Coord) float64 {
	ax, ay := meters(a.X-v.X, a.Y-v.Y)
	bx, by := meters(b.X-v.X, b.Y-v.Y)
	if (ax == 0 && ay == 0) || (bx == 0 && by == 0) {
		return 0
	}
	theta := math.Atan2(ax*by-ay*bx, ax*bx+ay*by)
	return math.Abs(theta) * 180 / math.Pi
}

// SequenceRows flattens an attempt into one row per event.
func SequenceRows(a model.Attempt) []model.SeqRow {
	rows := make([]model.SeqRow, 0, len(a))
	for i, te := range a {
		mins, secs := te.Clock()
		r := model.SeqRow{
			Idx:        i,
			Category:   string(te.Category),
			Mins:       mins,
			Secs:       secs,
			TeamID:     model.TeamID(te.Event),
			PlayerID:   te.Event.String("player_id"),
			ActionType: te.Event.String("action_type"),
			Type:       te.Event.String("type"),
			Flipped:    te.Flipped,
		}
		if p, ok := ShotOrigin(te.Event); ok {
			r.X, r.Y = p.X, p.Y
		}
		if end, ok := te.Event.Coord("end"); ok {
			r.EndX, r.EndY, r.HasEnd = end.X, end.Y, true
		}
		rows = append(rows, r)
	}
	return rows
}

// Flatten renders every attempt of a match as an xG row keyed by XGHeader.
func Flatten(res *model.MatchXG) ([]model.Row, error) {
	bg := res.Background
	rows := make([]model.Row, 0, len(res.Attempts))
	for _, xa := range res.Attempts {
		seq, err := json.Marshal(xa.Seq)
		if err != nil {
			return nil, fmt.Errorf("encode sequence: %w", err)
		}
		f := xa.Features
		rows = append(rows, model.Row{
			"seq":          string(seq),
			"competition":  bg.Competition,
			"match_id":     bg.MatchID,
			"kickoff":      bg.Kickoff.Format(time.RFC3339),
			"home_team_id": bg.HomeTeamID,
			"away_team_id": bg.AwayTeamID,
			"home_score":   strconv.Itoa(bg.HomeScore),
			"away_score":   strconv.Itoa(bg.AwayScore),
			"season":       strconv.Itoa(bg.Season),
			"attempt_idx":  strconv.Itoa(f.AttemptIdx),
			"team_id":      f.TeamID,
			"player_id":    f.PlayerID,
			"is_home":      boolStr(f.IsHome),
			"headed":       boolStr(f.Headed),
			"is_goal":      boolStr(f.IsGoal),
			"distance":     floatStr(f.Distance),
			"angle":        floatStr(f.Angle),
			"possession":   floatStr(f.Possession),
			"mins":         strconv.Itoa(f.Mins),
			"secs":         strconv.Itoa(f.Secs),
			"seq_len":      strconv.Itoa(f.SeqLen),
		})
	}
	return rows, nil
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// floatStr formats to 4 decimals; NaN becomes an empty cell.
func floatStr(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

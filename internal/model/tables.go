package model

import "fmt"

// Category is a named bucket of same-schema feed events.
type Category string

const (
	ActionAreas   Category = "action_areas"
	AllPasses     Category = "all_passes"
	BallsOut      Category = "balls_out"
	BlockedEvents Category = "blocked_events"
	Cards         Category = "cards"
	Clearances    Category = "clearances"
	Corners       Category = "corners"
	Crosses       Category = "crosses"
	ExtraHeatMaps Category = "extra_heat_maps"
	Fouls         Category = "fouls"
	GoalKeeping   Category = "goal_keeping"
	GoalsAttempts Category = "goals_attempts"
	HeadedDuals   Category = "headed_duals"
	Interceptions Category = "interceptions"
	KeeperSweeper Category = "keepersweeper"
	Offside       Category = "offside"
	OneOnOnes     Category = "oneonones"
	SetPieces     Category = "setpieces"
	Tackles       Category = "tackles"
	TakeOns       Category = "takeons"
)

// TimeSliceEvents lists every category whose events are grouped by time slice.
var TimeSliceEvents = []Category{
	ActionAreas,
	AllPasses,
	BallsOut,
	BlockedEvents,
	Cards,
	Clearances,
	Corners,
	Crosses,
	ExtraHeatMaps,
	Fouls,
	GoalKeeping,
	GoalsAttempts,
	HeadedDuals,
	Interceptions,
	KeeperSweeper,
	Offside,
	OneOnOnes,
	SetPieces,
	Tackles,
	TakeOns,
}

var categorySet = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(TimeSliceEvents))
	for _, c := range TimeSliceEvents {
		m[c] = struct{}{}
	}
	return m
}()

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categorySet[c]
	return ok
}

func (c Category) String() string { return string(c) }

// ParseCategory validates name against TimeSliceEvents.
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Competitions maps Squawka competition ids to display names.
var Competitions = map[string]string{
	"4":   "World Cup",
	"5":   "Champions League",
	"6":   "Europa League",
	"8":   "English Barclays Premier League",
	"9":   "Dutch Eredivisie",
	"10":  "Football League Championship",
	"21":  "Italian Serie A",
	"22":  "German Bundesliga",
	"23":  "Spanish La Liga",
	"24":  "French Ligue 1",
	"98":  "US Major League Soccer",
	"114": "Turkish Super Lig",
	"129": "Russian Premier League",
	"199": "Mexican Liga MX - Apertura",
	"214": "Australian A-League",
	"363": "Brazilian Serie A",
	"385": "Mexican Liga MX - Clausura",
}

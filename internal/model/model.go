package model

import (
	"errors"
	"time"
)

// ErrUnknownCategory is returned when a category name is not one of TimeSliceEvents.
var ErrUnknownCategory = errors.New("unknown category")

// Coord is a pitch location in percent-of-pitch units, [0,100]x[0,100].
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Flip mirrors c into the opposing team's frame of reference.
func Flip(c Coord) Coord {
	return Coord{X: 100 - c.X, Y: 100 - c.Y}
}

// Timeslice is the enclosing feed window of an event, in match minutes.
type Timeslice struct {
	From, To int
}

// ---- Raw events produced by the parser ----

// Event is one parsed feed node. Values are string, float64, int, bool,
// time.Time, Coord or Timeslice depending on the field's type class.
type Event map[string]any

// Has reports whether key is present.
func (e Event) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// String returns the string value of key, or "" when absent or not a string.
func (e Event) String(key string) string {
	s, _ := e[key].(string)
	return s
}

// Int returns the int value of key.
func (e Event) Int(key string) (int, bool) {
	v, ok := e[key].(int)
	return v, ok
}

// Float returns the float64 value of key. Ints are widened.
func (e Event) Float(key string) (float64, bool) {
	switch v := e[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Bool returns the bool value of key; absent means false.
func (e Event) Bool(key string) bool {
	b, _ := e[key].(bool)
	return b
}

// Coord returns the coordinate value of key.
func (e Event) Coord(key string) (Coord, bool) {
	c, ok := e[key].(Coord)
	return c, ok
}

// Time returns the date value of key.
func (e Event) Time(key string) (time.Time, bool) {
	t, ok := e[key].(time.Time)
	return t, ok
}

// Clone returns a shallow copy. All value types stored in an Event are
// immutable values, so a shallow copy is independent of the original.
func (e Event) Clone() Event {
	out := make(Event, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// coordKeys are the location fields rewritten by FlipCoords.
var coordKeys = [...]string{"start", "end", "loc"}

// FlipCoords returns a copy of e with start, end and loc mirrored.
// e itself is never modified.
func FlipCoords(e Event) Event {
	out := e.Clone()
	for _, k := range coordKeys {
		if c, ok := out.Coord(k); ok {
			out[k] = Flip(c)
		}
	}
	return out
}

// TeamID returns the team the event belongs to: the "team" field, falling
// back to "team_id".
func TeamID(e Event) string {
	if v, ok := e["team"]; ok {
		s, _ := v.(string)
		return s
	}
	return e.String("team_id")
}

// IsLoc reports whether the event carries a location: a start+end pair or a
// single loc point.
func IsLoc(e Event) bool {
	return (e.Has("start") && e.Has("end")) || e.Has("loc")
}

// IsTimed reports whether the event has both match clock fields.
func IsTimed(e Event) bool {
	return e.Has("mins") && e.Has("secs")
}

// IsInjuryTime reports whether the feed marked the event as played in injury time.
func IsInjuryTime(e Event) bool {
	switch e.String("injurytime_play") {
	case "yes", "true", "1":
		return true
	}
	return false
}

// TimedEvent is an event carrying a match clock, tagged with its category.
type TimedEvent struct {
	Category Category
	Event    Event
	Flipped  bool // coordinates were mirrored into the attacking team's frame
}

// Clock returns the (mins, secs) ordering key.
func (t TimedEvent) Clock() (mins, secs int) {
	mins, _ = t.Event.Int("mins")
	secs, _ = t.Event.Int("secs")
	return
}

// Attempt is the build-up to a shot: located context events followed by
// exactly one goals_attempts event.
type Attempt []TimedEvent

// Shot returns the terminating goal attempt.
func (a Attempt) Shot() TimedEvent {
	return a[len(a)-1]
}

// Context returns the events preceding the shot.
func (a Attempt) Context() []TimedEvent {
	return a[:len(a)-1]
}

// ---- Derived rows ----

// Background is the per-match information repeated on every xG row.
type Background struct {
	Competition string
	MatchID     string
	Kickoff     time.Time
	HomeTeamID  string
	AwayTeamID  string
	HomeScore   int
	AwayScore   int
	Season      int
	Venue       string
}

// Features are the per-attempt scalar features.
type Features struct {
	AttemptIdx int
	TeamID     string
	PlayerID   string
	IsHome     bool
	Headed     bool
	IsGoal     bool
	Distance   float64 // meters from shot origin to goal centre
	Angle      float64 // degrees subtended by the goal posts
	Possession float64 // attacking team possession %, 0–100; NaN when the feed has no bucket
	Mins, Secs int
	SeqLen     int
}

// SeqRow is the flattened view of one event inside an attempt sequence.
type SeqRow struct {
	Idx        int     `json:"idx"`
	Category   string  `json:"category"`
	Mins       int     `json:"mins"`
	Secs       int     `json:"secs"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	EndX       float64 `json:"end_x,omitempty"`
	EndY       float64 `json:"end_y,omitempty"`
	HasEnd     bool    `json:"has_end"`
	TeamID     string  `json:"team_id"`
	PlayerID   string  `json:"player_id"`
	ActionType string  `json:"action_type,omitempty"`
	Type       string  `json:"type,omitempty"`
	Flipped    bool    `json:"flipped"`
}

// XGAttempt bundles one attempt with its derived features.
type XGAttempt struct {
	Attempt  Attempt
	Seq      []SeqRow
	Features Features
}

// MatchXG is the extraction result for one match document.
type MatchXG struct {
	Source     string
	Background Background
	Attempts   []XGAttempt
}

// Row is one serialized xG record keyed by column name.
type Row map[string]string

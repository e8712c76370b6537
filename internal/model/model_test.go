package model

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlip_Involution(t *testing.T) {
	f := func(x, y uint16) bool {
		c := Coord{X: float64(x%10001) / 100, Y: float64(y%10001) / 100}
		back := Flip(Flip(c))
		return math.Abs(back.X-c.X) < 1e-9 && math.Abs(back.Y-c.Y) < 1e-9
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestFlipCoords_CopiesEvent(t *testing.T) {
	e := Event{
		"start": Coord{X: 10, Y: 20},
		"end":   Coord{X: 30, Y: 40},
		"loc":   Coord{X: 0, Y: 100},
		"mins":  5,
	}
	f := FlipCoords(e)

	assert.Equal(t, Coord{X: 90, Y: 80}, f["start"])
	assert.Equal(t, Coord{X: 70, Y: 60}, f["end"])
	assert.Equal(t, Coord{X: 100, Y: 0}, f["loc"])
	assert.Equal(t, 5, f["mins"])
	assert.Equal(t, Coord{X: 10, Y: 20}, e["start"], "original left untouched")
	assert.Equal(t, e, FlipCoords(f))
}

func TestTeamID(t *testing.T) {
	assert.Equal(t, "1", TeamID(Event{"team": "1", "team_id": "2"}))
	assert.Equal(t, "2", TeamID(Event{"team_id": "2"}))
	assert.Equal(t, "", TeamID(Event{}))
}

func TestIsLoc(t *testing.T) {
	assert.True(t, IsLoc(Event{"loc": Coord{}}))
	assert.True(t, IsLoc(Event{"start": Coord{}, "end": Coord{}}))
	assert.False(t, IsLoc(Event{"start": Coord{}}))
	assert.False(t, IsLoc(Event{"middle": Coord{}}))
}

func TestIsInjuryTime(t *testing.T) {
	assert.True(t, IsInjuryTime(Event{"injurytime_play": "yes"}))
	assert.False(t, IsInjuryTime(Event{"injurytime_play": "no"}))
	assert.False(t, IsInjuryTime(Event{}))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("goals_attempts")
	require.NoError(t, err)
	assert.Equal(t, GoalsAttempts, c)

	_, err = ParseCategory("Goals_Attempts")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Len(t, TimeSliceEvents, 20)
}

package squawka

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/squawka-xg/internal/model"
)

// timed builds a timed event directly, bypassing XML.
func timed(cat model.Category, team string, mins, secs int, fields model.Event) model.TimedEvent {
	e := model.Event{"team_id": team, "mins": mins, "secs": secs}
	for k, v := range fields {
		e[k] = v
	}
	return model.TimedEvent{Category: cat, Event: e}
}

func startEnd(sx, sy, ex, ey float64) model.Event {
	return model.Event{"start": model.Coord{X: sx, Y: sy}, "end": model.Coord{X: ex, Y: ey}}
}

func categories(a model.Attempt) []model.Category {
	out := make([]model.Category, len(a))
	for i, t := range a {
		out[i] = t.Category
	}
	return out
}

func TestAttempts_BuildUpScenario(t *testing.T) {
	m := scenarioMatch(t)

	attempts, err := m.Attempts(SequenceOptions{Breaks: 1, FilterGoals: false})
	require.NoError(t, err)
	require.Len(t, attempts, 1)

	a := attempts[0]
	assert.Equal(t, []model.Category{model.AllPasses, model.Crosses, model.GoalsAttempts}, categories(a))
	start, _ := a[0].Event.Coord("start")
	assert.Equal(t, model.Coord{X: 10, Y: 50}, start)
	start, _ = a[1].Event.Coord("start")
	assert.Equal(t, model.Coord{X: 80, Y: 50}, start)
	start, _ = a.Shot().Event.Coord("start")
	assert.Equal(t, model.Coord{X: 95, Y: 50}, start)
}

func TestSequence_ZeroBreaksStopsAtFirstOpponent(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.AllPasses, homeID, 0, 1, startEnd(10, 10, 20, 20)),
		timed(model.AllPasses, awayID, 0, 2, startEnd(50, 50, 60, 60)),
		timed(model.AllPasses, homeID, 0, 3, startEnd(30, 30, 40, 40)),
		timed(model.GoalsAttempts, homeID, 0, 4, startEnd(90, 50, 100, 50)),
	}

	a := Sequence(events, SequenceOptions{Breaks: 0})
	require.Len(t, a, 1)
	require.Len(t, a[0], 2)
	assert.Equal(t, 3, a[0][0].Event["secs"])

	a = Sequence(events, SequenceOptions{Breaks: 1})
	require.Len(t, a[0], 4, "one tolerated change reaches back to the start")
}

func TestSequence_FlipsOpponentCoordinates(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.AllPasses, homeID, 0, 1, startEnd(20, 30, 40, 45)),
		timed(model.Clearances, awayID, 0, 2, model.Event{"loc": model.Coord{X: 10, Y: 25}}),
		timed(model.GoalsAttempts, homeID, 0, 3, startEnd(88, 50, 100, 50)),
	}

	a := Sequence(events, DefaultSequenceOptions())
	require.Len(t, a, 1)
	require.Len(t, a[0], 3)

	same := a[0][0].Event
	s, _ := same.Coord("start")
	e, _ := same.Coord("end")
	assert.Equal(t, model.Coord{X: 20, Y: 30}, s)
	assert.Equal(t, model.Coord{X: 40, Y: 45}, e)

	loc, _ := a[0][1].Event.Coord("loc")
	assert.Equal(t, model.Coord{X: 90, Y: 75}, loc)

	// the input stream is untouched
	orig, _ := events[1].Event.Coord("loc")
	assert.Equal(t, model.Coord{X: 10, Y: 25}, orig)
}

func TestSequence_TackleAndFoulPerspective(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.Tackles, homeID, 0, 1, model.Event{"loc": model.Coord{X: 30, Y: 40}, "tackler_team": awayID}),
		timed(model.Tackles, homeID, 0, 2, model.Event{"loc": model.Coord{X: 35, Y: 40}, "tackler_team": homeID}),
		timed(model.Fouls, homeID, 0, 3, model.Event{"loc": model.Coord{X: 60, Y: 20}, "otherplayer_team": homeID}),
		timed(model.Fouls, homeID, 0, 4, model.Event{"loc": model.Coord{X: 65, Y: 20}, "otherplayer_team": awayID}),
		timed(model.GoalsAttempts, homeID, 0, 5, startEnd(88, 50, 100, 50)),
	}

	a := Sequence(events, DefaultSequenceOptions())
	require.Len(t, a[0], 5)
	want := []model.Coord{{X: 70, Y: 60}, {X: 35, Y: 40}, {X: 40, Y: 80}, {X: 65, Y: 20}}
	for i, w := range want {
		loc, _ := a[0][i].Event.Coord("loc")
		assert.Equal(t, w, loc, "event %d", i)
	}
}

func TestSequence_SkipsHeatMapsAndUnlocated(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.AllPasses, homeID, 0, 1, startEnd(20, 30, 40, 45)),
		timed(model.ExtraHeatMaps, awayID, 0, 2, model.Event{"loc": model.Coord{X: 50, Y: 50}}),
		timed(model.ExtraHeatMaps, awayID, 0, 3, model.Event{"loc": model.Coord{X: 50, Y: 50}}),
		timed(model.Cards, homeID, 0, 4, nil),
		timed(model.AllPasses, homeID, 0, 5, model.Event{"start": model.Coord{X: 1, Y: 1}}),
		timed(model.GoalsAttempts, homeID, 0, 6, startEnd(88, 50, 100, 50)),
	}

	a := Sequence(events, SequenceOptions{Breaks: 0})
	require.Len(t, a, 1)
	assert.Equal(t, []model.Category{model.AllPasses, model.GoalsAttempts}, categories(a[0]))
	s, _ := a[0][0].Event.Coord("start")
	assert.Equal(t, model.Coord{X: 20, Y: 30}, s)
}

func TestSequence_UnlocatedOpponentStillCountsAsBreak(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.AllPasses, homeID, 0, 1, startEnd(20, 30, 40, 45)),
		timed(model.Cards, awayID, 0, 2, nil),
		timed(model.GoalsAttempts, homeID, 0, 3, startEnd(88, 50, 100, 50)),
	}
	a := Sequence(events, SequenceOptions{Breaks: 0})
	require.Len(t, a[0], 1)
}

func TestSequence_AttemptsNeverOverlap(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.AllPasses, homeID, 0, 1, startEnd(20, 30, 40, 45)),
		timed(model.GoalsAttempts, homeID, 0, 2, startEnd(88, 50, 100, 50)),
		timed(model.GoalsAttempts, homeID, 0, 3, startEnd(90, 40, 100, 50)),
		timed(model.Corners, homeID, 0, 4, startEnd(100, 0, 95, 50)),
		timed(model.GoalsAttempts, homeID, 0, 5, startEnd(94, 50, 100, 50)),
	}

	a := Sequence(events, DefaultSequenceOptions())
	require.Len(t, a, 3)
	assert.Len(t, a[0], 2)
	assert.Len(t, a[1], 1, "rebound attempt has no context of its own")
	assert.Equal(t, []model.Category{model.Corners, model.GoalsAttempts}, categories(a[2]))
}

func TestSequence_FilterGoalsAndFirstEvent(t *testing.T) {
	events := []model.TimedEvent{
		timed(model.GoalsAttempts, homeID, 0, 1, model.Event{"type": "miss"}),
		timed(model.AllPasses, homeID, 0, 2, startEnd(20, 30, 40, 45)),
		timed(model.GoalsAttempts, homeID, 0, 3, model.Event{"type": "goal"}),
	}

	all := Sequence(events, DefaultSequenceOptions())
	require.Len(t, all, 2)
	assert.Len(t, all[0], 1, "first timed event yields a context-free attempt")

	goals := Sequence(events, SequenceOptions{Breaks: 1, FilterGoals: true})
	require.Len(t, goals, 1)
	assert.Equal(t, "goal", goals[0].Shot().Event.String("type"))
	assert.Len(t, goals[0], 2)
}

func TestSequence_TeamFieldPreferredOverTeamID(t *testing.T) {
	shot := timed(model.GoalsAttempts, awayID, 0, 2, startEnd(88, 50, 100, 50))
	shot.Event["team"] = homeID
	events := []model.TimedEvent{
		timed(model.AllPasses, homeID, 0, 1, startEnd(20, 30, 40, 45)),
		shot,
	}
	a := Sequence(events, SequenceOptions{Breaks: 0})
	require.Len(t, a[0], 2)
}

func TestAttempts_RepeatableOnSameMatch(t *testing.T) {
	m := newTestMatch(t, "epl_8.xml",
		filter("all_passes", ev(`team_id="20" mins="0" secs="1"`, "20,30;40,45")),
		filter("goals_attempts", ev(`team_id="10" mins="0" secs="2" type="goal"`, "90,50;100,50")),
	)

	first, err := m.Attempts(DefaultSequenceOptions())
	require.NoError(t, err)
	second, err := m.Attempts(DefaultSequenceOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	s, _ := second[0][0].Event.Coord("start")
	assert.Equal(t, model.Coord{X: 80, Y: 70}, s, "flipped exactly once")
}

func TestSequence_InvariantsOnRandomStreams(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cats := model.TimeSliceEvents
	teams := []string{homeID, awayID}

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(40)
		events := make([]model.TimedEvent, n)
		for i := range events {
			fields := model.Event{}
			switch rng.Intn(3) {
			case 0:
				fields = startEnd(rng.Float64()*100, rng.Float64()*100, rng.Float64()*100, rng.Float64()*100)
			case 1:
				fields["loc"] = model.Coord{X: rng.Float64() * 100, Y: rng.Float64() * 100}
			}
			events[i] = timed(cats[rng.Intn(len(cats))], teams[rng.Intn(2)], i/60, i%60, fields)
		}

		opts := SequenceOptions{Breaks: rng.Intn(3)}
		for _, a := range Sequence(events, opts) {
			require.NotEmpty(t, a)
			assert.Equal(t, model.GoalsAttempts, a.Shot().Category)
			for _, c := range a.Context() {
				assert.True(t, model.IsLoc(c.Event))
				assert.NotEqual(t, model.ExtraHeatMaps, c.Category)
				assert.NotEqual(t, model.GoalsAttempts, c.Category)
			}
		}
	}
}

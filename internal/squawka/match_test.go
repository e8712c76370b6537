package squawka

import (
	"strings"
	"testing"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/squawka-xg/internal/model"
)

func TestParseIdentity(t *testing.T) {
	cases := []struct {
		source, comp, id string
	}{
		{"data/epl_12345.xml", "epl", "12345"},
		{"/tmp/feeds/la_liga_998.xml", "la_liga", "998"},
		{"feeds/seriea_4071.xml.gz", "seriea", "4071"},
		{"http://s3-irl-epl.squawka.com/dp/ingame/62017", "epl", "62017"},
		{"https://s3-irl-champions.squawka.com/dp/ingame/rss/ingame/811", "champions", "811"},
	}
	for _, tc := range cases {
		comp, id, err := ParseIdentity(tc.source)
		require.NoError(t, err, tc.source)
		assert.Equal(t, tc.comp, comp, tc.source)
		assert.Equal(t, tc.id, id, tc.source)
	}

	_, _, err := ParseIdentity("match.xml")
	assert.ErrorIs(t, err, ErrIdentity)
}

func TestNew_Malformed(t *testing.T) {
	doc, err := xmlquery.Parse(strings.NewReader(`<squawka><other/></squawka>`))
	require.NoError(t, err)
	_, err = New(doc, "epl_1.xml")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestMatch_Metadata(t *testing.T) {
	m := scenarioMatch(t)

	assert.Equal(t, "epl", m.Competition())
	assert.Equal(t, "777", m.MatchID())
	assert.Equal(t, "Riverside Stadium", m.Venue())

	ko, err := m.Kickoff()
	require.NoError(t, err)
	assert.True(t, ko.Equal(time.Date(2015, 8, 15, 14, 0, 0, 0, time.UTC)))
}

func TestMatch_CompetitionName(t *testing.T) {
	m := newTestMatch(t, "8_100.xml")
	assert.Equal(t, "English Barclays Premier League", m.CompetitionName())

	m = newTestMatch(t, "friendly_100.xml")
	assert.Equal(t, "friendly", m.CompetitionName())
}

func TestMatch_TeamsAndPlayers(t *testing.T) {
	m := scenarioMatch(t)

	home, err := m.TeamHome()
	require.NoError(t, err)
	assert.Equal(t, homeID, home.String("id"))
	assert.Equal(t, "Home FC", home.String("long_name"))

	away, err := m.TeamAway()
	require.NoError(t, err)
	assert.Equal(t, awayID, away.String("id"))

	p, err := m.Player("7")
	require.NoError(t, err)
	assert.Equal(t, "Alice Striker", p.String("name"))
	num, ok := p.Int("shirt_num")
	require.True(t, ok)
	assert.Equal(t, 9, num)
	dob, ok := p.Time("dob")
	require.True(t, ok)
	assert.Equal(t, 1990, dob.Year())

	again, err := m.Player("7")
	require.NoError(t, err)
	assert.Equal(t, p, again)

	_, err = m.Player("404")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Team("404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatch_DuplicateIDIsFatal(t *testing.T) {
	src := `<squawka><data_panel><players>
		<player id="1"><name>a</name></player>
		<player id="1"><name>b</name></player>
	</players></data_panel></squawka>`
	doc, err := xmlquery.Parse(strings.NewReader(src))
	require.NoError(t, err)
	m, err := New(doc, "epl_1.xml")
	require.NoError(t, err)

	_, err = m.Player("1")
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestMatch_Score(t *testing.T) {
	m := scenarioMatch(t)
	home, away, err := m.Score()
	require.NoError(t, err)
	assert.Equal(t, 1, home)
	assert.Equal(t, 0, away)

	m = newTestMatch(t, "epl_2.xml",
		filter("goals_attempts",
			ev(`team_id="20" mins="3" secs="0" type="goal"`, "90,50;100,50"),
			ev(`team_id="20" mins="9" secs="0" type="miss"`, "90,50;100,40"),
			ev(`team_id="10" mins="20" secs="0" type="goal"`, "90,50;100,50"),
			ev(`team_id="20" mins="50" secs="0" type="goal"`, "90,50;100,50"),
		))
	home, away, err = m.Score()
	require.NoError(t, err)
	assert.Equal(t, 1, home)
	assert.Equal(t, 2, away)
}

func TestMatch_EventsUnknownVersusEmpty(t *testing.T) {
	m := scenarioMatch(t)

	_, err := m.Events(model.Category("penalties"))
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = m.EventsByName("penalties")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	events, err := m.Events(model.Cards)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = m.Events(model.Crosses)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.Timeslice{From: 0, To: 90}, events[0]["timeslice"])
}

func TestMatch_LookupsReturnCopies(t *testing.T) {
	m := scenarioMatch(t)

	p, err := m.Player("7")
	require.NoError(t, err)
	p["name"] = "Someone Else"
	delete(p, "shirt_num")

	home, err := m.TeamHome()
	require.NoError(t, err)
	home["long_name"] = "Renamed"

	p, err = m.Player("7")
	require.NoError(t, err)
	assert.Equal(t, "Alice Striker", p.String("name"))
	assert.True(t, p.Has("shirt_num"))

	home, err = m.Team(homeID)
	require.NoError(t, err)
	assert.Equal(t, "Home FC", home.String("long_name"))
}

func TestMatch_EventsReturnsCopies(t *testing.T) {
	m := scenarioMatch(t)

	events, err := m.Events(model.AllPasses)
	require.NoError(t, err)
	events[0]["start"] = model.Coord{X: 1, Y: 1}
	delete(events[0], "mins")

	fresh, err := m.Events(model.AllPasses)
	require.NoError(t, err)
	start, _ := fresh[0].Coord("start")
	assert.Equal(t, model.Coord{X: 10, Y: 50}, start)
	assert.True(t, fresh[0].Has("mins"))
}

func TestMatch_Filters(t *testing.T) {
	m := newTestMatch(t, "epl_3.xml",
		filter("crosses", ev(`team="10" mins="1" secs="0"`, "1,1;2,2")),
		`<cards></cards>`,
		filter("all_passes", ev(`team_id="10" mins="0" secs="0"`, "1,1;2,2")),
		filter("match_stats", ev(`mins="0" secs="1"`, "")),
	)
	assert.Equal(t, []string{"crosses", "all_passes", "match_stats"}, m.Filters())
}

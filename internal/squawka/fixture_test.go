package squawka

import (
	"fmt"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/require"
)

const (
	homeID = "10"
	awayID = "20"
)

// header carries the teams, players and possession table shared by every fixture.
const header = `<game>
	<kickoff>Sat, 15 Aug 2015 15:00:00 +0100</kickoff>
	<venue>Riverside Stadium</venue>
	<team id="10"><long_name>Home FC</long_name><short_name>HOM</short_name><state>home</state></team>
	<team id="20"><long_name>Away United</long_name><short_name>AWY</short_name><state>away</state></team>
</game>
<players>
	<player id="7" team_id="10"><name>Alice Striker</name><dob>01/02/1990</dob><shirt_num>9</shirt_num></player>
	<player id="8" team_id="10"><name>Bea Winger</name><shirt_num>11</shirt_num></player>
	<player id="9" team_id="20"><name>Cleo Keeper</name><shirt_num>1</shirt_num></player>
</players>
<possession>
	<period id="1">
		<time_slice name="0 - 5"><team_possession team_id="10">60</team_possession><team_possession team_id="20">40</team_possession></time_slice>
		<time_slice name="5 - 10"><team_possession team_id="10">40</team_possession><team_possession team_id="20">60</team_possession></time_slice>
		<time_slice name="40 - 45"><team_possession team_id="10">55</team_possession><team_possession team_id="20">45</team_possession></time_slice>
	</period>
	<period id="2">
		<time_slice name="80 - 85"><team_possession team_id="10">30</team_possession><team_possession team_id="20">70</team_possession></time_slice>
		<time_slice name="85 - 90"><team_possession team_id="10">35</team_possession><team_possession team_id="20">65</team_possession></time_slice>
	</period>
</possession>`

// ev renders one event node. loc is either "sx,sy;ex,ey" (start/end) or
// "x,y" (loc) or "" (unlocated).
func ev(attrs, loc string) string {
	var body string
	switch {
	case strings.Contains(loc, ";"):
		parts := strings.SplitN(loc, ";", 2)
		body = fmt.Sprintf("<start>%s</start><end>%s</end>", parts[0], parts[1])
	case loc != "":
		body = fmt.Sprintf("<loc>%s</loc>", loc)
	}
	return fmt.Sprintf("<event %s>%s</event>", attrs, body)
}

// filter wraps events in a category node with one time slice.
func filter(name string, events ...string) string {
	return fmt.Sprintf(`<%s><time_slice name="0 - 90">%s</time_slice></%s>`, name, strings.Join(events, ""), name)
}

func buildDoc(filters ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?><squawka><data_panel>` + header +
		`<filters>` + strings.Join(filters, "") + `</filters></data_panel></squawka>`
}

func newTestMatch(t *testing.T, source string, filters ...string) *Match {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(buildDoc(filters...)))
	require.NoError(t, err)
	m, err := New(doc, source)
	require.NoError(t, err)
	return m
}

// scenarioMatch is the three-event build-up: pass, cross, goal, all by the home team.
func scenarioMatch(t *testing.T) *Match {
	return newTestMatch(t, "epl_777.xml",
		filter("all_passes", ev(`player_id="8" team_id="10" mins="0" secs="10"`, "10,50;70,50")),
		filter("crosses", ev(`player_id="8" team="10" mins="0" secs="15"`, "80,50;95,50")),
		filter("goals_attempts", ev(`player_id="7" team_id="10" mins="0" secs="20" type="goal"`, "95,50;100,50")),
	)
}

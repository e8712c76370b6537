package squawka

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pable/squawka-xg/internal/parser"
)

const (
	possessionPath = panelPath + "/possession//time_slice"

	bucketMinutes   = 5
	lastBucketStart = 85 // "85-90"; also holds second-half injury time
	firstHalfLast   = 40 // "40-45"; holds first-half injury time
	fullTime        = 90
)

type possessionKey struct {
	mins, secs int
	team       string
	injury     bool
}

// Possession estimates the team's possession percentage at mins:secs from
// the feed's 5-minute buckets. Injury time reads the last bucket of the half;
// clock times beyond the final bucket are clamped to it. Otherwise the value
// blends the current and previous bucket by the time elapsed in the current one.
func (m *Match) Possession(mins, secs int, teamID string, injury bool) (float64, error) {
	key := possessionKey{mins: mins, secs: secs, team: teamID, injury: injury}

	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.possession[key]; ok {
		return v, nil
	}
	if m.buckets == nil {
		b, err := m.parseBuckets()
		if err != nil {
			return 0, err
		}
		m.buckets = b
	}

	v, err := estimatePossession(m.buckets, mins, secs, teamID, injury)
	if err != nil {
		return 0, err
	}
	m.possession[key] = v
	return v, nil
}

// estimatePossession applies the bucket rules to an already loaded table of
// bucket start minute -> team id -> percentage.
func estimatePossession(buckets map[int]map[string]float64, mins, secs int, team string, injury bool) (float64, error) {
	value := func(from int) (float64, error) {
		v, ok := buckets[from][team]
		if !ok {
			return 0, fmt.Errorf("possession %d-%d team %q: %w", from, from+bucketMinutes, team, ErrNotFound)
		}
		return v, nil
	}

	if injury {
		if mins >= fullTime {
			return value(lastBucketStart)
		}
		return value(firstHalfLast)
	}

	k := mins / bucketMinutes
	start := k * bucketMinutes
	if start >= fullTime {
		return value(lastBucketStart)
	}
	cur, err := value(start)
	if err != nil {
		return 0, err
	}
	if k == 0 {
		return cur, nil
	}
	prev, err := value(start - bucketMinutes)
	if err != nil {
		return 0, err
	}

	w := float64((mins-start)*60+secs) / float64(bucketMinutes*60)
	if w > 1 {
		w = 1
	}
	blended := w*cur + (1-w)*prev
	return (blended + cur) / 2, nil
}

func (m *Match) parseBuckets() (map[int]map[string]float64, error) {
	buckets := make(map[int]map[string]float64)
	for _, slice := range xmlquery.Find(m.doc, possessionPath) {
		ts, err := parser.ParseTimeslice(slice.SelectAttr("name"))
		if err != nil {
			return nil, fmt.Errorf("possession: %w", err)
		}
		for _, tp := range xmlquery.Find(slice, "team_possession") {
			raw := strings.TrimSpace(tp.InnerText())
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("possession %s: %w", slice.SelectAttr("name"),
					&parser.ParseError{Key: "team_possession", Value: raw, Err: err})
			}
			if buckets[ts.From] == nil {
				buckets[ts.From] = make(map[string]float64)
			}
			buckets[ts.From][tp.SelectAttr("team_id")] = v
		}
	}
	return buckets, nil
}

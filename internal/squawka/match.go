// Package squawka indexes one parsed Squawka match document and reconstructs
// the build-up sequences that lead to each shot attempt.
package squawka

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/pable/squawka-xg/internal/model"
	"github.com/pable/squawka-xg/internal/parser"
)

var (
	// ErrUnknownCategory is returned for category names outside model.TimeSliceEvents.
	ErrUnknownCategory = model.ErrUnknownCategory
	// ErrNotFound is returned when a referenced player, team or bucket is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when an id resolves to more than one node.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrIdentity is returned when the source matches neither the file nor the URL pattern.
	ErrIdentity = errors.New("unrecognised match source")
	// ErrMalformed is returned when the document lacks the squawka data panel.
	ErrMalformed = errors.New("malformed match document")
)

const (
	panelPath    = "/squawka/data_panel"
	filtersPath  = panelPath + "/filters"
	teamsPath    = panelPath + "/game/team"
	playersPath  = panelPath + "/players/player"
	kickoffPath  = panelPath + "/game/kickoff"
	venuePath    = panelPath + "/game/venue"
	homePath     = panelPath + `/game/team[state="home"]`
	awayPath     = panelPath + `/game/team[state="away"]`
	eventsFormat = filtersPath + "/%s/time_slice/event"

	kickoffLayout = time.RFC1123Z
)

var (
	fileIDRe = regexp.MustCompile(`^(.*)_(\d+)\.xml(?:\.(?:gz|zst|bz2))?$`)
	urlIDRe  = regexp.MustCompile(`s3-irl-([^./]+)\.squawka\.com/.*ingame/(\d+)`)
)

// Match wraps one parsed document. Lookups are memoized for the lifetime of
// the Match; the caches are guarded so a Match may be shared.
type Match struct {
	doc    *xmlquery.Node
	source string

	mu         sync.Mutex
	players    map[string]model.Event
	teams      map[string]model.Event
	events     map[model.Category][]model.Event
	buckets    map[int]map[string]float64
	possession map[possessionKey]float64
}

// New wraps doc. source is the file path or URL the document came from and
// is only inspected textually.
func New(doc *xmlquery.Node, source string) (*Match, error) {
	if doc == nil || xmlquery.FindOne(doc, panelPath) == nil {
		return nil, fmt.Errorf("%w: %s: missing %s", ErrMalformed, source, panelPath)
	}
	return &Match{
		doc:        doc,
		source:     source,
		players:    make(map[string]model.Event),
		teams:      make(map[string]model.Event),
		events:     make(map[model.Category][]model.Event),
		possession: make(map[possessionKey]float64),
	}, nil
}

// Source returns the path or URL the match was built from.
func (m *Match) Source() string { return m.source }

// Identity returns the competition and match id encoded in the source, either
// "<competition>_<id>.xml" or an s3-irl-<competition>.squawka.com/.../ingame/<id> URL.
func (m *Match) Identity() (competition, matchID string, err error) {
	return ParseIdentity(m.source)
}

// ParseIdentity extracts competition and match id from a path or URL.
func ParseIdentity(source string) (competition, matchID string, err error) {
	if g := urlIDRe.FindStringSubmatch(source); g != nil {
		return g[1], g[2], nil
	}
	if g := fileIDRe.FindStringSubmatch(filepath.Base(source)); g != nil {
		return g[1], g[2], nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrIdentity, source)
}

// Competition returns the competition part of the identity, or "" if unknown.
func (m *Match) Competition() string {
	c, _, _ := m.Identity()
	return c
}

// MatchID returns the match id part of the identity, or "" if unknown.
func (m *Match) MatchID() string {
	_, id, _ := m.Identity()
	return id
}

// CompetitionName resolves numeric competitions through model.Competitions.
func (m *Match) CompetitionName() string {
	c := m.Competition()
	if name, ok := model.Competitions[c]; ok {
		return name
	}
	return c
}

// Kickoff returns the scheduled kickoff time.
func (m *Match) Kickoff() (time.Time, error) {
	n := xmlquery.FindOne(m.doc, kickoffPath)
	if n == nil {
		return time.Time{}, fmt.Errorf("kickoff: %w", ErrNotFound)
	}
	t, err := time.Parse(kickoffLayout, strings.TrimSpace(n.InnerText()))
	if err != nil {
		return time.Time{}, fmt.Errorf("kickoff: %w", err)
	}
	return t, nil
}

// Venue returns the stadium name, or "" if the feed omits it.
func (m *Match) Venue() string {
	if n := xmlquery.FindOne(m.doc, venuePath); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	return ""
}

// Player returns a copy of the player record for id.
func (m *Match) Player(id string) (model.Event, error) {
	return m.lookup(m.players, playersPath, "player", id)
}

// Team returns a copy of the team record for id.
func (m *Match) Team(id string) (model.Event, error) {
	return m.lookup(m.teams, teamsPath, "team", id)
}

func (m *Match) lookup(cache map[string]model.Event, path, kind, id string) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := cache[id]; ok {
		return rec.Clone(), nil
	}

	var found []*xmlquery.Node
	for _, n := range xmlquery.Find(m.doc, path) {
		if n.SelectAttr("id") == id {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("%s %q: %w (%d nodes)", kind, id, ErrDuplicateID, len(found))
	}

	rec, err := parser.ParseNode(found[0], nil)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, id, err)
	}
	cache[id] = rec
	return rec.Clone(), nil
}

// TeamHome returns the team flagged state="home".
func (m *Match) TeamHome() (model.Event, error) {
	return m.teamByState(homePath, "home")
}

// TeamAway returns the team flagged state="away".
func (m *Match) TeamAway() (model.Event, error) {
	return m.teamByState(awayPath, "away")
}

func (m *Match) teamByState(path, state string) (model.Event, error) {
	n := xmlquery.FindOne(m.doc, path)
	if n == nil {
		return nil, fmt.Errorf("%s team: %w", state, ErrNotFound)
	}
	return m.Team(n.SelectAttr("id"))
}

// Score counts goals per side from goal attempts typed "goal".
func (m *Match) Score() (home, away int, err error) {
	h, err := m.TeamHome()
	if err != nil {
		return 0, 0, err
	}
	a, err := m.TeamAway()
	if err != nil {
		return 0, 0, err
	}
	attempts, err := m.Events(model.GoalsAttempts)
	if err != nil {
		return 0, 0, err
	}
	homeID, awayID := h.String("id"), a.String("id")
	for _, e := range attempts {
		if e.String("type") != "goal" {
			continue
		}
		switch model.TeamID(e) {
		case homeID:
			home++
		case awayID:
			away++
		}
	}
	return home, away, nil
}

package squawka

import (
	"github.com/pable/squawka-xg/internal/model"
)

// SequenceOptions tunes attempt reconstruction.
type SequenceOptions struct {
	// Breaks is the number of possession changes tolerated in the look-back
	// window. The walk stops at the event that exceeds it.
	Breaks int
	// FilterGoals keeps only attempts typed "goal".
	FilterGoals bool
}

// DefaultSequenceOptions tolerates one possession change and keeps every attempt.
func DefaultSequenceOptions() SequenceOptions {
	return SequenceOptions{Breaks: 1}
}

// Attempts reconstructs the build-up sequence of every goal attempt in the match.
func (m *Match) Attempts(opts SequenceOptions) ([]model.Attempt, error) {
	events, err := m.SortedTimedEvents()
	if err != nil {
		return nil, err
	}
	return Sequence(events, opts), nil
}

// Sequence walks backward from each goals_attempts event in the clock-sorted
// stream, collecting located context events until another attempt is reached
// or more than opts.Breaks possession changes have been seen. Kept events
// recorded from the defending side's perspective are mirrored into the
// attacking team's frame. Input events are never modified.
//
// A walk never crosses the previous attempt, so the per-attempt rescans visit
// each event at most once across the whole match.
func Sequence(events []model.TimedEvent, opts SequenceOptions) []model.Attempt {
	var attempts []model.Attempt
	for i, te := range events {
		if te.Category != model.GoalsAttempts {
			continue
		}
		if opts.FilterGoals && te.Event.String("type") != "goal" {
			continue
		}
		team := model.TeamID(te.Event)

		var ctx []model.TimedEvent
		breaks := 0
		for j := i - 1; j >= 0; j-- {
			prev := events[j]
			if prev.Category == model.GoalsAttempts {
				break
			}
			if prev.Category == model.ExtraHeatMaps {
				continue
			}
			if model.TeamID(prev.Event) != team {
				breaks++
				if breaks > opts.Breaks {
					break
				}
			}
			if !model.IsLoc(prev.Event) {
				continue
			}
			if needsFlip(prev, team) {
				prev = model.TimedEvent{Category: prev.Category, Event: model.FlipCoords(prev.Event), Flipped: true}
			}
			ctx = append(ctx, prev)
		}

		attempt := make(model.Attempt, 0, len(ctx)+1)
		for k := len(ctx) - 1; k >= 0; k-- {
			attempt = append(attempt, ctx[k])
		}
		attempts = append(attempts, append(attempt, te))
	}
	return attempts
}

// needsFlip reports whether te's coordinates were recorded from the
// non-attacking team's point of view.
func needsFlip(te model.TimedEvent, team string) bool {
	if model.TeamID(te.Event) != team {
		return true
	}
	switch te.Category {
	case model.Tackles:
		return te.Event.String("tackler_team") != team
	case model.Fouls:
		return te.Event.String("otherplayer_team") == team
	}
	return false
}

package squawka

import (
	"fmt"
	"iter"
	"sort"

	"github.com/antchfx/xmlquery"

	"github.com/pable/squawka-xg/internal/model"
	"github.com/pable/squawka-xg/internal/parser"
)

// Events returns the events recorded for c, each annotated with its
// enclosing "timeslice". An unknown category fails with ErrUnknownCategory;
// a known category absent from the document yields an empty slice.
// The returned events are copies and may be modified freely.
func (m *Match) Events(c model.Category) ([]model.Event, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cached, ok := m.events[c]
	if !ok {
		var err error
		cached, err = m.parseEvents(c)
		if err != nil {
			return nil, err
		}
		m.events[c] = cached
	}

	out := make([]model.Event, len(cached))
	for i, e := range cached {
		out[i] = e.Clone()
	}
	return out, nil
}

// EventsByName is Events keyed by the category's feed name.
func (m *Match) EventsByName(name string) ([]model.Event, error) {
	c, err := model.ParseCategory(name)
	if err != nil {
		return nil, err
	}
	return m.Events(c)
}

func (m *Match) parseEvents(c model.Category) ([]model.Event, error) {
	nodes := xmlquery.Find(m.doc, fmt.Sprintf(eventsFormat, c))
	events := make([]model.Event, 0, len(nodes))
	for _, n := range nodes {
		ts, err := parser.ParseTimeslice(n.Parent.SelectAttr("name"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		ev, err := parser.ParseNode(n, model.Event{"timeslice": ts})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Filters lists, in document order, the category names under the filters
// panel that hold at least one event.
func (m *Match) Filters() []string {
	panel := xmlquery.FindOne(m.doc, filtersPath)
	if panel == nil {
		return nil
	}
	var names []string
	for c := panel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if xmlquery.FindOne(c, "time_slice/event") != nil {
			names = append(names, c.Data)
		}
	}
	return names
}

// TimedEvents yields every event carrying both mins and secs, category by
// category in Filters order. Names outside the known categories are skipped.
// Iteration stops after the first parse error is yielded.
func (m *Match) TimedEvents() iter.Seq2[model.TimedEvent, error] {
	return func(yield func(model.TimedEvent, error) bool) {
		for _, name := range m.Filters() {
			c, err := model.ParseCategory(name)
			if err != nil {
				continue
			}
			events, err := m.Events(c)
			if err != nil {
				yield(model.TimedEvent{}, err)
				return
			}
			for _, e := range events {
				if !model.IsTimed(e) {
					continue
				}
				if !yield(model.TimedEvent{Category: c, Event: e}, nil) {
					return
				}
			}
		}
	}
}

// SortedTimedEvents materializes TimedEvents ordered by (mins, secs).
// Events sharing a timestamp keep their feed order.
func (m *Match) SortedTimedEvents() ([]model.TimedEvent, error) {
	var out []model.TimedEvent
	for te, err := range m.TimedEvents() {
		if err != nil {
			return nil, err
		}
		out = append(out, te)
	}
	SortByClock(out)
	return out, nil
}

// SortByClock stable-sorts events on (mins, secs).
func SortByClock(events []model.TimedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		mi, si := events[i].Clock()
		mj, sj := events[j].Clock()
		if mi != mj {
			return mi < mj
		}
		return si < sj
	})
}

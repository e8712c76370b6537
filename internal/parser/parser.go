// Package parser turns Squawka feed nodes into typed model.Event mappings.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/pable/squawka-xg/internal/model"
)

var (
	// ErrParse marks a value that does not fit its field's type class.
	ErrParse = errors.New("parse error")
	// ErrDuplicateField is returned when two child nodes produce the same key.
	ErrDuplicateField = errors.New("duplicate field")
)

// ParseError describes one malformed attribute value.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s=%q: %v", e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s=%q", e.Key, e.Value)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

var (
	locRe = regexp.MustCompile(`^([\d\.]+)[^\d]+([\d+\.]+)`)
	tsRe  = regexp.MustCompile(`^(\d+)[^\d]+(\d+)`)
)

// Attribute type classes. These sets define compatibility with the feed and
// must match it exactly.
var (
	coordKeys = set("loc", "start", "middle", "end")
	boolKeys  = set("shot", "long_ball", "headed", "assists", "through_ball", "is_own")
	floatKeys = set("x", "y", "x_loc", "gx", "gy", "y_loc", "bmi")
	intKeys   = set("mins", "minsec", "secs", "weight", "height", "shirt_num", "age")
	dateKeys  = set("dob")
)

const dateLayout = "02/01/2006"

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

// ParseAttr types a raw value according to the class its key belongs to.
func ParseAttr(key, val string) (any, error) {
	switch {
	case in(coordKeys, key):
		c, err := ParseCoord(val)
		if err != nil {
			return nil, &ParseError{Key: key, Value: val, Err: err}
		}
		return c, nil
	case in(boolKeys, key):
		switch val {
		case "true", "yes":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, &ParseError{Key: key, Value: val, Err: errors.New("malformed boolean")}
	case in(floatKeys, key):
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, &ParseError{Key: key, Value: val, Err: err}
		}
		return f, nil
	case in(intKeys, key):
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, &ParseError{Key: key, Value: val, Err: err}
		}
		return n, nil
	case in(dateKeys, key):
		t, err := time.Parse(dateLayout, val)
		if err != nil {
			return nil, &ParseError{Key: key, Value: val, Err: err}
		}
		return t, nil
	default:
		return val, nil
	}
}

// ParseCoord parses "<x><sep><y>" where sep is any run of non-digits.
func ParseCoord(val string) (model.Coord, error) {
	m := locRe.FindStringSubmatch(val)
	if m == nil {
		return model.Coord{}, errors.New("malformed coordinate")
	}
	x, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.Coord{}, err
	}
	y, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return model.Coord{}, err
	}
	return model.Coord{X: x, Y: y}, nil
}

// ParseTimeslice parses a time_slice name such as "0 - 5".
func ParseTimeslice(name string) (model.Timeslice, error) {
	m := tsRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return model.Timeslice{}, &ParseError{Key: "timeslice", Value: name, Err: errors.New("malformed time slice")}
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return model.Timeslice{From: from, To: to}, nil
}

// ParseNode flattens an element into an Event. Own attributes are typed by
// name; every child element contributes its text under its tag and each of
// its attributes under "<tag>_<attr>" (typed by the bare attribute name).
// Child fields override own attributes and extra overrides both.
func ParseNode(node *xmlquery.Node, extra model.Event) (model.Event, error) {
	ev := make(model.Event, len(node.Attr)+len(extra))
	for _, a := range node.Attr {
		v, err := ParseAttr(a.Name.Local, a.Value)
		if err != nil {
			return nil, err
		}
		ev[a.Name.Local] = v
	}

	children := make(map[string]any)
	put := func(key string, v any) error {
		if _, dup := children[key]; dup {
			return &ParseError{Key: key, Err: ErrDuplicateField}
		}
		children[key] = v
		return nil
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if text := directText(c); text != "" {
			v, err := ParseAttr(c.Data, text)
			if err != nil {
				return nil, err
			}
			if err := put(c.Data, v); err != nil {
				return nil, err
			}
		}
		for _, a := range c.Attr {
			v, err := ParseAttr(a.Name.Local, a.Value)
			if err != nil {
				return nil, err
			}
			if err := put(c.Data+"_"+a.Name.Local, v); err != nil {
				return nil, err
			}
		}
	}

	for k, v := range children {
		ev[k] = v
	}
	for k, v := range extra {
		ev[k] = v
	}
	return ev, nil
}

// directText returns the trimmed text held directly by n, ignoring nested elements.
func directText(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

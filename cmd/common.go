package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/pable/squawka-xg/internal/feed"
	"github.com/pable/squawka-xg/internal/squawka"
	"github.com/pable/squawka-xg/internal/storage"
)

var (
	cSkip = color.New(color.FgYellow)
	cOK   = color.New(color.FgGreen)
)

// skipf prints a "[skip]" line to stderr.
func skipf(format string, args ...any) {
	cSkip.Fprint(os.Stderr, "  [skip] ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadMatch resolves src from the document store, falling back to reading
// it from disk or over HTTP.
func loadMatch(ctx context.Context, db *storage.DB, src string) (*squawka.Match, error) {
	data, err := db.GetDocument(src)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if data == nil {
		data, err = feed.NewLoader(cfg.HTTPTimeout).Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
	}
	return matchFromBytes(src, data)
}

// matchFromBytes parses a stored or fetched document, compressed or not.
func matchFromBytes(src string, data []byte) (*squawka.Match, error) {
	doc, err := feed.Parse(data)
	if err != nil {
		return nil, err
	}
	return squawka.New(doc, src)
}

// teamNames returns the long names of the home and away teams.
func teamNames(m *squawka.Match) (home, away string, err error) {
	h, err := m.TeamHome()
	if err != nil {
		return "", "", err
	}
	a, err := m.TeamAway()
	if err != nil {
		return "", "", err
	}
	return h.String("long_name"), a.String("long_name"), nil
}

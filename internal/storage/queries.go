package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pable/squawka-xg/internal/model"
)

// MatchRecord is a stored match row with its display names.
type MatchRecord struct {
	model.Background
	Source   string
	HomeTeam string
	AwayTeam string
	Attempts int
}

// DocumentExists returns true if a document with the given url is already stored.
func (db *DB) DocumentExists(url string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM documents WHERE url = ?", url).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertDocument stores a raw feed document. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertDocument(url string, data []byte, fetchedAt time.Time) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO documents(url, data, fetched_at) VALUES (?, ?, ?)`,
		url, data, fetchedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetDocument returns the stored bytes for url, or nil if absent.
func (db *DB) GetDocument(url string) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRow("SELECT data FROM documents WHERE url = ?", url).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return data, err
}

// DocumentURLs returns every stored document url in insertion order.
func (db *DB) DocumentURLs() ([]string, error) {
	rows, err := db.conn.Query("SELECT url FROM documents ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// EachDocument calls fn for every stored document. The url list is read up
// front so fn may write to the database.
func (db *DB) EachDocument(ctx context.Context, fn func(url string, data []byte) error) error {
	urls, err := db.DocumentURLs()
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := db.GetDocument(u)
		if err != nil {
			return fmt.Errorf("get document %s: %w", u, err)
		}
		if err := fn(u, data); err != nil {
			return err
		}
	}
	return nil
}

// InsertMatchXG replaces the stored match, attempts and attempt events for
// res in one transaction.
func (db *DB) InsertMatchXG(res *model.MatchXG, homeTeam, awayTeam string) error {
	bg := res.Background
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"attempt_events", "attempts"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE competition = ? AND match_id = ?",
			bg.Competition, bg.MatchID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO matches(
			competition, match_id, source, kickoff, season, venue,
			home_team_id, away_team_id, home_team, away_team, home_score, away_score
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		bg.Competition, bg.MatchID, res.Source, bg.Kickoff.Format(time.RFC3339), bg.Season, bg.Venue,
		bg.HomeTeamID, bg.AwayTeamID, homeTeam, awayTeam, bg.HomeScore, bg.AwayScore,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	attStmt, err := tx.Prepare(`
		INSERT INTO attempts(
			competition, match_id, attempt_idx, team_id, player_id,
			is_home, headed, is_goal, distance, angle, possession,
			mins, secs, seq_len
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer attStmt.Close()

	evStmt, err := tx.Prepare(`
		INSERT INTO attempt_events(
			competition, match_id, attempt_idx, idx, category, mins, secs,
			x, y, end_x, end_y, has_end, team_id, player_id, action_type, type, flipped
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer evStmt.Close()

	for _, xa := range res.Attempts {
		f := xa.Features
		_, err = attStmt.Exec(
			bg.Competition, bg.MatchID, f.AttemptIdx, f.TeamID, f.PlayerID,
			boolInt(f.IsHome), boolInt(f.Headed), boolInt(f.IsGoal),
			f.Distance, f.Angle, nullFloat(f.Possession),
			f.Mins, f.Secs, f.SeqLen,
		)
		if err != nil {
			return fmt.Errorf("insert attempt %d: %w", f.AttemptIdx, err)
		}
		for _, r := range xa.Seq {
			_, err = evStmt.Exec(
				bg.Competition, bg.MatchID, f.AttemptIdx, r.Idx, r.Category, r.Mins, r.Secs,
				r.X, r.Y, r.EndX, r.EndY, boolInt(r.HasEnd),
				r.TeamID, r.PlayerID, r.ActionType, r.Type, boolInt(r.Flipped),
			)
			if err != nil {
				return fmt.Errorf("insert attempt_events %d/%d: %w", f.AttemptIdx, r.Idx, err)
			}
		}
	}
	return tx.Commit()
}

const matchColumns = `
	m.competition, m.match_id, m.source, m.kickoff, m.season, m.venue,
	m.home_team_id, m.away_team_id, m.home_team, m.away_team, m.home_score, m.away_score,
	(SELECT COUNT(1) FROM attempts a WHERE a.competition = m.competition AND a.match_id = m.match_id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (MatchRecord, error) {
	var r MatchRecord
	var kickoff string
	if err := s.Scan(&r.Competition, &r.MatchID, &r.Source, &kickoff, &r.Season, &r.Venue,
		&r.HomeTeamID, &r.AwayTeamID, &r.HomeTeam, &r.AwayTeam, &r.HomeScore, &r.AwayScore,
		&r.Attempts); err != nil {
		return r, err
	}
	t, err := time.Parse(time.RFC3339, kickoff)
	if err != nil {
		return r, fmt.Errorf("kickoff %q: %w", kickoff, err)
	}
	r.Kickoff = t
	return r, nil
}

// ListMatches returns stored matches ordered by kickoff desc, optionally
// restricted to the given competitions.
func (db *DB) ListMatches(competitions ...string) ([]MatchRecord, error) {
	q := "SELECT " + matchColumns + " FROM matches m"
	args := make([]any, len(competitions))
	if len(competitions) > 0 {
		q += " WHERE m.competition IN (" + placeholders(len(competitions)) + ")"
		for i, c := range competitions {
			args[i] = c
		}
	}
	q += " ORDER BY m.kickoff DESC, m.match_id"

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetMatch returns one stored match, or nil if absent.
func (db *DB) GetMatch(competition, matchID string) (*MatchRecord, error) {
	row := db.conn.QueryRow("SELECT "+matchColumns+" FROM matches m WHERE m.competition = ? AND m.match_id = ?",
		competition, matchID)
	r, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetAttempts rebuilds the stored features and sequence rows of a match.
// The raw Attempt events are not persisted and are left nil.
func (db *DB) GetAttempts(competition, matchID string) ([]model.XGAttempt, error) {
	rows, err := db.conn.Query(`
		SELECT attempt_idx, team_id, player_id, is_home, headed, is_goal,
		       distance, angle, possession, mins, secs, seq_len
		FROM attempts WHERE competition = ? AND match_id = ?
		ORDER BY attempt_idx`, competition, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.XGAttempt
	index := map[int]int{}
	for rows.Next() {
		var f model.Features
		var isHome, headed, isGoal int
		var poss sql.NullFloat64
		if err := rows.Scan(&f.AttemptIdx, &f.TeamID, &f.PlayerID, &isHome, &headed, &isGoal,
			&f.Distance, &f.Angle, &poss, &f.Mins, &f.Secs, &f.SeqLen); err != nil {
			return nil, err
		}
		f.IsHome, f.Headed, f.IsGoal = isHome != 0, headed != 0, isGoal != 0
		f.Possession = floatOrNaN(poss)
		index[f.AttemptIdx] = len(out)
		out = append(out, model.XGAttempt{Features: f})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	evRows, err := db.conn.Query(`
		SELECT attempt_idx, idx, category, mins, secs, x, y, end_x, end_y, has_end,
		       team_id, player_id, action_type, type, flipped
		FROM attempt_events WHERE competition = ? AND match_id = ?
		ORDER BY attempt_idx, idx`, competition, matchID)
	if err != nil {
		return nil, err
	}
	defer evRows.Close()

	for evRows.Next() {
		var attemptIdx, hasEnd, flipped int
		var r model.SeqRow
		if err := evRows.Scan(&attemptIdx, &r.Idx, &r.Category, &r.Mins, &r.Secs,
			&r.X, &r.Y, &r.EndX, &r.EndY, &hasEnd,
			&r.TeamID, &r.PlayerID, &r.ActionType, &r.Type, &flipped); err != nil {
			return nil, err
		}
		r.HasEnd, r.Flipped = hasEnd != 0, flipped != 0
		i, ok := index[attemptIdx]
		if !ok {
			return nil, fmt.Errorf("attempt_events row for missing attempt %d", attemptIdx)
		}
		out[i].Seq = append(out[i].Seq, r)
	}
	return out, evRows.Err()
}

// boolInt converts a bool to 0/1 for SQLite storage.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

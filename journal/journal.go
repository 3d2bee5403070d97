// Package journal records matches and their round event logs in SQLite.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Fedya1234/CardBattle/types"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrMatchNotFound is returned when a match id is not in the journal.
var ErrMatchNotFound = errors.New("match not found")

// Match is one journaled match.
type Match struct {
	ID         string
	Seed       int64
	DeckP0     string
	DeckP1     string
	Outcome    types.Outcome
	StartedAt  time.Time
	FinishedAt time.Time // zero while the match is running
}

// Round is one resolved round of a match.
type Round struct {
	MatchID   string
	Round     int
	Outcome   types.Outcome
	Advantage float64
	Events    []types.Event
}

// Journal is a SQLite-backed match log.
type Journal struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (or creates) the journal at path and applies the schema.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Journal{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the SQLite connection.
func (j *Journal) Close() error {
	if j == nil || j.sqlDB == nil {
		return nil
	}
	return j.sqlDB.Close()
}

// StartMatch inserts m and returns its id. A new id is generated when m.ID
// is empty.
func (j *Journal) StartMatch(ctx context.Context, m Match) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	} else if _, err := uuid.Parse(m.ID); err != nil {
		return "", fmt.Errorf("match id %q: %w", m.ID, err)
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = j.now().UTC()
	}

	_, err := j.sqlDB.ExecContext(ctx, `
INSERT INTO matches (id, seed, deck_p0, deck_p1, started_at)
VALUES (?, ?, ?, ?, ?)
`,
		m.ID,
		m.Seed,
		m.DeckP0,
		m.DeckP1,
		m.StartedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("start match: %w", err)
	}
	return m.ID, nil
}

// RecordRound stores one round result. Recording the same round twice
// replaces the earlier row.
func (j *Journal) RecordRound(ctx context.Context, matchID string, res types.RoundResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if res.Round <= 0 {
		return fmt.Errorf("round must be positive, got %d", res.Round)
	}
	events := res.Events
	if events == nil {
		events = []types.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	_, err = j.sqlDB.ExecContext(ctx, `
INSERT OR REPLACE INTO rounds (match_id, round, outcome, advantage, events)
VALUES (?, ?, ?, ?, ?)
`,
		matchID,
		res.Round,
		string(res.Outcome),
		res.Advantage,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("record round %d: %w", res.Round, err)
	}
	return nil
}

// FinishMatch stamps the final outcome on a match.
func (j *Journal) FinishMatch(ctx context.Context, matchID string, outcome types.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := j.sqlDB.ExecContext(ctx, `
UPDATE matches SET outcome = ?, finished_at = ? WHERE id = ?
`, string(outcome), j.now().UTC().UnixMilli(), matchID)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish match %s: %w", matchID, ErrMatchNotFound)
	}
	return nil
}

// Match returns the journaled match with id.
func (j *Journal) Match(ctx context.Context, id string) (Match, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}
	row := j.sqlDB.QueryRowContext(ctx, `
SELECT id, seed, deck_p0, deck_p1, outcome, started_at, finished_at
FROM matches
WHERE id = ?
`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, fmt.Errorf("match %s: %w", id, ErrMatchNotFound)
	}
	return m, err
}

// Matches lists newest-first matches.
func (j *Journal) Matches(ctx context.Context, limit int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := j.sqlDB.QueryContext(ctx, `
SELECT id, seed, deck_p0, deck_p1, outcome, started_at, finished_at
FROM matches
ORDER BY started_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, limit)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// Rounds returns the recorded rounds of a match in round order.
func (j *Journal) Rounds(ctx context.Context, matchID string) ([]Round, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := j.sqlDB.QueryContext(ctx, `
SELECT round, outcome, advantage, events
FROM rounds
WHERE match_id = ?
ORDER BY round
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		r := Round{MatchID: matchID}
		var outcome, events string
		if err := rows.Scan(&r.Round, &outcome, &r.Advantage, &events); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.Outcome = types.Outcome(outcome)
		if err := json.Unmarshal([]byte(events), &r.Events); err != nil {
			return nil, fmt.Errorf("decode round %d events: %w", r.Round, err)
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return rounds, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (Match, error) {
	var m Match
	var outcome string
	var startedAt int64
	var finishedAt sql.NullInt64
	if err := s.Scan(&m.ID, &m.Seed, &m.DeckP0, &m.DeckP1, &outcome, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, err
		}
		return Match{}, fmt.Errorf("scan match: %w", err)
	}
	m.Outcome = types.Outcome(outcome)
	m.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		m.FinishedAt = time.UnixMilli(finishedAt.Int64).UTC()
	}
	return m, nil
}

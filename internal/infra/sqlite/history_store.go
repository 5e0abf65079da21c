package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"trivia-room-service/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_scores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    player_name TEXT NOT NULL,
    game_id TEXT NOT NULL DEFAULT '',
    score INTEGER NOT NULL CHECK (score >= 0),
    recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_player_scores_name ON player_scores(player_name);
`

// HistoryStore persists score history in an embedded SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: a single writer, and PRAGMAs stick to it
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) AppendScores(ctx context.Context, gameID string, scores map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO player_scores (player_name, game_id, score) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range sortedNames(scores) {
		if _, err := stmt.ExecContext(ctx, name, gameID, scores[name]); err != nil {
			return fmt.Errorf("insert score for %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *HistoryStore) Histories(ctx context.Context) (map[string]domain.PlayerHistory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player_name, score FROM player_scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.PlayerHistory)
	for rows.Next() {
		var name string
		var score int
		if err := rows.Scan(&name, &score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		h := out[name]
		h.Append(score)
		out[name] = h
	}
	return out, rows.Err()
}

func (s *HistoryStore) History(ctx context.Context, playerName string) (domain.PlayerHistory, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT score FROM player_scores WHERE player_name = ? ORDER BY id`, playerName)
	if err != nil {
		return domain.PlayerHistory{}, false, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return domain.PlayerHistory{}, false, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return domain.PlayerHistory{}, false, err
	}
	if len(scores) == 0 {
		return domain.PlayerHistory{}, false, nil
	}
	return domain.NewPlayerHistory(scores), true, nil
}

func sortedNames(scores map[string]int) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

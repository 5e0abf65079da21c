package postgres

import (
	"context"
	"fmt"

	"trivia-room-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// HistoryStore persists score history in the player_scores table.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// AppendScores inserts one row per player in a single transaction.
func (s *HistoryStore) AppendScores(ctx context.Context, gameID string, scores map[string]int) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for name, score := range scores {
			batch.Queue(`INSERT INTO player_scores (player_name, game_id, score) VALUES ($1, $2, $3)`, name, gameID, score)
		}
		results := tx.SendBatch(ctx, batch)
		for range scores {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert score: %w", err)
			}
		}
		return results.Close()
	})
}

func (s *HistoryStore) Histories(ctx context.Context) (map[string]domain.PlayerHistory, error) {
	rows, err := s.pool.Query(ctx, `SELECT player_name, score FROM player_scores ORDER BY id`)
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
	rows, err := s.pool.Query(ctx, `SELECT score FROM player_scores WHERE player_name=$1 ORDER BY id`, playerName)
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

package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"trivia-room-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps score history in Redis:
//
//	SADD  trivia:history:players {name}
//	RPUSH trivia:history:{name}:scores {score}
//	SADD  trivia:history:games {gameID}
//
// Each game's appends run in one MULTI/EXEC watched on the games set, so a
// game id is recorded at most once even when a finish is retried.
type HistoryStore struct {
	client *redis.Client
}

const maxAppendRetries = 3

func NewHistoryStore(client *redis.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func (s *HistoryStore) AppendScores(ctx context.Context, gameID string, scores map[string]int) error {
	txf := func(tx *redis.Tx) error {
		if gameID != "" {
			recorded, err := tx.SIsMember(ctx, s.gamesKey(), gameID).Result()
			if err != nil {
				return err
			}
			if recorded {
				return nil
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for name, score := range scores {
				pipe.SAdd(ctx, s.playersKey(), name)
				pipe.RPush(ctx, s.scoresKey(name), score)
			}
			if gameID != "" {
				pipe.SAdd(ctx, s.gamesKey(), gameID)
			}
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxAppendRetries; i++ {
		err = s.client.Watch(ctx, txf, s.gamesKey())
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("append scores: %w", err)
	}
	return nil
}

func (s *HistoryStore) Histories(ctx context.Context) (map[string]domain.PlayerHistory, error) {
	names, err := s.client.SMembers(ctx, s.playersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if len(names) == 0 {
		return map[string]domain.PlayerHistory{}, nil
	}

	cmds := make(map[string]*redis.StringSliceCmd, len(names))
	pipe := s.client.Pipeline()
	for _, name := range names {
		cmds[name] = pipe.LRange(ctx, s.scoresKey(name), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	out := make(map[string]domain.PlayerHistory, len(names))
	for name, cmd := range cmds {
		scores, err := parseScores(cmd.Val())
		if err != nil {
			return nil, fmt.Errorf("scores for %s: %w", name, err)
		}
		out[name] = domain.NewPlayerHistory(scores)
	}
	return out, nil
}

func (s *HistoryStore) History(ctx context.Context, playerName string) (domain.PlayerHistory, bool, error) {
	raw, err := s.client.LRange(ctx, s.scoresKey(playerName), 0, -1).Result()
	if err != nil {
		return domain.PlayerHistory{}, false, fmt.Errorf("load scores: %w", err)
	}
	if len(raw) == 0 {
		return domain.PlayerHistory{}, false, nil
	}
	scores, err := parseScores(raw)
	if err != nil {
		return domain.PlayerHistory{}, false, err
	}
	return domain.NewPlayerHistory(scores), true, nil
}

func parseScores(raw []string) ([]int, error) {
	scores := make([]int, 0, len(raw))
	for _, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse score %q: %w", v, err)
		}
		scores = append(scores, n)
	}
	return scores, nil
}

func (s *HistoryStore) playersKey() string {
	return "trivia:history:players"
}

func (s *HistoryStore) gamesKey() string {
	return "trivia:history:games"
}

func (s *HistoryStore) scoresKey(name string) string {
	return "trivia:history:" + name + ":scores"
}

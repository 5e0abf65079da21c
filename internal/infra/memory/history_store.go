package memory

import (
	"context"
	"sync"

	"trivia-room-service/internal/domain"
)

// HistoryStore is an in-memory implementation of app.HistoryRepository.
type HistoryStore struct {
	mu      sync.RWMutex
	players map[string]domain.PlayerHistory
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		players: make(map[string]domain.PlayerHistory),
	}
}

func (s *HistoryStore) AppendScores(_ context.Context, _ string, scores map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, score := range scores {
		h := s.players[name]
		h.Append(score)
		s.players[name] = h
	}
	return nil
}

func (s *HistoryStore) Histories(_ context.Context) (map[string]domain.PlayerHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.PlayerHistory, len(s.players))
	for name, h := range s.players {
		out[name] = cloneHistory(h)
	}
	return out, nil
}

func (s *HistoryStore) History(_ context.Context, playerName string) (domain.PlayerHistory, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.players[playerName]
	if !ok {
		return domain.PlayerHistory{}, false, nil
	}
	return cloneHistory(h), true, nil
}

func cloneHistory(h domain.PlayerHistory) domain.PlayerHistory {
	h.Scores = append([]int(nil), h.Scores...)
	return h
}

package app

import (
	"sort"
	"strings"
	"sync"

	"trivia-room-service/internal/domain"
)

// Session is the single shared game instance. All state changes happen under
// mu; subscribers receive a snapshot after each change.
type Session struct {
	mu          sync.RWMutex
	newID       func() string
	id          string
	questions   []domain.Question
	players     map[string]*domain.PlayerRound
	order       []string
	current     int
	status      domain.Status
	subscribers map[chan domain.Snapshot]struct{}
}

// NewSession builds a waiting session over the given bank. newID supplies a
// fresh session id on creation and on every reset.
func NewSession(questions []domain.Question, newID func() string) *Session {
	s := &Session{
		newID:       newID,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	s.resetLocked(questions)
	return s
}

func (s *Session) resetLocked(questions []domain.Question) {
	s.id = s.newID()
	s.questions = append([]domain.Question(nil), questions...)
	s.players = make(map[string]*domain.PlayerRound)
	s.order = nil
	s.current = 0
	s.status = domain.StatusWaiting
}

func (s *Session) reset(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(questions)
	s.broadcastLocked()
}

func (s *Session) join(name string) (domain.JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.JoinResult{}, domain.ErrMissingPlayerName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[name]; ok {
		return domain.JoinResult{}, domain.ErrDuplicatePlayer
	}
	s.players[name] = &domain.PlayerRound{}
	s.order = append(s.order, name)
	s.broadcastLocked()

	return domain.JoinResult{
		Success:     true,
		PlayerCount: len(s.order),
		Players:     s.playerNamesLocked(),
	}, nil
}

func (s *Session) answer(name string, answer bool) (domain.AnswerResult, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[name]
	if !ok {
		return domain.AnswerResult{}, domain.ErrPlayerNotFound
	}
	if s.current >= len(s.questions) {
		return domain.AnswerResult{}, domain.ErrGameFinished
	}
	if player.Answered {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	result, awarded := scoreAnswer(s.questions[s.current], answer)
	player.Score += awarded
	player.Answered = true
	if s.status == domain.StatusWaiting {
		s.status = domain.StatusInProgress
	}
	s.broadcastLocked()
	return result, nil
}

// advance moves to the next question. When that finishes the game, record
// receives every player's final score before any state changes; if it fails
// the session is left untouched.
func (s *Session) advance(record func(gameID string, scores map[string]int) error) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.questions)
	if s.status == domain.StatusFinished || s.current >= total {
		return domain.Progress{}, domain.ErrGameFinished
	}

	next := s.current + 1
	finished := next >= total
	if finished && len(s.players) > 0 {
		scores := make(map[string]int, len(s.players))
		for name, player := range s.players {
			scores[name] = player.Score
		}
		if err := record(s.id, scores); err != nil {
			return domain.Progress{}, err
		}
	}

	for _, player := range s.players {
		player.Answered = false
	}
	s.current = next
	if finished {
		s.status = domain.StatusFinished
	} else {
		s.status = domain.StatusInProgress
	}
	s.broadcastLocked()

	return domain.Progress{
		CurrentQuestion: s.current,
		TotalQuestions:  total,
		Finished:        finished,
	}, nil
}

func (s *Session) snapshotStatus() domain.GameStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *Session) questionList() []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Question(nil), s.questions...)
}

func (s *Session) leaderboard() []domain.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardLocked()
}

// subscribe registers a snapshot channel. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// buffer is empty, so this cannot block while holding mu
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow reader: drop the oldest snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Status:      s.statusLocked(),
		Leaderboard: s.leaderboardLocked(),
	}
}

func (s *Session) statusLocked() domain.GameStatus {
	return domain.GameStatus{
		SessionID:       s.id,
		PlayerCount:     len(s.order),
		Players:         s.playerNamesLocked(),
		CurrentQuestion: s.current,
		TotalQuestions:  len(s.questions),
		Status:          s.status,
	}
}

func (s *Session) playerNamesLocked() []string {
	return append(make([]string, 0, len(s.order)), s.order...)
}

func (s *Session) leaderboardLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, domain.LeaderboardEntry{Name: name, Score: s.players[name].Score})
	}
	// ties keep join order
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

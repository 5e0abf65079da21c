package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"trivia-room-service/internal/domain"
	"github.com/google/uuid"
)

// globalLeaderboardSize caps the all-time leaderboard.
const globalLeaderboardSize = 20

// QuestionRepository loads a question bank (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, bankID string) ([]domain.Question, error)
}

// HistoryRepository abstracts the durable score history (file, SQLite, Redis, etc).
// Implementations serialize their own writes.
type HistoryRepository interface {
	// AppendScores adds one entry per player for the finished game gameID.
	AppendScores(ctx context.Context, gameID string, scores map[string]int) error
	Histories(ctx context.Context) (map[string]domain.PlayerHistory, error)
	History(ctx context.Context, playerName string) (domain.PlayerHistory, bool, error)
}

// GameService contains the trivia room use cases.
type GameService struct {
	questions QuestionRepository
	history   HistoryRepository
	bankID    string
	newID     func() string
	logger    *slog.Logger
	session   *Session
}

// Option customizes a GameService.
type Option func(*GameService)

// WithBankID selects the question bank loaded on start and reset.
func WithBankID(id string) Option {
	return func(s *GameService) { s.bankID = id }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *GameService) { s.logger = logger }
}

// WithSessionIDs overrides session id generation, for deterministic tests.
func WithSessionIDs(newID func() string) Option {
	return func(s *GameService) { s.newID = newID }
}

// NewGameService loads the question bank and opens a waiting session.
func NewGameService(ctx context.Context, questions QuestionRepository, history HistoryRepository, opts ...Option) (*GameService, error) {
	s := &GameService{
		questions: questions,
		history:   history,
		bankID:    domain.DefaultBankID,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	bank, err := s.loadBank(ctx)
	if err != nil {
		return nil, err
	}
	s.session = NewSession(bank, s.newID)
	return s, nil
}

func (s *GameService) loadBank(ctx context.Context) ([]domain.Question, error) {
	bank, err := s.questions.GetQuestions(ctx, s.bankID)
	if err != nil {
		return nil, fmt.Errorf("load question bank %q: %w", s.bankID, err)
	}
	if len(bank) == 0 {
		return nil, domain.ErrEmptyQuestionBank
	}
	return bank, nil
}

// Join adds a player to the current session.
func (s *GameService) Join(_ context.Context, playerName string) (domain.JoinResult, error) {
	return s.session.join(playerName)
}

// Status reports the current session without mutating it.
func (s *GameService) Status(_ context.Context) domain.GameStatus {
	return s.session.snapshotStatus()
}

// Questions returns the session's question bank in play order.
func (s *GameService) Questions(_ context.Context) []domain.Question {
	return s.session.questionList()
}

// SubmitAnswer scores a player's answer to the current question.
func (s *GameService) SubmitAnswer(_ context.Context, playerName string, answer bool) (domain.AnswerResult, error) {
	return s.session.answer(playerName, answer)
}

// NextQuestion advances the session. Finishing the game records every
// player's score in the history; if that fails the session does not advance.
func (s *GameService) NextQuestion(ctx context.Context) (domain.Progress, error) {
	var sessionID string
	progress, err := s.session.advance(func(gameID string, scores map[string]int) error {
		sessionID = gameID
		if err := s.history.AppendScores(ctx, gameID, scores); err != nil {
			s.logger.Error("record game scores", "session", sessionID, "players", len(scores), "error", err)
			return fmt.Errorf("record game scores: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Progress{}, err
	}
	if progress.Finished {
		s.logger.Info("game finished", "session", sessionID, "questions", progress.TotalQuestions)
	}
	return progress, nil
}

// Leaderboard returns the current session's scores, highest first.
func (s *GameService) Leaderboard(_ context.Context) []domain.LeaderboardEntry {
	return s.session.leaderboard()
}

// GlobalLeaderboard ranks every stored player by total score.
func (s *GameService) GlobalLeaderboard(ctx context.Context) ([]domain.GlobalLeaderboardEntry, error) {
	histories, err := s.history.Histories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load histories: %w", err)
	}

	entries := make([]domain.GlobalLeaderboardEntry, 0, len(histories))
	for name, h := range histories {
		if len(h.Scores) == 0 {
			continue
		}
		total := 0
		for _, score := range h.Scores {
			total += score
		}
		entries = append(entries, domain.GlobalLeaderboardEntry{
			Name:         name,
			TotalScore:   total,
			GamesPlayed:  len(h.Scores),
			AverageScore: domain.FormatAverage(total, len(h.Scores)),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > globalLeaderboardSize {
		entries = entries[:globalLeaderboardSize]
	}
	return entries, nil
}

// PlayerHistory returns a player's stored scores; unknown players get an
// empty history rather than an error.
func (s *GameService) PlayerHistory(ctx context.Context, playerName string) (domain.HistoryView, error) {
	h, ok, err := s.history.History(ctx, playerName)
	if err != nil {
		return domain.HistoryView{}, fmt.Errorf("load history: %w", err)
	}
	if !ok || len(h.Scores) == 0 {
		return domain.HistoryView{PlayerName: playerName, Scores: []int{}}, nil
	}
	h = domain.NewPlayerHistory(h.Scores)
	return domain.HistoryView{
		PlayerName:       playerName,
		Scores:           h.Scores,
		AverageScore:     domain.FormatAverage(h.TotalScore, h.GamesPlayed),
		TotalGamesPlayed: h.GamesPlayed,
	}, nil
}

// Reset discards the session and starts a new waiting one. History is kept.
func (s *GameService) Reset(ctx context.Context) error {
	bank, err := s.loadBank(ctx)
	if err != nil {
		return err
	}
	s.session.reset(bank)
	return nil
}

// Subscribe returns a channel of session snapshots. The caller must invoke
// the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context) (<-chan domain.Snapshot, func()) {
	return s.session.subscribe()
}

package domain

import (
	"math"
	"strconv"
)

// Status is the lifecycle phase of the shared game session.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

// Question is a true/false trivia statement.
type Question struct {
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// PlayerRound tracks a joined player within the current session.
type PlayerRound struct {
	Score    int
	Answered bool
}

// PlayerHistory is the persisted, cross-session record of a player.
type PlayerHistory struct {
	Scores      []int `json:"scores"`
	TotalScore  int   `json:"totalScore"`
	GamesPlayed int   `json:"gamesPlayed"`
}

// Append records the score of one finished game.
func (h *PlayerHistory) Append(score int) {
	h.Scores = append(h.Scores, score)
	h.TotalScore += score
	h.GamesPlayed++
}

// NewPlayerHistory builds a history from an ordered list of scores.
func NewPlayerHistory(scores []int) PlayerHistory {
	h := PlayerHistory{Scores: make([]int, 0, len(scores))}
	for _, s := range scores {
		h.Append(s)
	}
	return h
}

// FormatAverage renders total/games with two decimals, e.g. "12.00".
// Halves round away from zero, so 13/8 reads "1.63".
func FormatAverage(total, games int) string {
	if games == 0 {
		return "0.00"
	}
	rounded := math.Round(float64(total)*100/float64(games)) / 100
	return strconv.FormatFloat(rounded, 'f', 2, 64)
}

// JoinResult is returned after a player joins the session.
type JoinResult struct {
	Success     bool     `json:"success"`
	PlayerCount int      `json:"playerCount"`
	Players     []string `json:"players"`
}

// GameStatus is a read-only view of the session.
type GameStatus struct {
	SessionID       string   `json:"sessionId"`
	PlayerCount     int      `json:"playerCount"`
	Players         []string `json:"players"`
	CurrentQuestion int      `json:"currentQuestion"`
	TotalQuestions  int      `json:"totalQuestions"`
	Status          Status   `json:"status"`
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer bool   `json:"correctAnswer"`
	Feedback      string `json:"feedback"`
}

// Progress is returned after advancing to the next question.
type Progress struct {
	CurrentQuestion int  `json:"currentQuestion"`
	TotalQuestions  int  `json:"totalQuestions"`
	Finished        bool `json:"finished"`
}

// LeaderboardEntry is one row of the session leaderboard.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GlobalLeaderboardEntry is one row of the all-time leaderboard.
type GlobalLeaderboardEntry struct {
	Name         string `json:"name"`
	TotalScore   int    `json:"totalScore"`
	GamesPlayed  int    `json:"gamesPlayed"`
	AverageScore string `json:"averageScore"`
}

// HistoryView is the per-player history response. AverageScore is empty
// for players with no finished games.
type HistoryView struct {
	PlayerName       string `json:"playerName"`
	Scores           []int  `json:"scores"`
	AverageScore     string `json:"averageScore,omitempty"`
	TotalGamesPlayed int    `json:"totalGamesPlayed"`
}

// Snapshot is pushed to subscribers after every session mutation.
type Snapshot struct {
	Status      GameStatus         `json:"status"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
	"trivia-room-service/internal/infra/memory"
)

func TestJoinAndStatus(t *testing.T) {
	server := newTestServer(t, memory.NewHistoryStore())

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		var res domain.JoinResult
		if code := doJSON(t, server, http.MethodPost, "/api/join", map[string]any{"playerName": name}, &res); code != http.StatusOK {
			t.Fatalf("join %s: status %d", name, code)
		}
		if !res.Success {
			t.Fatalf("join %s: expected success", name)
		}
	}

	var errRes errorBody
	if code := doJSON(t, server, http.MethodPost, "/api/join", map[string]any{"playerName": "Alice"}, &errRes); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", code)
	}
	if errRes.Error == "" {
		t.Fatalf("expected error message")
	}
	if code := doJSON(t, server, http.MethodPost, "/api/join", map[string]any{}, &errRes); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", code)
	}

	var status domain.GameStatus
	doJSON(t, server, http.MethodGet, "/api/status", nil, &status)
	if status.PlayerCount != 3 || status.TotalQuestions != 12 || status.Status != domain.StatusWaiting {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestAnswerErrors(t *testing.T) {
	server := newTestServer(t, memory.NewHistoryStore())
	doJSON(t, server, http.MethodPost, "/api/join", map[string]any{"playerName": "Alice"}, nil)

	var errRes errorBody
	if code := doJSON(t, server, http.MethodPost, "/api/answer", map[string]any{"playerName": "Dave", "answer": true}, &errRes); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown player, got %d", code)
	}
	if code := doJSON(t, server, http.MethodPost, "/api/answer", map[string]any{"playerName": "Alice"}, &errRes); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing answer, got %d", code)
	}

	var res domain.AnswerResult
	if code := doJSON(t, server, http.MethodPost, "/api/answer", map[string]any{"playerName": "Alice", "answer": false}, &res); code != http.StatusOK {
		t.Fatalf("answer: status %d", code)
	}
	if res.IsCorrect || !res.CorrectAnswer || res.Feedback != "Wrong!" {
		t.Fatalf("unexpected answer %+v", res)
	}
	if code := doJSON(t, server, http.MethodPost, "/api/answer", map[string]any{"playerName": "Alice", "answer": true}, &errRes); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for second answer, got %d", code)
	}
}

func TestFullGameOverHTTP(t *testing.T) {
	server := newTestServer(t, memory.NewHistoryStore())
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		doJSON(t, server, http.MethodPost, "/api/join", map[string]any{"playerName": name}, nil)
	}

	var questions []domain.Question
	doJSON(t, server, http.MethodGet, "/api/questions", nil, &questions)
	if len(questions) != 12 {
		t.Fatalf("expected 12 questions, got %d", len(questions))
	}

	var progress domain.Progress
	for i, q := range questions {
		var res domain.AnswerResult
		doJSON(t, server, http.MethodPost, "/api/answer", map[string]any{"playerName": "Alice", "answer": q.Correct}, &res)
		if !res.IsCorrect {
			t.Fatalf("question %d: expected correct", i)
		}
		if code := doJSON(t, server, http.MethodPost, "/api/next-question", nil, &progress); code != http.StatusOK {
			t.Fatalf("next %d: status %d", i, code)
		}
	}
	if !progress.Finished || progress.CurrentQuestion != 12 {
		t.Fatalf("unexpected final progress %+v", progress)
	}

	var board []domain.LeaderboardEntry
	doJSON(t, server, http.MethodGet, "/api/leaderboard", nil, &board)
	if len(board) != 3 || board[0].Name != "Alice" || board[0].Score != 12 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}

	var global []map[string]any
	doJSON(t, server, http.MethodGet, "/api/leaderboard/global", nil, &global)
	if len(global) != 3 {
		t.Fatalf("expected 3 global entries, got %+v", global)
	}
	if global[0]["name"] != "Alice" || global[0]["totalScore"] != float64(12) || global[0]["gamesPlayed"] != float64(1) || global[0]["averageScore"] != "12.00" {
		t.Fatalf("unexpected global entry %+v", global[0])
	}

	var history domain.HistoryView
	doJSON(t, server, http.MethodGet, "/api/player/Alice/history", nil, &history)
	if history.PlayerName != "Alice" || history.TotalGamesPlayed != 1 || history.AverageScore != "12.00" {
		t.Fatalf("unexpected history %+v", history)
	}

	var errRes errorBody
	if code := doJSON(t, server, http.MethodPost, "/api/next-question", nil, &errRes); code != http.StatusBadRequest {
		t.Fatalf("expected 400 after finish, got %d", code)
	}

	var reset successResponse
	doJSON(t, server, http.MethodPost, "/api/reset", nil, &reset)
	if !reset.Success {
		t.Fatalf("expected reset success")
	}
	var status domain.GameStatus
	doJSON(t, server, http.MethodGet, "/api/status", nil, &status)
	if status.PlayerCount != 0 || status.Status != domain.StatusWaiting {
		t.Fatalf("unexpected status after reset %+v", status)
	}
	doJSON(t, server, http.MethodGet, "/api/player/Alice/history", nil, &history)
	if history.TotalGamesPlayed != 1 {
		t.Fatalf("expected history to survive reset, got %+v", history)
	}
}

func TestUnknownPlayerHistory(t *testing.T) {
	server := newTestServer(t, memory.NewHistoryStore())

	var raw map[string]any
	if code := doJSON(t, server, http.MethodGet, "/api/player/Nobody/history", nil, &raw); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if raw["playerName"] != "Nobody" {
		t.Fatalf("unexpected body %+v", raw)
	}
	if scores, ok := raw["scores"].([]any); !ok || len(scores) != 0 {
		t.Fatalf("expected empty scores array, got %+v", raw["scores"])
	}
	if _, ok := raw["averageScore"]; ok {
		t.Fatalf("expected no averageScore for unknown player")
	}
}

func TestHistoryFailureReturns500(t *testing.T) {
	server := newTestServer(t, brokenHistory{})
	doJSON(t, server, http.MethodPost, "/api/join", map[string]any{"playerName": "Alice"}, nil)

	var errRes errorBody
	if code := doJSON(t, server, http.MethodGet, "/api/leaderboard/global", nil, &errRes); code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if errRes.Error != "internal server error" {
		t.Fatalf("expected storage details hidden, got %q", errRes.Error)
	}

	for i := 0; i < 11; i++ {
		doJSON(t, server, http.MethodPost, "/api/next-question", nil, nil)
	}
	if code := doJSON(t, server, http.MethodPost, "/api/next-question", nil, &errRes); code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when scores cannot be recorded, got %d", code)
	}
	var status domain.GameStatus
	doJSON(t, server, http.MethodGet, "/api/status", nil, &status)
	if status.Status == domain.StatusFinished {
		t.Fatalf("expected game not to finish")
	}
}

func TestHealthzAndNotFound(t *testing.T) {
	server := newTestServer(t, memory.NewHistoryStore())

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected healthz %d %q", resp.StatusCode, body)
	}

	if code := doJSON(t, server, http.MethodGet, "/api/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

type brokenHistory struct{}

var errStorage = errors.New("storage offline")

func (brokenHistory) AppendScores(context.Context, string, map[string]int) error {
	return errStorage
}

func (brokenHistory) Histories(context.Context) (map[string]domain.PlayerHistory, error) {
	return nil, errStorage
}

func (brokenHistory) History(context.Context, string) (domain.PlayerHistory, bool, error) {
	return domain.PlayerHistory{}, false, errStorage
}

func newTestService(t *testing.T, history app.HistoryRepository) *app.GameService {
	t.Helper()
	repo := memory.NewQuestionRepository(memory.NewDefaultQuestionLoader(), time.Minute)
	service, err := app.NewGameService(context.Background(), repo, history, app.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func newTestServer(t *testing.T, history app.HistoryRepository) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(newTestService(t, history), RouterConfig{Prefix: "/api"}, discardLogger()))
	t.Cleanup(server.Close)
	return server
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

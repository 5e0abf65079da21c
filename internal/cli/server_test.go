package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"trivia-room-service/internal/config"
	"trivia-room-service/internal/infra/file"
	"trivia-room-service/internal/infra/memory"
	redisstore "trivia-room-service/internal/infra/redis"
	"trivia-room-service/internal/infra/sqlite"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestOpenHistorySelectsDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var cfg config.Config
	cfg.History.Path = filepath.Join(dir, "data.json")
	store, closeFn, err := openHistory(ctx, cfg, nil, nil)
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	closeFn()
	if _, ok := store.(*file.HistoryStore); !ok {
		t.Fatalf("expected file store, got %T", store)
	}

	cfg.History.Driver = config.DriverSQLite
	cfg.History.Path = filepath.Join(dir, "history.db")
	store, closeFn, err = openHistory(ctx, cfg, nil, nil)
	if err != nil {
		t.Fatalf("sqlite driver: %v", err)
	}
	closeFn()
	if _, ok := store.(*sqlite.HistoryStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}

	cfg.History.Driver = config.DriverMemory
	store, _, _ = openHistory(ctx, cfg, nil, nil)
	if _, ok := store.(*memory.HistoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	cfg.History.Driver = config.DriverPostgres
	if _, _, err := openHistory(ctx, cfg, nil, nil); err == nil {
		t.Fatalf("expected error without postgres pool")
	}

	cfg.History.Driver = "cassandra"
	if _, _, err := openHistory(ctx, cfg, nil, nil); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestOpenHistoryDefaultsToRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var cfg config.Config
	cfg.Redis.Addr = mr.Addr()
	store, _, err := openHistory(context.Background(), cfg, client, nil)
	if err != nil {
		t.Fatalf("redis driver: %v", err)
	}
	if _, ok := store.(*redisstore.HistoryStore); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}
}

func TestQuestionRepositoryFallsBackToBuiltIn(t *testing.T) {
	var cfg config.Config
	cfg.Questions.Bank = "default"
	cfg.Questions.File = filepath.Join(t.TempDir(), "missing.yaml")

	// a configured but unreadable file is an error, not a silent fallback
	if _, err := questionRepository(cfg, nil, nil).GetQuestions(context.Background(), "default"); err == nil {
		t.Fatalf("expected error for missing question file")
	}

	cfg.Questions.File = ""
	questions, err := questionRepository(cfg, nil, nil).GetQuestions(context.Background(), "default")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 12 {
		t.Fatalf("expected built-in bank, got %d", len(questions))
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	var cfg config.Config
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	logger := newLogger(&buf, cfg, false)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, cfg, true).Debug("debug line")
	if !strings.Contains(buf.String(), "debug line") {
		t.Fatalf("expected verbose to enable debug, got %q", buf.String())
	}
}

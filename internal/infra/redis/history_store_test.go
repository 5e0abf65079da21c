package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestHistoryStoreAppendsAndReads(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewHistoryStore(newClient(mr))

	if err := store.AppendScores(ctx, "g1", map[string]int{"Alice": 12, "Bob": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendScores(ctx, "g2", map[string]int{"Alice": 9}); err != nil {
		t.Fatalf("append: %v", err)
	}

	h, ok, err := store.History(ctx, "Alice")
	if err != nil || !ok {
		t.Fatalf("history: ok=%v err=%v", ok, err)
	}
	if h.TotalScore != 21 || h.GamesPlayed != 2 || h.Scores[0] != 12 || h.Scores[1] != 9 {
		t.Fatalf("unexpected history %+v", h)
	}

	all, err := store.Histories(ctx)
	if err != nil {
		t.Fatalf("histories: %v", err)
	}
	if len(all) != 2 || all["Bob"].TotalScore != 2 {
		t.Fatalf("unexpected histories %+v", all)
	}

	members, _ := mr.Members("trivia:history:games")
	if len(members) != 2 {
		t.Fatalf("expected 2 recorded games, got %v", members)
	}

	// a retried finish for the same game is not counted twice
	if err := store.AppendScores(ctx, "g2", map[string]int{"Alice": 9}); err != nil {
		t.Fatalf("repeat append: %v", err)
	}
	if h, _, _ := store.History(ctx, "Alice"); h.GamesPlayed != 2 || h.TotalScore != 21 {
		t.Fatalf("expected repeat append to be ignored, got %+v", h)
	}

	if _, ok, err := store.History(ctx, "Nobody"); ok || err != nil {
		t.Fatalf("expected no history, ok=%v err=%v", ok, err)
	}
}

package memory

import (
	"context"
	"testing"
)

func TestHistoryStoreAppends(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	if _, ok, _ := store.History(ctx, "Alice"); ok {
		t.Fatalf("expected no history before first game")
	}

	_ = store.AppendScores(ctx, "g1", map[string]int{"Alice": 12, "Bob": 3})
	_ = store.AppendScores(ctx, "g1", map[string]int{"Alice": 8})

	h, ok, err := store.History(ctx, "Alice")
	if err != nil || !ok {
		t.Fatalf("history: ok=%v err=%v", ok, err)
	}
	if h.TotalScore != 20 || h.GamesPlayed != 2 || len(h.Scores) != 2 || h.Scores[1] != 8 {
		t.Fatalf("unexpected history %+v", h)
	}

	all, _ := store.Histories(ctx)
	if len(all) != 2 || all["Bob"].TotalScore != 3 {
		t.Fatalf("unexpected histories %+v", all)
	}

	all["Alice"].Scores[0] = 99
	h, _, _ = store.History(ctx, "Alice")
	if h.Scores[0] != 12 {
		t.Fatalf("expected stored scores isolated from callers, got %v", h.Scores)
	}
}

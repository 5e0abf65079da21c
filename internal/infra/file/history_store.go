package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"trivia-room-service/internal/domain"
	"github.com/spf13/afero"
)

// record is the on-disk layout. Sessions is unused but kept so files written
// by older versions round-trip unchanged.
type record struct {
	Players  map[string]domain.PlayerHistory `json:"players"`
	Sessions map[string]json.RawMessage      `json:"sessions"`
}

// HistoryStore keeps the whole score record in memory and rewrites the file
// after every append. A single mutex serializes readers and the writer, so
// there is no read-then-write race between requests.
type HistoryStore struct {
	fs   afero.Fs
	path string

	mu  sync.RWMutex
	rec record
}

// Open loads path (creating an empty record if it does not exist).
func Open(fsys afero.Fs, path string) (*HistoryStore, error) {
	s := &HistoryStore{fs: fsys, path: path}
	rec, err := s.load()
	if err != nil {
		return nil, err
	}
	s.rec = rec
	if err := s.save(rec); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) load() (record, error) {
	rec := record{}
	data, err := afero.ReadFile(s.fs, s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return rec, fmt.Errorf("read history file: %w", err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &rec); err != nil {
			return rec, fmt.Errorf("decode history file %s: %w", s.path, err)
		}
	}
	if rec.Players == nil {
		rec.Players = make(map[string]domain.PlayerHistory)
	}
	if rec.Sessions == nil {
		rec.Sessions = make(map[string]json.RawMessage)
	}
	return rec, nil
}

// save writes to a temp file and renames it over the target so a crash never
// leaves a truncated record behind.
func (s *HistoryStore) save(rec record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}

func (s *HistoryStore) AppendScores(_ context.Context, _ string, scores map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := record{
		Players:  make(map[string]domain.PlayerHistory, len(s.rec.Players)+len(scores)),
		Sessions: s.rec.Sessions,
	}
	for name, h := range s.rec.Players {
		next.Players[name] = h
	}
	for name, score := range scores {
		h := cloneHistory(next.Players[name])
		h.Append(score)
		next.Players[name] = h
	}

	// the cache only moves forward once the file is written
	if err := s.save(next); err != nil {
		return err
	}
	s.rec = next
	return nil
}

func (s *HistoryStore) Histories(_ context.Context) (map[string]domain.PlayerHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.PlayerHistory, len(s.rec.Players))
	for name, h := range s.rec.Players {
		out[name] = cloneHistory(h)
	}
	return out, nil
}

func (s *HistoryStore) History(_ context.Context, playerName string) (domain.PlayerHistory, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.rec.Players[playerName]
	if !ok {
		return domain.PlayerHistory{}, false, nil
	}
	return cloneHistory(h), true, nil
}

func cloneHistory(h domain.PlayerHistory) domain.PlayerHistory {
	h.Scores = append([]int(nil), h.Scores...)
	return h
}


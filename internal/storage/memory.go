package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var errNotInitialized = errors.New("store is not initialized")

// MemoryStore keeps everything in maps for the life of the process
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]RunRecord
	champions   map[string]ChampionRecord
	history     map[string][]float64
}

// NewMemoryStore creates an empty store; call Init before use
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init resets the store
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]RunRecord)
	s.champions = make(map[string]ChampionRecord)
	s.history = make(map[string][]float64)
	return nil
}

// SaveRun inserts or replaces a run
func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

// GetRun looks up a run by id
func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns every run, newest first
func (s *MemoryStore) ListRuns(_ context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	slices.SortFunc(runs, func(a, b RunRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return runs, nil
}

// SaveChampion stores the champion of a run
func (s *MemoryStore) SaveChampion(_ context.Context, champion ChampionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.champions[champion.RunID] = champion
	return nil
}

// GetChampion returns the champion saved for runID
func (s *MemoryStore) GetChampion(_ context.Context, runID string) (ChampionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	champion, ok := s.champions[runID]
	return champion, ok, nil
}

// SaveFitnessHistory stores the per-generation best fitness of a run
func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.history[runID] = slices.Clone(history)
	return nil
}

// GetFitnessHistory returns the history saved for runID
func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(history), true, nil
}

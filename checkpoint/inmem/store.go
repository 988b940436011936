// Package inmem provides a process-local checkpoint.Checkpointer backed by
// an in-memory map. Intended for tests and local development.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/checkpoint"
)

type entry struct {
	state agentstate.State
	info  checkpoint.Info
}

// Store is an in-memory checkpoint.Checkpointer. It is safe for concurrent
// use; writes for a given thread are serialized so minted checkpoint ids
// stay strictly increasing.
type Store struct {
	mu      sync.Mutex
	threads map[string][]entry // append-only, ordered oldest to newest
}

// New returns an empty Store.
func New() *Store {
	return &Store{threads: make(map[string][]entry)}
}

// Save implements checkpoint.Checkpointer.
func (s *Store) Save(_ context.Context, threadID string, state agentstate.State, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.threads[threadID]
	var parent string
	var hasParent bool
	if len(entries) > 0 {
		parent = entries[len(entries)-1].info.CheckpointID
		hasParent = true
	}
	id := checkpoint.NewID(at)
	s.threads[threadID] = append(entries, entry{
		state: state,
		info: checkpoint.Info{
			ThreadID:            threadID,
			CheckpointID:        id,
			CreatedAt:           at,
			MessageCount:        state.MessageCount(),
			ParentCheckpointID:  parent,
			HasParentCheckpoint: hasParent,
		},
	})
	return id, nil
}

// Load implements checkpoint.Checkpointer.
func (s *Store) Load(_ context.Context, threadID, checkpointID string) (agentstate.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.threads[threadID] {
		if e.info.CheckpointID == checkpointID {
			return e.state, nil
		}
	}
	return agentstate.State{}, checkpoint.ErrNotFound
}

// LoadLatest implements checkpoint.Checkpointer.
func (s *Store) LoadLatest(_ context.Context, threadID string) (agentstate.State, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.threads[threadID]
	if len(entries) == 0 {
		return agentstate.State{}, "", checkpoint.ErrNotFound
	}
	last := entries[len(entries)-1]
	return last.state, last.info.CheckpointID, nil
}

// List implements checkpoint.Checkpointer, returning newest-first.
func (s *Store) List(_ context.Context, threadID string) ([]checkpoint.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.threads[threadID]
	out := make([]checkpoint.Info, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e.info
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckpointID > out[j].CheckpointID })
	return out, nil
}

// Delete implements checkpoint.Checkpointer.
func (s *Store) Delete(_ context.Context, threadID, checkpointID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.threads[threadID]
	for i, e := range entries {
		if e.info.CheckpointID == checkpointID {
			s.threads[threadID] = append(entries[:i], entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

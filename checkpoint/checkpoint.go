// Package checkpoint defines the durable snapshot contract used to save and
// resume agent conversation state across process lifetimes.
package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/agentcore/agentcore/agentstate"
)

// Info describes a saved checkpoint without its full state payload.
type Info struct {
	ThreadID            string
	CheckpointID        string
	CreatedAt           time.Time
	MessageCount        int
	ParentCheckpointID  string
	HasParentCheckpoint bool
}

// Checkpointer persists and retrieves AgentState snapshots keyed by thread.
// Implementations must serialize writes per thread so CheckpointIDs remain
// strictly increasing (Save's contract below), and must be safe for
// concurrent use across different threads.
type Checkpointer interface {
	// Save persists a deep copy of state under threadID and returns a newly
	// minted checkpoint id that sorts strictly greater than any prior id
	// saved for that thread.
	Save(ctx context.Context, threadID string, state agentstate.State, at time.Time) (checkpointID string, err error)

	// Load returns the state saved under (threadID, checkpointID). Returns
	// ErrNotFound if no such checkpoint exists.
	Load(ctx context.Context, threadID, checkpointID string) (agentstate.State, error)

	// LoadLatest returns the state with the greatest checkpoint id for
	// threadID. Returns ErrNotFound if the thread has no checkpoints.
	LoadLatest(ctx context.Context, threadID string) (agentstate.State, string, error)

	// List returns threadID's checkpoints newest-first.
	List(ctx context.Context, threadID string) ([]Info, error)

	// Delete removes a checkpoint. Returns false if it did not exist.
	Delete(ctx context.Context, threadID, checkpointID string) (bool, error)
}

// ErrNotFound is returned by Load/LoadLatest when no matching checkpoint
// exists.
var ErrNotFound = errors.New("checkpoint: not found")

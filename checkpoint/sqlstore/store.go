// Package sqlstore provides a durable checkpoint.Checkpointer backed by a
// SQL table, using the pure-Go modernc.org/sqlite driver (no cgo).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/checkpoint"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	thread_id     TEXT NOT NULL,
	checkpoint_id TEXT NOT NULL,
	parent_id     TEXT,
	state_json    TEXT NOT NULL,
	message_count INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (thread_id, checkpoint_id)
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_thread_order
	ON checkpoints (thread_id, checkpoint_id DESC);
`

// Store is a SQL-backed checkpoint.Checkpointer.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes Save
}

// Open opens (creating if necessary) a sqlite database at dsn and ensures
// the checkpoint table exists. dsn is passed verbatim to
// modernc.org/sqlite, e.g. "file:/var/lib/agentcore/checkpoints.db".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save implements checkpoint.Checkpointer. Saves through one Store are
// serialized by a mutex, and each reads the current tail and inserts the new
// row in one transaction, keeping minted ids strictly increasing per thread
// even under concurrent callers targeting the same thread.
func (s *Store) Save(ctx context.Context, threadID string, state agentstate.State, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer tx.Rollback()

	var parentID sql.NullString
	row := tx.QueryRowContext(ctx,
		`SELECT checkpoint_id FROM checkpoints WHERE thread_id = ? ORDER BY checkpoint_id DESC LIMIT 1`,
		threadID,
	)
	switch err := row.Scan(&parentID); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return "", fmt.Errorf("sqlstore: query latest: %w", err)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("sqlstore: marshal state: %w", err)
	}

	id := checkpoint.NewID(at)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO checkpoints (thread_id, checkpoint_id, parent_id, state_json, message_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		threadID, id, parentID, string(payload), state.MessageCount(), at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("sqlstore: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("sqlstore: commit: %w", err)
	}
	return id, nil
}

// Load implements checkpoint.Checkpointer.
func (s *Store) Load(ctx context.Context, threadID, checkpointID string) (agentstate.State, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM checkpoints WHERE thread_id = ? AND checkpoint_id = ?`,
		threadID, checkpointID,
	)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agentstate.State{}, checkpoint.ErrNotFound
		}
		return agentstate.State{}, fmt.Errorf("sqlstore: query: %w", err)
	}
	var state agentstate.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return agentstate.State{}, fmt.Errorf("sqlstore: unmarshal state: %w", err)
	}
	return state, nil
}

// LoadLatest implements checkpoint.Checkpointer.
func (s *Store) LoadLatest(ctx context.Context, threadID string) (agentstate.State, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT checkpoint_id, state_json FROM checkpoints WHERE thread_id = ? ORDER BY checkpoint_id DESC LIMIT 1`,
		threadID,
	)
	var id, payload string
	if err := row.Scan(&id, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agentstate.State{}, "", checkpoint.ErrNotFound
		}
		return agentstate.State{}, "", fmt.Errorf("sqlstore: query: %w", err)
	}
	var state agentstate.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return agentstate.State{}, "", fmt.Errorf("sqlstore: unmarshal state: %w", err)
	}
	return state, id, nil
}

// List implements checkpoint.Checkpointer, returning newest-first.
func (s *Store) List(ctx context.Context, threadID string) ([]checkpoint.Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT checkpoint_id, parent_id, message_count, created_at
		   FROM checkpoints WHERE thread_id = ? ORDER BY checkpoint_id DESC`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: query: %w", err)
	}
	defer rows.Close()

	var out []checkpoint.Info
	for rows.Next() {
		var (
			id, createdAt string
			parentID      sql.NullString
			count         int
		)
		if err := rows.Scan(&id, &parentID, &count, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scan: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: parse created_at: %w", err)
		}
		out = append(out, checkpoint.Info{
			ThreadID:            threadID,
			CheckpointID:        id,
			CreatedAt:           at,
			MessageCount:        count,
			ParentCheckpointID:  parentID.String,
			HasParentCheckpoint: parentID.Valid,
		})
	}
	return out, rows.Err()
}

// Delete implements checkpoint.Checkpointer.
func (s *Store) Delete(ctx context.Context, threadID, checkpointID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE thread_id = ? AND checkpoint_id = ?`,
		threadID, checkpointID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlstore: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlstore: rows affected: %w", err)
	}
	return n > 0, nil
}

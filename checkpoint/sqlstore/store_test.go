package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/checkpoint"
	"github.com/agentcore/agentcore/checkpoint/sqlstore"
	"github.com/agentcore/agentcore/message"
)

func openTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open("file:" + t.TempDir() + "/checkpoints.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoadRoundTripPreservesMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	state := agentstate.New("be helpful", now)
	state, err := state.AppendMessage(message.NewHuman("hi", "u1", now), now)
	require.NoError(t, err)

	id, err := store.Save(ctx, "thread-1", state, now)
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "thread-1", id)
	require.NoError(t, err)
	assert.Equal(t, state.MessageCount(), loaded.MessageCount())
	assert.Equal(t, state.Version(), loaded.Version())
	assert.Equal(t, state.Messages()[1].Content(), loaded.Messages()[1].Content())
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Load(context.Background(), "thread-1", "nope")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestListOrdersNewestFirstWithParentChain(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	state := agentstate.New("", time.Now())

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(ctx, "thread-1", state, time.Now())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	infos, err := store.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, ids[2], infos[0].CheckpointID)
	assert.False(t, infos[2].HasParentCheckpoint)
	assert.True(t, infos[0].HasParentCheckpoint)
	assert.Equal(t, ids[1], infos[0].ParentCheckpointID)
}

func TestDeleteRemovesCheckpoint(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	state := agentstate.New("", time.Now())

	id, err := store.Save(ctx, "thread-1", state, time.Now())
	require.NoError(t, err)

	ok, err := store.Delete(ctx, "thread-1", id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Load(ctx, "thread-1", id)
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

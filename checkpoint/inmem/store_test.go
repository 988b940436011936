package inmem_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/checkpoint"
	"github.com/agentcore/agentcore/checkpoint/inmem"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := inmem.New()
	ctx := context.Background()

	state := agentstate.New("be helpful", time.Now())
	id, err := store.Save(ctx, "thread-1", state, time.Now())
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "thread-1", id)
	require.NoError(t, err)
	assert.Equal(t, state.Version(), loaded.Version())
	assert.Equal(t, state.MessageCount(), loaded.MessageCount())
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store := inmem.New()
	_, err := store.Load(context.Background(), "thread-1", "nope")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestCheckpointIDsStrictlyIncrease(t *testing.T) {
	store := inmem.New()
	ctx := context.Background()
	state := agentstate.New("", time.Now())

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := store.Save(ctx, "thread-1", state, time.Now())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	store := inmem.New()
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
	assert.Equal(t, ids[0], infos[2].CheckpointID)
}

func TestLoadLatestAndDelete(t *testing.T) {
	store := inmem.New()
	ctx := context.Background()
	state := agentstate.New("", time.Now())

	id1, _ := store.Save(ctx, "thread-1", state, time.Now())
	id2, _ := store.Save(ctx, "thread-1", state, time.Now())

	_, latest, err := store.LoadLatest(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, id2, latest)

	ok, err := store.Delete(ctx, "thread-1", id1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(ctx, "thread-1", id1)
	require.NoError(t, err)
	assert.False(t, ok)
}

package repo

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietride/server/internal/chat/model"
)

func newTestRepo(t *testing.T) *RedisHistoryRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisHistoryRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestAppendAndLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	first := model.NewMessage(model.RoleUser, "hello", nil)
	second := model.NewMessage(model.RoleAssistant, "hi there", nil)
	require.NoError(t, r.Append(ctx, "s1", first))
	require.NoError(t, r.Append(ctx, "s1", second))

	msgs, err := r.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, second.ID, msgs[1].ID)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
}

func TestLoadUnknownSessionIsEmpty(t *testing.T) {
	r := newTestRepo(t)

	msgs, err := r.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestClearRemovesHistory(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	require.NoError(t, r.Append(ctx, "s1", model.NewMessage(model.RoleUser, "hello", nil)))
	require.NoError(t, r.Clear(ctx, "s1"))

	msgs, err := r.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestHistoriesAreIsolatedPerSession(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	require.NoError(t, r.Append(ctx, "a", model.NewMessage(model.RoleUser, "for a", nil)))
	require.NoError(t, r.Append(ctx, "b", model.NewMessage(model.RoleUser, "for b", nil)))

	msgs, err := r.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "for a", msgs[0].Content)
}

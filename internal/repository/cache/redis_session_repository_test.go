package cache

import (
	"context"
	"testing"
	"time"

	"pm-assistant-be/internal/repository/contract"
	"pm-assistant-be/pkg/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisSessionRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisSessionRepository(rdb, time.Hour)
}

func TestRedisSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupRedis(t)

	s := store.NewSession("abc")
	s.Stage = store.StageExecute
	s.Step = store.StepAdvice
	s.Budget = 3000000
	s.Period = "6ヶ月"
	s.Recommendation = store.Recommendation{
		"その他検討が必要なこと": []interface{}{"セキュリティ対策"},
	}
	s.NextQuestions = []string{"q1", "q2", "q3"}
	s.AppendChat(store.ChatRoleUser, "hi")

	require.NoError(t, repo.Save(ctx, s))
	assert.True(t, mr.Exists("pm:session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("pm:session:abc"))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, store.StageExecute, got.Stage)
	assert.Equal(t, store.StepAdvice, got.Step)
	assert.Equal(t, int64(3000000), got.Budget)
	assert.Equal(t, []string{"q1", "q2", "q3"}, got.NextQuestions)
	assert.Equal(t, []interface{}{"セキュリティ対策"}, got.Recommendation["その他検討が必要なこと"])
	assert.Len(t, got.ChatHistory, 1)
}

func TestRedisSessionRepositoryMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupRedis(t)

	_, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, store.NewSession("gone")))
	require.NoError(t, repo.Delete(ctx, "gone"))
	assert.False(t, mr.Exists("pm:session:gone"))
}

func TestRedisSessionRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupRedis(t)

	require.NoError(t, repo.Save(ctx, store.NewSession("ttl")))
	mr.FastForward(2 * time.Hour)

	_, err := repo.Get(ctx, "ttl")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}

func TestRedisSessionRepositoryCorruptValue(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupRedis(t)

	require.NoError(t, mr.Set("pm:session:bad", "{not json"))

	_, err := repo.Get(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, contract.ErrSessionNotFound)
}

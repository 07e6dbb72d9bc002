package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/app/api/provider"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/testutil"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	job := provider.NewDoneJob("openai", testutil.ThreeCues())
	job.Title = "Morning Show"
	require.NoError(t, store.Save(ctx, *job))

	loaded, err := store.Load(ctx, "openai", job.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, provider.StateDone, loaded.State)
	assert.Equal(t, "Morning Show", loaded.Title)
	assert.Equal(t, testutil.ThreeCues().Cues, loaded.Document.Cues)

	owner, err := store.Owner(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "openai", owner)

	assert.Equal(t, time.Minute, mr.TTL(DefaultKeyPrefix+"openai/"+job.ID))
}

func TestRedisStoreMissingAndAmbiguous(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	missing, err := store.Load(ctx, "speechmatics", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Save(ctx, *provider.NewSubmittedJob("assemblyai", "b")))
	require.NoError(t, store.Save(ctx, *provider.NewSubmittedJob("elevenlabs", "b")))
	owner, err := store.Owner(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("localhost:6379", time.Minute)
	var ce *apperrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "REDIS_URL", ce.Key)
}

func TestJobTableRestoresFromStore(t *testing.T) {
	store, _ := newTestRedisStore(t)

	first := NewJobTable(time.Minute, WithStore(store, nil))
	done := provider.NewDoneJob("openai", testutil.HelloWorld())
	first.Put(done)

	_, err := first.With("speechmatics", "job-9", func(j *provider.Job) error {
		j.State = provider.StateRunning
		j.UpdatedAt = time.Now()
		return nil
	})
	require.NoError(t, err)

	// a second process sharing the store
	second := NewJobTable(time.Minute, WithStore(store, nil))

	got, ok := second.Get("openai", done.ID)
	require.True(t, ok)
	assert.Equal(t, provider.StateDone, got.State)
	assert.Equal(t, 1, second.Len(), "restored jobs are cached")

	owner, ok := second.FindProvider("job-9")
	require.True(t, ok)
	assert.Equal(t, "speechmatics", owner)

	running, err := second.With("speechmatics", "job-9", func(*provider.Job) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, provider.StateRunning, running.State)
}

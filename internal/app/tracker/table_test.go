package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/testutil"
)

func TestJobTableAttachUnknownID(t *testing.T) {
	table := NewJobTable(time.Minute)

	job, err := table.With("speechmatics", "abc", func(*provider.Job) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, "abc", job.ID)
	assert.Equal(t, provider.StateSubmitted, job.State)
	assert.Equal(t, 1, table.Len())
}

func TestJobTableConcurrentChecksFetchOnce(t *testing.T) {
	mock := testutil.NewAsyncMock("speechmatics", "job-1", testutil.HelloWorld(), done)
	table := NewJobTable(time.Minute)
	tr := New(time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := table.With("speechmatics", "job-1", func(j *provider.Job) error {
				return tr.Check(context.Background(), mock, j, "key")
			})
			assert.NoError(t, err)
			assert.Equal(t, provider.StateDone, job.State)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mock.FetchCalls())
	assert.Equal(t, 1, mock.StatusCalls())
}

func TestJobTableEvictsIdleEntries(t *testing.T) {
	table := NewJobTable(time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return now }

	table.Put(provider.NewDoneJob("openai", testutil.HelloWorld()))
	assert.Equal(t, 1, table.Len())

	now = now.Add(2 * time.Minute)
	table.Put(provider.NewSubmittedJob("speechmatics", "fresh"))

	assert.Equal(t, 1, table.Len())
	_, ok := table.Get("speechmatics", "fresh")
	assert.True(t, ok)
}

func TestJobTableFindProvider(t *testing.T) {
	table := NewJobTable(time.Minute)
	table.Put(provider.NewSubmittedJob("speechmatics", "a"))
	table.Put(provider.NewSubmittedJob("assemblyai", "b"))
	table.Put(provider.NewSubmittedJob("elevenlabs", "b"))

	owner, ok := table.FindProvider("a")
	assert.True(t, ok)
	assert.Equal(t, "speechmatics", owner)

	_, ok = table.FindProvider("b")
	assert.False(t, ok, "ambiguous ids are not resolved")

	_, ok = table.FindProvider("zzz")
	assert.False(t, ok)
}

func TestJobTableGetReturnsSnapshot(t *testing.T) {
	table := NewJobTable(time.Minute)
	job := provider.NewSubmittedJob("speechmatics", "x")
	table.Put(job)

	snap, ok := table.Get("speechmatics", "x")
	require.True(t, ok)
	snap.State = provider.StateFailed

	again, _ := table.Get("speechmatics", "x")
	assert.Equal(t, provider.StateSubmitted, again.State)
}

// blockingStore holds reads of the id "slow" until release is closed.
type blockingStore struct {
	mu      sync.Mutex
	saved   map[string]provider.Job
	entered chan struct{}
	release chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		saved:   map[string]provider.Job{},
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
}

func (s *blockingStore) Save(_ context.Context, job provider.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[key(job.Provider, job.ID)] = job
	return nil
}

func (s *blockingStore) Load(_ context.Context, providerName, id string) (*provider.Job, error) {
	s.wait(id)
	return nil, nil
}

func (s *blockingStore) Owner(_ context.Context, id string) (string, error) {
	s.wait(id)
	return "", nil
}

func (s *blockingStore) wait(id string) {
	if id != "slow" {
		return
	}
	s.entered <- struct{}{}
	<-s.release
}

func (s *blockingStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func TestJobTableStoreReadsDoNotBlockOtherJobs(t *testing.T) {
	store := newBlockingStore()
	table := NewJobTable(time.Minute, WithStore(store, nil))
	table.Put(provider.NewSubmittedJob("speechmatics", "fast"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		table.With("speechmatics", "slow", func(*provider.Job) error { return nil })
	}()
	go func() {
		defer wg.Done()
		table.FindProvider("slow")
	}()
	<-store.entered
	<-store.entered

	done := make(chan provider.Job, 1)
	go func() {
		job, _ := table.Get("speechmatics", "fast")
		table.Put(provider.NewSubmittedJob("assemblyai", "other"))
		done <- job
	}()

	select {
	case job := <-done:
		assert.Equal(t, "fast", job.ID)
	case <-time.After(time.Second):
		t.Fatal("lookup of an unrelated job waited on the store")
	}

	close(store.release)
	wg.Wait()
	_, ok := table.Get("speechmatics", "slow")
	assert.True(t, ok)
}

func TestJobTableFailedAttachLeavesNoRecord(t *testing.T) {
	store := newBlockingStore()
	table := NewJobTable(time.Minute, WithStore(store, nil))

	_, err := table.With("speechmatics", "made-up", func(*provider.Job) error {
		return errors.New("job not found")
	})
	require.Error(t, err)

	assert.Zero(t, table.Len())
	assert.Zero(t, store.savedCount())
	_, ok := table.FindProvider("made-up")
	assert.False(t, ok)

	// a known job keeps its record when a later probe fails
	table.Put(provider.NewSubmittedJob("speechmatics", "real"))
	_, err = table.With("speechmatics", "real", func(*provider.Job) error {
		return errors.New("network down")
	})
	require.Error(t, err)
	_, ok = table.Get("speechmatics", "real")
	assert.True(t, ok)
}

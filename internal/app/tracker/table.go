package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/logging"
)

const (
	DefaultTTL = time.Hour

	storeTimeout = 2 * time.Second
)

// Store keeps jobs beyond the in-memory table, so a restarted or sibling
// process can still answer for them. Load returns nil, nil for unknown jobs
// and Owner returns "" when no single provider owns id.
type Store interface {
	Save(ctx context.Context, job provider.Job) error
	Load(ctx context.Context, providerName, id string) (*provider.Job, error)
	Owner(ctx context.Context, id string) (string, error)
}

// JobTable remembers jobs for the lifetime of the process so a finished job
// is answered from memory instead of being fetched again. Entries idle for
// longer than the TTL are dropped on the next write. With a Store, every
// change is written through and misses are read back from it.
type JobTable struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	store   Store
	logger  *zap.Logger
}

type TableOption func(*JobTable)

// WithStore writes jobs through to store. Store failures are logged and
// never fail the caller.
func WithStore(store Store, logger *zap.Logger) TableOption {
	return func(t *JobTable) {
		t.store = store
		t.logger = logger
	}
}

type entry struct {
	mu      sync.Mutex
	job     *provider.Job
	touched time.Time
	// gone is set, under mu, once the entry left the table.
	gone bool
}

func NewJobTable(ttl time.Duration, opts ...TableOption) *JobTable {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	t := &JobTable{entries: make(map[string]*entry), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.OrNop(t.logger).Named("jobs")
	return t
}

func key(providerName, id string) string {
	return providerName + "/" + id
}

// Put stores job, replacing any record with the same provider and id.
func (t *JobTable) Put(job *provider.Job) {
	t.mu.Lock()
	t.evictLocked()
	t.entries[key(job.Provider, job.ID)] = &entry{job: job, touched: t.now()}
	snapshot := *job
	t.mu.Unlock()

	t.save(snapshot)
}

// Get returns a snapshot of the stored job.
func (t *JobTable) Get(providerName, id string) (provider.Job, bool) {
	t.mu.Lock()
	e, ok := t.entries[key(providerName, id)]
	t.mu.Unlock()
	if !ok {
		return t.restore(providerName, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.job, true
}

// FindProvider returns the provider that owns id when exactly one does.
func (t *JobTable) FindProvider(id string) (string, bool) {
	t.mu.Lock()
	owner := ""
	for _, e := range t.entries {
		if e.job.ID != id {
			continue
		}
		if owner != "" {
			t.mu.Unlock()
			return "", false
		}
		owner = e.job.Provider
	}
	t.mu.Unlock()

	if owner != "" || t.store == nil {
		return owner, owner != ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	owner, err := t.store.Owner(ctx, id)
	if err != nil {
		t.logger.Warn("job store lookup failed", zap.String("job_id", id), zap.Error(err))
		return "", false
	}
	return owner, owner != ""
}

// With runs fn on the job stored under providerName and id, creating a
// Submitted record first when neither the table nor the store knows it. Calls
// for the same job are serialized, so concurrent status requests never race a
// fetch. A record created here is kept only if fn succeeds.
func (t *JobTable) With(providerName, id string, fn func(job *provider.Job) error) (provider.Job, error) {
	k := key(providerName, id)
	for {
		e, fresh := t.acquire(providerName, id, k)

		e.mu.Lock()
		if e.gone {
			// dropped by a failed first call while we waited
			e.mu.Unlock()
			continue
		}
		before := *e.job
		err := fn(e.job)
		if fresh && err != nil {
			t.drop(k, e)
			job := *e.job
			e.mu.Unlock()
			return job, err
		}
		job := *e.job
		if fresh || job.State != before.State || job.UpdatedAt != before.UpdatedAt {
			t.save(job)
		}
		e.mu.Unlock()
		return job, err
	}
}

// acquire returns the entry for k, reading it from the store or creating a
// Submitted record when missing. fresh reports a record created in this call.
// Store reads happen without t.mu held.
func (t *JobTable) acquire(providerName, id, k string) (e *entry, fresh bool) {
	t.mu.Lock()
	t.evictLocked()
	if e, ok := t.entries[k]; ok {
		e.touched = t.now()
		t.mu.Unlock()
		return e, false
	}
	t.mu.Unlock()

	job := t.load(providerName, id)
	stored := job != nil
	if !stored {
		job = provider.NewSubmittedJob(providerName, id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[k]; ok {
		e.touched = t.now()
		return e, false
	}
	e = &entry{job: job, touched: t.now()}
	t.entries[k] = e
	return e, !stored
}

func (t *JobTable) drop(k string, e *entry) {
	e.gone = true
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries[k] == e {
		delete(t.entries, k)
	}
}

func (t *JobTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// restore reads a job missing from memory back from the store and caches it.
func (t *JobTable) restore(providerName, id string) (provider.Job, bool) {
	job := t.load(providerName, id)
	if job == nil {
		return provider.Job{}, false
	}

	t.mu.Lock()
	k := key(providerName, id)
	if e, ok := t.entries[k]; ok {
		// a concurrent writer got there first
		t.mu.Unlock()
		e.mu.Lock()
		defer e.mu.Unlock()
		return *e.job, true
	}
	t.entries[k] = &entry{job: job, touched: t.now()}
	t.mu.Unlock()
	return *job, true
}

// load reads one job from the store. It returns nil when there is no store,
// the job is unknown or the read fails. Must be called without t.mu held.
func (t *JobTable) load(providerName, id string) *provider.Job {
	if t.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	job, err := t.store.Load(ctx, providerName, id)
	if err != nil {
		t.logger.Warn("job store read failed", zap.String("provider", providerName), zap.String("job_id", id), zap.Error(err))
		return nil
	}
	return job
}

func (t *JobTable) save(job provider.Job) {
	if t.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := t.store.Save(ctx, job); err != nil {
		t.logger.Warn("job store write failed", zap.String("provider", job.Provider), zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (t *JobTable) evictLocked() {
	cutoff := t.now().Add(-t.ttl)
	for k, e := range t.entries {
		if e.touched.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}

package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	apperrors "captionflow/internal/app/errors"
)

// Registry holds the configured adapters of a process. It is filled at
// startup and read concurrently by requests afterwards.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]Transcriber
	credentials map[string]string
	default_    string
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers:   make(map[string]Transcriber),
		credentials: make(map[string]string),
	}
}

// Register adds an adapter under name. The first one becomes the default.
func (r *Registry) Register(name string, t Transcriber) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if t == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider '%s' already registered", name)
	}
	r.providers[name] = t
	if r.default_ == "" {
		r.default_ = name
	}
	return nil
}

// SetCredential stores the configured credential used when a request has none.
func (r *Registry) SetCredential(name, credential string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials[name] = credential
}

// Credential returns the configured credential for name.
func (r *Registry) Credential(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.credentials[name]
}

// Get retrieves a provider by name; an empty name selects the default.
func (r *Registry) Get(name string) (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.default_
	}
	t, exists := r.providers[name]
	if !exists {
		return nil, apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider '%s'", name)
	}
	return t, nil
}

// Default returns the default provider.
func (r *Registry) Default() (Transcriber, error) {
	return r.Get("")
}

func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.default_
}

// SetDefault sets the default provider
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider '%s'", name)
	}
	r.default_ = name
	return nil
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.providers)
	sort.Strings(names)
	return names
}

// List returns the info of every registered adapter, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := lo.MapToSlice(r.providers, func(_ string, t Transcriber) ProviderInfo {
		return t.Info()
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HealthCheckAll performs health checks on all registered providers that
// support them. Providers without a check report nil.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	providers := lo.Assign(map[string]Transcriber{}, r.providers)
	r.mu.RUnlock()

	results := make(map[string]error, len(providers))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, t := range providers {
		checker, ok := t.(HealthChecker)
		if !ok {
			mu.Lock()
			results[name] = nil
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()

			err := checker.HealthCheck(ctx)

			mu.Lock()
			results[name] = err
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()
	return results
}

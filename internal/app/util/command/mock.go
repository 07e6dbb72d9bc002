package command

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation made through a MockRunner.
type Call struct {
	Name string
	Args []string
}

// MockRunner is a CmdRunner for tests. Handler decides the outcome of each call.
type MockRunner struct {
	Handler func(name string, args []string) ([]byte, error)

	mu    sync.Mutex
	calls []Call
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Name: name, Args: append([]string(nil), args...)})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Handler == nil {
		return nil, nil
	}
	return m.Handler(name, args)
}

// Calls returns a copy of the recorded invocations.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ArgValue returns the value following flag in args, or "".
func ArgValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(a, flag+"=") {
			return strings.TrimPrefix(a, flag+"=")
		}
	}
	return ""
}

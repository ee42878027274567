package registry

import (
	"context"
	"sync"

	"github.com/Krussell101/data-visualizer/pkg/llm"
)

// BuildFunc constructs the analyzer handle: credential resolution, connection
// warm-up. It runs at most once per registry generation.
type BuildFunc func(ctx context.Context) (llm.Analyzer, error)

// Registry holds the process-wide analyzer handle. Construction is lazy and
// serialized; every caller after the first receives the same handle. The
// handle itself must be safe for concurrent use; the registry never
// serializes calls through it.
//
// A mutex with a nil check guards construction instead of sync.Once: a failed
// construction must leave the registry unconstructed so the next caller can
// retry, and Once cannot re-run.
type Registry struct {
	mu     sync.Mutex
	client llm.Analyzer
	build  BuildFunc
}

func NewRegistry(build BuildFunc) *Registry {
	return &Registry{build: build}
}

// Client returns the shared analyzer, constructing it on first call. Under a
// concurrent first-call race exactly one construction occurs; the losers wait
// and receive the winner's handle.
func (r *Registry) Client(ctx context.Context) (llm.Analyzer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	client, err := r.build(ctx)
	if err != nil {
		// Leave unconstructed; the next call retries
		return nil, err
	}
	r.client = client
	return client, nil
}

// Reset discards the current handle so the next Client call constructs a
// fresh one (credential rotation). In-flight queries keep the handle they
// already acquired; the swap never disrupts them.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.client = nil
	r.mu.Unlock()
}

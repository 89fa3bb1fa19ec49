package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Loader produces a Backend. It is called at most once per successful setup.
type Loader func(ctx context.Context) (Backend, error)

// Setup guards one-time preparation of a Backend.
//
// Thread-safety: all methods are safe for concurrent use. Concurrent Init
// callers are serialized, so a successful load happens exactly once; a failed
// load leaves Setup uninitialized and a later Init retries.
type Setup struct {
	mu      sync.Mutex
	load    Loader
	backend atomic.Pointer[backendRef]
}

type backendRef struct {
	Backend
}

// NewSetup creates an uninitialized Setup that will call load on Init.
func NewSetup(load Loader) *Setup {
	return &Setup{load: load}
}

// NewReadySetup creates a Setup that is already initialized with b.
func NewReadySetup(b Backend) *Setup {
	s := &Setup{}
	s.backend.Store(&backendRef{b})
	return s
}

// Init loads the backend if it has not been loaded yet.
// Returns nil immediately once a previous Init succeeded.
func (s *Setup) Init(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Ready() {
		return nil
	}
	if s.load == nil {
		return NewBackendError("no backend loader configured", nil)
	}

	b, err := s.load(ctx)
	if err != nil {
		return NewBackendError("backend setup failed", err)
	}
	if b == nil {
		return NewBackendError("backend setup failed", errors.New("loader returned a nil backend"))
	}

	s.backend.Store(&backendRef{b})
	return nil
}

// Ready reports whether a backend is available.
func (s *Setup) Ready() bool {
	return s.backend.Load() != nil
}

// Backend returns the loaded backend or an UNINITIALIZED error.
func (s *Setup) Backend() (Backend, error) {
	ref := s.backend.Load()
	if ref == nil {
		return nil, NewUsageError(ErrCodeUninitialized, "terminal call before backend setup completed")
	}
	return ref.Backend, nil
}

package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRepo is an in-memory CorpusRepository.
type stubRepo struct {
	mu      sync.Mutex
	corpora map[string][]Entry
	loadErr error
	saveErr error
	saves   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{corpora: make(map[string][]Entry)}
}

func (r *stubRepo) Load(_ context.Context, tenantID string) ([]Entry, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.corpora[tenantID]))
	copy(out, r.corpora[tenantID])
	return out, nil
}

func (r *stubRepo) Save(_ context.Context, tenantID string, entries []Entry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	stored := make([]Entry, len(entries))
	copy(stored, entries)
	r.corpora[tenantID] = stored
	return nil
}

// stubEncoder returns canned vectors per input text and counts calls.
// encodeHook, when set, runs during each Encode call; tests use it to
// interleave corpus mutations with an in-flight encoding.
type stubEncoder struct {
	mu         sync.Mutex
	dim        int
	vectors    map[string][]float32
	err        error
	failFor    map[string]error
	calls      int
	encodeHook func(text string)
}

func newStubEncoder(dim int) *stubEncoder {
	return &stubEncoder{dim: dim, vectors: make(map[string][]float32), failFor: make(map[string]error)}
}

func (e *stubEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	hook := e.encodeHook
	e.mu.Unlock()
	if hook != nil {
		hook(text)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if err, ok := e.failFor[text]; ok {
		return nil, err
	}
	if vector, ok := e.vectors[text]; ok {
		return vector, nil
	}
	// unknown text gets a default basis vector
	vector := make([]float32, e.dim)
	vector[0] = 1
	return vector, nil
}

func (e *stubEncoder) Dimension() int { return e.dim }

func (e *stubEncoder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// stubNotifier records notifications.
type stubNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	err           error
}

func (n *stubNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notifications = append(n.notifications, notification)
	return nil
}

func (n *stubNotifier) sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.notifications))
	copy(out, n.notifications)
	return out
}

// stubTenants serves fixed settings for every tenant.
type stubTenants struct {
	settings TenantSettings
	err      error
}

func (t *stubTenants) Get(_ context.Context, _ string) (TenantSettings, error) {
	if t.err != nil {
		return TenantSettings{}, t.err
	}
	return t.settings, nil
}

type testServiceOption func(*testServiceDeps)

type testServiceDeps struct {
	cfg      Config
	repo     *stubRepo
	encoder  *stubEncoder
	notifier *stubNotifier
	tenants  *stubTenants
}

func withSeed() testServiceOption {
	return func(d *testServiceDeps) { d.cfg.SeedOnCreate = true }
}

func withDimension(dim int) testServiceOption {
	return func(d *testServiceDeps) {
		d.cfg.Dimension = dim
		d.encoder = newStubEncoder(dim)
	}
}

func newTestService(opts ...testServiceOption) (*Service, *testServiceDeps) {
	deps := &testServiceDeps{
		cfg:      DefaultConfig(),
		repo:     newStubRepo(),
		encoder:  newStubEncoder(3),
		notifier: &stubNotifier{},
		tenants:  &stubTenants{},
	}
	deps.cfg.Dimension = 3
	deps.cfg.SeedOnCreate = false
	for _, opt := range opts {
		opt(deps)
	}
	svc := NewService(deps.cfg, deps.repo, deps.encoder, deps.encoder, deps.notifier, deps.tenants, nil, newTestLogger())
	return svc, deps
}

var errBoom = errors.New("boom")

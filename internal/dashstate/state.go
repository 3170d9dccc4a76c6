// Package dashstate is the dashboard's client-side state container. Every
// change goes through its CRUD methods, which persist through the
// configured Backend, keep the derived metrics current and then notify
// subscribers.
package dashstate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/zulandar/demodash/internal/metrics"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

// ErrStale is returned by Refresh when the state changed while the backend
// read was in flight. The read result is discarded.
var ErrStale = errors.New("dashstate: refresh result is stale")

// Snapshot is an immutable copy of the state.
type Snapshot struct {
	Projects []models.Project
	RFIs     []models.RFI
	Tasks    []models.Task
	Metrics  metrics.Metrics
}

// ProjectName resolves a project id for display.
func (s Snapshot) ProjectName(id int64) string {
	for _, p := range s.Projects {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownProject
}

// UnknownProject is shown for RFIs and tasks whose project is gone.
const UnknownProject = "Unknown Project"

// State owns the in-memory collections. A nil backend keeps everything in
// memory and assigns ids as max+1.
type State struct {
	mu      sync.Mutex
	backend store.Backend
	log     *slog.Logger

	data    models.Dataset
	metrics metrics.Metrics

	// gen counts applied changes; refreshSeq counts started refreshes.
	gen        uint64
	refreshSeq uint64

	listeners map[int]func(Snapshot)
	nextSub   int
}

// New returns an empty State persisting through backend (nil for none).
func New(backend store.Backend, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &State{
		backend:   backend,
		log:       logger,
		listeners: make(map[int]func(Snapshot)),
	}
	s.data.Normalize()
	return s
}

// Backend returns the backend the state persists through, or nil.
func (s *State) Backend() store.Backend {
	return s.backend
}

// Snapshot returns a copy of the current collections and metrics.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Metrics returns the current derived metrics.
func (s *State) Metrics() metrics.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Subscribe registers fn to run after every applied change. The returned
// func removes it.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Load replaces the collections with ds without touching the backend.
func (s *State) Load(ds models.Dataset) {
	ds.Normalize()
	s.change(func() error {
		s.data = models.Dataset{
			Projects: slices.Clone(ds.Projects),
			RFIs:     slices.Clone(ds.RFIs),
			Tasks:    slices.Clone(ds.Tasks),
		}
		return nil
	})
}

// Refresh reloads every collection from the backend. The read runs without
// the lock; if a change was applied or another refresh started meanwhile,
// the result is dropped and ErrStale returned.
func (s *State) Refresh(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	s.mu.Lock()
	s.refreshSeq++
	seq, gen := s.refreshSeq, s.gen
	s.mu.Unlock()

	ds, err := store.LoadAll(ctx, s.backend)
	if err != nil {
		return err
	}

	return s.change(func() error {
		if s.gen != gen || s.refreshSeq != seq {
			s.log.Debug("dropping stale refresh", "seq", seq, "gen", gen, "current_gen", s.gen)
			return ErrStale
		}
		s.data = ds
		return nil
	})
}

// change runs fn under the lock. When fn succeeds the metrics are
// recomputed and listeners see the new snapshot; when it fails nothing
// changes. fn must not modify s.data before its last fallible step.
func (s *State) change(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.metrics = metrics.Compute(s.data.Projects, s.data.RFIs)
	s.gen++
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Projects: slices.Clone(s.data.Projects),
		RFIs:     slices.Clone(s.data.RFIs),
		Tasks:    slices.Clone(s.data.Tasks),
		Metrics:  s.metrics,
	}
}

// nextLocalID returns max(id)+1 over items, starting at 1.
func nextLocalID[T any](items []T, key func(T) int64) int64 {
	var m int64
	for _, v := range items {
		m = max(m, key(v))
	}
	return m + 1
}

func find[T any](items []T, id int64, key func(T) int64) int {
	return slices.IndexFunc(items, func(v T) bool { return key(v) == id })
}

func projectID(p models.Project) int64 { return p.ID }
func rfiID(r models.RFI) int64         { return r.ID }
func taskID(t models.Task) int64       { return t.ID }

// Package memstore is an in-memory store.Store, used in tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/internalerr"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
	"github.com/cognicore/kognate/pkg/kognate/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	runs     map[string]store.Run
	matrices map[string]map[pmi.Key]float64
	classes  map[string]map[string][]cluster.Class
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		runs:     make(map[string]store.Run),
		matrices: make(map[string]map[pmi.Key]float64),
		classes:  make(map[string]map[string][]cluster.Class),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores run metadata keyed by run ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

// ListRuns returns all runs ordered by ID.
func (s *Store) ListRuns(ctx context.Context) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveMatrix stores a copy of the matrix scores.
func (s *Store) SaveMatrix(ctx context.Context, runID string, m *pmi.Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrices[runID] = m.Items()
	return nil
}

// LoadMatrix rebuilds a stored matrix.
func (s *Store) LoadMatrix(ctx context.Context, runID string) (*pmi.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.matrices[runID]
	if !ok {
		return nil, fmt.Errorf("memstore: matrix for run %s: %w", runID, internalerr.ErrNotFound)
	}
	m := pmi.NewMatrix()
	for k, v := range items {
		m.Set(k.A, k.B, v)
	}
	return m, nil
}

// SaveClasses stores a deep copy of the partition.
func (s *Store) SaveClasses(ctx context.Context, runID string, classes map[string][]cluster.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[runID] = copyClasses(classes)
	return nil
}

// LoadClasses returns a stored partition.
func (s *Store) LoadClasses(ctx context.Context, runID string) (map[string][]cluster.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	classes, ok := s.classes[runID]
	if !ok {
		return nil, fmt.Errorf("memstore: classes for run %s: %w", runID, internalerr.ErrNotFound)
	}
	return copyClasses(classes), nil
}

func copyClasses(in map[string][]cluster.Class) map[string][]cluster.Class {
	out := make(map[string][]cluster.Class, len(in))
	for concept, classes := range in {
		cc := make([]cluster.Class, len(classes))
		for i, class := range classes {
			cp := make(cluster.Class, len(class))
			copy(cp, class)
			cc[i] = cp
		}
		out[concept] = cc
	}
	return out
}

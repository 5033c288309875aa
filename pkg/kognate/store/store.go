// Package store persists training runs: the learned PMI matrix, the
// resulting cognate classes and run metadata. A stored matrix can be
// loaded later for a clustering-only run.
package store

import (
	"context"
	"time"

	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
)

// Store is the persistence interface for pipeline artifacts.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context) ([]Run, error)

	// Matrices
	SaveMatrix(ctx context.Context, runID string, m *pmi.Matrix) error
	LoadMatrix(ctx context.Context, runID string) (*pmi.Matrix, error)

	// Cognate classes
	SaveClasses(ctx context.Context, runID string, classes map[string][]cluster.Class) error
	LoadClasses(ctx context.Context, runID string) (map[string][]cluster.Class, error)
}

// Run is the metadata of one completed training run.
type Run struct {
	ID           string
	CreatedAt    time.Time
	Method       string
	Epochs       int
	InitialPairs int
	FinalPairs   int
}

// Package kognate discovers sound correspondences and cognate
// classes in multilingual wordlists. It wires together candidate
// pair generation, online-EM PMI training, and graph-based
// clustering behind one engine facade.
package kognate

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/kognate/pkg/kognate/align"
	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/config"
	"github.com/cognicore/kognate/pkg/kognate/ingest"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
	"github.com/cognicore/kognate/pkg/kognate/store"
	"github.com/cognicore/kognate/pkg/kognate/trainer"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

// Options configures an Engine.
type Options struct {
	Config config.Config

	// Store, when set, receives the run metadata, the final matrix
	// and the cognate classes.
	Store store.Store
}

// Engine runs the full pipeline: generate pairs, train the matrix,
// cluster, persist.
type Engine struct {
	cfg     config.Config
	store   store.Store
	entropy *ulid.MonotonicEntropy
}

// New validates the configuration and creates an engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     opts.Config,
		store:   opts.Store,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close shuts the engine down.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Result is the outcome of one run.
type Result struct {
	RunID        string
	Matrix       *pmi.Matrix
	Epochs       []trainer.EpochReport
	Classes      map[string][]cluster.Class
	InitialPairs int
	FinalPairs   int
}

// Run executes the pipeline on a dataset. The matrix is owned by the
// trainer until training completes, then frozen and reused for
// clustering; with a store configured, the run is persisted before
// returning.
func (e *Engine) Run(ctx context.Context, ds *ingest.Dataset) (*Result, error) {
	gen := word.NewGenerator(e.cfg.MaxPairDistance)
	pairs := gen.Pairs(ds.ByConcept)

	matrix := pmi.NewMatrix()
	tr, err := trainer.New(trainer.Config{
		Alpha:       e.cfg.Alpha,
		Margin:      e.cfg.Margin,
		BatchSize:   e.cfg.BatchSize,
		MaxIter:     e.cfg.MaxIter,
		Tolerance:   e.cfg.Tolerance,
		Pseudocount: e.cfg.Pseudocount,
		Seed:        e.cfg.Seed,
	}, matrix, ds.Alphabet, e.cfg.GapPolicy(), e.cfg.GapExtend)
	if err != nil {
		return nil, err
	}

	reports, final, err := tr.Train(pairs)
	if err != nil {
		return nil, err
	}

	classes, err := e.Cluster(ds, matrix)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:        ulid.MustNew(ulid.Now(), e.entropy).String(),
		Matrix:       matrix,
		Epochs:       reports,
		Classes:      classes,
		InitialPairs: len(pairs),
		FinalPairs:   len(final),
	}

	if e.store != nil {
		if err := e.persist(ctx, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Cluster partitions a dataset with an already-trained matrix, for
// clustering-only runs on a loaded matrix.
func (e *Engine) Cluster(ds *ingest.Dataset, matrix *pmi.Matrix) (map[string][]cluster.Class, error) {
	method, err := cluster.ParseMethod(e.cfg.Method)
	if err != nil {
		return nil, err
	}
	aligner := align.New(matrix.Score, e.cfg.GapPolicy(), e.cfg.GapExtend)
	cl := cluster.New(cluster.Config{
		Method:          method,
		Threshold:       e.cfg.Threshold,
		Seed:            e.cfg.Seed,
		GroupByLanguage: e.cfg.GroupByLanguage,
	}, aligner)
	return cl.Partition(ds.ByConcept)
}

func (e *Engine) persist(ctx context.Context, res *Result) error {
	run := store.Run{
		ID:           res.RunID,
		CreatedAt:    time.Now().UTC(),
		Method:       e.cfg.Method,
		Epochs:       len(res.Epochs),
		InitialPairs: res.InitialPairs,
		FinalPairs:   res.FinalPairs,
	}
	if err := e.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("kognate: save run: %w", err)
	}
	if err := e.store.SaveMatrix(ctx, res.RunID, res.Matrix); err != nil {
		return fmt.Errorf("kognate: save matrix: %w", err)
	}
	if err := e.store.SaveClasses(ctx, res.RunID, res.Classes); err != nil {
		return fmt.Errorf("kognate: save classes: %w", err)
	}
	return nil
}

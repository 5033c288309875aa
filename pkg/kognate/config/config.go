// Package config defines the run configuration and its YAML loader.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/kognate/pkg/kognate/align"
	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/internalerr"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

// Config is the full configuration surface of a run.
type Config struct {
	// Seed drives every randomness source: the per-epoch shuffle and
	// the stochastic clustering methods.
	Seed int64 `yaml:"seed"`

	// MaxIter is the number of training epochs.
	MaxIter int `yaml:"max_iter"`

	// Tolerance is accepted for compatibility; it does not trigger
	// early stopping.
	Tolerance float64 `yaml:"tolerance"`

	// Alpha is the stepsize-decay exponent, in (0.5, 1].
	Alpha float64 `yaml:"alpha"`

	// Margin is the pruning cutoff on alignment scores.
	Margin float64 `yaml:"margin"`

	// BatchSize is the mini-batch size of the online-EM loop.
	BatchSize int `yaml:"batch_size"`

	// GapOpen is the constant gap-opening penalty. When absent, the
	// sonority-dependent default policy applies.
	GapOpen *float64 `yaml:"gap_open"`

	// GapExtend is the per-position gap-extension penalty.
	GapExtend float64 `yaml:"gap_extend"`

	// Method names the clustering strategy: labelprop, multilevel,
	// spinglass, ebet or infomap.
	Method string `yaml:"method"`

	// Threshold is the similarity cutoff for clustering edges.
	Threshold float64 `yaml:"threshold"`

	// MaxPairDistance is the normalized edit-distance cutoff for
	// candidate pair preselection.
	MaxPairDistance float64 `yaml:"max_pair_distance"`

	// GroupByLanguage enables the coarse per-language clustering mode.
	GroupByLanguage bool `yaml:"group_by_language"`

	// Pseudocount is the smoothing mass per alphabet pair.
	Pseudocount float64 `yaml:"pseudocount"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Seed:            1234,
		MaxIter:         15,
		Tolerance:       0.001,
		Alpha:           0.75,
		Margin:          1.0,
		BatchSize:       256,
		GapExtend:       align.DefaultGapExtend,
		Method:          "infomap",
		Threshold:       0.5,
		MaxPairDistance: word.DefaultMaxDistance,
		Pseudocount:     pmi.Pseudocount,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every constraint that must hold before training
// starts. Violations are fatal.
func (c Config) Validate() error {
	if c.Alpha <= 0.5 || c.Alpha > 1 {
		return fmt.Errorf("config: alpha %g outside (0.5, 1]: %w",
			c.Alpha, internalerr.ErrInvalidConfig)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("config: max_iter %d: %w", c.MaxIter, internalerr.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size %d: %w", c.BatchSize, internalerr.ErrInvalidConfig)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("config: tolerance %g: %w", c.Tolerance, internalerr.ErrInvalidConfig)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("config: threshold %g must be non-negative: %w",
			c.Threshold, internalerr.ErrInvalidConfig)
	}
	if c.MaxPairDistance <= 0 || c.MaxPairDistance > 1 {
		return fmt.Errorf("config: max_pair_distance %g outside (0, 1]: %w",
			c.MaxPairDistance, internalerr.ErrInvalidConfig)
	}
	if c.Pseudocount <= 0 {
		return fmt.Errorf("config: pseudocount %g: %w", c.Pseudocount, internalerr.ErrInvalidConfig)
	}
	if _, err := cluster.ParseMethod(c.Method); err != nil {
		return err
	}
	return nil
}

// GapPolicy returns the configured gap-opening hook: a constant when
// gap_open is set, otherwise the character-class default.
func (c Config) GapPolicy() align.GapFunc {
	if c.GapOpen != nil {
		return align.ConstGap(*c.GapOpen)
	}
	return align.SonorityGap()
}

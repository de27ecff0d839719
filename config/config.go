// Package config loads run configuration from a YAML file with REGSELECT_*
// environment overrides.
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/regselect/pipeline"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
	"github.com/YuminosukeSato/regselect/preprocessing"
)

// EnvPrefix prefixes every environment override, e.g. REGSELECT_CV_FOLDS.
const EnvPrefix = "REGSELECT_"

// Config is the file form of a run configuration.
type Config struct {
	SplitFraction         float64 `yaml:"split_fraction"`
	Seed                  uint64  `yaml:"seed"`
	Strata                int     `yaml:"strata"`
	CVFolds               int     `yaml:"cv_folds"`
	MaxRounds             int     `yaml:"max_rounds"`
	EarlyStoppingPatience int     `yaml:"early_stopping_patience"`
	LearningRate          float64 `yaml:"learning_rate"`
	MaxDepth              int     `yaml:"max_depth"`
	MinDataInLeaf         int     `yaml:"min_data_in_leaf"`
	Lambda                float64 `yaml:"lambda"`
	MinGainToSplit        float64 `yaml:"min_gain_to_split"`
	Subsample             float64 `yaml:"subsample"`
	ImportanceThreshold   float64 `yaml:"importance_threshold"`
	Standardize           string  `yaml:"standardize"`
	ZeroVariance          string  `yaml:"zero_variance"`
	LogLevel              string  `yaml:"log_level"`
	LogFormat             string  `yaml:"log_format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opts := pipeline.DefaultOptions()
	return Config{
		SplitFraction:         opts.SplitFraction,
		Seed:                  opts.Seed,
		Strata:                opts.Strata,
		CVFolds:               opts.CVFolds,
		MaxRounds:             opts.MaxRounds,
		EarlyStoppingPatience: opts.Patience,
		LearningRate:          opts.Training.LearningRate,
		MaxDepth:              opts.Training.MaxDepth,
		MinDataInLeaf:         opts.Training.MinDataInLeaf,
		Lambda:                opts.Training.Lambda,
		MinGainToSplit:        opts.Training.MinGainToSplit,
		Subsample:             opts.Training.Subsample,
		ImportanceThreshold:   opts.ImportanceThreshold,
		Standardize:           string(opts.Standardize),
		ZeroVariance:          opts.ZeroVariance.String(),
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

// Load reads path (skipped when empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	log.GetLoggerWithName("config").Debug("configuration loaded", "path", path)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var err error
	for _, f := range c.fields() {
		raw, ok := lookup(EnvPrefix + strings.ToUpper(f.key))
		if !ok {
			continue
		}
		if perr := f.set(strings.TrimSpace(raw)); perr != nil {
			err = errors.Combine(err, errors.NewValidationError(f.key, "invalid environment override", raw))
		}
	}
	return err
}

type field struct {
	key string
	set func(string) error
}

func (c *Config) fields() []field {
	float := func(dst *float64) func(string) error {
		return func(s string) (err error) {
			*dst, err = strconv.ParseFloat(s, 64)
			return err
		}
	}
	integer := func(dst *int) func(string) error {
		return func(s string) (err error) {
			*dst, err = strconv.Atoi(s)
			return err
		}
	}
	str := func(dst *string) func(string) error {
		return func(s string) error {
			*dst = s
			return nil
		}
	}
	return []field{
		{"split_fraction", float(&c.SplitFraction)},
		{"seed", func(s string) (err error) {
			c.Seed, err = strconv.ParseUint(s, 10, 64)
			return err
		}},
		{"strata", integer(&c.Strata)},
		{"cv_folds", integer(&c.CVFolds)},
		{"max_rounds", integer(&c.MaxRounds)},
		{"early_stopping_patience", integer(&c.EarlyStoppingPatience)},
		{"learning_rate", float(&c.LearningRate)},
		{"max_depth", integer(&c.MaxDepth)},
		{"min_data_in_leaf", integer(&c.MinDataInLeaf)},
		{"lambda", float(&c.Lambda)},
		{"min_gain_to_split", float(&c.MinGainToSplit)},
		{"subsample", float(&c.Subsample)},
		{"importance_threshold", float(&c.ImportanceThreshold)},
		{"standardize", str(&c.Standardize)},
		{"zero_variance", str(&c.ZeroVariance)},
		{"log_level", str(&c.LogLevel)},
		{"log_format", str(&c.LogFormat)},
	}
}

// Validate reports every invalid key as a ValidationError.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, key, reason string, value any) {
		if !ok {
			err = errors.Combine(err, errors.NewValidationError(key, reason, value))
		}
	}
	check(c.SplitFraction > 0 && c.SplitFraction < 1, "split_fraction", "must be in (0, 1)", c.SplitFraction)
	check(c.Strata >= 1, "strata", "must be at least 1", c.Strata)
	check(c.CVFolds >= 2, "cv_folds", "must be at least 2", c.CVFolds)
	check(c.MaxRounds >= 1, "max_rounds", "must be at least 1", c.MaxRounds)
	check(c.EarlyStoppingPatience >= 0, "early_stopping_patience", "must be non-negative", c.EarlyStoppingPatience)
	check(c.LearningRate > 0 && c.LearningRate <= 1, "learning_rate", "must be in (0, 1]", c.LearningRate)
	check(c.MinDataInLeaf >= 1, "min_data_in_leaf", "must be at least 1", c.MinDataInLeaf)
	check(c.Lambda >= 0, "lambda", "must be non-negative", c.Lambda)
	check(c.MinGainToSplit >= 0, "min_gain_to_split", "must be non-negative", c.MinGainToSplit)
	check(c.Subsample > 0 && c.Subsample <= 1, "subsample", "must be in (0, 1]", c.Subsample)
	check(c.ImportanceThreshold >= 0, "importance_threshold", "must be non-negative", c.ImportanceThreshold)

	switch pipeline.StandardizeMode(c.Standardize) {
	case pipeline.StandardizeTrain, pipeline.StandardizePerSubset, pipeline.StandardizeNone:
	default:
		check(false, "standardize", "must be one of train, per_subset, none", c.Standardize)
	}
	_, perr := preprocessing.ParseZeroVariancePolicy(c.ZeroVariance)
	check(perr == nil, "zero_variance", "must be one of fail, unit, drop", c.ZeroVariance)
	_, perr = log.ParseLevel(c.LogLevel)
	check(perr == nil, "log_level", "must be one of debug, info, warn, error", c.LogLevel)
	check(c.LogFormat == "console" || c.LogFormat == "json", "log_format", "must be console or json", c.LogFormat)
	return err
}

// Options validates c and converts it into pipeline options.
func (c Config) Options() (pipeline.Options, error) {
	if err := c.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	policy, err := preprocessing.ParseZeroVariancePolicy(c.ZeroVariance)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.DefaultOptions()
	opts.SplitFraction = c.SplitFraction
	opts.Seed = c.Seed
	opts.Strata = c.Strata
	opts.CVFolds = c.CVFolds
	opts.MaxRounds = c.MaxRounds
	opts.Patience = c.EarlyStoppingPatience
	opts.ImportanceThreshold = c.ImportanceThreshold
	opts.Standardize = pipeline.StandardizeMode(c.Standardize)
	opts.ZeroVariance = policy
	opts.Training.LearningRate = c.LearningRate
	opts.Training.MaxDepth = c.MaxDepth
	opts.Training.MinDataInLeaf = c.MinDataInLeaf
	opts.Training.Lambda = c.Lambda
	opts.Training.MinGainToSplit = c.MinGainToSplit
	opts.Training.Subsample = c.Subsample
	opts.Training.Seed = c.Seed
	return opts, nil
}

// WriteYAML writes c in file form.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "config.WriteYAML")
	}
	return enc.Close()
}

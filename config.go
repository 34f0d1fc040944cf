package sapling

import (
	"fmt"
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Split heuristics for classification trees. Regression trees always
// split on standard-deviation reduction.
const (
	InfoGain Heuristic = "info_gain"
	GiniGain Heuristic = "gini_gain"
)

// Leaf prediction strategies for classification trees.
const (
	Majority   LeafPrediction = "majority"
	NaiveBayes LeafPrediction = "naive_bayes"
)

// Heuristic identifies the split heuristic of a classification tree.
type Heuristic string

// LeafPrediction identifies how classification leaves turn their
// statistics into a label.
type LeafPrediction string

/*
Config holds the learning parameters of a tree.

The zero value of every field means "use the default", so that a Config
unmarshalled from a partial YAML document keeps the defaults for the
options it does not mention. Adaptive is a *bool for the same reason:
drift adaptation defaults to enabled.
*/
type Config struct {
	// GracePeriod is the minimum number of examples accumulated at a
	// leaf between split evaluations.
	GracePeriod int `yaml:"grace_period"`
	// SplitConfidence is the error tolerance delta of the Hoeffding
	// bound; the confidence of a split decision is 1-delta.
	SplitConfidence float64 `yaml:"split_confidence"`
	// TieBreaking is the tau threshold below which the bound is
	// considered too small to separate the two best attributes, and a
	// split is forced on the better one.
	TieBreaking float64 `yaml:"tie_breaking"`
	// DriftCheck is the number of examples between drift checks.
	DriftCheck int `yaml:"drift_check"`
	// WindowSize is the capacity of the example FIFO window; it also
	// sets the length of a self-evaluation period.
	WindowSize int `yaml:"window_size"`
	// FadingFactor is the fading factor of prequential error
	// estimates.
	FadingFactor float64 `yaml:"fading_factor"`
	// BinsCap is the maximum number of bins a histogram may hold.
	BinsCap int `yaml:"bins_cap"`
	// Heuristic selects the classification split heuristic.
	Heuristic Heuristic `yaml:"heuristic"`
	// LeafPrediction selects the classification leaf predictor.
	LeafPrediction LeafPrediction `yaml:"leaf_prediction"`
	// Adaptive enables drift adaptation through alternate subtrees.
	Adaptive *bool `yaml:"adaptive"`
	// DriftErrorThreshold is the prequential error beyond which an
	// internal node is considered degraded and spawns an alternate
	// subtree.
	DriftErrorThreshold float64 `yaml:"drift_error_threshold"`
	// PromotionMargin is how much lower than its host's an alternate
	// subtree's error must be for the alternate to be promoted.
	PromotionMargin float64 `yaml:"promotion_margin"`
	// MaxAltTrees caps the alternate subtrees a node may grow at once.
	MaxAltTrees int `yaml:"max_alt_trees"`
}

// Default learning parameters.
const (
	DefaultGracePeriod         = 200
	DefaultSplitConfidence     = 1e-6
	DefaultTieBreaking         = 0.05
	DefaultDriftCheck          = 100
	DefaultWindowSize          = 10000
	DefaultFadingFactor        = 0.9995
	DefaultBinsCap             = 100
	DefaultDriftErrorThreshold = 0.35
	DefaultPromotionMargin     = 0.01
	DefaultMaxAltTrees         = 2
)

/*
DefaultConfig returns a Config with every option set to its default.
*/
func DefaultConfig() *Config {
	adaptive := true
	return &Config{
		GracePeriod:         DefaultGracePeriod,
		SplitConfidence:     DefaultSplitConfidence,
		TieBreaking:         DefaultTieBreaking,
		DriftCheck:          DefaultDriftCheck,
		WindowSize:          DefaultWindowSize,
		FadingFactor:        DefaultFadingFactor,
		BinsCap:             DefaultBinsCap,
		Heuristic:           InfoGain,
		LeafPrediction:      Majority,
		Adaptive:            &adaptive,
		DriftErrorThreshold: DefaultDriftErrorThreshold,
		PromotionMargin:     DefaultPromotionMargin,
		MaxAltTrees:         DefaultMaxAltTrees,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.GracePeriod == 0 {
		c.GracePeriod = d.GracePeriod
	}
	if c.SplitConfidence == 0 {
		c.SplitConfidence = d.SplitConfidence
	}
	if c.TieBreaking == 0 {
		c.TieBreaking = d.TieBreaking
	}
	if c.DriftCheck == 0 {
		c.DriftCheck = d.DriftCheck
	}
	if c.WindowSize == 0 {
		c.WindowSize = d.WindowSize
	}
	if c.FadingFactor == 0 {
		c.FadingFactor = d.FadingFactor
	}
	if c.BinsCap == 0 {
		c.BinsCap = d.BinsCap
	}
	if c.Heuristic == "" {
		c.Heuristic = d.Heuristic
	}
	if c.LeafPrediction == "" {
		c.LeafPrediction = d.LeafPrediction
	}
	if c.Adaptive == nil {
		c.Adaptive = d.Adaptive
	}
	if c.DriftErrorThreshold == 0 {
		c.DriftErrorThreshold = d.DriftErrorThreshold
	}
	if c.PromotionMargin == 0 {
		c.PromotionMargin = d.PromotionMargin
	}
	if c.MaxAltTrees == 0 {
		c.MaxAltTrees = d.MaxAltTrees
	}
}

func (c *Config) validate() error {
	if c.GracePeriod < 1 {
		return fmt.Errorf("grace period must be positive, got %d", c.GracePeriod)
	}
	if c.SplitConfidence <= 0 || c.SplitConfidence >= 1 {
		return fmt.Errorf("split confidence must be in (0,1), got %g", c.SplitConfidence)
	}
	if c.TieBreaking < 0 {
		return fmt.Errorf("tie breaking threshold cannot be negative, got %g", c.TieBreaking)
	}
	if c.DriftCheck < 1 {
		return fmt.Errorf("drift check period must be positive, got %d", c.DriftCheck)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.FadingFactor <= 0 || c.FadingFactor > 1 {
		return fmt.Errorf("fading factor must be in (0,1], got %g", c.FadingFactor)
	}
	if c.BinsCap < 2 {
		return fmt.Errorf("histograms need at least 2 bins, got %d", c.BinsCap)
	}
	if c.Heuristic != InfoGain && c.Heuristic != GiniGain {
		return fmt.Errorf("unknown heuristic %q", c.Heuristic)
	}
	if c.LeafPrediction != Majority && c.LeafPrediction != NaiveBayes {
		return fmt.Errorf("unknown leaf prediction %q", c.LeafPrediction)
	}
	return nil
}

func (c *Config) adaptive() bool {
	return c.Adaptive != nil && *c.Adaptive
}

/*
LoadConfig takes a filepath string, reads its contents and returns the
Config parsed from it, with defaults applied for every option the file
does not set, or an error when the file cannot be read or parsed.
*/
func LoadConfig(filepath string) (*Config, error) {
	data, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %v", filepath, err)
	}
	config := &Config{}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %v", filepath, err)
	}
	config.applyDefaults()
	err = config.validate()
	if err != nil {
		return nil, fmt.Errorf("validating config file %s: %v", filepath, err)
	}
	return config, nil
}

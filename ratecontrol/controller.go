// SPDX-License-Identifier: EPL-2.0

package ratecontrol

import (
	"fmt"

	"go.uber.org/zap"
)

// Drift adjustment bounds. Positive values duplicate samples, negative
// values drop them.
const (
	MaxDrift = 1
	MinDrift = -3
)

// Defaults taken from the firmware the controller was tuned on.
const (
	DefaultAveragingRange = 200
	DefaultLogEvery       = 100
)

// DefaultThresholds are the fill percentages gating the drift levels.
var DefaultThresholds = [5]int{15, 25, 35, 45, 55}

// Mode selects the decision algorithm.
type Mode int

const (
	// ModeHysteresis walks the drift one level at a time between five thresholds.
	ModeHysteresis Mode = iota
	// ModeThreshold is the two-threshold fallback: +1 below the low mark,
	// -1 above the high mark, 0 in between.
	ModeThreshold
)

func (m Mode) String() string {
	switch m {
	case ModeHysteresis:
		return "hysteresis"
	case ModeThreshold:
		return "threshold"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "hysteresis":
		return ModeHysteresis, nil
	case "threshold":
		return ModeThreshold, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Config tunes a Controller.
type Config struct {
	// Capacity of the observed buffer in bytes.
	Capacity int
	// AveragingRange is the history length of the moving average.
	AveragingRange int
	// Thresholds are five ascending fill percentages.
	Thresholds [5]int
	Mode       Mode
	// LogEvery forces a diagnostic line after this many silent observations.
	LogEvery int
}

// DefaultConfig returns the tuned defaults for a buffer of capacity bytes.
func DefaultConfig(capacity int) Config {
	return Config{
		Capacity:       capacity,
		AveragingRange: DefaultAveragingRange,
		Thresholds:     DefaultThresholds,
		Mode:           ModeHysteresis,
		LogEvery:       DefaultLogEvery,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Capacity < 2 {
		return ErrInvalidCapacity
	}
	if c.AveragingRange < 1 {
		return ErrInvalidRange
	}
	for i := 1; i < len(c.Thresholds); i++ {
		if c.Thresholds[i] <= c.Thresholds[i-1] {
			return ErrInvalidThresholds
		}
	}
	if c.Thresholds[0] < 0 {
		return ErrInvalidThresholds
	}
	if c.Mode != ModeHysteresis && c.Mode != ModeThreshold {
		return ErrUnknownMode
	}

	return nil
}

// Stats is a snapshot of the controller state.
type Stats struct {
	Occupancy    int
	AvgItems     int
	FillPercent  int
	Drift        int
	Observations uint64
	Changes      uint64
}

// Controller turns buffer occupancy into a drift adjustment.
//
// It is not safe for concurrent use; the producer owns it.
type Controller struct {
	cfg Config
	log *zap.Logger

	avg      int
	drift    int
	lastOcc  int
	sinceLog int

	observations uint64
	changes      uint64
}

// New returns a Controller starting at a quarter-full average and zero drift.
// A nil logger disables diagnostics.
func New(cfg Config, log *zap.Logger) (*Controller, error) {
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = DefaultLogEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rate control: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Controller{
		cfg: cfg,
		log: log,
		avg: cfg.Capacity / 8,
	}, nil
}

// Observe folds occupancy (bytes) into the moving average and returns the
// drift adjustment for the next write.
func (c *Controller) Observe(occupancy int) int {
	a := c.cfg.AveragingRange
	c.avg = ((a-1)*c.avg + occupancy) / a
	c.lastOcc = occupancy
	c.observations++

	pct := c.fillPercent()
	prev := c.drift

	switch c.cfg.Mode {
	case ModeThreshold:
		c.drift = c.threshold(pct)
	default:
		c.drift = c.hysteresis(pct)
	}

	changed := c.drift != prev
	if changed {
		c.changes++
	}
	c.report(pct, changed)

	return c.drift
}

// Drift is the last decision without observing.
func (c *Controller) Drift() int { return c.drift }

// Stats returns a snapshot for diagnostics.
func (c *Controller) Stats() Stats {
	return Stats{
		Occupancy:    c.lastOcc,
		AvgItems:     c.avg,
		FillPercent:  c.fillPercent(),
		Drift:        c.drift,
		Observations: c.observations,
		Changes:      c.changes,
	}
}

// fillPercent is 100 at half capacity.
func (c *Controller) fillPercent() int {
	return c.avg * 100 / (c.cfg.Capacity / 2)
}

// hysteresis moves at most one level per observation. Going up uses the
// threshold at index -drift, going down the one two slots higher.
func (c *Controller) hysteresis(pct int) int {
	cur := c.drift
	lim := c.cfg.Thresholds

	if cur != MaxDrift && pct < lim[-cur] {
		return cur + 1
	}
	if cur != MinDrift && pct > lim[2-cur] {
		return cur - 1
	}

	return cur
}

func (c *Controller) threshold(pct int) int {
	lim := c.cfg.Thresholds

	switch {
	case pct < lim[0]:
		return 1
	case pct > lim[2]:
		return -1
	default:
		return 0
	}
}

func (c *Controller) report(pct int, force bool) {
	c.sinceLog++
	if !force && c.sinceLog <= c.cfg.LogEvery {
		return
	}
	c.sinceLog = 0

	c.log.Info("rate control",
		zap.Int("fill_percent", pct),
		zap.Int("avg", c.avg),
		zap.Int("occupancy", c.lastOcc),
		zap.Int("drift", c.drift),
		zap.String("mode", c.cfg.Mode.String()),
	)
}

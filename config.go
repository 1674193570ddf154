// SPDX-License-Identifier: EPL-2.0

package spdifbridge

import (
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ik5/spdifbridge/output"
	"github.com/ik5/spdifbridge/ratecontrol"
	"github.com/ik5/spdifbridge/ringbuf"
	"github.com/ik5/spdifbridge/spdif"
)

// Pipeline defaults, matching the firmware the controller was tuned on.
const (
	DefaultBufferCapacity = 16384
	DefaultSampleRate     = 44100
	DefaultWriteTimeoutMS = 100
	DefaultBlockFrames    = 128
	DefaultControlAddr    = ":8090"
)

// Source kinds.
const (
	SourceFile = "file"
	SourceTone = "tone"
)

// Sink kinds.
const (
	SinkFile      = "file"
	SinkStdout    = "stdout"
	SinkDiscard   = "discard"
	SinkPortAudio = "portaudio"
	SinkWAV       = "wav"
)

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Source   SourceConfig   `yaml:"source"`
	Sink     SinkConfig     `yaml:"sink"`
	Control  ControlConfig  `yaml:"control"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig holds the reconciliation tunables.
type PipelineConfig struct {
	BufferCapacity int    `yaml:"buffer_capacity"`
	AveragingRange int    `yaml:"averaging_range"`
	Thresholds     []int  `yaml:"thresholds"`
	Mode           string `yaml:"mode"`
	Volume         int    `yaml:"volume"`
	OutputPath     string `yaml:"output_path"`
	DACBias        bool   `yaml:"dac_bias"`
	// SendTimeoutMS bounds every enqueue. Negative waits forever.
	SendTimeoutMS int `yaml:"send_timeout_ms"`
	// WriteTimeoutMS bounds every sink write. Negative waits forever.
	WriteTimeoutMS int `yaml:"write_timeout_ms"`
	SampleRate     int `yaml:"sample_rate"`
	LogEvery       int `yaml:"log_every"`
}

type SourceConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`

	ToneFrequency float64 `yaml:"tone_frequency"`
	ToneAmplitude float32 `yaml:"tone_amplitude"`
	ToneSeconds   int     `yaml:"tone_seconds"`

	BlockFrames int  `yaml:"block_frames"`
	Paced       bool `yaml:"paced"`
	Burst       int  `yaml:"burst"`
}

type SinkConfig struct {
	Kind            string `yaml:"kind"`
	Path            string `yaml:"path"`
	Paced           bool   `yaml:"paced"`
	FramesPerBuffer int    `yaml:"frames_per_buffer"`
}

type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns a tone-to-discard setup with the tuned pipeline
// constants.
func DefaultConfig() Config {
	rc := ratecontrol.DefaultConfig(DefaultBufferCapacity)

	return Config{
		Pipeline: PipelineConfig{
			BufferCapacity: DefaultBufferCapacity,
			AveragingRange: rc.AveragingRange,
			Thresholds:     rc.Thresholds[:],
			Mode:           rc.Mode.String(),
			Volume:         output.MaxVolume,
			OutputPath:     output.PathSPDIF,
			SendTimeoutMS:  20,
			WriteTimeoutMS: DefaultWriteTimeoutMS,
			SampleRate:     DefaultSampleRate,
			LogEvery:       rc.LogEvery,
		},
		Source: SourceConfig{
			Kind:          SourceTone,
			ToneFrequency: 1000,
			ToneAmplitude: 0.5,
			BlockFrames:   DefaultBlockFrames,
			Paced:         true,
		},
		Sink: SinkConfig{
			Kind: SinkDiscard,
		},
		Control: ControlConfig{
			Addr: DefaultControlAddr,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}

	if !slices.Contains([]string{SourceFile, SourceTone}, c.Source.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source.Kind)
	}
	if c.Source.Kind == SourceFile && c.Source.Path == "" {
		return fmt.Errorf("%w: source.path is required for file sources", ErrInvalidConfig)
	}
	if c.Source.BlockFrames < 1 {
		return fmt.Errorf("%w: source.block_frames must be positive", ErrInvalidConfig)
	}

	switch c.Sink.Kind {
	case SinkStdout, SinkDiscard, SinkPortAudio:
	case SinkFile, SinkWAV:
		if c.Sink.Path == "" {
			return fmt.Errorf("%w: sink.path is required for %s sinks", ErrInvalidConfig, c.Sink.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, c.Sink.Kind)
	}

	if c.Control.Enabled && c.Control.Addr == "" {
		return fmt.Errorf("%w: control.addr is required", ErrInvalidConfig)
	}

	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Validate checks the pipeline section on its own.
func (c PipelineConfig) Validate() error {
	if c.BufferCapacity < 2*spdif.DMABufLen {
		return fmt.Errorf("%w: buffer_capacity %d is below %d", ErrInvalidConfig, c.BufferCapacity, 2*spdif.DMABufLen)
	}
	if c.Volume < 0 || c.Volume > output.MaxVolume {
		return fmt.Errorf("%w: volume %d outside [0, %d]", ErrInvalidConfig, c.Volume, output.MaxVolume)
	}
	if c.OutputPath != output.PathPCM && c.OutputPath != output.PathSPDIF {
		return fmt.Errorf("%w: %q", ErrUnknownOutputPath, c.OutputPath)
	}
	if _, err := spdif.DeriveClock(c.SampleRate); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	rc, err := c.rateControl()
	if err != nil {
		return err
	}
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// SendTimeout is the enqueue budget as a duration.
func (c PipelineConfig) SendTimeout() time.Duration { return msToTimeout(c.SendTimeoutMS) }

// WriteTimeout is the sink write budget as a duration.
func (c PipelineConfig) WriteTimeout() time.Duration { return msToTimeout(c.WriteTimeoutMS) }

func (c PipelineConfig) rateControl() (ratecontrol.Config, error) {
	mode, err := ratecontrol.ParseMode(c.Mode)
	if err != nil {
		return ratecontrol.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.Thresholds) != len(ratecontrol.DefaultThresholds) {
		return ratecontrol.Config{}, fmt.Errorf("%w: %w: want %d values, got %d",
			ErrInvalidConfig, ratecontrol.ErrInvalidThresholds, len(ratecontrol.DefaultThresholds), len(c.Thresholds))
	}

	rc := ratecontrol.Config{
		Capacity:       c.BufferCapacity,
		AveragingRange: c.AveragingRange,
		Mode:           mode,
		LogEvery:       c.LogEvery,
	}
	copy(rc.Thresholds[:], c.Thresholds)

	return rc, nil
}

func msToTimeout(ms int) time.Duration {
	if ms < 0 {
		return ringbuf.Forever
	}
	return time.Duration(ms) * time.Millisecond
}

// NewLogger builds the process logger: JSON production output or the
// development console.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	if cfg.JSON {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return log, nil
}

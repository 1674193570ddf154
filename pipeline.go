// SPDX-License-Identifier: EPL-2.0

package spdifbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ik5/spdifbridge/internal/metrics"
	"github.com/ik5/spdifbridge/output"
	"github.com/ik5/spdifbridge/ratecontrol"
	"github.com/ik5/spdifbridge/ringbuf"
	"github.com/ik5/spdifbridge/spdif"
	"github.com/ik5/spdifbridge/stream"
)

// Sink is the hardware audio primitive at the end of the pipeline. The
// spdif output path additionally needs it to implement spdif.Driver.
type Sink interface {
	Write(p []byte, timeout time.Duration) (int, error)
}

type rateSetter interface {
	SetSampleRate(rate int) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The pipeline tags it with its id.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// Stats is a snapshot of both sides of the pipeline.
type Stats struct {
	ID         string `json:"id"`
	OutputPath string `json:"output_path"`
	SampleRate int    `json:"sample_rate"`
	Volume     int    `json:"volume"`

	Capacity     int    `json:"capacity"`
	Occupancy    int    `json:"occupancy"`
	FillPercent  int    `json:"fill_percent"`
	Drift        int    `json:"drift"`
	DriftChanges uint64 `json:"drift_changes"`

	BlocksWritten     uint64 `json:"blocks_written"`
	Backpressure      uint64 `json:"backpressure"`
	SamplesDropped    uint64 `json:"samples_dropped"`
	SamplesDuplicated uint64 `json:"samples_duplicated"`

	ItemsOut       uint64 `json:"items_out"`
	BytesOut       uint64 `json:"bytes_out"`
	ItemsSkipped   uint64 `json:"items_skipped"`
	OutputFailures uint64 `json:"output_failures"`
	FramesFlushed  uint64 `json:"frames_flushed"`
}

// Pipeline owns the ring buffer, the rate controller, the stream writer,
// the consumer loop and, on the spdif path, the encoder.
//
// Write belongs to one producer goroutine and Run to one consumer
// goroutine. SetVolume, SetSampleRate and Stats are safe from anywhere.
type Pipeline struct {
	id   string
	cfg  PipelineConfig
	log  *zap.Logger
	sink Sink

	ring   *ringbuf.Buffer
	ctrl   *ratecontrol.Controller
	writer *stream.Writer
	enc    *spdif.Encoder
	loop   *output.Loop

	rate atomic.Int64

	// mirrors of producer-local state for Stats
	fill         atomic.Int64
	drift        atomic.Int64
	driftChanges atomic.Uint64
	dropped      atomic.Uint64
	duplicated   atomic.Uint64
	blocks       atomic.Uint64
	backpressure atomic.Uint64

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// New validates cfg and builds a pipeline writing to sink. On the spdif
// path the encoder is initialised at cfg.SampleRate; on the pcm path a sink
// with SetSampleRate is told the rate.
func New(cfg PipelineConfig, sink Sink, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrInvalidConfig)
	}

	p := &Pipeline{
		id:   uuid.NewString(),
		cfg:  cfg,
		log:  zap.NewNop(),
		sink: sink,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(zap.String("pipeline_id", p.id))

	ring, err := ringbuf.New(cfg.BufferCapacity)
	if err != nil {
		return nil, fmt.Errorf("ring buffer: %w", err)
	}
	p.ring = ring

	rc, err := cfg.rateControl()
	if err != nil {
		return nil, err
	}
	p.ctrl, err = ratecontrol.New(rc, p.log.Named("ratecontrol"))
	if err != nil {
		return nil, err
	}
	p.writer = stream.NewWriter(ring, p.ctrl, cfg.SendTimeout())

	var path output.Path
	switch cfg.OutputPath {
	case output.PathSPDIF:
		drv, ok := sink.(spdif.Driver)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrNotDriver, sink)
		}
		p.enc = spdif.NewEncoder(drv, p.log.Named("spdif"), cfg.WriteTimeout())
		if err := p.enc.Init(cfg.SampleRate); err != nil {
			return nil, fmt.Errorf("init encoder: %w", err)
		}
		path = output.NewEncodedPath(p.enc)

	default:
		if rs, ok := sink.(rateSetter); ok {
			if err := rs.SetSampleRate(cfg.SampleRate); err != nil {
				return nil, fmt.Errorf("sink sample rate: %w", err)
			}
		}
		path = output.NewPCMPath(sink, cfg.DACBias, cfg.WriteTimeout())
	}

	p.loop = output.NewLoop(ring, &meteredPath{Path: path, enc: p.enc}, p.log.Named("output"))
	p.loop.SetVolume(cfg.Volume)
	p.rate.Store(int64(cfg.SampleRate))

	metrics.VolumePercent.Set(float64(cfg.Volume))
	metrics.SampleRateHz.Set(float64(cfg.SampleRate))

	p.log.Info("pipeline created",
		zap.String("output_path", cfg.OutputPath),
		zap.Int("capacity", cfg.BufferCapacity),
		zap.Int("sample_rate", cfg.SampleRate),
		zap.String("mode", cfg.Mode),
	)

	return p, nil
}

// ID is the instance id carried in every log line.
func (p *Pipeline) ID() string { return p.id }

// Write rate-adjusts p and enqueues it. It returns 0 and an error wrapping
// ErrBackpressure when the ring buffer stays full; the block is then lost
// and the caller decides whether to retry.
func (p *Pipeline) Write(b []byte) (int, error) {
	start := time.Now()
	n, err := p.writer.Write(b)
	metrics.WriteDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)

	p.publish()

	if err != nil {
		if errors.Is(err, ErrBackpressure) {
			if c := p.backpressure.Add(1); c == 1 || c%100 == 0 {
				p.log.Warn("block rejected, ring buffer full",
					zap.Int("bytes", len(b)),
					zap.Uint64("rejected", c),
				)
			}
			metrics.BackpressureTotal.Inc()
		}
		return n, err
	}

	if n > 0 {
		p.blocks.Add(1)
		metrics.BlocksWrittenTotal.Inc()
	}

	return n, nil
}

// WriteCopy writes a private copy of b, for callers that reuse b before
// the write returns. A nil block or one larger than the ring buffer fails
// with ErrAllocation.
func (p *Pipeline) WriteCopy(b []byte) (int, error) {
	if b == nil || len(b) > p.ring.Capacity() {
		p.log.Error("block copy failed", zap.Int("bytes", len(b)))
		return 0, fmt.Errorf("%w: %d bytes", ErrAllocation, len(b))
	}

	return p.Write(append([]byte(nil), b...))
}

// Run drains the ring buffer into the sink until ctx is cancelled or the
// pipeline is closed. It may be called once.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return ErrPipelineClosed
	case p.started:
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.started = true
	p.mu.Unlock()

	defer close(p.done)

	p.log.Info("pipeline running")
	err := p.loop.Run(ctx)
	p.log.Info("pipeline stopped", zap.Error(err))

	return err
}

// SetVolume sets the software volume of the spdif path and returns the
// clamped value.
func (p *Pipeline) SetVolume(v int) int {
	v = p.loop.SetVolume(v)
	metrics.VolumePercent.Set(float64(v))
	p.log.Info("volume changed", zap.Int("volume", v))

	return v
}

// SetSampleRate retunes the output. The rate is validated before the
// hardware is touched. After Close it returns ErrPipelineClosed and leaves
// the driver uninstalled.
func (p *Pipeline) SetSampleRate(rate int) error {
	if _, err := spdif.DeriveClock(rate); err != nil {
		return err
	}

	// held across the retune so Close cannot uninstall in between
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPipelineClosed
	}

	switch {
	case p.enc != nil:
		if err := p.enc.SetSampleRate(rate); err != nil {
			return fmt.Errorf("set sample rate: %w", err)
		}
	default:
		if rs, ok := p.sink.(rateSetter); ok {
			if err := rs.SetSampleRate(rate); err != nil {
				return fmt.Errorf("set sample rate: %w", err)
			}
		}
	}

	p.rate.Store(int64(rate))
	metrics.SampleRateHz.Set(float64(rate))
	p.log.Info("sample rate changed", zap.Int("sample_rate", rate))

	return nil
}

// Stats returns a snapshot. Producer-side values are as of the last Write.
func (p *Pipeline) Stats() Stats {
	ls := p.loop.Stats()

	st := Stats{
		ID:                p.id,
		OutputPath:        p.cfg.OutputPath,
		SampleRate:        int(p.rate.Load()),
		Volume:            p.loop.Volume(),
		Capacity:          p.ring.Capacity(),
		Occupancy:         p.ring.Occupancy(),
		FillPercent:       int(p.fill.Load()),
		Drift:             int(p.drift.Load()),
		DriftChanges:      p.driftChanges.Load(),
		BlocksWritten:     p.blocks.Load(),
		Backpressure:      p.backpressure.Load(),
		SamplesDropped:    p.dropped.Load(),
		SamplesDuplicated: p.duplicated.Load(),
		ItemsOut:          ls.Items,
		BytesOut:          ls.Bytes,
		ItemsSkipped:      ls.Skipped,
		OutputFailures:    ls.Failures,
	}
	if p.enc != nil {
		st.FramesFlushed = p.enc.Flushes()
	}

	return st
}

// Close stops the pipeline: the ring buffer is closed, a running consumer
// drains it and returns, then the encoder uninstalls the driver. The sink
// itself is left to the caller.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPipelineClosed
	}
	p.closed = true
	started := p.started
	p.mu.Unlock()

	if err := p.ring.Close(); err != nil && !errors.Is(err, ringbuf.ErrClosed) {
		return fmt.Errorf("close ring buffer: %w", err)
	}
	if started {
		<-p.done
	}

	if p.enc != nil {
		if err := p.enc.Close(); err != nil {
			return fmt.Errorf("close encoder: %w", err)
		}
	}

	p.log.Info("pipeline closed")

	return nil
}

// publish copies producer-local state into atomics and gauges.
func (p *Pipeline) publish() {
	cs := p.ctrl.Stats()

	p.fill.Store(int64(cs.FillPercent))
	p.drift.Store(int64(cs.Drift))
	if prev := p.driftChanges.Swap(cs.Changes); cs.Changes > prev {
		metrics.DriftChangesTotal.Add(float64(cs.Changes - prev))
	}
	if prev := p.dropped.Swap(p.writer.Dropped()); p.writer.Dropped() > prev {
		metrics.SamplesAdjustedTotal.WithLabelValues("dropped").Add(float64(p.writer.Dropped() - prev))
	}
	if prev := p.duplicated.Swap(p.writer.Duplicated()); p.writer.Duplicated() > prev {
		metrics.SamplesAdjustedTotal.WithLabelValues("duplicated").Add(float64(p.writer.Duplicated() - prev))
	}

	metrics.RingOccupancyBytes.Set(float64(p.ring.Occupancy()))
	metrics.FillPercent.Set(float64(cs.FillPercent))
	metrics.Drift.Set(float64(cs.Drift))
}

// meteredPath counts consumer outcomes. It runs on the consumer goroutine
// only.
type meteredPath struct {
	output.Path
	enc     *spdif.Encoder
	flushed uint64
}

func (m *meteredPath) Process(item []byte, volume int) error {
	err := m.Path.Process(item, volume)
	if err != nil {
		metrics.ItemsOutTotal.WithLabelValues("failed").Inc()
	} else {
		metrics.ItemsOutTotal.WithLabelValues("ok").Inc()
	}

	if m.enc != nil {
		if f := m.enc.Flushes(); f > m.flushed {
			metrics.FramesFlushedTotal.Add(float64(f - m.flushed))
			m.flushed = f
		}
	}

	return err
}

// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/spdifbridge/spdif"
)

// PCMBytesPerFrame is one stereo 16-bit frame.
const PCMBytesPerFrame = 4

// Writer adapts an io.Writer into a blocking hardware sink. It serves both
// as the PCM sink and as the S/PDIF driver.
//
// When paced, Write releases data no faster than the configured byte rate,
// the way a DMA engine drains its buffers. Without pacing every write goes
// straight through.
type Writer struct {
	mtx sync.Mutex
	w   io.Writer
	log *zap.Logger

	paced    bool
	byteRate int
	next     time.Time

	installed bool
	written   int64
}

// Option configures a Writer.
type Option func(*Writer)

// WithPacing makes Write block at the byte rate set by Install or
// SetSampleRate.
func WithPacing() Option {
	return func(w *Writer) { w.paced = true }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Writer) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWriter wraps w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	s := &Writer{
		w:   w,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Install configures the writer for an encoded stream described by clock.
func (s *Writer) Install(clock spdif.ClockConfig) error {
	if clock.ByteRate() <= 0 {
		return fmt.Errorf("install: %w", ErrInvalidRate)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.byteRate = clock.ByteRate()
	s.installed = true
	s.next = time.Time{}

	s.log.Debug("sink installed",
		zap.Int("sample_rate", clock.SampleRate),
		zap.Int("byte_rate", s.byteRate),
	)

	return nil
}

// Uninstall marks the writer as stopped. Writes are still accepted.
func (s *Writer) Uninstall() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.installed = false

	return nil
}

// SetSampleRate configures the writer for raw stereo 16-bit PCM at rate.
func (s *Writer) SetSampleRate(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("sample rate %d: %w", rate, ErrInvalidRate)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.byteRate = rate * PCMBytesPerFrame
	s.next = time.Time{}

	return nil
}

// Installed reports whether Install was called without a later Uninstall.
func (s *Writer) Installed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.installed
}

// Written is the number of bytes handed to the underlying writer.
func (s *Writer) Written() int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.written
}

// Write blocks until p is accepted. When paced and the previous data has not
// drained within timeout, it returns ErrTimeout without writing. A negative
// timeout waits as long as needed.
func (s *Writer) Write(p []byte, timeout time.Duration) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.paced && s.byteRate > 0 {
		now := time.Now()
		if s.next.Before(now) {
			s.next = now
		}

		wait := s.next.Sub(now)
		if timeout >= 0 && wait > timeout {
			return 0, ErrTimeout
		}
		if wait > 0 {
			time.Sleep(wait)
		}

		s.next = s.next.Add(time.Duration(len(p)) * time.Second / time.Duration(s.byteRate))
	}

	n, err := s.w.Write(p)
	s.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("sink write: %w", err)
	}

	return n, nil
}

// Close closes the underlying writer when it is an io.Closer.
func (s *Writer) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if c, ok := s.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// SPDX-License-Identifier: EPL-2.0

package portaudio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/ik5/spdifbridge/spdif"
	"github.com/ik5/spdifbridge/utils"
)

const (
	channels = 2

	// DefaultFramesPerBuffer matches one S/PDIF DMA half-buffer.
	DefaultFramesPerBuffer = spdif.DMABufLen
)

// Sink plays stereo 16-bit PCM on the default output device using the
// blocking stream API.
type Sink struct {
	mtx    sync.Mutex
	log    *zap.Logger
	stream *portaudio.Stream
	buf    []int16
	fill   int
	rate   int
}

// New initializes PortAudio. Call SetSampleRate or Install before writing.
func New(framesPerBuffer int, log *zap.Logger) (*Sink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	return &Sink{
		log: log,
		buf: make([]int16, framesPerBuffer*channels),
	}, nil
}

// SetSampleRate (re)opens the output stream at rate.
func (s *Sink) SetSampleRate(rate int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.open(rate)
}

// Install opens the stream at the clock's sample rate.
func (s *Sink) Install(clock spdif.ClockConfig) error {
	return s.SetSampleRate(clock.SampleRate)
}

// SampleRate is the rate of the open stream, 0 when closed.
func (s *Sink) SampleRate() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stream == nil {
		return 0
	}
	return s.rate
}

// Uninstall stops and closes the stream.
func (s *Sink) Uninstall() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.closeStream()
}

// Write copies little-endian samples into the device buffer, blocking on
// the device each time the buffer fills. PortAudio has no write deadline,
// so timeout is not honoured.
func (s *Sink) Write(p []byte, _ time.Duration) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stream == nil {
		return 0, ErrNotOpen
	}

	done := 0
	for done < len(p) {
		n := utils.Int16FromLE(s.buf[s.fill:], p[done:])
		s.fill += n
		done += 2 * n

		if s.fill < len(s.buf) {
			break
		}

		if err := s.stream.Write(); err != nil {
			s.fill = 0
			if errors.Is(err, portaudio.OutputUnderflowed) {
				s.log.Debug("portaudio underflow")
				continue
			}
			return done, fmt.Errorf("portaudio write: %w", err)
		}
		s.fill = 0
	}

	return len(p), nil
}

// Close releases the stream and PortAudio itself.
func (s *Sink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.closeStream()
	if terr := portaudio.Terminate(); terr != nil {
		err = errors.Join(err, fmt.Errorf("portaudio terminate: %w", terr))
	}

	return err
}

func (s *Sink) open(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("sample rate %d: %w", rate, spdif.ErrInvalidSampleRate)
	}

	if err := s.closeStream(); err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(rate), len(s.buf)/channels, s.buf)
	if err != nil {
		return fmt.Errorf("portaudio open: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("portaudio start: %w", err)
	}

	s.stream = stream
	s.rate = rate
	s.fill = 0

	s.log.Info("portaudio stream open",
		zap.Int("sample_rate", rate),
		zap.Int("frames_per_buffer", len(s.buf)/channels),
	)

	return nil
}

func (s *Sink) closeStream() error {
	if s.stream == nil {
		return nil
	}

	stream := s.stream
	s.stream = nil

	if err := stream.Stop(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("portaudio stop: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("portaudio close: %w", err)
	}

	return nil
}

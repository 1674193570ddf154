// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"sync"
)

// Waveform returns the sample of channel ch in frame i.
type Waveform func(i, ch int) int16

// MockSource is a scripted audio.Source. Besides the waveform it can hand
// out short reads, the way a radio link delivers uneven packets, and fail
// at a chosen frame.
type MockSource struct {
	mtx sync.Mutex

	rate     int
	channels int
	frames   int
	wave     Waveform

	pos    int
	chunk  int
	failAt int
	err    error
	closed bool
}

// NewMockSource returns frames frames of wave.
func NewMockSource(sampleRate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{
		rate:     sampleRate,
		channels: channels,
		frames:   frames,
		wave:     wave,
		failAt:   -1,
	}
}

// NewSilentSource returns frames frames of digital silence.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) int16 { return 0 })
}

// NewCounterSource numbers every frame, so ordering and dropped or repeated
// frames are easy to spot. Channel c of frame i holds int16(i) + c*1000.
func NewCounterSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(i, ch int) int16 {
		return int16(i + ch*1000)
	})
}

// Chunk caps every read at n frames.
func (m *MockSource) Chunk(n int) *MockSource {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.chunk = n
	return m
}

// FailAt makes the read reaching frame return err instead of data.
func (m *MockSource) FailAt(frame int, err error) *MockSource {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.failAt = frame
	m.err = err
	return m
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.closed
}

func (m *MockSource) ReadSamples(dst []int16) (int, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.pos)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	if m.failAt >= 0 && m.pos+n > m.failAt {
		return 0, m.err
	}

	for f := range n {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.wave(m.pos+f, ch)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}

	return n * m.channels, nil
}

// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/spdifbridge/utils"
)

const (
	bitDepth = 16
	channels = 2
)

// Encoder captures the raw PCM output path into a stereo 16-bit WAV file.
// It satisfies output.Sink, so it can stand in for the hardware.
type Encoder struct {
	mtx     sync.Mutex
	ws      io.WriteSeeker
	enc     *wav.Encoder
	rate    int
	pcm     []int16
	buf     *goaudio.IntBuffer
	written int
	closed  bool
}

// NewEncoder starts a WAV file at sampleRate on ws. The header is finalized
// by Close.
func NewEncoder(ws io.WriteSeeker, sampleRate int) *Encoder {
	return &Encoder{
		ws:   ws,
		enc:  wav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		rate: sampleRate,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

// SetSampleRate accepts the rate the file was started with. A WAV file has
// a single rate, so anything else is refused once data was written.
func (e *Encoder) SetSampleRate(rate int) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if rate == e.rate {
		return nil
	}
	if e.written > 0 {
		return fmt.Errorf("%w: file is %d Hz, asked for %d Hz", ErrRateChange, e.rate, rate)
	}

	e.enc = wav.NewEncoder(e.ws, rate, bitDepth, channels, formatPCM)
	e.rate = rate
	e.buf.Format.SampleRate = rate

	return nil
}

// Write appends little-endian stereo samples. WAV output never blocks, so
// timeout is ignored.
func (e *Encoder) Write(p []byte, _ time.Duration) (int, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return 0, ErrEncoderClosed
	}

	n := len(p) / 2
	if cap(e.pcm) < n {
		e.pcm = make([]int16, n)
		e.buf.Data = make([]int, n)
	}
	e.pcm = e.pcm[:n]
	e.buf.Data = e.buf.Data[:n]

	utils.Int16FromLE(e.pcm, p)
	for i, v := range e.pcm {
		e.buf.Data[i] = int(v)
	}

	if err := e.enc.Write(e.buf); err != nil {
		return 0, fmt.Errorf("wav write: %w", err)
	}
	e.written += 2 * n

	return 2 * n, nil
}

// Written is the number of PCM bytes in the file so far.
func (e *Encoder) Written() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.written
}

// Close patches the header. It does not close ws.
func (e *Encoder) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}

	return nil
}

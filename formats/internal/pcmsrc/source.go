// SPDX-License-Identifier: EPL-2.0

// Package pcmsrc adapts the go-audio container decoders to audio.Source.
package pcmsrc

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// DefaultBufSize is reported by BufSize before the first read.
const DefaultBufSize = 4096

// Reader is the part of wav.Decoder and aiff.Decoder a Source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source pulls 16-bit integer frames out of a go-audio decoder.
type Source struct {
	r      Reader
	format *goaudio.Format
	label  string

	// OpenErr wraps a failure on the first read, where go-audio walks
	// the chunk list looking for sample data. Nil leaves it unwrapped.
	OpenErr error

	scratch goaudio.IntBuffer
	reads   int
	eof     bool
}

// New returns a Source over r. label prefixes read errors.
func New(r Reader, format *goaudio.Format, label string) *Source {
	s := &Source{r: r, format: format, label: label}
	s.scratch.Format = format
	s.scratch.SourceBitDepth = 16

	return s
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.format.NumChannels }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if c := cap(s.scratch.Data); c > 0 {
		return c
	}
	return DefaultBufSize
}

// ReadSamples fills dst with interleaved samples. The decoders report the
// end of data as a short read, which is turned into io.EOF here.
func (s *Source) ReadSamples(dst []int16) (int, error) {
	switch {
	case len(dst) == 0:
		return 0, nil
	case s.eof:
		return 0, io.EOF
	}

	s.grow(len(dst))

	n, err := s.r.PCMBuffer(&s.scratch)
	if err != nil && err != io.EOF {
		if s.reads == 0 && s.OpenErr != nil {
			return 0, fmt.Errorf("%w: %w", s.OpenErr, err)
		}
		return 0, fmt.Errorf("%s read: %w", s.label, err)
	}
	s.reads++

	for i, v := range s.scratch.Data[:n] {
		dst[i] = int16(v)
	}

	if n < len(dst) || err == io.EOF {
		s.eof = true
		return n, io.EOF
	}

	return n, nil
}

func (s *Source) grow(n int) {
	if cap(s.scratch.Data) < n {
		s.scratch.Data = make([]int, n)
		return
	}
	s.scratch.Data = s.scratch.Data[:n]
}

// Seekable returns r when it can seek and otherwise buffers it in memory.
// The go-audio decoders jump between chunks and need io.ReadSeeker.
func Seekable(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

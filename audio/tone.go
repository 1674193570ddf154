// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/spdifbridge/utils"
)

// ToneSource generates a sine wave on every channel. It stands in for a
// wireless link when no file is given.
type ToneSource struct {
	sampleRate int
	channels   int
	freq       float64
	amplitude  float32
	frames     int // 0 means endless
	pos        int
	phase      float64
}

// NewToneSource returns a sine of freq Hz at amplitude in [0,1]. A frames
// count of 0 never ends.
func NewToneSource(sampleRate, channels int, freq float64, amplitude float32, frames int) (*ToneSource, error) {
	if sampleRate <= 0 || channels <= 0 || freq <= 0 || freq >= float64(sampleRate)/2 || frames < 0 {
		return nil, fmt.Errorf("%w: rate %d, channels %d, freq %g", ErrInvalidTone, sampleRate, channels, freq)
	}

	return &ToneSource{
		sampleRate: sampleRate,
		channels:   channels,
		freq:       freq,
		amplitude:  min(max(amplitude, 0), 1),
		frames:     frames,
	}, nil
}

func (t *ToneSource) SampleRate() int { return t.sampleRate }
func (t *ToneSource) Channels() int   { return t.channels }
func (t *ToneSource) BufSize() int    { return 4096 }
func (t *ToneSource) Close() error    { return nil }

func (t *ToneSource) ReadSamples(dst []int16) (int, error) {
	if t.frames > 0 && t.pos >= t.frames {
		return 0, io.EOF
	}

	want := len(dst) / t.channels
	if t.frames > 0 {
		want = min(want, t.frames-t.pos)
	}

	step := 2 * math.Pi * t.freq / float64(t.sampleRate)
	for f := range want {
		v := utils.Float32ToInt16(t.amplitude * float32(math.Sin(t.phase)))
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
		for c := range t.channels {
			dst[f*t.channels+c] = v
		}
	}
	t.pos += want

	if t.frames > 0 && t.pos >= t.frames {
		return want * t.channels, io.EOF
	}

	return want * t.channels, nil
}

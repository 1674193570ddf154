// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/spdifbridge/audio"
	"github.com/ik5/spdifbridge/formats/internal/pcmsrc"
)

// Decoder opens 16-bit AIFF files.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcmsrc.Seekable(r)
	if err != nil {
		return nil, fmt.Errorf("buffer aiff: %w", err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAIFF
	}
	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	f := dec.Format()
	if f == nil || f.NumChannels < 1 || f.SampleRate <= 0 {
		return nil, ErrBadLayout
	}

	return pcmsrc.New(dec, f, "aiff"), nil
}

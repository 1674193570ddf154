// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/spdifbridge/audio"
	"github.com/ik5/spdifbridge/formats/internal/pcmsrc"
)

const formatPCM = 1

// Decoder opens 16-bit PCM WAV files.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcmsrc.Seekable(r)
	if err != nil {
		return nil, fmt.Errorf("buffer wav: %w", err)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	dec.ReadInfo()

	if dec.WavAudioFormat != formatPCM || dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	f := dec.Format()
	if f == nil || f.NumChannels < 1 || f.SampleRate <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	src := pcmsrc.New(dec, f, "wav")
	src.OpenErr = ErrUnsupportedWavChunks

	return src, nil
}

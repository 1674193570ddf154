// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StereoMixer turns any Source into interleaved stereo. Mono is duplicated
// into both channels, stereo passes through, and wider layouts fold even
// channels into left and odd channels into right.
type StereoMixer struct {
	src Source
	tmp []int16
}

func NewStereoMixer(src Source) (*StereoMixer, error) {
	if src.Channels() < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, src.Channels())
	}

	return &StereoMixer{
		src: src,
		tmp: make([]int16, 4096),
	}, nil
}

func (m *StereoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *StereoMixer) Channels() int   { return 2 }
func (m *StereoMixer) BufSize() int    { return m.src.BufSize() }
func (m *StereoMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples fills dst with whole stereo frames, so len(dst) must be even.
func (m *StereoMixer) ReadSamples(dst []int16) (int, error) {
	if len(dst)%2 != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	if channels == 2 {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / 2
	need := frames * channels

	if cap(m.tmp) < need {
		m.tmp = make([]int16, max(need, 8192))
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	got := n / channels

	switch channels {
	case 1:
		for f := range got {
			dst[2*f] = m.tmp[f]
			dst[2*f+1] = m.tmp[f]
		}
	default:
		left := (channels + 1) / 2
		right := channels / 2
		for f := range got {
			var l, r int32
			base := f * channels
			for c := range channels {
				if c%2 == 0 {
					l += int32(m.tmp[base+c])
				} else {
					r += int32(m.tmp[base+c])
				}
			}
			dst[2*f] = int16(l / int32(left))
			dst[2*f+1] = int16(r / int32(right))
		}
	}

	return 2 * got, err
}

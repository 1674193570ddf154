// SPDX-License-Identifier: EPL-2.0

// Package audio provides the producer side building blocks of the bridge.
//
// This package contains:
//   - Source interface for PCM input
//   - StereoMixer for bringing any layout to interleaved stereo
//   - ToneSource, a sine generator used as a stand-in for a live link
//   - Format registry for decoder registration
//
// # Source Interface
//
// The Source interface is the foundation of the producer side:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []int16) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders in the formats packages and the generators here all implement
// it, so they can be chained and handed to spdifbridge.Feed.
//
// # Channel Mixing
//
// The pipeline carries stereo only. StereoMixer duplicates mono and folds
// wider layouts, even channels to the left and odd channels to the right:
//
//	stereo, err := audio.NewStereoMixer(source)
//	buf := make([]int16, 4096)
//	n, err := stereo.ReadSamples(buf)
//
// # Format Registry
//
// The registry maps extensions to decoders, ignoring case and the dot:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("Take 3.WAV")
//
// # Sample Format
//
// Samples are signed 16-bit integers, interleaved by channel. Nothing is
// converted to floating point on the way to the ring buffer.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available. Samples
// returned together with io.EOF are valid:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // Process n samples from buf
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio

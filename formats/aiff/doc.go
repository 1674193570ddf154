// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files into an
// audio.Source of signed 16-bit samples, ready for the bridge's producer.
//
// # Supported Formats
//
// Currently supported:
//   - PCM 16-bit
//   - Any channel count (fold to stereo with audio.StereoMixer)
//   - Any sample rate
//
// # Decoding AIFF Files
//
//	decoder := aiff.Decoder{}
//	file, _ := os.Open("audio.aif")
//	source, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadSamples(buf)
//
// AIFF stores samples big-endian; the decoder hands them out as native
// int16 values, so nothing downstream cares about the byte order.
//
// # Error Handling
//
//   - ErrNotAIFF: no FORM/AIFF header
//   - ErrUnsupportedBitDepth: anything but 16-bit samples
//   - ErrBadLayout: the COMM chunk lacks channels or rate
//
// Readers that cannot seek are buffered in memory first, since go-audio
// needs an io.ReadSeeker.
package aiff

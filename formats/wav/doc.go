// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Both directions go through github.com/go-audio/wav, so files with extra
// chunks (LIST, INFO, odd-sized padding) are handled by the library rather
// than by a hand-written header parser.
//
// # Supported Formats
//
// Currently supported:
//   - PCM 16-bit
//   - Any channel count when decoding, stereo when encoding
//   - Any sample rate
//
// # Decoding WAV Files
//
//	decoder := wav.Decoder{}
//	file, _ := os.Open("audio.wav")
//	source, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]int16, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Capturing Output
//
// Encoder is an output sink for the raw PCM path. Every block the consumer
// would send to the DAC is appended to the file instead:
//
//	f, _ := os.Create("capture.wav")
//	enc := wav.NewEncoder(f, 44100)
//	defer enc.Close()
//	n, err := enc.Write(block, 0)
//
// Close must be called to patch the RIFF sizes in the header.
//
// # Error Handling
//
//   - ErrNotWavFile: The input is not a valid WAV file
//   - ErrOnlyPCM16bitSupported: The file is not 16-bit integer PCM
//   - ErrUnsupportedWavLayout: Missing or invalid format information
//   - ErrUnsupportedWavChunks: The data chunk could not be reached
//   - ErrRateChange: The encoder was asked to switch rate mid-file
//   - ErrEncoderClosed: Write after Close
package wav

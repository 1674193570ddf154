// SPDX-License-Identifier: EPL-2.0

// Package spdif encodes 16-bit stereo PCM into S/PDIF sub-frames sent over
// a 32-bit serial (I2S) bus.
//
// Every bit of the S/PDIF stream is carried as two half-bits using biphase
// mark coding: the level toggles at the start of every bit and a one adds a
// toggle in the middle. The bus runs at twice the PCM rate with 32-bit
// words, so each channel sample takes two words: a preamble word and an
// audio word.
//
// # BMC table
//
// The byte-to-code table is generated at init from the transition rule. Codes
// are least significant bit first and always end low:
//
//	spdif.Code(0x00) // 0xcccc
//	spdif.Code(0x01) // 0x4ccc
//	spdif.Code(0xff) // 0xaaaa
//
// EncodeSample chains the low and high byte codes into one audio word whose
// first half-bit is always set, and returns the VUCP byte that closes the
// sub-frame. The VUCP parity bit keeps every preamble at the same polarity,
// so the preamble words are constants. DecodeWord is the inverse.
//
// # Frames
//
// An Encoder owns a frame of FrameWords words, half of a 192-frame block.
// Even words hold the M and W channel preambles, odd words the audio. When
// the frame is full the preamble byte of word 0 is flipped between M and B,
// so a block-start preamble goes out every other frame, and the whole frame
// is written to the Driver in one blocking call.
//
//	enc := spdif.NewEncoder(drv, logger, -1)
//	if err := enc.Init(44100); err != nil {
//	    // invalid rate or driver failure
//	}
//	err := enc.Encode(pcm)
//
// # Clock
//
// DeriveClock computes the bus clocks for a PCM rate: the word rate is twice
// the PCM rate, the bit clock is word rate * 32 * 2 and the master clock is
// the largest multiple of the bit clock below 26 MHz. Rates that leave no
// valid master clock are rejected with ErrInvalidSampleRate before the
// driver is touched.
//
// Changing the sample rate always uninstalls and reinstalls the driver.
package spdif

// SPDX-License-Identifier: EPL-2.0

package spdif

import "fmt"

// Frame geometry. Every 16-bit channel sample becomes 64 BMC half-bits, sent
// as two 32-bit serial words per channel.
const (
	I2SBitsPerSample = 32
	Channels         = 2
	BMCBitsPerSample = 64
	BMCFactor        = BMCBitsPerSample / I2SBitsPerSample

	// BlockSamples is the number of stereo frames between block-start preambles.
	BlockSamples = 192

	// BlockSize is one full block of encoded audio in bytes.
	BlockSize = BlockSamples * (BMCBitsPerSample / 8) * Channels

	// FrameSize is the frame buffer flushed per write: half a block.
	FrameSize  = BlockSize / 2
	FrameWords = FrameSize / 4

	DMABufCount = 2
	DMABufLen   = BlockSamples * BMCBitsPerSample / I2SBitsPerSample / DMABufCount
)

// masterClockBase is the reference the I2S peripheral divides its master
// clock from; the master clock has to be a whole multiple of the bit clock.
const masterClockBase = 26_000_000

// ClockConfig is what the serial driver is installed with.
type ClockConfig struct {
	// SampleRate is the PCM rate in Hz.
	SampleRate int
	// WordRate is the serial frame rate, SampleRate * BMCFactor.
	WordRate      int
	BitClock      int
	MasterClock   int
	BitsPerSample int
	Channels      int
	DMABufCount   int
	DMABufLen     int
}

// ByteRate is the number of encoded bytes the bus consumes per second.
func (c ClockConfig) ByteRate() int { return c.BitClock / 8 }

// DeriveClock computes the serial bus clocks for a PCM sample rate. Rates
// whose bit clock is not positive or exceeds the master clock reference are
// rejected.
func DeriveClock(rate int) (ClockConfig, error) {
	if rate <= 0 {
		return ClockConfig{}, fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, rate)
	}

	wordRate := rate * BMCFactor
	bclk := wordRate * I2SBitsPerSample * Channels
	if bclk <= 0 {
		return ClockConfig{}, fmt.Errorf("%w: %d Hz gives bit clock %d", ErrInvalidSampleRate, rate, bclk)
	}

	mclk := masterClockBase / bclk * bclk
	if mclk == 0 {
		return ClockConfig{}, fmt.Errorf("%w: %d Hz gives bit clock %d above %d", ErrInvalidSampleRate, rate, bclk, masterClockBase)
	}

	return ClockConfig{
		SampleRate:    rate,
		WordRate:      wordRate,
		BitClock:      bclk,
		MasterClock:   mclk,
		BitsPerSample: I2SBitsPerSample,
		Channels:      Channels,
		DMABufCount:   DMABufCount,
		DMABufLen:     DMABufLen,
	}, nil
}

// SPDX-License-Identifier: EPL-2.0

package spdif

import (
	"errors"
	"testing"
)

func TestFrameGeometry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{name: "BMCFactor", got: BMCFactor, want: 2},
		{name: "BlockSize", got: BlockSize, want: 3072},
		{name: "FrameSize", got: FrameSize, want: 1536},
		{name: "FrameWords", got: FrameWords, want: 384},
		{name: "DMABufLen", got: DMABufLen, want: 192},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestDeriveClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate     int
		wordRate int
		bclk     int
		mclk     int
	}{
		{rate: 44100, wordRate: 88200, bclk: 5644800, mclk: 22579200},
		{rate: 48000, wordRate: 96000, bclk: 6144000, mclk: 24576000},
		{rate: 32000, wordRate: 64000, bclk: 4096000, mclk: 24576000},
		{rate: 8000, wordRate: 16000, bclk: 1024000, mclk: 25600000},
	}

	for _, tt := range tests {
		got, err := DeriveClock(tt.rate)
		if err != nil {
			t.Fatalf("DeriveClock(%d) error = %v", tt.rate, err)
		}

		if got.SampleRate != tt.rate || got.WordRate != tt.wordRate || got.BitClock != tt.bclk || got.MasterClock != tt.mclk {
			t.Errorf("DeriveClock(%d) = %+v, want word %d, bclk %d, mclk %d",
				tt.rate, got, tt.wordRate, tt.bclk, tt.mclk)
		}
		if got.MasterClock%got.BitClock != 0 {
			t.Errorf("DeriveClock(%d) master clock %d is not a multiple of %d", tt.rate, got.MasterClock, got.BitClock)
		}
		if got.ByteRate() != tt.bclk/8 {
			t.Errorf("ByteRate() = %d, want %d", got.ByteRate(), tt.bclk/8)
		}
		if got.DMABufCount != DMABufCount || got.DMABufLen != DMABufLen {
			t.Errorf("DeriveClock(%d) DMA = %dx%d, want %dx%d",
				tt.rate, got.DMABufCount, got.DMABufLen, DMABufCount, DMABufLen)
		}
	}
}

func TestDeriveClock_Invalid(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{0, -44100, 300000} {
		if _, err := DeriveClock(rate); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("DeriveClock(%d) error = %v, want %v", rate, err, ErrInvalidSampleRate)
		}
	}
}

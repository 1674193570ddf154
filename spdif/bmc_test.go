// SPDX-License-Identifier: EPL-2.0

package spdif

import (
	"math/bits"
	"testing"
)

func TestCode_KnownValues(t *testing.T) {
	t.Parallel()

	// taken from the lookup table the hardware was originally driven with
	tests := []struct {
		in   byte
		want uint16
	}{
		{in: 0x00, want: 0xcccc},
		{in: 0x01, want: 0x4ccc},
		{in: 0x02, want: 0x2ccc},
		{in: 0x03, want: 0xaccc},
		{in: 0x04, want: 0x34cc},
		{in: 0x0f, want: 0xaacc},
		{in: 0x10, want: 0x334c},
		{in: 0x1f, want: 0x554c},
		{in: 0x55, want: 0xb4b4},
		{in: 0x7f, want: 0x5554},
		{in: 0x80, want: 0x3332},
		{in: 0xaa, want: 0xd2d2},
		{in: 0xc0, want: 0xccca},
		{in: 0xfe, want: 0x2aaa},
		{in: 0xff, want: 0xaaaa},
	}

	for _, tt := range tests {
		if got := Code(tt.in); got != tt.want {
			t.Errorf("Code(%#02x) = %#04x, want %#04x", tt.in, got, tt.want)
		}
	}
}

func TestCode_TransitionRule(t *testing.T) {
	t.Parallel()

	for v := range 256 {
		code := Code(byte(v))

		if code&1 != 0 {
			t.Fatalf("Code(%#02x) = %#04x does not end low", v, code)
		}

		for i := range 8 {
			first := code >> (15 - 2*i) & 1
			second := code >> (14 - 2*i) & 1
			bit := uint16(v>>i) & 1

			if first^second != bit {
				t.Fatalf("Code(%#02x) bit %d: halves %d%d, want mid toggle = %d", v, i, first, second, bit)
			}
			if i > 0 {
				prev := code >> (15 - 2*(i-1) - 1) & 1
				if prev == first {
					t.Fatalf("Code(%#02x) bit %d: no transition at bit start", v, i)
				}
			}
		}
	}
}

func TestEncodeSample_RoundTrip(t *testing.T) {
	t.Parallel()

	for v := range 1 << 16 {
		s := uint16(v)
		w, _ := EncodeSample(s)

		if got := DecodeWord(w); got != s {
			t.Fatalf("DecodeWord(EncodeSample(%#04x)) = %#04x", s, got)
		}
		if w&marker == 0 {
			t.Fatalf("EncodeSample(%#04x) = %#08x, marker bit not set", s, w)
		}

		// every slot starts with a transition, including the byte seam
		for i := 1; i < 16; i++ {
			prev := w >> (32 - 2*i) & 1
			first := w >> (31 - 2*i) & 1
			if prev == first {
				t.Fatalf("EncodeSample(%#04x) = %#08x: no transition before bit %d", s, w, i)
			}
		}
	}
}

func TestEncodeSample_Parity(t *testing.T) {
	t.Parallel()

	for v := range 1 << 16 {
		s := uint16(v)
		w, vucp := EncodeSample(s)
		end := w & 1

		// the VUCP byte must start opposite to the word end and end low
		first := uint32(vucp >> 7)
		if first == end {
			t.Fatalf("EncodeSample(%#04x): VUCP %#02x starts at the level the word ended on", s, vucp)
		}
		if vucp&1 != 0 {
			t.Fatalf("EncodeSample(%#04x): VUCP %#02x does not end low", s, vucp)
		}

		wantParity := byte(bits.OnesCount16(s) & 1)
		gotParity := byte(DecodeWord(uint32(vucp)<<24) >> 3 & 1)
		if gotParity != wantParity {
			t.Fatalf("EncodeSample(%#04x): parity bit = %d, want %d", s, gotParity, wantParity)
		}
	}
}

func TestEncodeSample_MatchesLegacyWordForEvenParity(t *testing.T) {
	t.Parallel()

	// earlier encoders chained the halves from the high byte and forced the
	// first half-bit, which only preserved samples with even parity
	legacy := func(s uint16) uint32 {
		lo := Code(byte(s))
		hi := Code(byte(s >> 8))
		return marker | (uint32(^lo)<<16 ^ uint32(int32(int16(hi))))
	}

	for v := range 1 << 16 {
		s := uint16(v)
		if bits.OnesCount16(s)&1 != 0 {
			continue
		}

		w, _ := EncodeSample(s)
		if want := legacy(s); w != want {
			t.Fatalf("EncodeSample(%#04x) = %#08x, want %#08x", s, w, want)
		}
	}
}

func TestEncodeSample_Silence(t *testing.T) {
	t.Parallel()

	w, vucp := EncodeSample(0)
	if w != 0xcccccccc {
		t.Errorf("EncodeSample(0) word = %#08x, want 0xcccccccc", w)
	}
	if vucp != 0xcc {
		t.Errorf("EncodeSample(0) vucp = %#02x, want 0xcc", vucp)
	}
}

func BenchmarkEncodeSample(b *testing.B) {
	b.ReportAllocs()

	var s uint16
	for b.Loop() {
		_, _ = EncodeSample(s)
		s += 7919
	}
}

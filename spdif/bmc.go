// SPDX-License-Identifier: EPL-2.0

package spdif

import "math/bits"

// marker is the first half-bit of every audio word. The preceding preamble
// word always ends low, so the audio word must start high.
const marker uint32 = 1 << 31

// VUCP bytes closing a sub-frame: validity, user and channel status are
// zero, parity makes slots 4..31 even. Both end low, which keeps the next
// preamble polarity fixed.
const (
	vucpEven byte = 0xcc
	vucpOdd  byte = 0x32
)

var table [256]uint16

func init() {
	for i := range table {
		table[i] = encodeByte(byte(i))
	}
}

// Code returns the biphase-mark code of b: two half-bits per input bit,
// least significant bit in the top two bits, ending at level 0.
func Code(b byte) uint16 { return table[b] }

// encodeByte builds the code backwards from the last half-bit so every code
// ends at level 0. A one toggles mid-bit, every bit toggles at its start.
func encodeByte(b byte) uint16 {
	var (
		code  uint16
		level uint16
	)

	for i := 7; i >= 0; i-- {
		second := level
		first := second ^ uint16(b>>i&1)
		code |= first<<(15-2*i) | second<<(14-2*i)
		level = first ^ 1
	}

	return code
}

// EncodeSample turns one 16-bit sample into the 32-bit audio word of a
// sub-frame and the VUCP byte that follows it.
//
// The low byte goes first, inverted when needed so the word starts high;
// the high byte is inverted when needed so its first half-bit differs from
// the last half-bit of the low byte.
func EncodeSample(s uint16) (uint32, byte) {
	lo := table[s&0xff]
	if lo&0x8000 == 0 {
		lo = ^lo
	}

	hi := table[s>>8]
	if hi>>15 == lo&1 {
		hi = ^hi
	}

	vucp := vucpEven
	if bits.OnesCount16(s)&1 == 1 {
		vucp = vucpOdd
	}

	return marker | uint32(lo)<<16 | uint32(hi), vucp
}

// DecodeWord recovers the sample from an audio word. A bit is one when the
// two halves of its slot differ, so the polarity of either byte does not
// matter.
func DecodeWord(w uint32) uint16 {
	var s uint16
	for i := range 16 {
		pair := w >> (30 - 2*i) & 0b11
		if pair == 0b01 || pair == 0b10 {
			s |= 1 << i
		}
	}

	return s
}

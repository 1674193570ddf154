// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

// PutInt16LE writes src as little-endian samples into dst and returns the
// number of samples written.
func PutInt16LE(dst []byte, src []int16) int {
	n := min(len(src), len(dst)/2)
	for i := range n {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(src[i]))
	}

	return n
}

// Int16FromLE reads little-endian samples from p into dst and returns the
// number of samples read. A trailing odd byte is ignored.
func Int16FromLE(dst []int16, p []byte) int {
	n := min(len(dst), len(p)/2)
	for i := range n {
		dst[i] = int16(binary.LittleEndian.Uint16(p[2*i:]))
	}

	return n
}

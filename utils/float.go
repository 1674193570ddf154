// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 maps [-1, 1] onto a symmetric 16-bit range, rounding to
// the nearest step. Values outside the range clip.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	v := x * 32767
	if v >= 0 {
		return int16(v + 0.5)
	}
	return int16(v - 0.5)
}


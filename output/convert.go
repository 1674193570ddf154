// SPDX-License-Identifier: EPL-2.0

package output

import "encoding/binary"

// MaxVolume passes samples through untouched.
const MaxVolume = 100

// ApplyDCBias shifts little-endian signed 16-bit samples by half scale in
// place, giving the unsigned samples a DAC expects.
func ApplyDCBias(p []byte) {
	for i := 0; i+1 < len(p); i += 2 {
		v := binary.LittleEndian.Uint16(p[i:])
		binary.LittleEndian.PutUint16(p[i:], v+0x8000)
	}
}

// ScaleVolume multiplies every little-endian 16-bit sample by vol/100 in
// place, truncating toward zero. A volume of MaxVolume or more is a no-op.
func ScaleVolume(p []byte, vol int) {
	if vol >= MaxVolume {
		return
	}
	vol = max(vol, 0)

	for i := 0; i+1 < len(p); i += 2 {
		s := int32(int16(binary.LittleEndian.Uint16(p[i:])))
		s = s * int32(vol) / MaxVolume
		binary.LittleEndian.PutUint16(p[i:], uint16(int16(s)))
	}
}

// ClampVolume limits v to [0, MaxVolume].
func ClampVolume(v int) int {
	return min(max(v, 0), MaxVolume)
}

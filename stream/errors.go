// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	// ErrBackpressure indicates the ring buffer did not accept a segment in time
	ErrBackpressure = errors.New("ring buffer backpressure")

	// ErrUnaligned indicates a block that is not a whole number of stereo samples
	ErrUnaligned = errors.New("block size must be a multiple of 4 bytes")
)

// SPDX-License-Identifier: EPL-2.0

package sink

import "errors"

var (
	// ErrTimeout indicates a paced write that could not be accepted within its timeout
	ErrTimeout = errors.New("sink busy")

	// ErrInvalidRate indicates a clock with a non-positive byte rate
	ErrInvalidRate = errors.New("invalid byte rate")
)

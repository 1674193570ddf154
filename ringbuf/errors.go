// SPDX-License-Identifier: EPL-2.0

package ringbuf

import "errors"

var (
	// ErrInvalidCapacity indicates a non-positive buffer capacity
	ErrInvalidCapacity = errors.New("ring buffer capacity must be positive")

	// ErrItemTooLarge indicates an item that can never fit in the buffer
	ErrItemTooLarge = errors.New("item larger than ring buffer capacity")

	// ErrTimeout indicates the wait budget elapsed before the operation completed
	ErrTimeout = errors.New("ring buffer timeout")

	// ErrClosed indicates the buffer was closed
	ErrClosed = errors.New("ring buffer closed")

	// ErrNotHeld indicates Return was called with an item that is not the oldest received one
	ErrNotHeld = errors.New("item is not held by the consumer")
)

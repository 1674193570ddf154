// SPDX-License-Identifier: EPL-2.0

package ratecontrol

import "errors"

var (
	// ErrInvalidCapacity indicates a buffer capacity too small to average over
	ErrInvalidCapacity = errors.New("capacity must be at least 2 bytes")

	// ErrInvalidRange indicates an averaging range below 1
	ErrInvalidRange = errors.New("averaging range must be at least 1")

	// ErrInvalidThresholds indicates thresholds that are negative or not strictly ascending
	ErrInvalidThresholds = errors.New("thresholds must be five ascending non-negative percentages")

	// ErrUnknownMode indicates an unsupported rate control mode
	ErrUnknownMode = errors.New("unknown rate control mode")
)

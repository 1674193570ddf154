// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize      = errors.New("dst size must be multiple of channels")
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	ErrInvalidTone         = errors.New("invalid tone parameters")
	ErrUnknownFormat       = errors.New("no decoder for format")
)

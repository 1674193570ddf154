// SPDX-License-Identifier: EPL-2.0

package spdif

import "errors"

var (
	// ErrInvalidSampleRate indicates a rate whose derived bus clock is unusable
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrNotInitialized indicates Encode was called before Init
	ErrNotInitialized = errors.New("encoder not initialized")

	// ErrUnaligned indicates PCM that is not a whole number of stereo samples
	ErrUnaligned = errors.New("pcm size must be a multiple of 4 bytes")
)

// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAIFF indicates the input has no FORM/AIFF header
	ErrNotAIFF = errors.New("input is not an AIFF stream")

	// ErrUnsupportedBitDepth indicates sample words other than 16 bits
	ErrUnsupportedBitDepth = errors.New("aiff: only 16-bit samples can feed the pipeline")

	// ErrBadLayout indicates a COMM chunk without channels or rate
	ErrBadLayout = errors.New("aiff: missing channel count or sample rate")
)

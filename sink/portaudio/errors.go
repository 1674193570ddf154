// SPDX-License-Identifier: EPL-2.0

package portaudio

import "errors"

var (
	// ErrNotOpen indicates a write before the stream was opened or after Close
	ErrNotOpen = errors.New("portaudio stream not open")
)

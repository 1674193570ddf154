// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	// ErrShortWrite indicates a sink accepted fewer bytes than the item held
	ErrShortWrite = errors.New("short write to sink")
)

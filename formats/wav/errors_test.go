// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"testing"
)

var allErrors = []struct {
	name string
	err  error
	msg  string
}{
	{"ErrNotWavFile", ErrNotWavFile, "not a WAV file"},
	{"ErrUnsupportedWavLayout", ErrUnsupportedWavLayout, "unsupported WAV layout"},
	{"ErrOnlyPCM16bitSupported", ErrOnlyPCM16bitSupported, "only PCM 16-bit supported"},
	{"ErrUnsupportedWavChunks", ErrUnsupportedWavChunks, "unsupported WAV chunks"},
	{"ErrRateChange", ErrRateChange, "sample rate change not supported"},
	{"ErrEncoderClosed", ErrEncoderClosed, "wav encoder closed"},
}

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	for _, tt := range allErrors {
		if tt.err.Error() != tt.msg {
			t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.msg)
		}
	}
}

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	for _, tt := range allErrors {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !errors.Is(fmt.Errorf("decode: %w", tt.err), tt.err) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", tt.name)
			}
			if !errors.Is(errors.Join(tt.err, errors.New("additional context")), tt.err) {
				t.Errorf("errors.Is(joined %s) = false, want true", tt.name)
			}
			if errors.Is(errors.New("some other error"), tt.err) {
				t.Errorf("errors.Is(otherErr, %s) = true, want false", tt.name)
			}
		})
	}
}

func TestErrors_Uniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string)
	for _, tt := range allErrors {
		if other, ok := seen[tt.err.Error()]; ok {
			t.Errorf("%s has same message as %s", tt.name, other)
		}
		seen[tt.err.Error()] = tt.name
	}
}

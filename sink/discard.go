// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sync/atomic"
	"time"

	"github.com/ik5/spdifbridge/spdif"
)

// Discard accepts everything and keeps only a byte count.
type Discard struct {
	written atomic.Int64
}

func (*Discard) Install(spdif.ClockConfig) error { return nil }
func (*Discard) Uninstall() error                { return nil }
func (*Discard) SetSampleRate(int) error         { return nil }

func (d *Discard) Write(p []byte, _ time.Duration) (int, error) {
	d.written.Add(int64(len(p)))
	return len(p), nil
}

// Written is the number of bytes discarded so far.
func (d *Discard) Written() int64 { return d.written.Load() }

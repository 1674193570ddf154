// SPDX-License-Identifier: EPL-2.0

package output

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/spdifbridge/ringbuf"
)

// Receiver is the dequeue side of the ring buffer.
type Receiver interface {
	Receive(timeout time.Duration) ([]byte, error)
	Return(item []byte) error
	Close() error
}

// Stats counts what the loop has done so far.
type Stats struct {
	Items    uint64
	Bytes    uint64
	Skipped  uint64
	Failures uint64
}

// Loop is the consumer: it drains the ring buffer into an output path.
type Loop struct {
	rx   Receiver
	path Path
	log  *zap.Logger

	volume atomic.Int32

	items    atomic.Uint64
	bytes    atomic.Uint64
	skipped  atomic.Uint64
	failures atomic.Uint64
}

// NewLoop returns a Loop at full volume.
func NewLoop(rx Receiver, path Path, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}

	l := &Loop{
		rx:   rx,
		path: path,
		log:  log.With(zap.String("path", path.Name())),
	}
	l.volume.Store(MaxVolume)

	return l
}

// SetVolume stores the clamped volume and returns it. It can be called from
// any goroutine; the loop picks the value up on the next item.
func (l *Loop) SetVolume(v int) int {
	v = ClampVolume(v)
	l.volume.Store(int32(v))

	return v
}

// Volume is the current volume in percent.
func (l *Loop) Volume() int { return int(l.volume.Load()) }

// Stats returns the counters. Safe from any goroutine.
func (l *Loop) Stats() Stats {
	return Stats{
		Items:    l.items.Load(),
		Bytes:    l.bytes.Load(),
		Skipped:  l.skipped.Load(),
		Failures: l.failures.Load(),
	}
}

// Run waits for items and pushes them through the path until the ring
// buffer is closed and drained. Cancelling ctx closes the ring buffer.
//
// A failed output write is logged and counted, then the loop moves on: the
// result is an audible glitch, not a stopped pipeline.
func (l *Loop) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = l.rx.Close()
	})
	defer stop()

	l.log.Debug("consumer loop started")
	defer l.log.Debug("consumer loop stopped")

	for {
		item, err := l.rx.Receive(ringbuf.Forever)
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		if len(item) == 0 {
			l.skipped.Add(1)
		} else if err := l.path.Process(item, l.Volume()); err != nil {
			l.failures.Add(1)
			l.log.Warn("output failed", zap.Error(err), zap.Int("bytes", len(item)))
		} else {
			l.items.Add(1)
			l.bytes.Add(uint64(len(item)))
		}

		if err := l.rx.Return(item); err != nil {
			return fmt.Errorf("return item: %w", err)
		}
	}
}

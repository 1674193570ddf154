// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/spdifbridge/ringbuf"
)

// SampleSize is one interleaved stereo 16-bit frame in bytes.
const SampleSize = 4

// DefaultSendTimeout bounds every enqueue so a stalled consumer cannot hang
// the producer.
const DefaultSendTimeout = 20 * time.Millisecond

// Queue is the enqueue side of the ring buffer.
type Queue interface {
	Send(p []byte, timeout time.Duration) error
	Occupancy() int
}

// Controller decides the drift adjustment from the current occupancy.
type Controller interface {
	Observe(occupancy int) int
}

// Writer enqueues PCM blocks, duplicating or dropping samples as the
// controller asks.
//
// Writer is owned by the producer and is not safe for concurrent use.
type Writer struct {
	q       Queue
	ctrl    Controller
	timeout time.Duration

	lastDrift  int
	dropped    uint64
	duplicated uint64
}

// NewWriter returns a Writer enqueueing into q with the given per-send
// timeout. A zero timeout uses DefaultSendTimeout.
func NewWriter(q Queue, ctrl Controller, timeout time.Duration) *Writer {
	if timeout == 0 {
		timeout = DefaultSendTimeout
	}

	return &Writer{
		q:       q,
		ctrl:    ctrl,
		timeout: timeout,
	}
}

// Write applies the drift adjustment to p and enqueues the result. It
// reports len(p) when the last segment was accepted, even if samples were
// dropped or duplicated, and 0 with an error wrapping ErrBackpressure
// otherwise.
//
// Segments already enqueued before a failure stay in the buffer.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p)%SampleSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes", ErrUnaligned, len(p))
	}

	drift := feasible(w.ctrl.Observe(w.q.Occupancy()), len(p)/SampleSize)
	w.lastDrift = drift

	switch {
	case drift > 0:
		if err := w.send(p[:SampleSize]); err != nil {
			return 0, err
		}
		w.duplicated++
		if err := w.send(p); err != nil {
			return 0, err
		}

	case drift == 0:
		if err := w.send(p); err != nil {
			return 0, err
		}

	default:
		for _, seg := range split(p, -drift) {
			if err := w.send(seg); err != nil {
				return 0, err
			}
			w.dropped++
		}
		w.dropped += uint64(len(p) / SampleSize % -drift)
	}

	return len(p), nil
}

// Drift is the adjustment applied by the last Write.
func (w *Writer) Drift() int { return w.lastDrift }

// Dropped is the number of samples removed so far.
func (w *Writer) Dropped() uint64 { return w.dropped }

// Duplicated is the number of samples inserted so far.
func (w *Writer) Duplicated() uint64 { return w.duplicated }

func (w *Writer) send(p []byte) error {
	err := w.q.Send(p, w.timeout)
	if err == nil {
		return nil
	}
	if errors.Is(err, ringbuf.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrBackpressure, err)
	}

	return fmt.Errorf("enqueue: %w", err)
}

// feasible limits a drop to k parts that keep at least one sample each.
func feasible(drift, samples int) int {
	if drift >= 0 {
		return drift
	}

	k := -drift
	for k > 0 && samples < 2*k {
		k--
	}

	return -k
}

// split cuts p into k equal parts of samples/k and returns each part minus
// its last sample. Samples past the last full part are dropped as well.
func split(p []byte, k int) [][]byte {
	part := len(p) / SampleSize / k * SampleSize

	segs := make([][]byte, 0, k)
	for i := range k {
		off := i * part
		segs = append(segs, p[off:off+part-SampleSize])
	}

	return segs
}

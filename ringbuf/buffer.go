// SPDX-License-Identifier: EPL-2.0

package ringbuf

import (
	"sync"
	"time"
)

// Forever disables the timeout of Send and Receive.
const Forever time.Duration = -1

// span is the location of one item inside the storage. pad counts the
// bytes left unused at the end of the storage when the item wrapped to
// offset zero; they are released together with the item.
type span struct {
	off int
	n   int
	pad int
}

// Buffer is a bounded FIFO of variable-length byte items kept in a single
// circular region. Items are never split: an item that does not fit in the
// tail of the storage is placed at its start.
//
// A received item stays reserved until it is handed back with Return, so the
// consumer can work on it in place.
//
// Buffer is safe for one producer and one consumer running concurrently.
type Buffer struct {
	mtx     sync.Mutex
	changed chan struct{}

	storage []byte
	start   int // oldest reserved byte
	used    int // reserved bytes, padding included

	queued []span
	held   []span
	closed bool
}

// New returns a Buffer owning capacity bytes of storage.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	return &Buffer{
		changed: make(chan struct{}),
		storage: make([]byte, capacity),
	}, nil
}

// Capacity is the size of the backing storage in bytes.
func (b *Buffer) Capacity() int { return len(b.storage) }

// Occupancy reports the reserved bytes: queued items, items received but not
// yet returned, and wrap padding. It is always within [0, Capacity()].
func (b *Buffer) Occupancy() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.used
}

// Len is the number of items waiting to be received.
func (b *Buffer) Len() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return len(b.queued)
}

// Send copies p into the buffer as one item. It waits up to timeout for
// enough contiguous space; a zero timeout does not wait and Forever waits
// until space is freed or the buffer is closed.
func (b *Buffer) Send(p []byte, timeout time.Duration) error {
	if len(p) > len(b.storage) {
		return ErrItemTooLarge
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	b.mtx.Lock()
	for {
		if b.closed {
			b.mtx.Unlock()
			return ErrClosed
		}

		if s, ok := b.reserve(len(p)); ok {
			b.used += s.pad + s.n
			copy(b.storage[s.off:s.off+s.n], p)
			b.queued = append(b.queued, s)
			b.notify()
			b.mtx.Unlock()
			return nil
		}

		if timeout == 0 {
			b.mtx.Unlock()
			return ErrTimeout
		}

		ch := b.changed
		b.mtx.Unlock()

		select {
		case <-ch:
		case <-deadline:
			return ErrTimeout
		}

		b.mtx.Lock()
	}
}

// Receive returns the oldest item. The returned slice aliases the buffer
// storage and must be handed back with Return once the caller is done.
//
// After Close, Receive keeps returning queued items and reports ErrClosed
// once the buffer is drained.
func (b *Buffer) Receive(timeout time.Duration) ([]byte, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	b.mtx.Lock()
	for len(b.queued) == 0 {
		if b.closed {
			b.mtx.Unlock()
			return nil, ErrClosed
		}

		if timeout == 0 {
			b.mtx.Unlock()
			return nil, ErrTimeout
		}

		ch := b.changed
		b.mtx.Unlock()

		select {
		case <-ch:
		case <-deadline:
			return nil, ErrTimeout
		}

		b.mtx.Lock()
	}
	defer b.mtx.Unlock()

	s := b.queued[0]
	b.queued = append(b.queued[:0], b.queued[1:]...)
	b.held = append(b.held, s)

	return b.storage[s.off : s.off+s.n : s.off+s.n], nil
}

// Return releases the oldest received item back to the free pool. Items
// must be returned in the order they were received.
func (b *Buffer) Return(item []byte) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if len(b.held) == 0 || len(item) != b.held[0].n {
		return ErrNotHeld
	}

	s := b.held[0]
	b.held = append(b.held[:0], b.held[1:]...)

	// an empty item occupies nothing, and its offset may predate a reset
	// of start
	if s.n > 0 || s.pad > 0 {
		b.used -= s.pad + s.n
		b.start = s.off + s.n
		if b.start >= len(b.storage) {
			b.start -= len(b.storage)
		}
		if b.used == 0 {
			b.start = 0
		}
	}

	b.notify()

	return nil
}

// Close stops Send from accepting items and wakes every waiter. Items
// already queued can still be received.
func (b *Buffer) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.closed = true
	b.notify()

	return nil
}

// reserve finds room for n contiguous bytes after the newest reserved byte.
// Callers hold mtx.
func (b *Buffer) reserve(n int) (span, bool) {
	size := len(b.storage)
	if b.used == 0 {
		b.start = 0
		return span{off: 0, n: n}, true
	}

	end := b.start + b.used
	if end < size {
		// free space is [end, size) followed by [0, start)
		if size-end >= n {
			return span{off: end, n: n}, true
		}
		if b.start >= n {
			return span{off: 0, n: n, pad: size - end}, true
		}
		return span{}, false
	}

	wr := end - size
	if b.start-wr >= n {
		return span{off: wr, n: n}, true
	}

	return span{}, false
}

// notify wakes everything waiting for a state change. Callers hold mtx.
func (b *Buffer) notify() {
	close(b.changed)
	b.changed = make(chan struct{})
}

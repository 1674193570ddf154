// SPDX-License-Identifier: EPL-2.0

// Package ringbuf provides the bounded audio ring buffer that sits between
// the producer and the output clock.
//
// The buffer stores variable-length items in one circular region of fixed
// capacity. Items are dequeued in FIFO order exactly as they were enqueued;
// they are never split or merged.
//
// # Blocking
//
// Both directions take an explicit wait budget:
//
//	err := rb.Send(block, 20*time.Millisecond)   // producer, short timeout
//	item, err := rb.Receive(ringbuf.Forever)     // consumer, waits while idle
//
// Send reports ErrTimeout when the consumer does not free enough space in
// time. Receive hands out a slice that aliases the storage; the consumer may
// modify it in place and must give it back:
//
//	defer rb.Return(item)
//
// # Occupancy
//
// Occupancy counts every reserved byte, including the item currently held by
// the consumer and any padding skipped when an item wrapped to the start of
// the storage. It never exceeds Capacity.
//
// # Shutdown
//
// Close rejects further sends and wakes all waiters. Items already queued can
// still be received; once the buffer is drained Receive returns ErrClosed.
package ringbuf

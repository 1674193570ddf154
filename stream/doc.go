// SPDX-License-Identifier: EPL-2.0

// Package stream applies the drift adjustment to incoming PCM blocks.
//
// Writer asks a controller for the adjustment before each block and shapes
// the block accordingly:
//
//	+1  enqueue the first sample on its own, then the whole block
//	 0  enqueue the block unchanged
//	-1  enqueue the block without its last sample
//	-2  enqueue two halves, each without its last sample
//	-3  enqueue three thirds, each without its last sample
//
// Spreading the drops over sub-blocks avoids a single audible gap. The parts
// are equal, samples/|drift| long, and samples left over after the last part
// are dropped with them. Blocks too short to lose that many samples get the
// largest drop they can take.
//
// Every enqueue is bounded by the send timeout. A failed segment makes Write
// report 0 bytes with ErrBackpressure; segments enqueued before it are not
// rolled back, so callers must not assume all-or-nothing writes.
//
// Writer implements io.Writer.
package stream

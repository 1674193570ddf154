// SPDX-License-Identifier: EPL-2.0

package ringbuf

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

func mustNew(t testing.TB, capacity int) *Buffer {
	t.Helper()

	b, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d) error = %v", capacity, err)
	}

	return b
}

func TestNew_InvalidCapacity(t *testing.T) {
	t.Parallel()

	for _, c := range []int{0, -1} {
		if _, err := New(c); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("New(%d) error = %v, want %v", c, err, ErrInvalidCapacity)
		}
	}
}

func TestBuffer_FIFO(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 64)
	items := [][]byte{
		{1, 2, 3, 4},
		{5, 6, 7, 8, 9, 10, 11, 12},
		{13, 14, 15, 16},
	}

	for _, it := range items {
		if err := b.Send(it, 0); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	if got := b.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if got := b.Occupancy(); got != 16 {
		t.Errorf("Occupancy() = %d, want 16", got)
	}

	for i, want := range items {
		got, err := b.Receive(0)
		if err != nil {
			t.Fatalf("Receive() #%d error = %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Receive() #%d = %v, want %v", i, got, want)
		}
		if err := b.Return(got); err != nil {
			t.Fatalf("Return() #%d error = %v", i, err)
		}
	}

	if got := b.Occupancy(); got != 0 {
		t.Errorf("Occupancy() after drain = %d, want 0", got)
	}
}

func TestBuffer_SendCopies(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 16)
	p := []byte{1, 2, 3, 4}
	if err := b.Send(p, 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	p[0] = 99

	got, _ := b.Receive(0)
	if got[0] != 1 {
		t.Errorf("Receive()[0] = %d, want 1", got[0])
	}
}

func TestBuffer_WrapKeepsItemsWhole(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 16)

	// fill [0,12), then free [0,8) leaving one item at [8,12)
	for range 3 {
		if err := b.Send([]byte{1, 1, 1, 1}, 0); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	for range 2 {
		it, _ := b.Receive(0)
		if err := b.Return(it); err != nil {
			t.Fatalf("Return() error = %v", err)
		}
	}

	// 6 bytes do not fit in the 4-byte tail, so the item wraps to offset 0
	item := []byte{2, 3, 4, 5, 6, 7}
	if err := b.Send(item, 0); err != nil {
		t.Fatalf("Send() wrapped error = %v", err)
	}
	if got, want := b.Occupancy(), 4+4+6; got != want {
		t.Errorf("Occupancy() = %d, want %d (item + pad + wrapped item)", got, want)
	}

	first, _ := b.Receive(0)
	if err := b.Return(first); err != nil {
		t.Fatalf("Return() error = %v", err)
	}

	got, err := b.Receive(0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(got, item) {
		t.Errorf("Receive() = %v, want %v", got, item)
	}
	if err := b.Return(got); err != nil {
		t.Fatalf("Return() error = %v", err)
	}

	if got := b.Occupancy(); got != 0 {
		t.Errorf("Occupancy() = %d, want 0", got)
	}
}

func TestBuffer_ItemTooLarge(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	if err := b.Send(make([]byte, 9), Forever); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Send() error = %v, want %v", err, ErrItemTooLarge)
	}
}

func TestBuffer_SendTimeoutWhenFull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
	}{
		{name: "no wait", timeout: 0},
		{name: "short wait", timeout: 10 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := mustNew(t, 8)
			if err := b.Send(make([]byte, 8), 0); err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			err := b.Send([]byte{1, 2, 3, 4}, tt.timeout)
			if !errors.Is(err, ErrTimeout) {
				t.Errorf("Send() error = %v, want %v", err, ErrTimeout)
			}
			if got := b.Occupancy(); got != 8 {
				t.Errorf("Occupancy() = %d, want 8", got)
			}
		})
	}
}

func TestBuffer_SendWaitsForReturn(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	if err := b.Send(make([]byte, 8), 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- b.Send([]byte{1, 2, 3, 4}, time.Second)
	}()

	it, err := b.Receive(0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := b.Return(it); err != nil {
		t.Fatalf("Return() error = %v", err)
	}

	if err := <-done; err != nil {
		t.Errorf("Send() error = %v, want nil", err)
	}
}

func TestBuffer_ReceiveTimeout(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	if _, err := b.Receive(0); !errors.Is(err, ErrTimeout) {
		t.Errorf("Receive(0) error = %v, want %v", err, ErrTimeout)
	}
	if _, err := b.Receive(5 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("Receive(5ms) error = %v, want %v", err, ErrTimeout)
	}
}

func TestBuffer_ReceiveBlocksUntilSend(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	got := make(chan []byte, 1)
	go func() {
		it, err := b.Receive(Forever)
		if err != nil {
			got <- nil
			return
		}
		got <- append([]byte(nil), it...)
	}()

	time.Sleep(5 * time.Millisecond)
	if err := b.Send([]byte{9, 8, 7, 6}, 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case it := <-got:
		if !bytes.Equal(it, []byte{9, 8, 7, 6}) {
			t.Errorf("Receive() = %v, want [9 8 7 6]", it)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() did not wake up")
	}
}

func TestBuffer_CloseDrainsThenFails(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 16)
	if err := b.Send([]byte{1, 2, 3, 4}, 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want %v", err, ErrClosed)
	}

	if err := b.Send([]byte{5, 6, 7, 8}, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want %v", err, ErrClosed)
	}

	it, err := b.Receive(Forever)
	if err != nil {
		t.Fatalf("Receive() error = %v, want queued item", err)
	}
	_ = b.Return(it)

	if _, err := b.Receive(Forever); !errors.Is(err, ErrClosed) {
		t.Errorf("Receive() on drained buffer error = %v, want %v", err, ErrClosed)
	}
}

func TestBuffer_CloseWakesReceiver(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	done := make(chan error, 1)
	go func() {
		_, err := b.Receive(Forever)
		done <- err
	}()

	time.Sleep(5 * time.Millisecond)
	_ = b.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Receive() error = %v, want %v", err, ErrClosed)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() was not woken by Close()")
	}
}

func TestBuffer_ReturnErrors(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	if err := b.Return(nil); !errors.Is(err, ErrNotHeld) {
		t.Errorf("Return() with nothing held error = %v, want %v", err, ErrNotHeld)
	}

	_ = b.Send([]byte{1, 2, 3, 4}, 0)
	it, _ := b.Receive(0)
	if err := b.Return(it[:2]); !errors.Is(err, ErrNotHeld) {
		t.Errorf("Return() wrong item error = %v, want %v", err, ErrNotHeld)
	}
	if err := b.Return(it); err != nil {
		t.Errorf("Return() error = %v, want nil", err)
	}
}

func TestBuffer_ZeroLengthItem(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 8)
	if err := b.Send(nil, 0); err != nil {
		t.Fatalf("Send(nil) error = %v", err)
	}

	it, err := b.Receive(0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(it) != 0 {
		t.Errorf("len(Receive()) = %d, want 0", len(it))
	}
	if err := b.Return(it); err != nil {
		t.Errorf("Return() error = %v", err)
	}
}

func TestBuffer_ZeroLengthItemAcrossReset(t *testing.T) {
	t.Parallel()

	b := mustNew(t, 16)

	if err := b.Send(bytes.Repeat([]byte{0xaa}, 8), 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	first, err := b.Receive(0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if err := b.Send(nil, 0); err != nil {
		t.Fatalf("Send(nil) error = %v", err)
	}

	// the buffer is empty apart from the zero-length item
	if err := b.Return(first); err != nil {
		t.Fatalf("Return() error = %v", err)
	}
	empty, err := b.Receive(0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}

	want := bytes.Repeat([]byte{0xbb}, 4)
	if err := b.Send(want, 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := b.Return(empty); err != nil {
		t.Fatalf("Return(empty) error = %v", err)
	}
	if got := b.Occupancy(); got != 4 {
		t.Errorf("Occupancy() = %d, want 4", got)
	}

	if err := b.Send(bytes.Repeat([]byte{0xcc}, 8), 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got, err := b.Receive(0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Receive() = %x, want %x", got, want)
	}
	if got := b.Occupancy(); got != 12 {
		t.Errorf("Occupancy() = %d, want 12", got)
	}
}

func TestBuffer_ConcurrentStreamIntegrity(t *testing.T) {
	t.Parallel()

	const (
		capacity = 1024
		total    = 64 * 1024
	)

	b := mustNew(t, capacity)
	src := make([]byte, total)
	for i := range src {
		src[i] = byte(i * 7)
	}

	var (
		wg      sync.WaitGroup
		out     bytes.Buffer
		maxSeen int
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			it, err := b.Receive(Forever)
			if err != nil {
				return
			}
			if occ := b.Occupancy(); occ > maxSeen {
				maxSeen = occ
			}
			out.Write(it)
			_ = b.Return(it)
		}
	}()

	// odd item sizes force wrap padding
	sizes := []int{4, 100, 260, 36, 500}
	for off, i := 0, 0; off < total; i++ {
		n := min(sizes[i%len(sizes)], total-off)
		if err := b.Send(src[off:off+n], Forever); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		off += n
	}
	_ = b.Close()
	wg.Wait()

	if !bytes.Equal(out.Bytes(), src) {
		t.Error("received stream differs from sent stream")
	}
	if maxSeen > capacity {
		t.Errorf("Occupancy() peaked at %d, want <= %d", maxSeen, capacity)
	}
}

func BenchmarkBuffer_SendReceive(b *testing.B) {
	rb := mustNew(b, 16*1024)
	block := make([]byte, 512)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		_ = rb.Send(block, 0)
		it, _ := rb.Receive(0)
		_ = rb.Return(it)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audio

import "sync"

type slot struct {
	buf  []byte
	size int
}

// OutputBuffer is a fixed-capacity ring of byte slots handing PCM from a
// decode producer to a mix consumer.
//
// The producer fills slots front to back and never overwrites unread data.
// The consumer always takes the oldest slot, full or not, and recycles it to
// the back. Neither side blocks: a full buffer accepts 0 bytes and an empty
// one yields 0 bytes.
type OutputBuffer struct {
	mtx   sync.Mutex
	slots []slot
	head  int // front of the ring
	full  bool
}

// NewOutputBuffer allocates count slots of size bytes each.
func NewOutputBuffer(count, size int) *OutputBuffer {
	if count < 1 {
		count = 1
	}
	if size < 1 {
		size = 1
	}

	b := &OutputBuffer{slots: make([]slot, count)}
	for i := range b.slots {
		b.slots[i].buf = make([]byte, size)
	}
	return b
}

// Input copies as much of p as fits and returns the bytes accepted.
// Accepting nothing marks the buffer full until the next Output.
func (b *OutputBuffer) Input(p []byte) int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.full || len(p) == 0 {
		return 0
	}

	filled := 0
	for i := range b.slots {
		if filled >= len(p) {
			break
		}
		dst := &b.slots[(b.head+i)%len(b.slots)]
		room := len(dst.buf) - dst.size
		if room <= 0 {
			continue
		}
		n := copy(dst.buf[dst.size:], p[filled:])
		dst.size += n
		filled += n
	}

	if filled == 0 {
		b.full = true
	}

	return filled
}

// Output copies the front slot into dst and recycles it. It returns the
// number of bytes copied; 0 means nothing was pending this tick.
// dst should be at least SlotSize bytes long; any excess in the slot is dropped.
func (b *OutputBuffer) Output(dst []byte) int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	front := &b.slots[b.head]
	n := copy(dst, front.buf[:front.size])
	front.size = 0
	b.head = (b.head + 1) % len(b.slots)
	b.full = false

	return n
}

// Reset drops everything pending.
func (b *OutputBuffer) Reset() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for i := range b.slots {
		b.slots[i].size = 0
	}
	b.head = 0
	b.full = false
}

// Len is the number of bytes waiting to be consumed.
func (b *OutputBuffer) Len() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	n := 0
	for i := range b.slots {
		n += b.slots[i].size
	}
	return n
}

// Full reports whether the last Input was refused.
func (b *OutputBuffer) Full() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.full
}

func (b *OutputBuffer) Slots() int    { return len(b.slots) }
func (b *OutputBuffer) SlotSize() int { return len(b.slots[0].buf) }

// SPDX-License-Identifier: EPL-2.0

package voice

import "sync"

// pcmQueue holds the device-format PCM waiting on one voice: either a single
// bound buffer or a FIFO of stream buffers. Readers always get a full span;
// whatever the queue cannot supply is silence.
type pcmQueue struct {
	mtx sync.Mutex

	static bool // bound holds the data, bufs is unused
	bound  []byte
	loop   bool

	bufs      [][]byte
	pos       int // read position in bound or bufs[0]
	processed int

	played int64 // bytes of real data read since the last reset
}

func (q *pcmQueue) bind(data []byte, loop bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.bufs = nil
	q.static = true
	q.bound = data
	q.loop = loop
	q.pos = 0
	q.processed = 0
	q.played = 0
}

func (q *pcmQueue) push(data []byte) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if q.static {
		q.static = false
		q.bound = nil
		q.pos = 0
	}
	q.bufs = append(q.bufs, data)
}

// read fills p and returns the number of bytes that came from real data.
func (q *pcmQueue) read(p []byte) int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	n := 0
	if q.static {
		n = q.readBound(p)
	} else {
		n = q.readQueued(p)
	}
	clear(p[n:])
	q.played += int64(n)
	return n
}

func (q *pcmQueue) readBound(p []byte) int {
	n := 0
	for n < len(p) && len(q.bound) > 0 {
		if q.pos >= len(q.bound) {
			if !q.loop {
				break
			}
			q.pos = 0
		}
		c := copy(p[n:], q.bound[q.pos:])
		q.pos += c
		n += c
	}
	return n
}

func (q *pcmQueue) readQueued(p []byte) int {
	n := 0
	for n < len(p) && len(q.bufs) > 0 {
		c := copy(p[n:], q.bufs[0][q.pos:])
		q.pos += c
		n += c
		if q.pos >= len(q.bufs[0]) {
			q.bufs[0] = nil
			q.bufs = q.bufs[1:]
			q.pos = 0
			q.processed++
		}
	}
	return n
}

func (q *pcmQueue) takeProcessed() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	n := q.processed
	q.processed = 0
	return n
}

// drained reports whether a non-looping bound buffer has been read out.
func (q *pcmQueue) drained() bool {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.static && !q.loop && q.pos >= len(q.bound)
}

func (q *pcmQueue) playedBytes() int64 {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.played
}

func (q *pcmQueue) reset() {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.static = false
	q.bound = nil
	q.loop = false
	q.bufs = nil
	q.pos = 0
	q.processed = 0
	q.played = 0
}

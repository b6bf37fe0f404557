// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"bytes"
	"testing"
)

func TestQueue_StreamBuffers(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	q.push([]byte{1, 2, 3})
	q.push([]byte{4, 5})

	p := make([]byte, 4)
	if n := q.read(p); n != 4 || !bytes.Equal(p, []byte{1, 2, 3, 4}) {
		t.Fatalf("read = %d %v, want 4 [1 2 3 4]", n, p)
	}
	if got := q.takeProcessed(); got != 1 {
		t.Errorf("takeProcessed() = %d, want 1", got)
	}
	if got := q.takeProcessed(); got != 0 {
		t.Errorf("second takeProcessed() = %d, want 0", got)
	}

	if n := q.read(p); n != 1 || !bytes.Equal(p, []byte{5, 0, 0, 0}) {
		t.Errorf("starved read = %d %v, want 1 [5 0 0 0]", n, p)
	}
	if got := q.playedBytes(); got != 5 {
		t.Errorf("playedBytes() = %d, want 5; silence must not count", got)
	}
}

func TestQueue_BoundOnce(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	q.bind([]byte{1, 2, 3}, false)

	p := make([]byte, 2)
	q.read(p)
	if q.drained() {
		t.Fatal("drained() = true with a byte left")
	}
	if n := q.read(p); n != 1 || p[1] != 0 {
		t.Errorf("read = %d %v, want 1 [3 0]", n, p)
	}
	if !q.drained() {
		t.Error("drained() = false after the last byte")
	}
}

func TestQueue_BoundLoop(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	q.bind([]byte{1, 2, 3}, true)

	p := make([]byte, 7)
	if n := q.read(p); n != 7 || !bytes.Equal(p, []byte{1, 2, 3, 1, 2, 3, 1}) {
		t.Errorf("read = %d %v, want the clip repeated", n, p)
	}
	if q.drained() {
		t.Error("a looping buffer is never drained")
	}
}

func TestQueue_EmptyBoundIsDrained(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	q.bind(nil, false)
	if !q.drained() {
		t.Error("drained() = false for an empty bound buffer")
	}
}

func TestQueue_PushReplacesBound(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	q.bind([]byte{9, 9}, true)
	q.push([]byte{1})

	p := make([]byte, 2)
	if n := q.read(p); n != 1 || p[0] != 1 {
		t.Errorf("read = %d %v, want only the queued byte", n, p)
	}
}

func TestQueue_Reset(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	q.push([]byte{1, 2})
	q.read(make([]byte, 2))
	q.reset()

	if q.playedBytes() != 0 || q.takeProcessed() != 0 {
		t.Error("reset() left bookkeeping behind")
	}
	if n := q.read(make([]byte, 2)); n != 0 {
		t.Errorf("read after reset = %d, want 0", n)
	}
}

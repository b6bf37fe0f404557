// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"testing"
)

func TestOutputBuffer_Capacity(t *testing.T) {
	t.Parallel()

	const slots, size = 3, 4
	b := NewOutputBuffer(slots, size)

	for i := range slots * size {
		if n := b.Input([]byte{byte(i)}); n != 1 {
			t.Fatalf("Input #%d accepted %d bytes, want 1", i, n)
		}
	}

	if n := b.Input([]byte{0xff}); n != 0 {
		t.Fatalf("Input on full buffer accepted %d bytes, want 0", n)
	}
	if !b.Full() {
		t.Fatal("Full() = false after refused Input")
	}
	if n := b.Input([]byte{0xff}); n != 0 {
		t.Fatalf("Input while full accepted %d bytes, want 0", n)
	}

	dst := make([]byte, size)
	if n := b.Output(dst); n != size {
		t.Fatalf("Output() = %d, want %d", n, size)
	}
	if b.Full() {
		t.Fatal("Full() = true after Output")
	}
	if n := b.Input([]byte{0xaa}); n != 1 {
		t.Fatalf("Input after Output accepted %d bytes, want 1", n)
	}
}

func TestOutputBuffer_FIFO(t *testing.T) {
	t.Parallel()

	b := NewOutputBuffer(3, 4)
	if n := b.Input([]byte("abcdef")); n != 6 {
		t.Fatalf("Input() = %d, want 6", n)
	}
	if n := b.Input([]byte("gh")); n != 2 {
		t.Fatalf("Input() = %d, want 2", n)
	}

	dst := make([]byte, 4)
	for _, want := range []string{"abcd", "efgh"} {
		n := b.Output(dst)
		if got := string(dst[:n]); got != want {
			t.Errorf("Output() = %q, want %q", got, want)
		}
	}
	if n := b.Output(dst); n != 0 {
		t.Errorf("Output() on empty buffer = %d, want 0", n)
	}
}

func TestOutputBuffer_NoOverwrite(t *testing.T) {
	t.Parallel()

	b := NewOutputBuffer(3, 4)
	if n := b.Input([]byte("0123456789ABCDEF")); n != 12 {
		t.Fatalf("Input() = %d, want 12", n)
	}

	dst := make([]byte, 4)
	b.Output(dst)
	if n := b.Input([]byte("wxyz!!")); n != 4 {
		t.Fatalf("Input() after one Output = %d, want 4", n)
	}

	var got bytes.Buffer
	for range 3 {
		n := b.Output(dst)
		got.Write(dst[:n])
	}
	if want := "456789ABwxyz"; got.String() != want {
		t.Errorf("drained %q, want %q", got.String(), want)
	}
}

func TestOutputBuffer_PartialSlot(t *testing.T) {
	t.Parallel()

	b := NewOutputBuffer(2, 8)
	b.Input([]byte("abc"))

	dst := make([]byte, 8)
	if n := b.Output(dst); n != 3 || string(dst[:n]) != "abc" {
		t.Errorf("Output() = %q, want %q", dst[:n], "abc")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestOutputBuffer_Reset(t *testing.T) {
	t.Parallel()

	b := NewOutputBuffer(2, 2)
	b.Input([]byte("abcd"))
	b.Input([]byte("e"))
	if !b.Full() {
		t.Fatal("expected full buffer")
	}

	b.Reset()

	if b.Len() != 0 || b.Full() {
		t.Errorf("after Reset: Len() = %d, Full() = %v", b.Len(), b.Full())
	}
	if n := b.Input([]byte("xy")); n != 2 {
		t.Errorf("Input after Reset = %d, want 2", n)
	}
}

func TestOutputBuffer_EmptyInput(t *testing.T) {
	t.Parallel()

	b := NewOutputBuffer(1, 4)
	if n := b.Input(nil); n != 0 {
		t.Errorf("Input(nil) = %d, want 0", n)
	}
	if b.Full() {
		t.Error("empty Input marked buffer full")
	}
}

func TestOutputBuffer_ZeroAllocs(t *testing.T) {
	b := NewOutputBuffer(4, 1764)
	src := make([]byte, 1000)
	dst := make([]byte, 1764)

	allocs := testing.AllocsPerRun(100, func() {
		b.Input(src)
		b.Output(dst)
	})
	if allocs > 0 {
		t.Errorf("Input/Output allocated %v times, want 0", allocs)
	}
}

func BenchmarkOutputBuffer(b *testing.B) {
	buf := NewOutputBuffer(4, 1764)
	src := make([]byte, 2048)
	dst := make([]byte, 1764)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Input(src)
		buf.Output(dst)
	}
}

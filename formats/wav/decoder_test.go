// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplay/audio"
)

// mockWAVReader serves ints as if they were the PCM chunk of a file.
type mockWAVReader struct {
	data    []int
	pos     int
	rewinds int
	err     error
}

func (m *mockWAVReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := copy(buf.Data, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func (m *mockWAVReader) Rewind() error {
	m.rewinds++
	m.pos = 0
	return nil
}

func decodeAll(t *testing.T, d audio.Decoder) []byte {
	t.Helper()

	var out []byte
	for {
		n, err := d.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if n == 0 {
			return out
		}
		out = append(out, d.Buffer()[:n]...)
	}
}

func TestDecoder_RoundTrip16(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 200)
	for i := range samples {
		samples[i] = int16(i*150 - 15000)
	}
	file := new(bytes.Buffer)
	if err := WriteWAV16(file, 8000, 2, samples); err != nil {
		t.Fatal(err)
	}

	d, err := NewDecoder(bytes.NewReader(file.Bytes()), 64)
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	if d.SampleRate() != 8000 || d.Channels() != 2 || d.BitDepth() != 16 {
		t.Errorf("format = %d Hz, %d ch, %d bits", d.SampleRate(), d.Channels(), d.BitDepth())
	}
	if d.Duration() != 100.0/8000 {
		t.Errorf("Duration() = %v, want %v", d.Duration(), 100.0/8000)
	}
	if d.BufferSize() != 64 {
		t.Errorf("BufferSize() = %d, want 64", d.BufferSize())
	}

	got := decodeAll(t, d)
	if !bytes.Equal(got, file.Bytes()[headerSize:]) {
		t.Error("decoded PCM differs from the written samples")
	}
	if !d.IsFinished() {
		t.Error("IsFinished() = false at end of data")
	}
}

func TestDecoder_RoundTrip8(t *testing.T) {
	t.Parallel()

	f := audio.Format{SampleRate: 11025, Channels: 1, BitDepth: 8}
	pcm := []byte{128, 0, 255, 64, 192, 128, 10}
	file := new(bytes.Buffer)
	if err := WriteWAV(file, f, pcm); err != nil {
		t.Fatal(err)
	}

	d, err := NewDecoder(bytes.NewReader(file.Bytes()), 4)
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	if d.BitDepth() != 8 {
		t.Fatalf("BitDepth() = %d, want 8", d.BitDepth())
	}
	if got := decodeAll(t, d); !bytes.Equal(got, pcm) {
		t.Errorf("decoded %v, want %v", got, pcm)
	}
}

func TestDecoder_NotWAV(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("definitely not RIFF data at all, no")} {
		if _, err := NewDecoder(bytes.NewReader(data), 0); !errors.Is(err, ErrNotWavFile) {
			t.Errorf("NewDecoder(%q) error = %v, want ErrNotWavFile", data, err)
		}
	}
}

func TestDecoder_NonPCM(t *testing.T) {
	t.Parallel()

	file := new(bytes.Buffer)
	WriteWAV16(file, 8000, 1, []int16{1, 2, 3, 4})
	raw := file.Bytes()
	binary.LittleEndian.PutUint16(raw[20:22], 3) // IEEE float

	if _, err := NewDecoder(bytes.NewReader(raw), 0); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("NewDecoder() error = %v, want ErrUnsupportedEncoding", err)
	}
}

func TestNewDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		depth    int
		want     error
	}{
		{"surround", 6, 16, ErrUnsupportedChannels},
		{"no channels", 0, 16, ErrUnsupportedChannels},
		{"12 bit", 2, 12, ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newDecoder(&mockWAVReader{}, 8000, tt.channels, tt.depth, 0, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("newDecoder() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_WideSamples(t *testing.T) {
	t.Parallel()

	r := &mockWAVReader{data: []int{0x7fffff, -0x800000, 0x123456, 0}}
	d, err := newDecoder(r, 48000, 2, 24, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.BitDepth() != 16 {
		t.Fatalf("BitDepth() = %d, want 16", d.BitDepth())
	}

	n, err := d.Decode()
	if err != nil || n != 8 {
		t.Fatalf("Decode() = %d, %v", n, err)
	}
	want := []int16{32767, -32768, 0x1234, 0}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(d.Buffer()[2*i:])); got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
	if !d.IsFinished() {
		t.Error("IsFinished() = false after the last known frame")
	}
}

func TestDecoder_SeekAndRewind(t *testing.T) {
	t.Parallel()

	data := make([]int, 8)
	for i := range data {
		data[i] = i * 100
	}
	r := &mockWAVReader{data: data}
	d, err := newDecoder(r, 4, 1, 16, 8, 4)
	if err != nil {
		t.Fatal(err)
	}

	if !d.Seek(0.5) {
		t.Fatal("Seek() = false")
	}
	if n, _ := d.Decode(); n != 4 {
		t.Fatalf("Decode() = %d, want 4", n)
	}
	if got := int16(binary.LittleEndian.Uint16(d.Buffer())); got != 200 {
		t.Errorf("first sample after Seek(0.5) = %d, want 200", got)
	}

	decodeAll(t, d)
	if !d.IsFinished() {
		t.Fatal("IsFinished() = false after draining")
	}

	if !d.Rewind() || d.IsFinished() {
		t.Fatal("Rewind() did not reset the decoder")
	}
	d.Decode()
	if got := int16(binary.LittleEndian.Uint16(d.Buffer())); got != 0 {
		t.Errorf("first sample after Rewind = %d, want 0", got)
	}

	if !d.Seek(100) || !d.IsFinished() {
		t.Error("Seek past the end should succeed and finish the decoder")
	}
}

func TestDecoder_ReadError(t *testing.T) {
	t.Parallel()

	want := errors.New("disk gone")
	d, err := newDecoder(&mockWAVReader{err: want}, 8000, 1, 16, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Decode(); !errors.Is(err, want) {
		t.Errorf("Decode() error = %v, want %v", err, want)
	}
}

func BenchmarkDecoder_Decode(b *testing.B) {
	samples := make([]int16, 44100*2)
	file := new(bytes.Buffer)
	WriteWAV16(file, 44100, 2, samples)
	raw := file.Bytes()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d, err := NewDecoder(bytes.NewReader(raw), audio.DefaultBufferSize)
		if err != nil {
			b.Fatal(err)
		}
		for {
			n, err := d.Decode()
			if err != nil {
				b.Fatal(err)
			}
			if n == 0 {
				break
			}
		}
	}
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audplay/internal/audiotest"
)

func TestConvertPCM_SameFormat(t *testing.T) {
	t.Parallel()

	data := pcm16(1, 2, 3, 4)
	got, err := ConvertPCM(data, Canonical(44100), Canonical(44100))
	if err != nil {
		t.Fatal(err)
	}
	if &got[0] != &data[0] {
		t.Error("ConvertPCM copied data for identical formats")
	}
}

func TestConvertPCM(t *testing.T) {
	t.Parallel()

	mono16 := Format{SampleRate: 8000, Channels: 1, BitDepth: 16}
	stereo16 := Format{SampleRate: 8000, Channels: 2, BitDepth: 16}
	mono8 := Format{SampleRate: 8000, Channels: 1, BitDepth: 8}

	tests := []struct {
		name string
		data []byte
		from Format
		to   Format
		want []int16
	}{
		{
			name: "mono to stereo",
			data: pcm16(1000, -2000),
			from: mono16,
			to:   stereo16,
			want: []int16{1000, 1000, -2000, -2000},
		},
		{
			name: "stereo to mono",
			data: pcm16(1000, 3000, -1000, -3000),
			from: stereo16,
			to:   mono16,
			want: []int16{2000, -2000},
		},
		{
			name: "8 bit to 16 bit",
			data: []byte{128, 192, 64},
			from: mono8,
			to:   mono16,
			want: []int16{0, 64 << 8, -64 << 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := ConvertPCM(tt.data, tt.from, tt.to)
			if err != nil {
				t.Fatalf("ConvertPCM() error = %v", err)
			}
			got := int16s(out)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d samples, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if d := int(got[i]) - int(tt.want[i]); d < -1 || d > 1 {
					t.Errorf("sample %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConvertPCM_Rate(t *testing.T) {
	t.Parallel()

	from := Format{SampleRate: 22050, Channels: 1, BitDepth: 16}
	to := Canonical(44100)

	data := make([]byte, 0, 200)
	for range 100 {
		data = append(data, pcm16(8000)...)
	}

	out, err := ConvertPCM(data, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if frames := len(out) / to.BytesPerFrame(); frames != 200 {
		t.Errorf("got %d frames, want 200", frames)
	}
	for i, v := range int16s(out) {
		if math.Abs(float64(v)-8000) > 2 {
			t.Fatalf("sample %d = %d, want ≈8000", i, v)
		}
	}
}

func TestConvertPCM_Invalid(t *testing.T) {
	t.Parallel()

	bad := Format{SampleRate: 8000, Channels: 1, BitDepth: 24}
	if _, err := ConvertPCM([]byte{1, 2, 3}, bad, Canonical(8000)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ConvertPCM() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPCMStream(t *testing.T) {
	t.Parallel()

	s := NewPCMStream(pcm16(0, math.MinInt16, 16384), Format{SampleRate: 8000, Channels: 1, BitDepth: 16})
	buf := make([]float32, 2)

	n, err := s.ReadSamples(buf)
	if n != 2 || err != nil {
		t.Fatalf("ReadSamples() = %d, %v", n, err)
	}
	if buf[0] != 0 || buf[1] != -1 {
		t.Errorf("samples = %v, want [0 -1]", buf)
	}

	n, err = s.ReadSamples(buf)
	if n != 1 || !errors.Is(err, io.EOF) || buf[0] != 0.5 {
		t.Errorf("ReadSamples() = %d, %v, %v; want 1, EOF, 0.5", n, err, buf[0])
	}
}

func TestChannelConverter(t *testing.T) {
	t.Parallel()

	stereo := audiotest.NewStream(8000, 2, 10, func(_, c int) float32 {
		if c == 0 {
			return 0.2
		}
		return 0.6
	})

	tests := []struct {
		name     string
		src      Stream
		channels int
		want     []float32
	}{
		{"stereo to mono", stereo, 1, []float32{0.4}},
		{"mono to stereo", audiotest.NewConstStream(8000, 1, 10, 0.3), 2, []float32{0.3, 0.3}},
		{
			name: "quad to stereo",
			src: audiotest.NewStream(8000, 4, 10, func(_, c int) float32 {
				return float32(c) / 10
			}),
			channels: 2,
			want:     []float32{0.1, 0.2},
		},
		{
			name: "stereo to quad",
			src: audiotest.NewStream(8000, 2, 10, func(_, c int) float32 {
				return float32(c + 1)
			}),
			channels: 4,
			want:     []float32{1, 2, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cc := NewChannelConverter(tt.src, tt.channels)
			if cc.Channels() != tt.channels || cc.SampleRate() != 8000 {
				t.Fatalf("metadata = %d ch, %d Hz", cc.Channels(), cc.SampleRate())
			}

			buf := make([]float32, tt.channels*4)
			n, err := cc.ReadSamples(buf)
			if err != nil || n != len(buf) {
				t.Fatalf("ReadSamples() = %d, %v", n, err)
			}
			for i := range buf {
				want := tt.want[i%len(tt.want)]
				if math.Abs(float64(buf[i]-want)) > 1e-6 {
					t.Errorf("buf[%d] = %v, want %v", i, buf[i], want)
				}
			}
		})
	}
}

func TestChannelConverter_InvalidDst(t *testing.T) {
	t.Parallel()

	cc := NewChannelConverter(audiotest.NewConstStream(8000, 1, 10, 0), 2)
	if _, err := cc.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

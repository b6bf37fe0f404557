// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audplay/internal/audiotest"
)

func readAll(t testing.TB, s Stream, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := s.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstStream(44100, 2, 100, 0), 8000)
	if r.SampleRate() != 8000 || r.Channels() != 2 {
		t.Errorf("metadata = %d Hz, %d ch", r.SampleRate(), r.Channels())
	}
}

func TestResampler_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		srcRate  int
		dstRate  int
		frames   int
		channels int
		want     int
	}{
		{"same rate", 8000, 8000, 100, 1, 100},
		{"double", 22050, 44100, 100, 1, 200},
		{"double stereo", 22050, 44100, 100, 2, 400},
		{"downsample", 32000, 8000, 32000, 1, 8000},
		{"upsample", 8000, 32000, 8000, 1, 32000},
		{"single frame", 8000, 16000, 1, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineStream(tt.srcRate, tt.channels, tt.frames, 440)
			got := readAll(t, NewResampler(src, tt.dstRate), 1024*tt.channels)
			if len(got) != tt.want {
				t.Errorf("got %d samples, want %d", len(got), tt.want)
			}
			for i, v := range got {
				if v < -1.5 || v > 1.5 {
					t.Fatalf("sample %d = %v out of range", i, v)
				}
			}
		})
	}
}

func TestCatmullRom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
	}{
		{"start is y1", 3, 5, -2, 8, 0, 5},
		{"end is y2", 3, 5, -2, 8, 1, -2},
		{"ramp", 0, 1, 2, 3, 0.25, 1.25},
		{"constant", 0.7, 0.7, 0.7, 0.7, 0.6, 0.7},
		{"symmetric peak", 0, 1, 1, 0, 0.5, 1.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := catmullRom(tt.y0, tt.y1, tt.y2, tt.y3, tt.x); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("catmullRom() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResampler_EdgesDoNotOvershoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first float32
		last  float32
	}{
		{"rising", 0, 1},
		{"falling", 1, 0},
		{"negative", -1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewStream(8000, 1, 2, func(f, _ int) float32 {
				if f == 0 {
					return tt.first
				}
				return tt.last
			})
			got := readAll(t, NewResampler(src, 32000), 64)
			if len(got) != 8 {
				t.Fatalf("got %d samples, want 8", len(got))
			}
			if got[0] != tt.first {
				t.Errorf("first sample = %v, want %v", got[0], tt.first)
			}
			lo, hi := min(tt.first, tt.last), max(tt.first, tt.last)
			for i, v := range got {
				if v < lo || v > hi {
					t.Errorf("sample %d = %v outside [%v, %v]", i, v, lo, hi)
				}
			}
		})
	}
}

func TestResampler_RampIsExact(t *testing.T) {
	t.Parallel()

	src := audiotest.NewStream(8000, 1, 100, func(f, _ int) float32 { return float32(f) / 100 })
	got := readAll(t, NewResampler(src, 16000), 256)
	if len(got) != 200 {
		t.Fatalf("got %d samples, want 200", len(got))
	}

	// Interior points use all four taps; the ends fall back to linear.
	for k := 0; k <= 98; k++ {
		for i, want := range []float64{float64(k) / 100, (float64(k) + 0.5) / 100} {
			if v := got[2*k+i]; math.Abs(float64(v)-want) > 1e-5 {
				t.Fatalf("sample %d = %v, want %v", 2*k+i, v, want)
			}
		}
	}
}

func TestResampler_PreservesLevels(t *testing.T) {
	t.Parallel()

	src := audiotest.NewStream(44100, 2, 2000, func(_, c int) float32 {
		if c == 0 {
			return 0.3
		}
		return -0.7
	})

	got := readAll(t, NewResampler(src, 16000), 512)
	for f := 0; f+1 < len(got); f += 2 {
		if math.Abs(float64(got[f]-0.3)) > 1e-3 || math.Abs(float64(got[f+1]+0.7)) > 1e-3 {
			t.Fatalf("frame %d = (%v, %v), want (0.3, -0.7)", f/2, got[f], got[f+1])
		}
	}
}

func TestResampler_EOF(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstStream(8000, 1, 10, 0.1), 16000)
	readAll(t, r, 8)

	n, err := r.ReadSamples(make([]float32, 8))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("after EOF ReadSamples() = %d, %v; want 0, EOF", n, err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstStream(8000, 1, 0, 0), 16000)
	if n, err := r.ReadSamples(make([]float32, 8)); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v; want 0, EOF", n, err)
	}
}

type brokenStream struct{ err error }

func (brokenStream) SampleRate() int { return 8000 }
func (brokenStream) Channels() int   { return 1 }
func (b brokenStream) ReadSamples([]float32) (int, error) {
	return 0, b.err
}

func TestResampler_SourceError(t *testing.T) {
	t.Parallel()

	want := errors.New("device unplugged")
	r := NewResampler(brokenStream{want}, 16000)
	if _, err := r.ReadSamples(make([]float32, 4)); !errors.Is(err, want) {
		t.Errorf("ReadSamples() error = %v, want %v", err, want)
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstStream(8000, 2, 10, 0), 16000)
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_MinimalAllocs(t *testing.T) {
	src := audiotest.NewSineStream(44100, 2, math.MaxInt32, 440)
	r := NewResampler(src, 48000)
	buf := make([]float32, 1024)
	r.ReadSamples(buf)

	allocs := testing.AllocsPerRun(100, func() {
		r.ReadSamples(buf)
	})
	if allocs > 0 {
		t.Errorf("ReadSamples() allocated %v times per run, want 0", allocs)
	}
}

func BenchmarkResampler(b *testing.B) {
	src := audiotest.NewSineStream(22050, 2, math.MaxInt32, 440)
	r := NewResampler(src, 44100)
	buf := make([]float32, 4096)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.ReadSamples(buf)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Stream generates float32 frames from a waveform function.
// It satisfies audio.Stream without importing it.
type Stream struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       func(frame, channel int) float32
}

// NewStream returns a stream of frames frames produced by wave.
func NewStream(sampleRate, channels, frames int, wave func(frame, channel int) float32) *Stream {
	return &Stream{sampleRate: sampleRate, channels: channels, frames: frames, wave: wave}
}

// NewSineStream returns a sine tone at freq Hz on every channel.
func NewSineStream(sampleRate, channels, frames int, freq float64) *Stream {
	return NewStream(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * freq * t))
	})
}

// NewConstStream returns a stream holding value on every sample.
func NewConstStream(sampleRate, channels, frames int, value float32) *Stream {
	return NewStream(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (s *Stream) SampleRate() int { return s.sampleRate }
func (s *Stream) Channels() int   { return s.channels }

func (s *Stream) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.wave(s.pos+f, c)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"time"

	"github.com/ik5/audplay/utils"
)

// Mixer sums PCM streams into one canonical 16-bit stereo buffer holding a
// single tick of audio.
//
// Sources must run at a rate that divides the canonical rate; they are
// upsampled by sample repetition, not resampled. Summing happens in int32 so
// any number of streams can be added before the clamp in Output.
type Mixer struct {
	sampleRate int
	samples    int // frames per tick

	mix    []int32
	out    []int16
	outBuf []byte
	dirty  bool
}

// NewMixer sizes a mixer for one tick at the canonical sampleRate.
func NewMixer(sampleRate int, tick time.Duration) *Mixer {
	samples := int(float64(sampleRate) * tick.Seconds())
	if samples < 1 {
		samples = 1
	}
	n := samples * DefaultChannels

	return &Mixer{
		sampleRate: sampleRate,
		samples:    samples,
		mix:        make([]int32, n),
		out:        make([]int16, n),
		outBuf:     make([]byte, n*2),
	}
}

// Input adds buf to the accumulator. volume scales every sample, 1 is unity.
// Rates that do not divide the canonical rate are rejected and nothing is added.
func (m *Mixer) Input(buf []byte, sampleRate, bitDepth, channels int, volume float64) error {
	if sampleRate <= 0 || m.sampleRate%sampleRate != 0 {
		return ErrUnsupportedSampleRate
	}
	if (bitDepth != 8 && bitDepth != 16) || (channels != 1 && channels != 2) {
		return ErrUnsupportedFormat
	}

	m.dirty = true

	up := m.sampleRate / sampleRate
	width := bitDepth / 8
	frame := width * channels
	frames := len(buf) / frame

	dst := 0
	for f := 0; f < frames && dst < len(m.mix); f++ {
		base := f * frame
		left := scale(sampleAt(buf, base, width), volume)
		right := left
		if channels == 2 {
			right = scale(sampleAt(buf, base+width, width), volume)
		}
		for r := 0; r < up && dst < len(m.mix); r++ {
			m.mix[dst] += left
			m.mix[dst+1] += right
			dst += 2
		}
	}

	return nil
}

func sampleAt(buf []byte, i, width int) int32 {
	if width == 1 {
		return int32(utils.Uint8ToInt16(buf[i]))
	}
	return int32(int16(binary.LittleEndian.Uint16(buf[i:])))
}

func scale(v int32, volume float64) int32 {
	if volume == 1 {
		return v
	}
	return int32(float64(v) * volume)
}

// Output clamps the accumulator to int16 and returns it.
func (m *Mixer) Output() []int16 {
	if m.dirty {
		for i, v := range m.mix {
			m.out[i] = utils.ClampInt16(v)
		}
		m.dirty = false
	}
	return m.out
}

// OutputBytes returns Output as little-endian PCM bytes.
func (m *Mixer) OutputBytes() []byte {
	out := m.Output()
	for i, v := range out {
		binary.LittleEndian.PutUint16(m.outBuf[i*2:], uint16(v))
	}
	return m.outBuf
}

// Reset zeroes both buffers for the next tick.
func (m *Mixer) Reset() {
	clear(m.mix)
	clear(m.out)
	m.dirty = false
}

// Upsample appends src to dst with every frameSize-byte frame repeated
// factor times. A trailing partial frame is dropped.
func Upsample(dst, src []byte, frameSize, factor int) []byte {
	for i := 0; i+frameSize <= len(src); i += frameSize {
		for range factor {
			dst = append(dst, src[i:i+frameSize]...)
		}
	}
	return dst
}

// Samples is the number of frames per tick.
func (m *Mixer) Samples() int { return m.samples }

// BufSize is the size in bytes of OutputBytes.
func (m *Mixer) BufSize() int { return len(m.outBuf) }

// Format is the canonical output format.
func (m *Mixer) Format() Format { return Canonical(m.sampleRate) }

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
)

// Resampler converts a Stream to another sample rate with Catmull-Rom
// interpolation. Channel count is preserved. Where an outer tap is edge
// padding it falls back to linear interpolation, so the first and last
// frames never overshoot. Downsampling runs each input frame through a
// one-pole low-pass filter first.
type Resampler struct {
	src      Stream
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// frames[1] and frames[2] bracket the output position, frames[0] and
	// frames[3] are the outer interpolation taps.
	frames [4][]float32
	real   int  // frames[1:] that came from the source rather than edge padding
	head   bool // frames[0] is a copy of the first frame
	pos    float64

	tmp    []float32
	primed bool
	eof    bool
	err    error

	lowPass bool
	alpha   float32
	state   []float32
	warm    bool
}

func NewResampler(src Stream, dstRate int) *Resampler {
	ch := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: ch,
		tmp:      make([]float32, ch),
		lowPass:  ratio > 1,
		alpha:    0.5,
		state:    make([]float32, ch),
	}
	for i := range r.frames {
		r.frames[i] = make([]float32, ch)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

// read pulls one source frame into dst. It returns false once the source has
// nothing left.
func (r *Resampler) read(dst []float32) bool {
	if r.eof {
		return false
	}

	n, err := r.src.ReadSamples(r.tmp)
	if err != nil {
		r.eof = true
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
	}
	if n < r.channels {
		r.eof = true
		return false
	}

	if r.lowPass {
		if !r.warm {
			copy(r.state, r.tmp)
			r.warm = true
		}
		for c, v := range r.tmp {
			r.state[c] = r.alpha*v + (1-r.alpha)*r.state[c]
		}
		copy(dst, r.state)
	} else {
		copy(dst, r.tmp)
	}

	return true
}

func (r *Resampler) prime() bool {
	r.primed = true
	if !r.read(r.frames[1]) {
		return false
	}
	copy(r.frames[0], r.frames[1])
	r.real = 1
	r.head = true

	for i := 2; i < len(r.frames); i++ {
		if r.read(r.frames[i]) {
			r.real++
		} else {
			copy(r.frames[i], r.frames[i-1])
		}
	}

	return true
}

func (r *Resampler) advance() {
	oldest := r.frames[0]
	r.frames[0], r.frames[1], r.frames[2] = r.frames[1], r.frames[2], r.frames[3]
	r.frames[3] = oldest
	r.head = false
	if r.real > 0 {
		r.real--
	}

	if r.read(r.frames[3]) {
		r.real++
	} else {
		copy(r.frames[3], r.frames[2])
	}
}

func (r *Resampler) done() error {
	if r.err != nil {
		return r.err
	}
	return io.EOF
}

// ReadSamples fills dst with resampled frames. len(dst) must be a multiple of
// Channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed && !r.prime() {
		return 0, r.done()
	}

	written := 0
	for written < len(dst) {
		for r.pos >= 1 {
			r.pos--
			r.advance()
		}
		if r.real == 0 {
			return written, r.done()
		}

		x := float32(r.pos)
		for c := range r.channels {
			dst[written+c] = r.interpolate(c, x)
		}
		written += r.channels
		r.pos += r.ratio
	}

	return written, nil
}

// interpolate returns channel c at x in [0, 1) between frames[1] and frames[2].
func (r *Resampler) interpolate(c int, x float32) float32 {
	y0, y1, y2, y3 := r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c]
	if r.head || r.real < 3 {
		return y1 + (y2-y1)*x
	}
	return catmullRom(y0, y1, y2, y3, x)
}

// catmullRom evaluates the Catmull-Rom spline through y1 and y2 with outer
// taps y0 and y3.
func catmullRom(y0, y1, y2, y3, x float32) float32 {
	a := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	b := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c := 0.5 * (y2 - y0)
	return ((a*x+b)*x+c)*x + y1
}

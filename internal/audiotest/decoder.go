// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
)

// ErrDecode is returned by a Decoder configured to fail.
var ErrDecode = errors.New("audiotest: decode failure")

// Decoder is an in-memory PCM decoder that produces a deterministic pattern.
// It satisfies audio.Decoder without importing it.
//
// Each 16-bit sample of frame i on channel c holds Sample(i, c); 8-bit samples
// hold its high byte offset by 128.
type Decoder struct {
	Rate   int
	Chans  int
	Depth  int
	Frames int
	Sample func(frame, channel int) int16

	// FailAt makes the Nth Decode call (1-based) fail. 0 never fails.
	FailAt int
	// NoSeek makes Seek and Rewind refuse.
	NoSeek bool

	Decodes int
	Rewinds int
	Closed  bool

	buf      []byte
	pos      int // next frame
	finished bool
}

// NewDecoder returns a decoder of frames frames whose samples equal the frame
// index, truncated to int16.
func NewDecoder(rate, channels, depth, frames, bufSize int) *Decoder {
	return &Decoder{
		Rate:   rate,
		Chans:  channels,
		Depth:  depth,
		Frames: frames,
		Sample: func(frame, _ int) int16 { return int16(frame) },
		buf:    make([]byte, bufSize),
	}
}

// NewConstDecoder returns a decoder whose samples all equal value.
func NewConstDecoder(rate, channels, depth, frames, bufSize int, value int16) *Decoder {
	d := NewDecoder(rate, channels, depth, frames, bufSize)
	d.Sample = func(int, int) int16 { return value }
	return d
}

func (d *Decoder) frameBytes() int { return d.Chans * d.Depth / 8 }

func (d *Decoder) Decode() (int, error) {
	d.Decodes++
	if d.FailAt > 0 && d.Decodes == d.FailAt {
		return 0, ErrDecode
	}
	if d.pos >= d.Frames {
		d.finished = true
		return 0, nil
	}

	fb := d.frameBytes()
	n := min(len(d.buf)/fb, d.Frames-d.pos)
	off := 0
	for f := range n {
		for c := range d.Chans {
			v := d.Sample(d.pos+f, c)
			if d.Depth == 8 {
				d.buf[off] = uint8((int(v) >> 8) + 128)
				off++
				continue
			}
			binary.LittleEndian.PutUint16(d.buf[off:], uint16(v))
			off += 2
		}
	}
	d.pos += n
	if d.pos >= d.Frames {
		d.finished = true
	}

	return off, nil
}

func (d *Decoder) Buffer() []byte  { return d.buf }
func (d *Decoder) BufferSize() int { return len(d.buf) }

func (d *Decoder) Seek(seconds float64) bool {
	if d.NoSeek {
		return false
	}
	d.pos = min(int(seconds*float64(d.Rate)), d.Frames)
	d.finished = false
	return true
}

func (d *Decoder) Rewind() bool {
	if d.NoSeek {
		return false
	}
	d.Rewinds++
	d.pos = 0
	d.finished = false
	return true
}

func (d *Decoder) Channels() int    { return d.Chans }
func (d *Decoder) BitDepth() int    { return d.Depth }
func (d *Decoder) SampleRate() int  { return d.Rate }
func (d *Decoder) IsFinished() bool { return d.finished }

func (d *Decoder) Duration() float64 {
	return float64(d.Frames) / float64(d.Rate)
}

func (d *Decoder) Close() error {
	d.Closed = true
	return nil
}

// Position is the next frame to be decoded.
func (d *Decoder) Position() int { return d.pos }

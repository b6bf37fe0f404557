// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

const bitDepth = 16

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Decoder streams 16-bit PCM out of an AIFF file. Samples of every depth,
// signed 8-bit included, are rescaled to signed 16-bit.
type Decoder struct {
	open     func() (aiffReader, error)
	r        aiffReader
	rate     int
	channels int
	srcDepth int
	frames   int64

	pos      int64
	ints     *goaudio.IntBuffer
	buf      []byte
	finished bool
}

// Open implements audio.OpenerFunc.
func Open(rs io.ReadSeeker, bufSize int) (audio.Decoder, error) {
	d, err := NewDecoder(rs, bufSize)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NewDecoder parses the AIFF header from rs. go-audio cannot rewind an AIFF
// decoder, so Rewind parses rs again from the start.
func NewDecoder(rs io.ReadSeeker, bufSize int) (*Decoder, error) {
	open := func() (aiffReader, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		dec := aiff.NewDecoder(rs)
		if !dec.IsValidFile() {
			return nil, ErrNotAiffFile
		}
		return dec, nil
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("aiff: %w", err)
	}
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	return newDecoder(dec, open, dec.SampleRate, int(dec.NumChans), int(dec.BitDepth), int64(dec.NumSampleFrames), bufSize)
}

func newDecoder(r aiffReader, open func() (aiffReader, error), rate, channels, depth int, frames int64, bufSize int) (*Decoder, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%d channels: %w", channels, ErrUnsupportedChannels)
	}
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%d bits: %w", depth, ErrUnsupportedBitDepth)
	}
	if bufSize <= 0 {
		bufSize = audio.DefaultBufferSize
	}
	samples := bufSize / 2 / channels * channels
	if samples == 0 {
		samples = channels
	}

	return &Decoder{
		open:     open,
		r:        r,
		rate:     rate,
		channels: channels,
		srcDepth: depth,
		frames:   frames,
		ints: &goaudio.IntBuffer{
			Data:           make([]int, samples),
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: depth,
		},
		buf: make([]byte, samples*2),
	}, nil
}

func (d *Decoder) Decode() (int, error) {
	if d.finished {
		return 0, nil
	}

	d.ints.Data = d.ints.Data[:cap(d.ints.Data)]
	n, err := d.r.PCMBuffer(d.ints)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.finished = true
	case err != nil:
		return 0, fmt.Errorf("aiff: %w", err)
	}
	n -= n % d.channels
	if n == 0 {
		d.finished = true
		return 0, nil
	}

	for i, v := range d.ints.Data[:n] {
		binary.LittleEndian.PutUint16(d.buf[2*i:], uint16(utils.ToInt16(v, d.srcDepth)))
	}

	d.pos += int64(n / d.channels)
	if d.frames > 0 && d.pos >= d.frames {
		d.finished = true
	}

	return n * 2, nil
}

func (d *Decoder) Buffer() []byte  { return d.buf }
func (d *Decoder) BufferSize() int { return len(d.buf) }

// Seek rewinds and skips forward to the frame at seconds.
func (d *Decoder) Seek(seconds float64) bool {
	target := int64(seconds * float64(d.rate))
	if d.frames > 0 {
		target = min(target, d.frames)
	}
	if !d.Rewind() {
		return false
	}

	for d.pos < target {
		want := int(min(target-d.pos, int64(cap(d.ints.Data)/d.channels)))
		d.ints.Data = d.ints.Data[:want*d.channels]
		n, err := d.r.PCMBuffer(d.ints)
		d.pos += int64(n / d.channels)
		if err != nil || n < d.channels {
			if err != nil && !errors.Is(err, io.EOF) {
				return false
			}
			d.finished = true
			break
		}
	}
	if d.frames > 0 && d.pos >= d.frames {
		d.finished = true
	}

	return true
}

func (d *Decoder) Rewind() bool {
	if d.open == nil {
		return false
	}
	r, err := d.open()
	if err != nil {
		return false
	}
	d.r = r
	d.pos = 0
	d.finished = false
	return true
}

func (d *Decoder) Channels() int    { return d.channels }
func (d *Decoder) BitDepth() int    { return bitDepth }
func (d *Decoder) SampleRate() int  { return d.rate }
func (d *Decoder) IsFinished() bool { return d.finished }

func (d *Decoder) Duration() float64 {
	if d.rate == 0 {
		return 0
	}
	return float64(d.frames) / float64(d.rate)
}

// Close is a no-op; the caller owns the reader.
func (d *Decoder) Close() error { return nil }

// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audplay/audio"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels      = 2
	bitDepth      = 16
	bytesPerFrame = channels * bitDepth / 8
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	io.ReadSeeker
	SampleRate() int
	// Length is the decoded size in bytes, -1 when unknown.
	Length() int64
}

// Decoder streams PCM out of an MP3 file.
type Decoder struct {
	r        mp3Reader
	rate     int
	length   int64
	pos      int64
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

func NewDecoder(rs io.ReadSeeker, bufSize int) (*Decoder, error) {
	dec, err := gomp3.NewDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}
	return newDecoder(dec, bufSize), nil
}

func newDecoder(r mp3Reader, bufSize int) *Decoder {
	if bufSize <= 0 {
		bufSize = audio.DefaultBufferSize
	}
	bufSize -= bufSize % bytesPerFrame
	if bufSize == 0 {
		bufSize = bytesPerFrame
	}

	return &Decoder{
		r:      r,
		rate:   r.SampleRate(),
		length: r.Length(),
		buf:    make([]byte, bufSize),
	}
}

func (d *Decoder) Decode() (int, error) {
	if d.finished {
		return 0, nil
	}

	n, err := io.ReadFull(d.r, d.buf)
	n -= n % bytesPerFrame
	d.pos += int64(n)

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.finished = true
	case err != nil:
		return n, fmt.Errorf("mp3: %w", err)
	}
	if d.length > 0 && d.pos >= d.length {
		d.finished = true
	}

	return n, nil
}

func (d *Decoder) Buffer() []byte  { return d.buf }
func (d *Decoder) BufferSize() int { return len(d.buf) }

func (d *Decoder) Seek(seconds float64) bool {
	off := int64(seconds*float64(d.rate)) * bytesPerFrame
	if d.length > 0 && off >= d.length {
		d.pos = d.length
		d.finished = true
		return true
	}
	if _, err := d.r.Seek(off, io.SeekStart); err != nil {
		return false
	}
	d.pos = off
	d.finished = false
	return true
}

func (d *Decoder) Rewind() bool { return d.Seek(0) }

func (d *Decoder) Channels() int    { return channels }
func (d *Decoder) BitDepth() int    { return bitDepth }
func (d *Decoder) SampleRate() int  { return d.rate }
func (d *Decoder) IsFinished() bool { return d.finished }

func (d *Decoder) Duration() float64 {
	if d.length <= 0 || d.rate == 0 {
		return 0
	}
	return float64(d.length/bytesPerFrame) / float64(d.rate)
}

// Close is a no-op; the caller owns the reader.
func (d *Decoder) Close() error { return nil }

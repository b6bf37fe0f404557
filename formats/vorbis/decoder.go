// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
	"github.com/jfreymuth/oggvorbis"
)

const bitDepth = 16

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Length is in frames, 0 when unknown.
	Length() int64
	SetPosition(pos int64) error
	// Read fills p with interleaved values and returns how many it wrote.
	Read(p []float32) (int, error)
}

// Decoder streams 16-bit PCM out of an Ogg Vorbis file.
type Decoder struct {
	r        oggReader
	rate     int
	channels int
	length   int64

	frames   []float32
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
	r, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	return newDecoder(r, bufSize)
}

func newDecoder(r oggReader, bufSize int) (*Decoder, error) {
	channels := r.Channels()
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, channels)
	}

	if bufSize <= 0 {
		bufSize = audio.DefaultBufferSize
	}
	frame := channels * bitDepth / 8
	bufSize -= bufSize % frame
	if bufSize == 0 {
		bufSize = frame
	}

	return &Decoder{
		r:        r,
		rate:     r.SampleRate(),
		channels: channels,
		length:   r.Length(),
		frames:   make([]float32, bufSize/2),
		buf:      make([]byte, bufSize),
	}, nil
}

// Decode fills the buffer completely unless the stream ends first.
func (d *Decoder) Decode() (int, error) {
	if d.finished {
		return 0, nil
	}

	var readErr error
	total := 0
	for total < len(d.frames) {
		n, err := d.r.Read(d.frames[total:])
		total += n
		if errors.Is(err, io.EOF) {
			d.finished = true
			break
		}
		if err != nil {
			readErr = fmt.Errorf("vorbis: %w", err)
			break
		}
		if n == 0 {
			d.finished = true
			break
		}
	}
	total -= total % d.channels

	for i, v := range d.frames[:total] {
		binary.LittleEndian.PutUint16(d.buf[i*2:], uint16(utils.Float32ToInt16(v)))
	}

	return total * 2, readErr
}

func (d *Decoder) Buffer() []byte  { return d.buf }
func (d *Decoder) BufferSize() int { return len(d.buf) }

func (d *Decoder) Seek(seconds float64) bool {
	pos := int64(seconds * float64(d.rate))
	if pos < 0 {
		pos = 0
	}
	if err := d.r.SetPosition(pos); err != nil {
		return false
	}
	d.finished = d.length > 0 && pos >= d.length
	return true
}

func (d *Decoder) Rewind() bool { return d.Seek(0) }

func (d *Decoder) Channels() int    { return d.channels }
func (d *Decoder) BitDepth() int    { return bitDepth }
func (d *Decoder) SampleRate() int  { return d.rate }
func (d *Decoder) IsFinished() bool { return d.finished }

func (d *Decoder) Duration() float64 {
	if d.length <= 0 || d.rate == 0 {
		return 0
	}
	return float64(d.length) / float64(d.rate)
}

// Close is a no-op; the caller owns the reader.
func (d *Decoder) Close() error { return nil }

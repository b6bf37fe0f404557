// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xfffe
)

// wavReader is the part of wav.Decoder the decoder needs, so tests can mock it.
type wavReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
	Rewind() error
}

// Decoder streams PCM out of a WAV container.
//
// 8-bit files are passed through as unsigned 8-bit; every other depth is
// delivered as signed 16-bit.
type Decoder struct {
	r        wavReader
	rate     int
	channels int
	srcDepth int
	depth    int
	frames   int64 // 0 when unknown

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

// NewDecoder parses the WAV header from rs and positions it at the PCM data.
func NewDecoder(rs io.ReadSeeker, bufSize int) (*Decoder, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav: seek to PCM data: %w", err)
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("format tag %#x: %w", dec.WavAudioFormat, ErrUnsupportedEncoding)
	}

	frameSize := int64(dec.NumChans) * int64(dec.BitDepth/8)
	var frames int64
	if frameSize > 0 {
		frames = dec.PCMLen() / frameSize
	}

	return newDecoder(dec, int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth), frames, bufSize)
}

func newDecoder(r wavReader, rate, channels, depth int, frames int64, bufSize int) (*Decoder, error) {
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

	outDepth := 16
	if depth == 8 {
		outDepth = 8
	}
	width := outDepth / 8
	samples := bufSize / width / channels * channels

	return &Decoder{
		r:        r,
		rate:     rate,
		channels: channels,
		srcDepth: depth,
		depth:    outDepth,
		frames:   frames,
		ints: &goaudio.IntBuffer{
			Data:   make([]int, samples),
			Format: &goaudio.Format{NumChannels: channels, SampleRate: rate},
		},
		buf: make([]byte, samples*width),
	}, nil
}

func (d *Decoder) Decode() (int, error) {
	if d.finished {
		return 0, nil
	}

	d.ints.Data = d.ints.Data[:cap(d.ints.Data)]
	n, err := d.r.PCMBuffer(d.ints)
	if err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	n -= n % d.channels
	if n == 0 {
		d.finished = true
		return 0, nil
	}

	if d.depth == 8 {
		for i, v := range d.ints.Data[:n] {
			d.buf[i] = uint8(v)
		}
	} else {
		for i, v := range d.ints.Data[:n] {
			s := utils.ToInt16(v, d.srcDepth)
			d.buf[2*i] = byte(s)
			d.buf[2*i+1] = byte(s >> 8)
		}
	}

	d.pos += int64(n / d.channels)
	if d.frames > 0 && d.pos >= d.frames {
		d.finished = true
	}

	return n * d.depth / 8, nil
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
		if err != nil {
			return false
		}
		if n < d.channels {
			d.finished = true
			break
		}
		d.pos += int64(n / d.channels)
	}
	if d.frames > 0 && d.pos >= d.frames {
		d.finished = true
	}

	return true
}

func (d *Decoder) Rewind() bool {
	if err := d.r.Rewind(); err != nil {
		return false
	}
	d.pos = 0
	d.finished = false
	return true
}

func (d *Decoder) Channels() int    { return d.channels }
func (d *Decoder) BitDepth() int    { return d.depth }
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

// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

const bitDepth = 16

// flacStream is an interface for flac.Stream to allow testing
type flacStream interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

// streamInfo is what the decoder needs out of the STREAMINFO block.
type streamInfo struct {
	rate     int
	channels int
	samples  int64 // frames, 0 when unknown
}

// Decoder streams 16-bit PCM out of a FLAC file.
//
// FLAC frames carry a variable number of samples, so a decoded frame that
// does not fit the buffer is kept and finished on the next Decode.
type Decoder struct {
	open func() (flacStream, error)
	s    flacStream
	info streamInfo

	pending *frame.Frame
	next    int // next sample index in pending

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

// NewDecoder parses the FLAC metadata from rs. Rewinding re-parses the
// stream from the start of rs.
func NewDecoder(rs io.ReadSeeker, bufSize int) (*Decoder, error) {
	var info streamInfo

	open := func() (flacStream, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		s, err := flac.New(rs)
		if err != nil {
			return nil, err
		}
		info = streamInfo{
			rate:     int(s.Info.SampleRate),
			channels: int(s.Info.NChannels),
			samples:  int64(s.Info.NSamples),
		}
		return s, nil
	}

	s, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFLACFile, err)
	}

	d, err := newDecoder(s, open, info, bufSize)
	if err != nil {
		s.Close()
		return nil, err
	}
	return d, nil
}

func newDecoder(s flacStream, open func() (flacStream, error), info streamInfo, bufSize int) (*Decoder, error) {
	if info.channels < 1 || info.channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, info.channels)
	}

	if bufSize <= 0 {
		bufSize = audio.DefaultBufferSize
	}
	frameSize := info.channels * bitDepth / 8
	bufSize -= bufSize % frameSize
	if bufSize == 0 {
		bufSize = frameSize
	}

	return &Decoder{
		open: open,
		s:    s,
		info: info,
		buf:  make([]byte, bufSize),
	}, nil
}

func (d *Decoder) Decode() (int, error) {
	if d.finished {
		return 0, nil
	}

	n := 0
	frameSize := d.info.channels * 2
	for n+frameSize <= len(d.buf) {
		if d.pending == nil {
			f, err := d.s.ParseNext()
			if errors.Is(err, io.EOF) {
				d.finished = true
				break
			}
			if err != nil {
				return n, fmt.Errorf("flac: %w", err)
			}
			d.pending, d.next = f, 0
		}

		n += d.drain(d.buf[n:])
	}

	return n, nil
}

// drain copies as many samples of the pending frame into dst as fit.
func (d *Decoder) drain(dst []byte) int {
	f := d.pending
	bits := int(f.BitsPerSample)
	count := frameLen(f)

	n := 0
	for ; d.next < count && n+d.info.channels*2 <= len(dst); d.next++ {
		for c := 0; c < d.info.channels; c++ {
			v := utils.ToInt16(int(f.Subframes[c].Samples[d.next]), bits)
			binary.LittleEndian.PutUint16(dst[n:], uint16(v))
			n += 2
		}
	}

	if d.next >= count {
		d.pending = nil
	}
	return n
}

func frameLen(f *frame.Frame) int {
	if len(f.Subframes) == 0 {
		return 0
	}
	return len(f.Subframes[0].Samples)
}

func (d *Decoder) Buffer() []byte  { return d.buf }
func (d *Decoder) BufferSize() int { return len(d.buf) }

// Seek re-opens the stream and skips whole frames up to the target.
func (d *Decoder) Seek(seconds float64) bool {
	target := int(seconds * float64(d.info.rate))
	if target < 0 {
		target = 0
	}

	s, err := d.open()
	if err != nil {
		return false
	}
	d.s.Close()
	d.s = s
	d.pending, d.next = nil, 0
	d.finished = false

	for pos := 0; pos < target; {
		f, err := d.s.ParseNext()
		if errors.Is(err, io.EOF) {
			d.finished = true
			return true
		}
		if err != nil {
			return false
		}
		count := frameLen(f)
		if pos+count > target {
			d.pending, d.next = f, target-pos
			break
		}
		pos += count
	}
	return true
}

func (d *Decoder) Rewind() bool { return d.Seek(0) }

func (d *Decoder) Channels() int    { return d.info.channels }
func (d *Decoder) BitDepth() int    { return bitDepth }
func (d *Decoder) SampleRate() int  { return d.info.rate }
func (d *Decoder) IsFinished() bool { return d.finished }

func (d *Decoder) Duration() float64 {
	if d.info.samples <= 0 || d.info.rate == 0 {
		return 0
	}
	return float64(d.info.samples) / float64(d.info.rate)
}

// Close releases the parsed stream. The caller owns rs.
func (d *Decoder) Close() error {
	return d.s.Close()
}

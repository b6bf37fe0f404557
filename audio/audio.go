// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	// DefaultBufferSize is how many bytes of raw PCM a decoder produces per Decode call.
	DefaultBufferSize = 2048
	// DefaultSampleRate is the canonical mixing rate.
	DefaultSampleRate = 44100
	// DefaultChannels is the canonical channel layout (stereo).
	DefaultChannels = 2
	// DefaultBitDepth is the canonical sample width.
	DefaultBitDepth = 16
)

// Format describes an interleaved PCM layout.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Canonical returns the canonical 16-bit stereo format at sampleRate.
func Canonical(sampleRate int) Format {
	return Format{SampleRate: sampleRate, Channels: DefaultChannels, BitDepth: DefaultBitDepth}
}

// BytesPerFrame is the size of one sample across all channels.
func (f Format) BytesPerFrame() int { return f.Channels * f.BitDepth / 8 }

// Bytes converts a duration in seconds to a frame-aligned byte count.
func (f Format) Bytes(seconds float64) int {
	frame := f.BytesPerFrame()
	if frame == 0 || seconds <= 0 {
		return 0
	}
	n := int(float64(f.BitDepth*f.Channels) * seconds * float64(f.SampleRate) / 8)
	return n - n%frame
}

// Seconds converts a byte count to a duration in seconds.
func (f Format) Seconds(n int) float64 {
	if f.SampleRate == 0 || f.Channels == 0 || f.BitDepth == 0 {
		return 0
	}
	return float64(n) * 8 / float64(f.BitDepth*f.Channels*f.SampleRate)
}

// Valid reports whether the format can be mixed or played.
func (f Format) Valid() bool {
	return f.SampleRate > 0 &&
		(f.Channels == 1 || f.Channels == 2) &&
		(f.BitDepth == 8 || f.BitDepth == 16)
}

// Decoder is a pull-based PCM producer.
//
// PCM is interleaved: signed 16-bit little-endian, or unsigned 8-bit.
type Decoder interface {
	// Decode decodes the next chunk into Buffer and returns its size in bytes.
	// It returns 0 once the stream is finished. A non-nil error is a decode
	// failure, never the end of the stream; n then counts the bytes in Buffer
	// decoded before it.
	Decode() (int, error)
	// Buffer returns the last decoded chunk. It is valid until the next Decode.
	Buffer() []byte
	// BufferSize is the chunk capacity in bytes.
	BufferSize() int

	Seek(seconds float64) bool
	Rewind() bool

	Channels() int
	BitDepth() int
	SampleRate() int
	// Duration in seconds, 0 when unknown.
	Duration() float64
	IsFinished() bool

	// Close releases any resources.
	Close() error
}

// FormatOf returns the PCM format produced by dec.
func FormatOf(dec Decoder) Format {
	return Format{SampleRate: dec.SampleRate(), Channels: dec.Channels(), BitDepth: dec.BitDepth()}
}

// Opener constructs a Decoder from a seekable input.
type Opener interface {
	Open(rs io.ReadSeeker, bufSize int) (Decoder, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(rs io.ReadSeeker, bufSize int) (Decoder, error)

func (f OpenerFunc) Open(rs io.ReadSeeker, bufSize int) (Decoder, error) { return f(rs, bufSize) }

// Registry for openers by format key (file extension without the dot, e.g. "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Opener

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Opener),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, o Opener) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = o
}

func (r *Registry) Get(format string) (Opener, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	o, ok := r.codecs[strings.ToLower(strings.TrimPrefix(format, "."))]
	return o, ok
}

// Open decodes rs with the opener registered for format.
func (r *Registry) Open(format string, rs io.ReadSeeker, bufSize int) (Decoder, error) {
	o, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return o.Open(rs, bufSize)
}

// Formats lists the registered keys.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	return keys
}

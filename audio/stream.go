// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"io"

	"github.com/ik5/audplay/utils"
)

// Stream produces interleaved float32 samples in [-1, 1].
type Stream interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst and returns the number of samples written. It
	// returns io.EOF once no samples are left.
	ReadSamples(dst []float32) (int, error)
}

// PCMStream reads a PCM byte buffer as a Stream.
type PCMStream struct {
	data   []byte
	format Format
	pos    int
}

func NewPCMStream(data []byte, format Format) *PCMStream {
	return &PCMStream{data: data, format: format}
}

func (s *PCMStream) SampleRate() int { return s.format.SampleRate }
func (s *PCMStream) Channels() int   { return s.format.Channels }

func (s *PCMStream) ReadSamples(dst []float32) (int, error) {
	width := s.format.BitDepth / 8
	if width == 0 {
		return 0, ErrUnsupportedFormat
	}

	n := 0
	for n < len(dst) && s.pos+width <= len(s.data) {
		if width == 1 {
			dst[n] = utils.Int16ToFloat32(utils.Uint8ToInt16(s.data[s.pos]))
		} else {
			dst[n] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.data[s.pos:])))
		}
		s.pos += width
		n++
	}

	if s.pos+width > len(s.data) {
		return n, io.EOF
	}
	return n, nil
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// ConvertPCM re-encodes data from one PCM format to another, converting
// channel layout, sample rate and bit depth as needed. When the formats match
// data is returned as is.
func ConvertPCM(data []byte, from, to Format) ([]byte, error) {
	if from == to {
		return data, nil
	}
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%+v to %+v: %w", from, to, ErrUnsupportedFormat)
	}

	var s Stream = NewPCMStream(data, from)
	if from.Channels != to.Channels {
		s = NewChannelConverter(s, to.Channels)
	}
	if from.SampleRate != to.SampleRate {
		s = NewResampler(s, to.SampleRate)
	}

	frames := len(data) / from.BytesPerFrame()
	est := int(float64(frames)*float64(to.SampleRate)/float64(from.SampleRate)) + 1
	out := make([]byte, 0, est*to.BytesPerFrame())

	buf := make([]float32, 512*to.Channels)
	for {
		n, err := s.ReadSamples(buf)
		out = appendSamples(out, buf[:n], to.BitDepth)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("convert pcm: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return out, nil
}

func appendSamples(out []byte, samples []float32, bitDepth int) []byte {
	for _, v := range samples {
		s := utils.Float32ToInt16(v)
		if bitDepth == 8 {
			out = append(out, utils.Int16ToUint8(s))
			continue
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

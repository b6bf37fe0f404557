// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

const headerSize = 44

func header(f audio.Format, dataSize int) []byte {
	blockAlign := f.BytesPerFrame()
	h := make([]byte, headerSize)

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataSize))
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], formatPCM)
	binary.LittleEndian.PutUint16(h[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(f.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], uint16(f.BitDepth))

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataSize))

	return h
}

// WriteWAV writes pcm, already laid out in format f, as a complete WAV file.
func WriteWAV(w io.Writer, f audio.Format, pcm []byte) error {
	if !f.Valid() {
		return fmt.Errorf("%+v: %w", f, audio.ErrUnsupportedFormat)
	}
	size := len(pcm) - len(pcm)%f.BytesPerFrame()

	if _, err := w.Write(header(f, size)); err != nil {
		return fmt.Errorf("%w", err)
	}
	if _, err := w.Write(pcm[:size]); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteWAV16 writes interleaved int16 samples as a 16-bit WAV file.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	f := audio.Format{SampleRate: sampleRate, Channels: channels, BitDepth: 16}
	if !f.Valid() {
		return fmt.Errorf("%+v: %w", f, audio.ErrUnsupportedFormat)
	}
	samples = samples[:len(samples)-len(samples)%channels]

	if _, err := w.Write(header(f, len(samples)*2)); err != nil {
		return fmt.Errorf("%w", err)
	}

	const chunkSize = 8192
	buf := make([]byte, min(len(samples), chunkSize)*2)
	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		out := buf[:len(chunk)*2]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(out[2*j:], uint16(s))
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// Writer streams PCM into a WAV file whose length is not known up front.
// The header is patched on Close, so the destination must be seekable.
type Writer struct {
	enc     *wav.Encoder
	format  audio.Format
	ints    *goaudio.IntBuffer
	started bool
}

func NewWriter(ws io.WriteSeeker, f audio.Format) (*Writer, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%+v: %w", f, audio.ErrUnsupportedFormat)
	}

	return &Writer{
		enc:    wav.NewEncoder(ws, f.SampleRate, f.BitDepth, f.Channels, formatPCM),
		format: f,
		ints: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
			SourceBitDepth: f.BitDepth,
		},
	}, nil
}

// Write appends pcm, laid out in the writer's format. A trailing partial
// frame is dropped.
func (w *Writer) Write(pcm []byte) error {
	width := w.format.BitDepth / 8
	n := len(pcm) / w.format.BytesPerFrame() * w.format.Channels
	if n == 0 {
		return nil
	}

	if cap(w.ints.Data) < n {
		w.ints.Data = make([]int, n)
	}
	w.ints.Data = w.ints.Data[:n]

	for i := range n {
		if width == 1 {
			w.ints.Data[i] = int(pcm[i])
			continue
		}
		w.ints.Data[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	return w.flush()
}

// WriteInt16 appends interleaved samples, narrowing them for 8-bit files.
func (w *Writer) WriteInt16(samples []int16) error {
	n := len(samples) - len(samples)%w.format.Channels
	if cap(w.ints.Data) < n {
		w.ints.Data = make([]int, n)
	}
	w.ints.Data = w.ints.Data[:n]

	for i, s := range samples[:n] {
		if w.format.BitDepth == 8 {
			w.ints.Data[i] = int(utils.Int16ToUint8(s))
			continue
		}
		w.ints.Data[i] = int(s)
	}

	return w.flush()
}

func (w *Writer) flush() error {
	w.started = true
	if err := w.enc.Write(w.ints); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// Close finalizes the header. The underlying writer is left open.
func (w *Writer) Close() error {
	if !w.started {
		w.ints.Data = w.ints.Data[:0]
		if err := w.flush(); err != nil {
			return err
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

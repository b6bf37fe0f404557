// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Sink accepts PCM bytes and reports how many it took.
// *OutputBuffer is the usual sink.
type Sink interface {
	Input(p []byte) int
}

// InputBuffer owns a Decoder and hands its fixed-size chunks to a sink at
// whatever granularity the sink accepts.
type InputBuffer struct {
	dec Decoder

	size int // bytes in the current chunk
	used int // bytes of the current chunk already delivered

	offset  int  // bytes delivered since the start of the stream
	wrapped bool // decoder was rewound for a loop; reset offset on next chunk
}

func NewInputBuffer(dec Decoder) *InputBuffer {
	return &InputBuffer{dec: dec}
}

// Decoder returns the owned decoder.
func (b *InputBuffer) Decoder() Decoder { return b.dec }

// Format returns the PCM format the buffer delivers.
func (b *InputBuffer) Format() Format { return FormatOf(b.dec) }

// Output pushes decoded PCM into sink until the sink is full or the decoder
// produces nothing. A call that delivers nothing is not an error.
func (b *InputBuffer) Output(sink Sink, looping bool) error {
	if b.size == 0 || b.used == b.size {
		if err := b.Reload(looping); err != nil {
			return err
		}
	}
	if b.size == 0 {
		return nil
	}

	for {
		left := b.size - b.used
		n := sink.Input(b.dec.Buffer()[b.used:b.size])
		b.offset += n
		if n < left {
			b.used += n
			return nil
		}
		if err := b.Reload(looping); err != nil {
			return err
		}
		if b.size == 0 {
			return nil
		}
	}
}

// Reload decodes the next chunk. When the decoder reaches the end and looping
// is set it is rewound right away, so the next Reload starts a new lap.
func (b *InputBuffer) Reload(looping bool) error {
	if b.wrapped {
		b.offset = 0
		b.wrapped = false
	}

	if err := b.decode(); err != nil {
		return err
	}

	// The previous lap ended exactly on a chunk boundary.
	if b.size == 0 && looping && b.dec.IsFinished() && b.dec.Rewind() {
		b.offset = 0
		if err := b.decode(); err != nil {
			return err
		}
	}

	if looping && b.dec.IsFinished() {
		b.dec.Rewind()
		b.wrapped = true
	}
	return nil
}

func (b *InputBuffer) decode() error {
	n, err := b.dec.Decode()
	b.used = 0
	if err != nil {
		b.size = 0
		return fmt.Errorf("decode: %w", err)
	}
	b.size = min(n, b.dec.BufferSize())
	return nil
}

// Seek moves the decoder to seconds and reloads so fresh data is ready.
func (b *InputBuffer) Seek(seconds float64, looping bool) error {
	if seconds < 0 {
		seconds = 0
	}
	if !b.dec.Seek(seconds) {
		return fmt.Errorf("seek to %.3fs: %w", seconds, ErrSeekFailed)
	}
	b.wrapped = false
	if err := b.Reload(looping); err != nil {
		return err
	}
	b.offset = b.Format().Bytes(seconds)
	return nil
}

// Offset returns the delivered position in seconds.
func (b *InputBuffer) Offset() float64 {
	return b.Format().Seconds(b.offset)
}

// Rewind resets the position to the start of the stream.
func (b *InputBuffer) Rewind() {
	b.dec.Rewind()
	b.size = 0
	b.used = 0
	b.offset = 0
	b.wrapped = false
}

// Exhausted reports whether the decoder is done and nothing is left to deliver.
func (b *InputBuffer) Exhausted() bool {
	return b.dec.IsFinished() && b.used >= b.size
}

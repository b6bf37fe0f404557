// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Clip is a fully decoded PCM asset held in memory.
type Clip struct {
	Data   []byte
	Format Format
}

// LoadClip drains dec into a Clip. The decoder is left at the end of the
// stream; closing it is up to the caller.
func LoadClip(dec Decoder) (*Clip, error) {
	f := FormatOf(dec)
	if !f.Valid() {
		return nil, fmt.Errorf("%+v: %w", f, ErrUnsupportedFormat)
	}

	c := &Clip{Format: f}
	if d := dec.Duration(); d > 0 {
		c.Data = make([]byte, 0, f.Bytes(d)+dec.BufferSize())
	}

	for {
		n, err := dec.Decode()
		if err != nil {
			return nil, fmt.Errorf("load clip: %w", err)
		}
		if n == 0 {
			break
		}
		c.Data = append(c.Data, dec.Buffer()[:n]...)
	}

	return c, nil
}

// Duration in seconds.
func (c *Clip) Duration() float64 { return c.Format.Seconds(len(c.Data)) }

// Slice returns the data from the given position on, empty past the end.
func (c *Clip) Slice(from float64) []byte {
	off := min(c.Format.Bytes(from), len(c.Data))
	return c.Data[off:]
}

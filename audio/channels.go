// SPDX-License-Identifier: EPL-2.0

package audio

// ChannelConverter maps a Stream onto a different channel count. Downmixing
// averages the source channels that fold onto each output channel; upmixing
// repeats source channels.
type ChannelConverter struct {
	src      Stream
	channels int
	tmp      []float32
}

func NewChannelConverter(src Stream, channels int) *ChannelConverter {
	return &ChannelConverter{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (c *ChannelConverter) SampleRate() int { return c.src.SampleRate() }
func (c *ChannelConverter) Channels() int   { return c.channels }

func (c *ChannelConverter) ReadSamples(dst []float32) (int, error) {
	in, out := c.src.Channels(), c.channels
	if in == out {
		return c.src.ReadSamples(dst)
	}
	if len(dst)%out != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) / out * in
	if cap(c.tmp) < need {
		c.tmp = make([]float32, need)
	}
	src := c.tmp[:need]

	n, err := c.src.ReadSamples(src)
	frames := n / in

	switch {
	case out == 1 && in == 2:
		for f := range frames {
			dst[f] = (src[2*f] + src[2*f+1]) * 0.5
		}
	case out == 1:
		inv := 1 / float32(in)
		for f := range frames {
			var sum float32
			for _, v := range src[f*in : f*in+in] {
				sum += v
			}
			dst[f] = sum * inv
		}
	case in < out:
		for f := range frames {
			for ch := range out {
				dst[f*out+ch] = src[f*in+ch%in]
			}
		}
	default:
		for f := range frames {
			for ch := range out {
				var sum float32
				k := 0
				for i := ch; i < in; i += out {
					sum += src[f*in+i]
					k++
				}
				dst[f*out+ch] = sum / float32(k)
			}
		}
	}

	return frames * out, err
}

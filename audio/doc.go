// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM plumbing of the playback engine.
//
// This package contains the building blocks that sit between a codec and a
// hardware voice:
//   - Decoder contract and the Opener registry
//   - InputBuffer, which adapts a pull decoder to push-style consumers
//   - OutputBuffer, a fixed ring of PCM slots
//   - Mixer, which sums streams into one canonical stereo buffer
//   - Clip, a fully decoded asset
//   - Stream, Resampler and ChannelConverter for format conversion
//
// # Decoders
//
// A Decoder yields fixed-size chunks of interleaved PCM. Signed 16-bit
// little-endian and unsigned 8-bit samples are supported:
//
//	for {
//	    n, err := dec.Decode()
//	    if err != nil {
//	        return err // decode failure
//	    }
//	    if n == 0 {
//	        break // end of stream
//	    }
//	    consume(dec.Buffer()[:n])
//	}
//
// Openers are registered by file extension:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Opener)
//	opener, ok := registry.Get(".wav")
//
// # Streaming
//
// InputBuffer and OutputBuffer form a producer/consumer pair. Each tick the
// producer side calls
//
//	in.Output(out, looping)
//
// which decodes as much as the ring accepts, and the consumer side takes one
// slot:
//
//	n := out.Output(scratch)
//
// Neither call blocks. A full ring accepts nothing and an empty one yields
// nothing; both are normal.
//
// # Mixing
//
// The Mixer accumulates any number of inputs in int32 and clamps once on
// Output. Sources whose rate divides the canonical rate are upsampled by
// repetition; mono sources are copied to both channels.
//
//	m := audio.NewMixer(44100, 10*time.Millisecond)
//	m.Input(a, 44100, 16, 2, 1)
//	m.Input(b, 22050, 8, 1, 0.5)
//	pcm := m.OutputBytes()
//	m.Reset()
//
// # Format Conversion
//
// Anything that does not fit the mixer's constraints goes through the float32
// pipeline:
//
//	out, err := audio.ConvertPCM(data, from, audio.Canonical(48000))
//
// Streams carry samples as float32 in [-1.0, 1.0] and report io.EOF when
// exhausted.
package audio

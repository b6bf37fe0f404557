// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files into audio.Decoder chunks.
//
// Decoding is done by github.com/jfreymuth/oggvorbis. Its float output is
// clamped and converted to signed 16-bit little-endian PCM at the file's
// rate. Only mono and stereo streams are accepted.
//
// Seeking needs a seekable reader; on a plain stream Seek and Rewind fail
// and Duration is 0.
package vorbis

// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into audio.Decoder chunks.
//
// Parsing is done by github.com/go-audio/aiff. Linear PCM at 8, 16, 24 and
// 32 bits, mono or stereo, is accepted and delivered as signed 16-bit
// little-endian PCM.
//
// Rewind and Seek parse the file again from the start of the reader, so the
// reader passed to NewDecoder must stay open and seekable.
package aiff

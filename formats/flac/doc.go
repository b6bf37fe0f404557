// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files into audio.Decoder chunks.
//
// Frames are parsed by github.com/mewkiz/flac and reduced from their coded
// depth (4 to 32 bits) to signed 16-bit little-endian PCM. Mono and stereo
// streams are supported.
//
// Seek re-parses the stream from the start and skips frames, so its cost
// grows with the target position.
package flac

// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/flac"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
)

// DefaultRegistry returns a registry with every bundled codec, keyed by file
// extension.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", audio.OpenerFunc(wav.Open))
	r.Register("mp3", audio.OpenerFunc(mp3.Open))
	r.Register("ogg", audio.OpenerFunc(vorbis.Open))
	r.Register("oga", audio.OpenerFunc(vorbis.Open))
	r.Register("aif", audio.OpenerFunc(aiff.Open))
	r.Register("aiff", audio.OpenerFunc(aiff.Open))
	r.Register("flac", audio.OpenerFunc(flac.Open))
	return r
}

// fileDecoder closes the file a streaming decoder reads from along with it.
type fileDecoder struct {
	audio.Decoder
	file io.Closer
}

func (d *fileDecoder) Close() error {
	return errors.Join(d.Decoder.Close(), d.file.Close())
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"
)

func TestFormat_Bytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		seconds float64
		want    int
	}{
		{"canonical half second", Canonical(44100), 0.5, 88200},
		{"aligned down to a frame", Format{SampleRate: 3, Channels: 2, BitDepth: 16}, 0.5, 4},
		{"mono 8 bit", Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, 1, 8000},
		{"negative", Canonical(44100), -1, 0},
		{"empty format", Format{}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.format.Bytes(tt.seconds); got != tt.want {
				t.Errorf("Bytes(%v) = %d, want %d", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormat_Seconds(t *testing.T) {
	t.Parallel()

	f := Canonical(44100)
	if got := f.Seconds(176400); got != 1 {
		t.Errorf("Seconds(176400) = %v, want 1", got)
	}
	if got := f.Seconds(f.Bytes(2.5)); got != 2.5 {
		t.Errorf("Seconds(Bytes(2.5)) = %v, want 2.5", got)
	}
	if got := (Format{}).Seconds(100); got != 0 {
		t.Errorf("empty format Seconds() = %v, want 0", got)
	}
}

func TestFormat_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   bool
	}{
		{Canonical(44100), true},
		{Format{SampleRate: 22050, Channels: 1, BitDepth: 8}, true},
		{Format{SampleRate: 44100, Channels: 6, BitDepth: 16}, false},
		{Format{SampleRate: 44100, Channels: 2, BitDepth: 24}, false},
		{Format{Channels: 2, BitDepth: 16}, false},
	}

	for _, tt := range tests {
		if got := tt.format.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var opened string
	opener := func(name string) Opener {
		return OpenerFunc(func(io.ReadSeeker, int) (Decoder, error) {
			opened = name
			return nil, nil
		})
	}
	r.Register("WAV", opener("wav"))
	r.Register("ogg", opener("ogg"))

	for _, key := range []string{"wav", ".wav", ".WAV", "Wav"} {
		o, ok := r.Get(key)
		if !ok {
			t.Fatalf("Get(%q) not found", key)
		}
		o.Open(nil, 0)
		if opened != "wav" {
			t.Errorf("Get(%q) returned the %q opener", key, opened)
		}
	}

	if _, ok := r.Get("mp3"); ok {
		t.Error("Get(mp3) found an unregistered format")
	}
	if _, err := r.Open(".mp3", nil, 0); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Open(mp3) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := r.Open(".ogg", nil, 0); err != nil || opened != "ogg" {
		t.Errorf("Open(ogg) = %v, opened %q", err, opened)
	}

	got := r.Formats()
	slices.Sort(got)
	if !slices.Equal(got, []string{"ogg", "wav"}) {
		t.Errorf("Formats() = %v", got)
	}
}

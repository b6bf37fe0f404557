// SPDX-License-Identifier: EPL-2.0

// Package audplay is a small audio playback engine: sources are triggered,
// mixed and controlled on top of a voice.Device.
//
// # Overview
//
// A Context owns a Pool of device voices. Sources come in three modes:
//
//   - ModeClip plays an in-memory audio.Clip on a voice of its own.
//   - ModeExclusive streams a decoder on a voice of its own, queueing one
//     decoded tick at a time.
//   - ModeMixed streams a decoder into the pool's audio.Mixer, which sums
//     every mixed source onto a single shared voice.
//
// Voices are scarce: when none is free Play returns false and the source
// stays stopped. Mixed sources never need a free voice.
//
// # Quick Start
//
//	dev, err := voice.NewOto(44100, 0)
//	if err != nil {
//	    // no audio output
//	}
//	ctx, err := audplay.NewContext(dev)
//	if err != nil {
//	    // ...
//	}
//	defer ctx.Close()
//
//	music, _ := ctx.CreateSource("theme.ogg", true)
//	music.SetLooping(true)
//	music.SetFadeIn(2)
//	music.Play()
//
//	click, _ := ctx.CreateSource("click.wav", false)
//	click.Play()
//
// # Updates
//
// Streaming needs a periodic Pool.Update. NewContext registers it with a
// TickScheduler at config.Config.UpdateInterval; pass WithScheduler to drive
// it yourself, or call Context.Update by hand.
//
// # Windows and fades
//
// SetOffset and SetDuration restrict a source to part of its asset. A
// looping source restarts at the offset when the window ends, any other
// source stops. SetFadeIn and SetFadeOut ramp the volume linearly at the
// start and end of the window.
package audplay

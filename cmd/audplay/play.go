// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/voice"
)

type PlayCmd struct {
	Files []string `arg:"" name:"file" help:"Files to play together." type:"existingfile"`

	Stream  bool          `help:"Stream from disk instead of loading whole clips."`
	Loop    bool          `help:"Loop every file."`
	Volume  float64       `help:"Initial master volume." default:"1"`
	FadeIn  float64       `help:"Fade-in length in seconds."`
	FadeOut float64       `help:"Fade-out length in seconds."`
	Latency time.Duration `help:"Output buffer kept by the device. 0 uses the driver default."`
	NoUI    bool          `name:"no-ui" help:"Play without the interactive transport."`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	log := g.logger()

	dev, err := voice.NewOto(cfg.SampleRate, c.Latency)
	if err != nil {
		return err
	}
	defer dev.Close()

	actx, err := audplay.NewContext(dev, audplay.WithConfig(cfg), audplay.WithLogger(log))
	if err != nil {
		return err
	}
	defer actx.Close()

	tracks := make([]track, 0, len(c.Files))
	for _, path := range c.Files {
		src, err := actx.CreateSource(path, c.Stream)
		if err != nil {
			return err
		}
		defer src.Close()

		src.SetLooping(c.Loop)
		src.SetFadeIn(c.FadeIn)
		src.SetFadeOut(c.FadeOut)
		tracks = append(tracks, track{name: filepath.Base(path), src: src})
	}

	actx.SetVolume(c.Volume)
	for _, t := range tracks {
		if !t.src.Play() {
			return fmt.Errorf("%s: %w", t.name, errNoVoice)
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	if c.NoUI {
		return waitStopped(ctx, tracks)
	}

	p := tea.NewProgram(newModel(actx, tracks), tea.WithContext(ctx))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()

		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		if err := waitStopped(ctx, tracks); err != nil {
			return err
		}
		p.Send(doneMsg{})
		return nil
	})

	return eg.Wait()
}

var errNoVoice = errors.New("no free voice")

// waitStopped polls until every track has stopped or ctx is done.
func waitStopped(ctx context.Context, tracks []track) error {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		stopped := 0
		for _, tr := range tracks {
			if tr.src.IsStopped() {
				stopped++
			}
		}
		if stopped == len(tracks) {
			return nil
		}
	}
}

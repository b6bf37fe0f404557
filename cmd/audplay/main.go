// SPDX-License-Identifier: EPL-2.0

// Command audplay plays, renders and inspects audio files with the audplay
// engine.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ik5/audplay/config"
)

// version is set via ldflags at build time.
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Verbose    bool   `short:"v" help:"Log at debug level."`
	Rate       int    `help:"Output sample rate in Hz. Overrides AUDPLAY_SAMPLE_RATE."`
	Voices     int    `help:"Voices shared by clip and exclusive sources. Overrides AUDPLAY_VOICES."`
	StreamMode string `help:"How streams reach the output: mixed or exclusive. Overrides AUDPLAY_STREAM_MODE."`

	Version kong.VersionFlag `help:"Show version information."`
}

func (g *Globals) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// config loads the environment and applies the command-line overrides.
func (g *Globals) config() (config.Config, error) {
	cfg := config.Load()
	if g.Rate > 0 {
		cfg.SampleRate = g.Rate
	}
	if g.Voices > 0 {
		cfg.Voices = g.Voices
	}
	if g.StreamMode != "" {
		cfg.StreamMode = config.StreamMode(strings.ToLower(g.StreamMode))
	}
	return cfg, cfg.Validate()
}

type CLI struct {
	Globals

	Play   PlayCmd   `cmd:"" help:"Play files on the default output device."`
	Render RenderCmd `cmd:"" help:"Render a file through the mixer into a WAV file."`
	Info   InfoCmd   `cmd:"" help:"Print the format of audio files."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("audplay"),
		kong.Description("Play audio files through a pooled voice mixer."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

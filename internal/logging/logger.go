package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

type Options struct {
	AppName string
	Version string
	Env     string // dev or prod
	Level   slog.Level
	NoColor bool
	// Output defaults to stderr so logs never mix with the report on stdout.
	Output io.Writer
}

// New returns a colourised console logger for dev and a JSON logger for
// prod.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	if opts.Env != "prod" {
		h := tint.NewHandler(out, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		})
		return slog.New(h).With("app", opts.AppName)
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: opts.Level,
	})
	return slog.New(h).With(
		"app", opts.AppName,
		"version", opts.Version,
		"env", opts.Env,
	)
}

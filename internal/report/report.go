// Package report is the single entry point that turns a location into the
// full set of rendered lines.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"npk-weather/internal/barometer"
	"npk-weather/internal/render"
	"npk-weather/internal/weather"
)

const DefaultAppName = "The NPK Weather App"

// Emitter is a display sink.
type Emitter interface {
	Emit(line render.Line)
}

type LocationResolver interface {
	Resolve(ctx context.Context) string
}

type Config struct {
	Provider         weather.Provider
	Barometer        barometer.Reader
	BarometerTimeout time.Duration
	Render           render.Options
	AppName          string
	Now              func() time.Time
	Logger           *slog.Logger
}

type Builder struct {
	provider  weather.Provider
	barometer barometer.Reader
	timeout   time.Duration
	render    render.Options
	appName   string
	now       func() time.Time
	logger    *slog.Logger
}

type Report struct {
	Location       string                  `json:"location"`
	Provider       string                  `json:"provider"`
	Generated      time.Time               `json:"generated"`
	Current        *weather.Snapshot       `json:"current"`
	Forecast       []weather.ForecastEntry `json:"forecast"`
	DevicePressure *float64                `json:"device_pressure_hpa,omitempty"`
	Lines          []render.Line           `json:"lines"`
}

func NewBuilder(cfg Config) *Builder {
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Builder{
		provider:  cfg.Provider,
		barometer: cfg.Barometer,
		timeout:   cfg.BarometerTimeout,
		render:    cfg.Render,
		appName:   cfg.AppName,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
}

// Build fetches current conditions and the forecast concurrently, reads the
// barometer alongside them and renders once all three are in. Fetch errors
// are returned; a missing barometer only changes the pressure line.
func (b *Builder) Build(ctx context.Context, location string, detailed bool) (*Report, error) {
	now := b.now()
	pressure := barometer.Start(ctx, b.barometer, b.timeout)

	var (
		current  *weather.Snapshot
		forecast []weather.ForecastEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := b.provider.Current(gctx, location)
		if err != nil {
			return fmt.Errorf("current conditions for %s: %w", location, err)
		}
		if snap == nil {
			return fmt.Errorf("current conditions for %s: empty response", location)
		}
		current = snap
		return nil
	})
	g.Go(func() error {
		entries, err := b.provider.Forecast(gctx, location)
		if err != nil {
			return fmt.Errorf("forecast for %s: %w", location, err)
		}
		forecast = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Location:  location,
		Provider:  b.provider.Name(),
		Generated: now,
		Current:   current,
		Forecast:  forecast,
	}

	if hPa, err := pressure.Await(); err == nil {
		rep.DevicePressure = &hPa
	} else if b.barometer != nil {
		b.logger.Warn("barometer read failed, using api pressure", "error", err)
	}

	o := b.render
	o.Now = now
	o.Detailed = detailed
	if o.Location == nil {
		o.Location = time.Local
	}

	caption := fmt.Sprintf("%s, %s", rep.Provider, now.In(o.Location).Format("02/01 15:04"))
	rep.Lines = append(rep.Lines, render.Title(b.appName, location, caption)...)
	rep.Lines = append(rep.Lines, render.Current(o, *current, rep.DevicePressure)...)
	rep.Lines = append(rep.Lines, render.Forecast(o, forecast)...)

	b.logger.Debug("report built", "location", location, "forecast_entries", len(forecast), "lines", len(rep.Lines))
	return rep, nil
}

// Run resolves the location, builds the report and emits every line.
func (b *Builder) Run(ctx context.Context, resolver LocationResolver, out Emitter, detailed bool) (*Report, error) {
	location := resolver.Resolve(ctx)

	rep, err := b.Build(ctx, location, detailed)
	if err != nil {
		return nil, err
	}

	for _, line := range rep.Lines {
		out.Emit(line)
	}
	return rep, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"npk-weather/config"
	"npk-weather/internal/barometer"
	"npk-weather/internal/format"
	"npk-weather/internal/locate"
	"npk-weather/internal/logging"
	"npk-weather/internal/modbus"
	"npk-weather/internal/render"
	"npk-weather/internal/report"
	"npk-weather/internal/weather"
)

var version = "dev"

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLogLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(logging.Options{
		AppName: "npk-weather",
		Version: version,
		Env:     cfg.Log.Env,
		Level:   level,
		NoColor: !cfg.Display.Colors,
	})
	slog.SetDefault(logger)
	return logger
}

func newProvider(cfg *config.Config) (weather.Provider, error) {
	name, err := config.NormalizeProvider(cfg.Weather.Provider)
	if err != nil {
		return nil, err
	}
	w := cfg.Weather
	switch name {
	case "openmeteo":
		return weather.NewOpenMeteoClient(w.Language, w.BaseURL, "", w.Timeout), nil
	default:
		return weather.NewOpenWeatherClient(w.APIKey, w.Language, w.Units, w.BaseURL, w.Timeout), nil
	}
}

// newBarometer returns nil when no sensor is configured.
func newBarometer(cfg *config.Config) barometer.Reader {
	b := cfg.Barometer
	switch strings.ToLower(b.Driver) {
	case "modbus":
		return barometer.NewModbusReader(barometer.ModbusConfig{
			URL:          b.Modbus.URL,
			UnitID:       b.Modbus.UnitID,
			Register:     b.Modbus.Register,
			RegisterType: modbus.RegisterType(b.Modbus.RegisterType),
			Words:        b.Modbus.Words,
			Scale:        b.Modbus.Scale,
			Timeout:      b.Timeout,
		})
	case "bme280":
		return barometer.NewBME280Reader(b.BME280.Bus, b.BME280.Address)
	default:
		return nil
	}
}

func newResolver(cfg *config.Config, logger *slog.Logger) report.LocationResolver {
	if locationFlag != "" {
		return fixedLocation(locationFlag)
	}
	return locate.NewResolver(locate.Config{
		Default:     cfg.Location.Default,
		UseServices: cfg.Location.UseServices,
		Latitude:    cfg.Location.Latitude,
		Longitude:   cfg.Location.Longitude,
		APIKey:      cfg.Weather.APIKey,
		IPLookupURL: cfg.Location.IPLookupURL,
		Timeout:     cfg.Weather.Timeout,
	}, logger)
}

type fixedLocation string

func (l fixedLocation) Resolve(context.Context) string { return string(l) }

func newBuilder(cfg *config.Config, provider weather.Provider, logger *slog.Logger) (*report.Builder, error) {
	locale, err := format.LookupLocale(cfg.Weather.Language)
	if err != nil {
		return nil, err
	}
	tz, err := cfg.Display.TimeLocation()
	if err != nil {
		return nil, err
	}
	return report.NewBuilder(report.Config{
		Provider:         provider,
		Barometer:        newBarometer(cfg),
		BarometerTimeout: cfg.Barometer.Timeout,
		Render: render.Options{
			Locale:   locale,
			Location: tz,
			Width:    cfg.Display.Width,
		},
		AppName: cfg.Display.AppName,
		Logger:  logger,
	}), nil
}

// setup loads the config and builds the shared pieces every command needs.
func setup() (*config.Config, *slog.Logger, weather.Provider, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, provider, nil
}

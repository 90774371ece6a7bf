package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"npk-weather/internal/format"
)

const EnvPrefix = "NPK"

type Config struct {
	Weather   WeatherConfig   `mapstructure:"weather"`
	Location  LocationConfig  `mapstructure:"location"`
	Barometer BarometerConfig `mapstructure:"barometer"`
	Display   DisplayConfig   `mapstructure:"display"`
	API       APIConfig       `mapstructure:"api"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Log       LogConfig       `mapstructure:"log"`
}

type WeatherConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Language string        `mapstructure:"language"`
	Units    string        `mapstructure:"units"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LocationConfig struct {
	Default     string  `mapstructure:"default"`
	UseServices bool    `mapstructure:"use_services"`
	Latitude    float64 `mapstructure:"latitude"`
	Longitude   float64 `mapstructure:"longitude"`
	IPLookupURL string  `mapstructure:"ip_lookup_url"`
}

type BarometerConfig struct {
	Driver  string                `mapstructure:"driver"`
	Timeout time.Duration         `mapstructure:"timeout"`
	Modbus  BarometerModbusConfig `mapstructure:"modbus"`
	BME280  BME280Config          `mapstructure:"bme280"`
}

type BarometerModbusConfig struct {
	URL          string  `mapstructure:"url"`
	UnitID       uint8   `mapstructure:"unit_id"`
	Register     uint16  `mapstructure:"register"`
	RegisterType string  `mapstructure:"register_type"`
	Words        int     `mapstructure:"words"`
	Scale        float64 `mapstructure:"scale"`
}

type BME280Config struct {
	Bus     string `mapstructure:"bus"`
	Address uint16 `mapstructure:"address"`
}

type DisplayConfig struct {
	AppName  string `mapstructure:"app_name"`
	DarkMode bool   `mapstructure:"dark_mode"`
	Colors   bool   `mapstructure:"colors"`
	Width    int    `mapstructure:"width"`
	Detailed bool   `mapstructure:"detailed"`
	Timezone string `mapstructure:"timezone"`
}

type APIConfig struct {
	Port      int     `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

type MQTTConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Broker      string        `mapstructure:"broker"`
	TopicPrefix string        `mapstructure:"topic_prefix"`
	ClientID    string        `mapstructure:"client_id"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Interval    time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// Load reads .env, then the YAML config file, then NPK_* environment
// variables, each layer overriding the one before.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/npk-weather")
		v.AddConfigPath("/etc/npk-weather")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("weather.provider", "openweather")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.language", "en")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.base_url", "")
	v.SetDefault("weather.timeout", "10s")

	v.SetDefault("location.default", "Braga,pt")
	v.SetDefault("location.use_services", true)
	v.SetDefault("location.latitude", 0)
	v.SetDefault("location.longitude", 0)
	v.SetDefault("location.ip_lookup_url", "")

	v.SetDefault("barometer.driver", "none")
	v.SetDefault("barometer.timeout", "3s")
	v.SetDefault("barometer.modbus.url", "")
	v.SetDefault("barometer.modbus.unit_id", 1)
	v.SetDefault("barometer.modbus.register", 0)
	v.SetDefault("barometer.modbus.register_type", "input")
	v.SetDefault("barometer.modbus.words", 1)
	v.SetDefault("barometer.modbus.scale", 0.1)
	v.SetDefault("barometer.bme280.bus", "")
	v.SetDefault("barometer.bme280.address", 0x76)

	v.SetDefault("display.app_name", "The NPK Weather App")
	v.SetDefault("display.dark_mode", true)
	v.SetDefault("display.colors", true)
	v.SetDefault("display.width", 56)
	v.SetDefault("display.detailed", false)
	v.SetDefault("display.timezone", "Local")

	v.SetDefault("api.port", 8046)
	v.SetDefault("api.rate_limit", 1)
	v.SetDefault("api.burst", 2)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "npk-weather")
	v.SetDefault("mqtt.client_id", "npk-weather")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.interval", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "dev")
}

func (c *Config) Validate() error {
	if _, err := NormalizeProvider(c.Weather.Provider); err != nil {
		return err
	}
	if _, err := format.LookupLocale(c.Weather.Language); err != nil {
		return err
	}

	switch strings.ToLower(c.Barometer.Driver) {
	case "", "none", "bme280":
	case "modbus":
		if c.Barometer.Modbus.URL == "" {
			return fmt.Errorf("barometer.modbus.url is required for the modbus driver")
		}
		if w := c.Barometer.Modbus.Words; w != 1 && w != 2 {
			return fmt.Errorf("invalid barometer.modbus.words %d (allowed: 1, 2)", w)
		}
		switch c.Barometer.Modbus.RegisterType {
		case "input", "holding":
		default:
			return fmt.Errorf("invalid barometer.modbus.register_type %q (allowed: input, holding)", c.Barometer.Modbus.RegisterType)
		}
	default:
		return fmt.Errorf("invalid barometer.driver %q (allowed: none, modbus, bme280)", c.Barometer.Driver)
	}

	if c.Display.Width < 20 {
		return fmt.Errorf("display.width %d is too narrow", c.Display.Width)
	}
	if _, err := c.Display.TimeLocation(); err != nil {
		return err
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port %d", c.API.Port)
	}
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("api.rate_limit must be positive")
	}

	switch c.Log.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid log.env %q (allowed: dev, prod)", c.Log.Env)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// NormalizeProvider maps the accepted provider spellings to "openweather"
// or "openmeteo".
func NormalizeProvider(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "openweather", "openweathermap", "owm":
		return "openweather", nil
	case "openmeteo", "open-meteo", "open_meteo":
		return "openmeteo", nil
	default:
		return "", fmt.Errorf("weather provider not supported: %s", name)
	}
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q (allowed: debug, info, warn, error)", s)
	}
}

func (d DisplayConfig) TimeLocation() (*time.Location, error) {
	if d.Timezone == "" || d.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display.timezone: %w", err)
	}
	return loc, nil
}

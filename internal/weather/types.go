package weather

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyAPIKey   = errors.New("weather api key is empty")
	ErrEmptyLocation = errors.New("weather location is empty")
)

// Provider fetches current conditions and the 3-hour forecast for a
// location query such as "Braga,pt".
type Provider interface {
	Name() string
	Current(ctx context.Context, location string) (*Snapshot, error)
	Forecast(ctx context.Context, location string) ([]ForecastEntry, error)
}

type Wind struct {
	Degrees float64 `json:"degrees"`
	Speed   float64 `json:"speed_ms"`
}

// Snapshot is one point-in-time reading. Optional fields are nil when the
// API omitted them.
type Snapshot struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature_c"`
	Description string    `json:"description"`
	Clouds      *int      `json:"clouds,omitempty"`
	Humidity    *int      `json:"humidity,omitempty"`
	Rain3h      *float64  `json:"rain_3h,omitempty"`
	Wind        *Wind     `json:"wind,omitempty"`
	Pressure    float64   `json:"pressure_hpa"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
}

// ForecastEntry is one 3-hour forecast step.
type ForecastEntry struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature_c"`
	Description string    `json:"description"`
	Clouds      *int      `json:"clouds,omitempty"`
	Humidity    *int      `json:"humidity,omitempty"`
	Rain3h      *float64  `json:"rain_3h,omitempty"`
	Wind        *Wind     `json:"wind,omitempty"`
}

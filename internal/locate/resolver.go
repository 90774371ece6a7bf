// Package locate turns the device's whereabouts into a "City,cc" weather
// query. It never fails: any lookup problem yields the configured default.
package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultLocation = "Braga,pt"

	defaultGeoURL      = "https://api.openweathermap.org/geo/1.0"
	defaultIPLookupURL = "http://ip-api.com/json"
)

type Config struct {
	Default     string
	UseServices bool
	Latitude    float64
	Longitude   float64
	APIKey      string
	GeoURL      string
	IPLookupURL string
	Timeout     time.Duration
}

type Resolver struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewResolver(cfg Config, logger *slog.Logger) *Resolver {
	if cfg.Default == "" {
		cfg.Default = DefaultLocation
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = defaultGeoURL
	}
	if cfg.IPLookupURL == "" {
		cfg.IPLookupURL = defaultIPLookupURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Resolve reverse-geocodes the configured coordinates when there are any,
// otherwise asks an IP geolocation service.
func (r *Resolver) Resolve(ctx context.Context) string {
	if !r.cfg.UseServices {
		return r.cfg.Default
	}

	var (
		loc    string
		err    error
		source string
	)
	if r.hasCoordinates() {
		source = "reverse geocoding"
		loc, err = r.reverseGeocode(ctx)
	} else {
		source = "ip lookup"
		loc, err = r.lookupIP(ctx)
	}

	if err != nil {
		r.logger.Info("could not determine current location, using default",
			"source", source, "default", r.cfg.Default, "error", err)
		return r.cfg.Default
	}

	r.logger.Debug("location resolved", "source", source, "location", loc)
	return loc
}

func (r *Resolver) hasCoordinates() bool {
	return r.cfg.Latitude != 0 || r.cfg.Longitude != 0
}

type reverseGeoResult struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

func (r *Resolver) reverseGeocode(ctx context.Context) (string, error) {
	if r.cfg.APIKey == "" {
		return "", errors.New("reverse geocoding needs an api key")
	}

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", r.cfg.Latitude))
	query.Set("lon", fmt.Sprintf("%.6f", r.cfg.Longitude))
	query.Set("limit", "1")
	query.Set("appid", r.cfg.APIKey)

	var results []reverseGeoResult
	if err := r.getJSON(ctx, strings.TrimRight(r.cfg.GeoURL, "/")+"/reverse?"+query.Encode(), &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", errors.New("reverse geocoding returned no places")
	}
	return join(results[0].Name, results[0].Country)
}

type ipLookupResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

func (r *Resolver) lookupIP(ctx context.Context) (string, error) {
	var res ipLookupResult
	if err := r.getJSON(ctx, r.cfg.IPLookupURL, &res); err != nil {
		return "", err
	}
	if res.Status != "" && res.Status != "success" {
		return "", fmt.Errorf("ip lookup status %q: %s", res.Status, res.Message)
	}
	return join(res.City, res.CountryCode)
}

func (r *Resolver) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("location request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("location request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("location bad status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("location decode: %w", err)
	}
	return nil
}

func join(city, country string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", errors.New("no city in location response")
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return city, nil
	}
	return city + "," + country, nil
}

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

type OpenWeatherClient struct {
	apiKey   string
	language string
	units    string
	baseURL  string
	client   *http.Client
}

func NewOpenWeatherClient(apiKey, language, units, baseURL string, timeout time.Duration) *OpenWeatherClient {
	if units == "" {
		units = "metric"
	}
	if baseURL == "" {
		baseURL = defaultOpenWeatherURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherClient{
		apiKey:   apiKey,
		language: language,
		units:    units,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OpenWeatherClient) Name() string {
	return "openweather"
}

type openWeatherReading struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity *int    `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Clouds *struct {
		All *int `json:"all"`
	} `json:"clouds"`
	Rain *struct {
		OneHour *float64 `json:"1h"`
		ThreeHr *float64 `json:"3h"`
	} `json:"rain"`
	Wind *struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
}

type openWeatherCurrent struct {
	openWeatherReading
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type openWeatherForecast struct {
	List []openWeatherReading `json:"list"`
}

func (c *OpenWeatherClient) Current(ctx context.Context, location string) (*Snapshot, error) {
	var payload openWeatherCurrent
	if err := c.get(ctx, "/weather", location, &payload); err != nil {
		return nil, err
	}

	r := payload.openWeatherReading
	return &Snapshot{
		Time:        time.Unix(r.Dt, 0),
		Temperature: r.Main.Temp,
		Description: r.description(),
		Clouds:      r.clouds(),
		Humidity:    r.Main.Humidity,
		Rain3h:      r.rain3h(),
		Wind:        r.wind(),
		Pressure:    r.Main.Pressure,
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0),
		Sunset:      time.Unix(payload.Sys.Sunset, 0),
	}, nil
}

func (c *OpenWeatherClient) Forecast(ctx context.Context, location string) ([]ForecastEntry, error) {
	var payload openWeatherForecast
	if err := c.get(ctx, "/forecast", location, &payload); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, r := range payload.List {
		entries = append(entries, ForecastEntry{
			Time:        time.Unix(r.Dt, 0),
			Temperature: r.Main.Temp,
			Description: r.description(),
			Clouds:      r.clouds(),
			Humidity:    r.Main.Humidity,
			Rain3h:      r.rain3h(),
			Wind:        r.wind(),
		})
	}
	return entries, nil
}

func (c *OpenWeatherClient) get(ctx context.Context, path, location string, out any) error {
	if c.apiKey == "" {
		return ErrEmptyAPIKey
	}
	if strings.TrimSpace(location) == "" {
		return ErrEmptyLocation
	}

	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)
	query.Set("mode", "json")
	if c.language != "" {
		query.Set("lang", c.language)
	}

	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("openweather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openweather bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openweather decode: %w", err)
	}
	return nil
}

func (r *openWeatherReading) description() string {
	if len(r.Weather) == 0 {
		return ""
	}
	return r.Weather[0].Description
}

func (r *openWeatherReading) clouds() *int {
	if r.Clouds == nil {
		return nil
	}
	return r.Clouds.All
}

// rain3h prefers the 3-hour volume; current readings often only carry the
// last hour, which is scaled to a 3-hour volume.
func (r *openWeatherReading) rain3h() *float64 {
	if r.Rain == nil {
		return nil
	}
	if r.Rain.ThreeHr != nil {
		return r.Rain.ThreeHr
	}
	if r.Rain.OneHour != nil {
		v := *r.Rain.OneHour * 3
		return &v
	}
	return nil
}

// wind reports a zero vector when the object is present but incomplete.
func (r *openWeatherReading) wind() *Wind {
	if r.Wind == nil {
		return nil
	}
	w := &Wind{}
	if r.Wind.Deg != nil && r.Wind.Speed != nil {
		w.Degrees = *r.Wind.Deg
		w.Speed = *r.Wind.Speed
	}
	return w
}

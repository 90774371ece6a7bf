package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultOpenMeteoURL   = "https://api.open-meteo.com/v1"
	defaultGeocodingURL   = "https://geocoding-api.open-meteo.com/v1"
	openMeteoForecastDays = 5
	forecastStep          = 3 * time.Hour
)

// OpenMeteoClient needs no API key. WMO weather codes are mapped onto the
// same description vocabulary the OpenWeather API uses, so the normalizer
// rules apply unchanged.
type OpenMeteoClient struct {
	language     string
	baseURL      string
	geocodingURL string
	client       *http.Client

	mu     sync.Mutex
	coords map[string][2]float64
}

func NewOpenMeteoClient(language, baseURL, geocodingURL string, timeout time.Duration) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = defaultOpenMeteoURL
	}
	if geocodingURL == "" {
		geocodingURL = defaultGeocodingURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		language:     language,
		baseURL:      strings.TrimRight(baseURL, "/"),
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		coords: map[string][2]float64{},
	}
}

func (c *OpenMeteoClient) Name() string {
	return "openmeteo"
}

type openMeteoResponse struct {
	Current struct {
		Time          int64    `json:"time"`
		Temperature   float64  `json:"temperature_2m"`
		Humidity      *float64 `json:"relative_humidity_2m"`
		WeatherCode   int      `json:"weather_code"`
		CloudCover    *float64 `json:"cloud_cover"`
		PressureMSL   float64  `json:"pressure_msl"`
		WindSpeed     *float64 `json:"wind_speed_10m"`
		WindDirection *float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Hourly struct {
		Time          []int64    `json:"time"`
		Temperature   []float64  `json:"temperature_2m"`
		Humidity      []*float64 `json:"relative_humidity_2m"`
		WeatherCode   []int      `json:"weather_code"`
		CloudCover    []*float64 `json:"cloud_cover"`
		Precipitation []float64  `json:"precipitation"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		WindDirection []*float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
	Daily struct {
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

type openMeteoGeoResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

func (c *OpenMeteoClient) Current(ctx context.Context, location string) (*Snapshot, error) {
	payload, err := c.fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	cur := payload.Current
	observed := time.Unix(cur.Time, 0)
	sunrise, sunset := pickOpenMeteoSunTimes(observed, payload.Daily.Sunrise, payload.Daily.Sunset)

	snap := &Snapshot{
		Time:        observed,
		Temperature: cur.Temperature,
		Description: openMeteoDescribe(cur.WeatherCode, c.language),
		Clouds:      roundPtr(cur.CloudCover),
		Humidity:    roundPtr(cur.Humidity),
		Rain3h:      nonZero(sumOpenMeteoPrecip(observed, payload.Hourly.Time, payload.Hourly.Precipitation)),
		Wind:        openMeteoWind(cur.WindSpeed, cur.WindDirection),
		Pressure:    cur.PressureMSL,
		Sunrise:     sunrise,
		Sunset:      sunset,
	}
	return snap, nil
}

// Forecast resamples the hourly series into 3-hour steps aligned like the
// OpenWeather forecast (00h, 03h, ... UTC), each carrying the precipitation
// of the three hours it closes.
func (c *OpenMeteoClient) Forecast(ctx context.Context, location string) ([]ForecastEntry, error) {
	payload, err := c.fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	h := payload.Hourly
	now := time.Unix(payload.Current.Time, 0)
	var entries []ForecastEntry
	for i, ts := range h.Time {
		t := time.Unix(ts, 0)
		if !t.After(now) || t.UTC().Hour()%3 != 0 {
			continue
		}
		entry := ForecastEntry{
			Time:        t,
			Temperature: at(h.Temperature, i),
			Description: openMeteoDescribe(atInt(h.WeatherCode, i), c.language),
			Clouds:      roundPtr(atPtr(h.CloudCover, i)),
			Humidity:    roundPtr(atPtr(h.Humidity, i)),
			Rain3h:      nonZero(sumOpenMeteoPrecip(t, h.Time, h.Precipitation)),
			Wind:        openMeteoWind(atPtr(h.WindSpeed, i), atPtr(h.WindDirection, i)),
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *OpenMeteoClient) fetch(ctx context.Context, location string) (*openMeteoResponse, error) {
	lat, lon, err := c.resolveLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", lat))
	query.Set("longitude", fmt.Sprintf("%.6f", lon))
	query.Set("current", "temperature_2m,relative_humidity_2m,weather_code,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m")
	query.Set("hourly", "temperature_2m,relative_humidity_2m,weather_code,cloud_cover,precipitation,wind_speed_10m,wind_direction_10m")
	query.Set("daily", "sunrise,sunset")
	query.Set("timezone", "auto")
	query.Set("timeformat", "unixtime")
	query.Set("wind_speed_unit", "ms")
	query.Set("precipitation_unit", "mm")
	query.Set("past_days", "1")
	query.Set("forecast_days", fmt.Sprint(openMeteoForecastDays))

	var payload openMeteoResponse
	if err := c.getJSON(ctx, c.baseURL+"/forecast?"+query.Encode(), "open-meteo", &payload); err != nil {
		return nil, err
	}
	if payload.Current.Time == 0 {
		return nil, fmt.Errorf("open-meteo current data missing")
	}
	return &payload, nil
}

// resolveLocation geocodes "City" or "City,CC" once per client.
func (c *OpenMeteoClient) resolveLocation(ctx context.Context, location string) (float64, float64, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return 0, 0, ErrEmptyLocation
	}

	c.mu.Lock()
	cached, ok := c.coords[location]
	c.mu.Unlock()
	if ok {
		return cached[0], cached[1], nil
	}

	name, country, _ := strings.Cut(location, ",")

	query := url.Values{}
	query.Set("name", strings.TrimSpace(name))
	query.Set("count", "1")
	query.Set("format", "json")
	if c.language != "" {
		query.Set("language", c.language)
	}
	if country = strings.TrimSpace(country); country != "" {
		query.Set("countryCode", strings.ToUpper(country))
	}

	var payload openMeteoGeoResponse
	if err := c.getJSON(ctx, c.geocodingURL+"/search?"+query.Encode(), "open-meteo geocoding", &payload); err != nil {
		return 0, 0, err
	}
	if len(payload.Results) == 0 {
		return 0, 0, fmt.Errorf("open-meteo geocoding found no results for %q", location)
	}

	lat, lon := payload.Results[0].Latitude, payload.Results[0].Longitude
	c.mu.Lock()
	c.coords[location] = [2]float64{lat, lon}
	c.mu.Unlock()
	return lat, lon, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint, what string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s request: %w", what, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s bad status: %s", what, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", what, err)
	}
	return nil
}

func pickOpenMeteoSunTimes(observed time.Time, sunrises, sunsets []int64) (time.Time, time.Time) {
	count := len(sunrises)
	if len(sunsets) < count {
		count = len(sunsets)
	}
	if count == 0 {
		return time.Time{}, time.Time{}
	}

	// Last sunrise not after the observation, so late evening keeps today.
	best := 0
	for i := 0; i < count; i++ {
		if !time.Unix(sunrises[i], 0).After(observed) {
			best = i
		}
	}
	return time.Unix(sunrises[best], 0), time.Unix(sunsets[best], 0)
}

// sumOpenMeteoPrecip adds the hourly precipitation in (end-3h, end].
func sumOpenMeteoPrecip(end time.Time, times []int64, values []float64) float64 {
	if len(times) == 0 || len(times) != len(values) {
		return 0
	}

	windowStart := end.Add(-forecastStep)
	sum := 0.0
	for i, ts := range times {
		t := time.Unix(ts, 0)
		if t.After(windowStart) && !t.After(end) {
			sum += values[i]
		}
	}
	return sum
}

func openMeteoWind(speed, direction *float64) *Wind {
	if speed == nil && direction == nil {
		return nil
	}
	w := &Wind{}
	if speed != nil && direction != nil {
		w.Speed = *speed
		w.Degrees = *direction
	}
	return w
}

var openMeteoDescriptions = map[string]map[int]string{
	"en": {
		0: "clear sky", 1: "few clouds", 2: "scattered clouds", 3: "overcast clouds",
		45: "mist", 48: "fog",
		51: "light drizzle", 53: "drizzle", 55: "heavy intensity drizzle", 56: "freezing drizzle", 57: "freezing drizzle",
		61: "light rain", 63: "moderate rain", 65: "heavy intensity rain", 66: "freezing rain", 67: "freezing rain",
		71: "light snow", 73: "snow", 75: "heavy snow", 77: "snow grains",
		80: "light intensity shower rain", 81: "shower rain", 82: "heavy intensity shower rain",
		85: "light shower snow", 86: "heavy shower snow",
		95: "thunderstorm", 96: "thunderstorm with hail", 99: "thunderstorm with hail",
	},
	"pt": {
		0: "céu claro", 1: "algumas nuvens", 2: "nuvens dispersas", 3: "nublado",
		45: "neblina", 48: "nevoeiro",
		51: "garoa fraca", 53: "garoa", 55: "garoa forte", 56: "garoa gelada", 57: "garoa gelada",
		61: "chuva fraca", 63: "chuva moderada", 65: "chuva forte", 66: "chuva gelada", 67: "chuva gelada",
		71: "neve fraca", 73: "neve", 75: "neve forte", 77: "grãos de neve",
		80: "aguaceiros fracos de chuva", 81: "aguaceiros de chuva", 82: "aguaceiros fortes de chuva",
		85: "aguaceiros de neve", 86: "aguaceiros fortes de neve",
		95: "trovoada", 96: "trovoada com granizo", 99: "trovoada com granizo",
	},
}

func openMeteoDescribe(code int, language string) string {
	lang := strings.ToLower(language)
	if i := strings.IndexAny(lang, "_-"); i > 0 {
		lang = lang[:i]
	}
	table, ok := openMeteoDescriptions[lang]
	if !ok {
		table = openMeteoDescriptions["en"]
	}
	if desc, ok := table[code]; ok {
		return desc
	}
	return "unknown"
}

func roundPtr(v *float64) *int {
	if v == nil {
		return nil
	}
	r := int(math.Round(*v))
	return &r
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func atInt(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func atPtr(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

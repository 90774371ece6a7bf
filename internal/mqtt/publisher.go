package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"npk-weather/internal/format"
	"npk-weather/internal/render"
	"npk-weather/internal/report"
)

const publishTimeout = 10 * time.Second

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
	logger      *slog.Logger
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
	Logger      *slog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return &Publisher{enabled: false, logger: logger}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Info("mqtt connected", "broker", cfg.Broker)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out", cfg.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(client, cfg.TopicPrefix, logger), nil
}

func newPublisher(client mqtt.Client, prefix string, logger *slog.Logger) *Publisher {
	if prefix == "" {
		prefix = "npk-weather"
	}
	return &Publisher{
		client:      client,
		topicPrefix: strings.TrimRight(prefix, "/"),
		enabled:     true,
		logger:      logger,
	}
}

// status is the retained JSON document published with every report.
type status struct {
	Location       string    `json:"location"`
	Provider       string    `json:"provider"`
	Generated      time.Time `json:"generated"`
	Temperature    float64   `json:"temperature_c"`
	Description    string    `json:"description"`
	Humidity       *int      `json:"humidity,omitempty"`
	Clouds         *int      `json:"clouds,omitempty"`
	PressureHPa    float64   `json:"pressure_hpa"`
	DevicePressure bool      `json:"device_pressure"`
	WindSpeedKmh   *int      `json:"wind_speed_kmh,omitempty"`
	WindDirection  string    `json:"wind_direction,omitempty"`
	Rain3h         *float64  `json:"rain_3h,omitempty"`
}

func newStatus(rep *report.Report) status {
	cur := rep.Current
	st := status{
		Location:    rep.Location,
		Provider:    rep.Provider,
		Generated:   rep.Generated,
		Temperature: cur.Temperature,
		Description: format.Title(format.English, cur.Description),
		Humidity:    cur.Humidity,
		Clouds:      cur.Clouds,
		PressureHPa: cur.Pressure,
		Rain3h:      cur.Rain3h,
	}
	if rep.DevicePressure != nil {
		st.PressureHPa = *rep.DevicePressure
		st.DevicePressure = true
	}
	if cur.Wind != nil {
		dir, kmh := format.WindToCompass(format.English, cur.Wind.Degrees, cur.Wind.Speed)
		if dir == "" {
			// Bearing 0 means no direction; the speed is still real.
			kmh = int(math.Floor(cur.Wind.Speed * 3.6))
		}
		st.WindSpeedKmh = &kmh
		st.WindDirection = dir
	}
	return st
}

// Publish sends each value to its own topic, the rendered report as text
// and the whole status as retained JSON.
func (p *Publisher) Publish(rep *report.Report) error {
	if !p.enabled {
		return nil
	}
	if rep == nil || rep.Current == nil {
		return fmt.Errorf("nothing to publish")
	}

	st := newStatus(rep)
	base := p.baseTopic(rep.Location)

	topics := map[string]interface{}{
		"temperature": fmt.Sprintf("%.1f", st.Temperature),
		"pressure":    fmt.Sprintf("%.1f", st.PressureHPa),
		"description": st.Description,
		"location":    st.Location,
	}
	if st.Humidity != nil {
		topics["humidity"] = *st.Humidity
	}
	if st.Clouds != nil {
		topics["clouds"] = *st.Clouds
	}
	if st.WindSpeedKmh != nil {
		topics["wind_speed"] = *st.WindSpeedKmh
		topics["wind_direction"] = st.WindDirection
	}

	for name, value := range topics {
		topic := base + "/" + name
		payload := fmt.Sprintf("%v", value)
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			p.logger.Warn("failed to publish", "topic", topic, "error", token.Error())
		}
	}

	token := p.client.Publish(base+"/report", 0, true, render.Text(rep.Lines))
	token.Wait()
	if token.Error() != nil {
		p.logger.Warn("failed to publish report text", "error", token.Error())
	}

	statusJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	token = p.client.Publish(base+"/status", 0, true, statusJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish status: %w", token.Error())
	}

	return nil
}

// PublishHomeAssistantDiscovery announces the per-value topics of location
// as Home Assistant sensors.
func (p *Publisher) PublishHomeAssistantDiscovery(location string) error {
	if !p.enabled {
		return nil
	}

	sensors := []struct {
		Name        string
		ID          string
		Unit        string
		DeviceClass string
	}{
		{"Temperature", "temperature", "°C", "temperature"},
		{"Humidity", "humidity", "%", "humidity"},
		{"Pressure", "pressure", "hPa", "atmospheric_pressure"},
		{"Cloud Cover", "clouds", "%", ""},
		{"Wind Speed", "wind_speed", "km/h", "wind_speed"},
		{"Wind Direction", "wind_direction", "", ""},
		{"Conditions", "description", "", ""},
	}

	slug := slugify(location)
	base := p.baseTopic(location)

	for _, sensor := range sensors {
		discoveryTopic := fmt.Sprintf("homeassistant/sensor/npk_weather_%s/%s/config", slug, sensor.ID)

		config := map[string]interface{}{
			"name":        sensor.Name,
			"unique_id":   fmt.Sprintf("npk_weather_%s_%s", slug, sensor.ID),
			"state_topic": base + "/" + sensor.ID,
			"device": map[string]interface{}{
				"identifiers":  []string{"npk_weather_" + slug},
				"name":         "NPK Weather " + location,
				"manufacturer": "NPK",
				"model":        "Weather report",
			},
		}
		if sensor.Unit != "" {
			config["unit_of_measurement"] = sensor.Unit
		}
		if sensor.DeviceClass != "" {
			config["device_class"] = sensor.DeviceClass
		}

		payload, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal discovery config: %w", err)
		}
		token := p.client.Publish(discoveryTopic, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			return fmt.Errorf("failed to publish discovery for %s: %w", sensor.ID, token.Error())
		}
	}

	return nil
}

func (p *Publisher) baseTopic(location string) string {
	return p.topicPrefix + "/" + slugify(location)
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}

// slugify turns "Vila Nova de Gaia,pt" into "vila_nova_de_gaia_pt".
func slugify(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

package format

import (
	"fmt"
	"strings"
)

// Weather glyphs used by the normalizer and the rain bands.
const (
	IconSun            = "☀️"
	IconMoon           = "🌙"
	IconCloud          = "☁️"
	IconPartlyCloudy   = "⛅️"
	IconSunBehindCloud = "🌤"
	IconRain           = "🌧"
)

// Locale holds every target-language string the pipeline matches against
// or prints. Description rules match the title-cased text returned by the
// weather API for Code, so a locale and the API language must agree.
type Locale struct {
	Code string

	Compass  [8]string
	Weekdays [7]string // indexed by time.Weekday

	Today    string
	Tomorrow string

	Humidity        string
	Pressure        string
	Wind            string
	Sunrise         string
	Sunset          string
	DeviceBarometer string

	// DrizzleFrom is replaced by DrizzleTo before any rule runs.
	DrizzleFrom string
	DrizzleTo   string

	LightRain         string
	PossibleLightRain string

	// RainWords trigger the rain text suffix.
	RainWords []string

	Rules []Rule
}

var English = &Locale{
	Code:     "en",
	Compass:  [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"},
	Weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},

	Today:    "Today",
	Tomorrow: "Tomorrow",

	Humidity:        "Humidity",
	Pressure:        "Pressure",
	Wind:            "Wind",
	Sunrise:         "Sunrise",
	Sunset:          "Sunset",
	DeviceBarometer: "(device barometer)",

	DrizzleFrom: "Light Drizzle",
	DrizzleTo:   "Possible Light Drizzle",

	LightRain:         "Light Rain",
	PossibleLightRain: "Possible Light Rain",

	RainWords: []string{"Rain", "Drizzle"},

	Rules: []Rule{
		{Name: "clear sky", Match: equals("Clear Sky"), Rewrite: "Clean Sky", Icon: sunOrMoon},
		{Name: "broken clouds", Match: equals("Broken Clouds", "Very Cloudy Sky"), Rewrite: "Very Cloudy Sky", Icon: always(IconCloud)},
		{Name: "some clouds", Match: equals("Some Clouds", "Scattered Clouds"), Rewrite: "Slightly Cloudy Sky", Icon: always(IconPartlyCloudy)},
		{Name: "cloudy", Match: either(contains("Cloudy"), equals("Possible Light Drizzle")), Icon: always(IconCloud)},
		{Name: "mist", Match: contains("Mist", "Haze"), Icon: always(IconSunBehindCloud)},
		{Name: "heavy rain", Match: equals("Heavy Intensity Rain"), Rewrite: "Heavy Rain"},
	},
}

var Portuguese = &Locale{
	Code:     "pt",
	Compass:  [8]string{"N", "NE", "E", "SE", "S", "SO", "O", "NO"},
	Weekdays: [7]string{"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"},

	Today:    "Hoje",
	Tomorrow: "Amanhã",

	Humidity:        "Humidade",
	Pressure:        "Pressão",
	Wind:            "Vento",
	Sunrise:         "Amanhecer",
	Sunset:          "Anoitecer",
	DeviceBarometer: "(barómetro)",

	DrizzleFrom: "Garoa Fraca",
	DrizzleTo:   "Possib. Chuviscos Fracos",

	LightRain:         "Chuva Fraca",
	PossibleLightRain: "Possib. Chuva Fraca",

	RainWords: []string{"Chuva", "Chuvisco", "Garoa"},

	Rules: []Rule{
		{Name: "clear sky", Match: equals("Céu Claro"), Rewrite: "Céu Limpo", Icon: sunOrMoon},
		{Name: "broken clouds", Match: equals("Nuvens Quebrados", "Céu Muito Nublado"), Rewrite: "Céu Muito Nublado", Icon: always(IconCloud)},
		{Name: "some clouds", Match: equals("Algumas Nuvens", "Nuvens Dispersas"), Rewrite: "Céu Pouco Nublado", Icon: always(IconPartlyCloudy)},
		{Name: "cloudy", Match: either(contains("Nublado"), equals("Possib. Chuviscos Fracos")), Icon: always(IconCloud)},
		{Name: "mist", Match: contains("Neblina", "Névoa"), Icon: always(IconSunBehindCloud)},
		{Name: "heavy rain", Match: equals("Chuva De Intensidade Pesado", "Chuva Forte"), Rewrite: "Chuva Forte"},
	},
}

var locales = map[string]*Locale{
	English.Code:    English,
	Portuguese.Code: Portuguese,
}

// LookupLocale returns the locale registered for code ("en", "pt", "pt_br").
func LookupLocale(code string) (*Locale, error) {
	key := strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(key, "_-"); i > 0 {
		key = key[:i]
	}
	if l, ok := locales[key]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("unsupported language %q (allowed: en, pt)", code)
}

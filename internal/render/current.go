package render

import (
	"fmt"
	"strings"
	"time"

	"npk-weather/internal/format"
	"npk-weather/internal/weather"
)

const (
	tempIndent    = 5 // four columns plus the separator
	windIndent    = 13
	columnIndent  = 12
	sunColumnTail = 9
)

// Current renders the current-conditions block. deviceHPa, when non-nil,
// replaces the API pressure and is tagged as a device reading.
func Current(o Options, snap weather.Snapshot, deviceHPa *float64) []Line {
	o = o.withDefaults()
	loc := o.Locale

	at := snap.Time.In(o.Location)
	desc := format.Title(loc, snap.Description)

	var rainText, rainIcon string
	if snap.Rain3h != nil {
		desc, rainText, rainIcon = format.RainLabel(loc, desc, *snap.Rain3h)
	}
	desc, icon := format.Normalize(loc, desc, "", "", HourLabel(at))
	if rainIcon != "" {
		icon = rainIcon
	}

	temp := fmt.Sprintf("%d°", format.TruncateTemp(snap.Temperature))
	summary := joinNonEmpty(desc, format.CloudLabel(snap.Clouds), rainText)

	lines := []Line{
		{Text: strings.Repeat(" ", tempIndent) + joinNonEmpty(icon, temp), Style: StyleToday},
		{Text: centre(summary, summaryWidth), Style: StyleTodayDetail},
		{Style: StyleSmall},
		{Text: strings.Repeat(" ", windIndent) + loc.Wind + ": " + windText(loc, snap.Wind), Style: StyleSmall},
	}

	humidity := strings.Repeat(" ", columnIndent) + loc.Humidity + ": " + format.HumidityLabel(snap.Humidity)
	sunrise := loc.Sunrise + ": " + clock(o, snap.Sunrise) + strings.Repeat(" ", sunColumnTail)
	pressure := strings.Repeat(" ", columnIndent) + loc.Pressure + ": " + pressureText(loc, snap.Pressure, deviceHPa)
	sunset := loc.Sunset + ": " + clock(o, snap.Sunset) + strings.Repeat(" ", sunColumnTail)

	return append(lines,
		Line{Text: " " + columns(o.Width, humidity, sunrise), Style: StyleTable},
		Line{Text: " " + columns(o.Width, pressure, sunset), Style: StyleTable},
		Line{Style: StyleTable},
	)
}

func windText(loc *format.Locale, w *weather.Wind) string {
	if w == nil {
		return ""
	}
	dir, kmh := format.WindToCompass(loc, w.Degrees, w.Speed)
	return joinNonEmpty(dir, fmt.Sprintf("%dkm/h", kmh))
}

func pressureText(loc *format.Locale, apiHPa float64, deviceHPa *float64) string {
	if deviceHPa != nil {
		return fmt.Sprintf("%.0fmmHg %s", format.HPaToMmHg(*deviceHPa), loc.DeviceBarometer)
	}
	if apiHPa <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0fmmHg", format.HPaToMmHg(apiHPa))
}

func clock(o Options, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(o.Location).Format("15:04")
}

// columns pads between left and right so the pair spans width columns,
// keeping at least one space.
func columns(width int, left, right string) string {
	pad := width - runes(left) - runes(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func centre(s string, width int) string {
	pad := (width - runes(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

package format

import (
	"math"
	"strconv"
)

// mmHgPerHPa converts hectopascals to millimetres of mercury.
const mmHgPerHPa = 0.750064

type rainBand struct {
	min   float64 // mm/h, inclusive
	drops string
}

// rainBands is ordered from the heaviest band down.
var rainBands = []rainBand{
	{min: 48, drops: "💦💦☔💦💦"},
	{min: 12, drops: "💧💧💧"},
	{min: 3, drops: "💧💧"},
	{min: 0.75, drops: "💧"},
}

// WindToCompass maps a wind bearing to one of eight compass points and the
// speed in whole km/h. A bearing of exactly 0 means the API sent no wind
// direction, so it yields an empty direction and zero speed.
func WindToCompass(loc *Locale, degrees, metersPerSecond float64) (string, int) {
	if degrees == 0 {
		return "", 0
	}
	i := int(math.Floor((degrees+57.5)/45)) - 1
	i = ((i % 8) + 8) % 8
	return loc.Compass[i], int(math.Floor(metersPerSecond * 3.6))
}

// CloudLabel renders cloud cover as "N.<pct>%"; nil or zero renders nothing.
func CloudLabel(cover *int) string {
	return percentLabel("N.", cover)
}

// HumidityLabel renders relative humidity as "H.<pct>%"; nil or zero renders nothing.
func HumidityLabel(pct *int) string {
	return percentLabel("H.", pct)
}

func percentLabel(prefix string, v *int) string {
	if v == nil || *v == 0 {
		return ""
	}
	return prefix + strconv.Itoa(*v) + "%"
}

// RainLabel turns a 3-hour accumulated volume into an hourly rate and returns
// the (possibly rewritten) description, the rate text and the icon to show.
// Rates under 0.75 mm/h are shown as cloud, and a plain light-rain
// description becomes a possible light rain.
func RainLabel(loc *Locale, desc string, volume3h float64) (string, string, string) {
	rate := volume3h / 3
	text := "(" + strconv.FormatFloat(math.Round(rate*10)/10, 'f', 1, 64) + "mm/h)"

	for _, b := range rainBands {
		if rate >= b.min {
			return desc, text + b.drops, IconRain
		}
	}

	if desc == loc.LightRain {
		desc = loc.PossibleLightRain
	}
	return desc, text, IconCloud
}

// HPaToMmHg converts a pressure reading from hPa to mmHg.
func HPaToMmHg(hPa float64) float64 {
	return hPa * mmHgPerHPa
}

// TruncateTemp drops the fractional part of a temperature; it never rounds.
func TruncateTemp(celsius float64) int {
	return int(math.Trunc(celsius))
}

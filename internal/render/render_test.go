package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"npk-weather/internal/format"
	"npk-weather/internal/weather"
)

// Friday 10 May 2024, 12:00 UTC.
var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func testOptions(detailed bool) Options {
	return Options{Locale: format.English, Location: time.UTC, Now: testNow, Detailed: detailed}
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func TestCurrent_clearSky(t *testing.T) {
	snap := weather.Snapshot{
		Time:        testNow.Add(2 * time.Hour),
		Temperature: 21.7,
		Description: "clear sky",
		Humidity:    intp(64),
		Wind:        &weather.Wind{Degrees: 250, Speed: 3.6},
		Pressure:    1013.25,
		Sunrise:     time.Date(2024, 5, 10, 6, 30, 0, 0, time.UTC),
		Sunset:      time.Date(2024, 5, 10, 21, 5, 0, 0, time.UTC),
	}

	lines := Current(testOptions(false), snap, nil)
	if len(lines) != 7 {
		t.Fatalf("len=%d want 7: %q", len(lines), Text(lines))
	}

	if got, want := lines[0].Text, "     "+format.IconSun+" 21°"; got != want {
		t.Errorf("temperature line=%q want %q", got, want)
	}
	if lines[0].Style != StyleToday {
		t.Errorf("temperature style=%v want today", lines[0].Style)
	}
	if got := strings.TrimSpace(lines[1].Text); got != "Clean Sky" {
		t.Errorf("summary=%q want Clean Sky", got)
	}
	if lines[2].Text != "" {
		t.Errorf("line 2=%q want blank", lines[2].Text)
	}
	if got, want := lines[3].Text, strings.Repeat(" ", 13)+"Wind: SW 12km/h"; got != want {
		t.Errorf("wind=%q want %q", got, want)
	}

	humidity := lines[4].Text
	if !strings.HasPrefix(humidity, " "+strings.Repeat(" ", 12)+"Humidity: H.64%") {
		t.Errorf("humidity=%q", humidity)
	}
	if !strings.HasSuffix(humidity, "Sunrise: 06:30"+strings.Repeat(" ", 9)) {
		t.Errorf("sunrise column=%q", humidity)
	}
	pressure := lines[5].Text
	if !strings.Contains(pressure, "Pressure: 760mmHg") || !strings.Contains(pressure, "Sunset: 21:05") {
		t.Errorf("pressure=%q", pressure)
	}
	for _, l := range lines[4:6] {
		if n := runes(l.Text); n != DefaultWidth+1 {
			t.Errorf("column line %q is %d columns; want %d", l.Text, n, DefaultWidth+1)
		}
	}
}

func TestCurrent_rainAndDevicePressure(t *testing.T) {
	snap := weather.Snapshot{
		Time:        testNow,
		Temperature: -2.9,
		Description: "light rain",
		Clouds:      intp(90),
		Rain3h:      floatp(9),
		Pressure:    1020,
	}

	lines := Current(testOptions(false), snap, floatp(1000))

	if got, want := lines[0].Text, "     "+format.IconRain+" -2°"; got != want {
		t.Errorf("temperature line=%q want %q", got, want)
	}
	if got, want := strings.TrimSpace(lines[1].Text), "Light Rain N.90% (3.0mm/h)💧💧"; got != want {
		t.Errorf("summary=%q want %q", got, want)
	}
	if !strings.Contains(lines[5].Text, "Pressure: 750mmHg (device barometer)") {
		t.Errorf("pressure=%q want device reading", lines[5].Text)
	}
	// No wind object: the value is left empty.
	if got := strings.TrimSpace(lines[3].Text); got != "Wind:" {
		t.Errorf("wind=%q want empty value", got)
	}
}

func TestCurrent_lightRainBelowBand(t *testing.T) {
	snap := weather.Snapshot{Time: testNow, Temperature: 10, Description: "light rain", Rain3h: floatp(1.5)}
	lines := Current(testOptions(false), snap, nil)

	if !strings.Contains(lines[0].Text, format.IconCloud) {
		t.Errorf("temperature line=%q want cloud icon", lines[0].Text)
	}
	if got, want := strings.TrimSpace(lines[1].Text), "Possible Light Rain (0.5mm/h)"; got != want {
		t.Errorf("summary=%q want %q", got, want)
	}
}

func TestForecast_rainEntryToday(t *testing.T) {
	entries := []weather.ForecastEntry{{
		Time:        testNow.Add(time.Hour),
		Temperature: 18.4,
		Description: "moderate rain",
		Rain3h:      floatp(9),
	}}

	lines := Forecast(testOptions(false), entries)
	if len(lines) != 3 {
		t.Fatalf("len=%d want 3: %q", len(lines), Text(lines))
	}
	if lines[0].Text != "" || lines[0].Style != StyleTitle {
		t.Errorf("line 0=%+v want blank title line", lines[0])
	}
	if !strings.HasPrefix(lines[1].Text, "__Today 10/05_") {
		t.Errorf("header=%q", lines[1].Text)
	}
	if got, want := lines[2].Text, "  13h 18° "+format.IconRain+" Moderate Rain (3.0mm/h)💧💧"; got != want {
		t.Errorf("entry=%q want %q", got, want)
	}
}

func TestForecast_entryLayout(t *testing.T) {
	entries := []weather.ForecastEntry{
		{Time: testNow.Add(3 * time.Hour), Temperature: 5.2, Description: "broken clouds", Clouds: intp(75)},
		{Time: testNow.Add(6 * time.Hour), Temperature: 3, Description: "overcast clouds"},
	}

	lines := Forecast(testOptions(false), entries)
	want := []string{
		"  15h  5° " + format.IconCloud + " Very Cloudy Sky N.75%",
		"  18h  3° Overcast Clouds",
	}
	got := []string{lines[2].Text, lines[3].Text}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d=%q want %q", i, got[i], want[i])
		}
	}
}

func TestDayHeader(t *testing.T) {
	tests := []struct {
		name string
		days int
		at   time.Time
		want string
	}{
		{"today", 0, testNow, "__Today 10/05"},
		{"tomorrow", 1, testNow.AddDate(0, 0, 1), "__Tomorrow (11/05)"},
		{"weekday", 2, testNow.AddDate(0, 0, 2), "__Sunday 12/05"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DayHeader(format.English, tc.days, tc.at)
			if !strings.HasPrefix(got, tc.want) {
				t.Errorf("header=%q want prefix %q", got, tc.want)
			}
			if strings.Trim(strings.TrimPrefix(got, tc.want), "_") != "" {
				t.Errorf("header=%q is not padded with underscores", got)
			}
			if n := runes(got); n != headerWidth {
				t.Errorf("header is %d columns; want %d", n, headerWidth)
			}
		})
	}

	if got := DayHeader(format.Portuguese, 1, testNow.AddDate(0, 0, 1)); !strings.HasPrefix(got, "__Amanhã (11/05)") {
		t.Errorf("pt header=%q", got)
	}
}

// everyThreeHours returns entries from 15h today to 12h the day after
// tomorrow.
func everyThreeHours() []weather.ForecastEntry {
	var entries []weather.ForecastEntry
	for at := testNow.Add(3 * time.Hour); !at.After(testNow.Add(48 * time.Hour)); at = at.Add(3 * time.Hour) {
		entries = append(entries, weather.ForecastEntry{Time: at, Temperature: 15, Description: "few clouds"})
	}
	return entries
}

func entryHours(lines []Line) []string {
	var hours []string
	for _, l := range lines {
		if strings.HasPrefix(l.Text, "  ") {
			hours = append(hours, strings.Fields(l.Text)[0])
		}
	}
	return hours
}

func headers(lines []Line) []string {
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(l.Text, "__") {
			out = append(out, strings.TrimRight(l.Text, "_"))
		}
	}
	return out
}

func TestForecast_nightSuppression(t *testing.T) {
	lines := Forecast(testOptions(false), everyThreeHours())

	// 00h, 03h and 06h of the 11th are less than 24h away; the same hours
	// on the 12th are not.
	want := []string{"15h", "18h", "21h", "00h", "03h", "06h", "09h", "12h", "15h", "18h", "21h", "09h", "12h"}
	got := entryHours(lines)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("hours=%v\nwant   %v", got, want)
	}

	wantHeaders := []string{"__Today 10/05", "__Tomorrow (11/05)", "__Sunday 12/05"}
	if gotHeaders := headers(lines); strings.Join(gotHeaders, "|") != strings.Join(wantHeaders, "|") {
		t.Errorf("headers=%v want %v", gotHeaders, wantHeaders)
	}
}

func TestForecast_detailedShowsEverything(t *testing.T) {
	entries := everyThreeHours()
	lines := Forecast(testOptions(true), entries)
	if got := len(entryHours(lines)); got != len(entries) {
		t.Errorf("visible entries=%d want %d", got, len(entries))
	}
}

func TestForecast_twentyFourHourBoundary(t *testing.T) {
	midnight := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	o := testOptions(false)
	o.Now = midnight

	entries := []weather.ForecastEntry{
		{Time: midnight.Add(23 * time.Hour), Description: "clear sky"},
		{Time: midnight.Add(24 * time.Hour), Description: "clear sky"},
		{Time: midnight.Add(27 * time.Hour), Description: "clear sky"},
		{Time: midnight.Add(33 * time.Hour), Description: "clear sky"},
	}
	got := entryHours(Forecast(o, entries))
	if strings.Join(got, ",") != "23h,09h" {
		t.Errorf("hours=%v want [23h 09h]", got)
	}
}

func TestForecast_suppressedDayHasNoHeader(t *testing.T) {
	day := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)
	entries := []weather.ForecastEntry{
		{Time: day, Description: "clear sky"},
		{Time: day.Add(3 * time.Hour), Description: "clear sky"},
	}
	if lines := Forecast(testOptions(false), entries); len(lines) != 0 {
		t.Errorf("lines=%q want none", Text(lines))
	}
}

func TestForecast_sameHourTieBreak(t *testing.T) {
	at := testNow.Add(3 * time.Hour)
	entries := []weather.ForecastEntry{
		{Time: at, Temperature: 20, Description: "clear sky"},
		{Time: at.Add(30 * time.Minute), Temperature: 19, Description: "clear sky"},
	}

	lines := Forecast(testOptions(false), entries)
	if len(lines) != 5 {
		t.Fatalf("len=%d want 5: %q", len(lines), Text(lines))
	}
	if lines[3].Text != "" {
		t.Errorf("line 3=%q want blank separator", lines[3].Text)
	}
	if len(headers(lines)) != 1 {
		t.Errorf("headers=%v want one", headers(lines))
	}
}

func TestForecast_nightIcon(t *testing.T) {
	entries := []weather.ForecastEntry{{Time: time.Date(2024, 5, 10, 22, 0, 0, 0, time.UTC), Temperature: 12, Description: "clear sky"}}
	lines := Forecast(testOptions(false), entries)
	if got, want := lines[2].Text, "  22h 12° "+format.IconMoon+" Clean Sky"; got != want {
		t.Errorf("entry=%q want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	short := Title("NPK Weather", "Braga,pt", "")
	if len(short) != 2 || short[0].Text != "NPK Weather (Braga,pt)" {
		t.Errorf("short title=%q", Text(short))
	}

	long := Title("The NPK Weather App", "Vila Nova de Famalicão,pt", "openweather 12:00")
	if len(long) != 4 {
		t.Fatalf("long title=%q", Text(long))
	}
	if long[1].Text != "(Vila Nova de Famalicão,pt)" || long[2].Style != StyleSmall {
		t.Errorf("long title=%+v", long)
	}
}

func TestLineJSON(t *testing.T) {
	b, err := json.Marshal(Line{Text: "x", Style: StyleTodayDetail})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"text":"x","style":"today_detail"}` {
		t.Errorf("json=%s", b)
	}

	var l Line
	if err := json.Unmarshal(b, &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.Style != StyleTodayDetail {
		t.Errorf("style=%v want today_detail", l.Style)
	}
}

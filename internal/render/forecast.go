package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"npk-weather/internal/format"
	"npk-weather/internal/weather"
)

// nightHours are hidden from the short table unless they fall within
// the next 24 hours.
var nightHours = map[string]bool{
	"00h": true, "01h": true, "03h": true, "04h": true,
	"06h": true, "07h": true, "22h": true, "23h": true,
}

const alwaysShown = 24 * time.Hour

type sectionState int

const (
	noSectionOpen sectionState = iota
	sectionOpenToday
	sectionOpenOtherDay
)

// forecastTable buckets time-ordered entries into one section per local
// calendar day. A section is opened by its first visible entry and its
// lines are buffered until the next section opens or the input ends.
type forecastTable struct {
	o Options

	state    sectionState
	date     string
	lastHour string

	buf []Line
	out []Line
}

// Forecast renders the forecast table. Entries must be in ascending time
// order.
func Forecast(o Options, entries []weather.ForecastEntry) []Line {
	t := &forecastTable{o: o.withDefaults()}
	for _, e := range entries {
		t.add(e)
	}
	t.flush()
	return t.out
}

func (t *forecastTable) add(e weather.ForecastEntry) {
	at := e.Time.In(t.o.Location)
	hour := HourLabel(at)
	if t.suppressed(e, hour) {
		return
	}

	date := at.Format("2006-01-02")
	switch {
	case t.state == noSectionOpen || date != t.date:
		t.flush()
		t.open(at, date)
	case hour == t.lastHour:
		t.buf = append(t.buf, Line{Style: StyleTable})
	}

	t.buf = append(t.buf, Line{Text: t.entryLine(e, hour), Style: StyleTable})
	t.lastHour = hour
}

func (t *forecastTable) suppressed(e weather.ForecastEntry, hour string) bool {
	if t.o.Detailed || !nightHours[hour] {
		return false
	}
	return e.Time.Sub(t.o.Now) >= alwaysShown
}

func (t *forecastTable) open(at time.Time, date string) {
	days := dayDistance(t.o.Now.In(t.o.Location), at)
	if days == 0 {
		t.state = sectionOpenToday
	} else {
		t.state = sectionOpenOtherDay
	}
	t.date = date
	t.lastHour = ""

	t.buf = append(t.buf,
		Line{Style: StyleTitle},
		Line{Text: DayHeader(t.o.Locale, days, at), Style: StyleTitle},
	)
}

func (t *forecastTable) flush() {
	t.out = append(t.out, t.buf...)
	t.buf = t.buf[:0]
}

func (t *forecastTable) entryLine(e weather.ForecastEntry, hour string) string {
	loc := t.o.Locale
	desc := format.Title(loc, e.Description)

	var icon, rainText string
	if e.Rain3h != nil {
		desc, rainText, icon = format.RainLabel(loc, desc, *e.Rain3h)
	}
	desc, icon = format.Normalize(loc, desc, icon, rainText, hour)

	temp := fmt.Sprintf("%2d°", format.TruncateTemp(e.Temperature))
	return "  " + joinNonEmpty(hour, temp, icon, desc, format.CloudLabel(e.Clouds))
}

// DayHeader builds the underscore-padded section header for a day that is
// days calendar days after today.
func DayHeader(loc *format.Locale, days int, at time.Time) string {
	short := at.Format("02/01")

	var label string
	switch days {
	case 0:
		label = loc.Today + " " + short
	case 1:
		label = loc.Tomorrow + " (" + short + ")"
	default:
		label = loc.Weekdays[at.Weekday()] + " " + short
	}

	header := "__" + label
	if n := headerWidth - runes(header); n > 0 {
		header += strings.Repeat("_", n)
	}
	return header
}

// dayDistance counts calendar days from a to b in b's location.
func dayDistance(a, b time.Time) int {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, b.Location())
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, b.Location())
	return int(math.Round(end.Sub(start).Hours() / 24))
}

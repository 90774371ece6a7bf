package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"npk-weather/internal/format"
)

// Style is a presentation hint for a Line. Sinks map it to whatever font or
// colour they support; the renderers never look at it again.
type Style int

const (
	StyleTable Style = iota
	StyleHeader
	StyleTitle
	StyleToday
	StyleTodayDetail
	StyleSmall
)

var styleNames = [...]string{
	StyleTable:       "table",
	StyleHeader:      "header",
	StyleTitle:       "title",
	StyleToday:       "today",
	StyleTodayDetail: "today_detail",
	StyleSmall:       "small",
}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

func (s Style) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(styleNames) {
		return nil, fmt.Errorf("unknown style %d", int(s))
	}
	return []byte(styleNames[s]), nil
}

func (s *Style) UnmarshalText(text []byte) error {
	for i, name := range styleNames {
		if name == string(text) {
			*s = Style(i)
			return nil
		}
	}
	return fmt.Errorf("unknown style %q", text)
}

// Line is one rendered display line.
type Line struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

const (
	DefaultWidth = 56
	headerWidth  = 48
	summaryWidth = 44
	titleWidth   = 32
)

// Options carries everything the renderers need besides the data itself.
type Options struct {
	Locale   *format.Locale
	Location *time.Location
	Width    int
	Now      time.Time
	Detailed bool
}

func (o Options) withDefaults() Options {
	if o.Locale == nil {
		o.Locale = format.English
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// HourLabel formats the local hour of t as "15h".
func HourLabel(t time.Time) string {
	return t.Format("15") + "h"
}

// Text joins the lines with newlines, dropping styles.
func Text(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func runes(s string) int {
	return utf8.RuneCountInString(s)
}

// Title renders the report heading. The location moves to its own line when
// both do not fit in a narrow console.
func Title(appName, location, caption string) []Line {
	var lines []Line
	if runes(location+appName+" ") > titleWidth {
		lines = append(lines,
			Line{Text: appName, Style: StyleHeader},
			Line{Text: "(" + location + ")", Style: StyleHeader},
		)
	} else {
		lines = append(lines, Line{Text: appName + " (" + location + ")", Style: StyleHeader})
	}
	if caption != "" {
		lines = append(lines, Line{Text: caption, Style: StyleSmall})
	}
	return append(lines, Line{Style: StyleTable})
}

package format

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule is one entry of a locale's description rewrite table. The first rule
// whose Match reports true is applied; the rest are skipped.
type Rule struct {
	Name    string
	Match   func(desc string) bool
	Rewrite string                 // empty keeps the description
	Icon    func(hour string) string // nil keeps the current icon
}

// nightHours are the hour labels that get a moon instead of a sun.
var nightHours = map[string]bool{"22h": true, "01h": true, "04h": true}

// Normalize rewrites an already localized description into its display form
// and picks an icon. hour is an "HHh" label used for day/night icons.
// rainText is appended to descriptions that mention rain.
func Normalize(loc *Locale, desc, icon, rainText, hour string) (string, string) {
	if loc.DrizzleFrom != "" {
		desc = strings.ReplaceAll(desc, loc.DrizzleFrom, loc.DrizzleTo)
	}

	for _, r := range loc.Rules {
		if !r.Match(desc) {
			continue
		}
		if r.Rewrite != "" {
			desc = r.Rewrite
		}
		if r.Icon != nil {
			icon = r.Icon(hour)
		}
		break
	}

	if rainText != "" && containsAny(desc, loc.RainWords) {
		desc = desc + " " + rainText
	}
	return desc, icon
}

// Title converts an API description ("light rain") into the title-cased form
// the rule tables are written in ("Light Rain").
func Title(loc *Locale, desc string) string {
	return cases.Title(language.Make(loc.Code)).String(strings.TrimSpace(desc))
}

func sunOrMoon(hour string) string {
	if nightHours[hour] {
		return IconMoon
	}
	return IconSun
}

func always(icon string) func(string) string {
	return func(string) string { return icon }
}

func equals(values ...string) func(string) bool {
	return func(desc string) bool {
		for _, v := range values {
			if desc == v {
				return true
			}
		}
		return false
	}
}

func contains(words ...string) func(string) bool {
	return func(desc string) bool { return containsAny(desc, words) }
}

func either(preds ...func(string) bool) func(string) bool {
	return func(desc string) bool {
		for _, p := range preds {
			if p(desc) {
				return true
			}
		}
		return false
	}
}

func containsAny(desc string, words []string) bool {
	for _, w := range words {
		if strings.Contains(desc, w) {
			return true
		}
	}
	return false
}

package format

import (
	"strings"
	"testing"
)

func TestWindToCompass(t *testing.T) {
	tests := []struct {
		name    string
		degrees float64
		speed   float64
		wantDir string
		wantKmh int
	}{
		{"zero bearing means no data", 0, 12.5, "", 0},
		{"north", 10, 1, "N", 3},
		{"north east", 45, 2, "NE", 7},
		{"east", 90, 5, "E", 18},
		{"south east", 135, 0.5, "SE", 1},
		{"south", 180, 10, "S", 36},
		{"south west", 225, 3.3, "SW", 11},
		{"west", 270, 1.1, "W", 3},
		{"north west", 315, 4, "NW", 14},
		{"wraps to north", 350, 4, "N", 14},
		{"full circle", 360, 4, "N", 14},
		{"last north bearing", 32.4, 1, "N", 3},
		{"first north east bearing", 32.5, 1, "NE", 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir, kmh := WindToCompass(English, tc.degrees, tc.speed)
			if dir != tc.wantDir || kmh != tc.wantKmh {
				t.Errorf("WindToCompass(%v, %v) = (%q, %d); want (%q, %d)",
					tc.degrees, tc.speed, dir, kmh, tc.wantDir, tc.wantKmh)
			}
		})
	}
}

func TestWindToCompass_everyBearingIsACompassPoint(t *testing.T) {
	valid := map[string]bool{}
	for _, p := range English.Compass {
		valid[p] = true
	}
	for d := 1; d < 360; d++ {
		dir, _ := WindToCompass(English, float64(d), 3)
		if !valid[dir] {
			t.Fatalf("WindToCompass(%d) = %q; want one of %v", d, dir, English.Compass)
		}
	}
	for _, speed := range []float64{0, 1, 99} {
		if dir, kmh := WindToCompass(English, 0, speed); dir != "" || kmh != 0 {
			t.Errorf("WindToCompass(0, %v) = (%q, %d); want (\"\", 0)", speed, dir, kmh)
		}
	}
}

func TestWindToCompass_portuguese(t *testing.T) {
	dir, _ := WindToCompass(Portuguese, 270, 1)
	if dir != "O" {
		t.Errorf("dir = %q; want O", dir)
	}
}

func intp(v int) *int { return &v }

func TestCloudAndHumidityLabels(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*int) string
		in   *int
		want string
	}{
		{"cloud absent", CloudLabel, nil, ""},
		{"cloud zero", CloudLabel, intp(0), ""},
		{"cloud value", CloudLabel, intp(75), "N.75%"},
		{"humidity absent", HumidityLabel, nil, ""},
		{"humidity zero", HumidityLabel, intp(0), ""},
		{"humidity value", HumidityLabel, intp(81), "H.81%"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(tc.in); got != tc.want {
				t.Errorf("got %q; want %q", got, tc.want)
			}
		})
	}
}

func TestRainLabel_bands(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		volume   float64
		wantDesc string
		wantText string
		wantIcon string
	}{
		{"drizzle below band", "Moderate Rain", 0.3, "Moderate Rain", "(0.1mm/h)", IconCloud},
		{"light rain becomes possible", "Light Rain", 1.5, "Possible Light Rain", "(0.5mm/h)", IconCloud},
		{"first band boundary", "Light Rain", 2.25, "Light Rain", "(0.8mm/h)💧", IconRain},
		{"one drop", "Light Rain", 6, "Light Rain", "(2.0mm/h)💧", IconRain},
		{"two drops boundary", "Moderate Rain", 9, "Moderate Rain", "(3.0mm/h)💧💧", IconRain},
		{"three drops boundary", "Heavy Rain", 36, "Heavy Rain", "(12.0mm/h)💧💧💧", IconRain},
		{"storm boundary", "Heavy Rain", 144, "Heavy Rain", "(48.0mm/h)💦💦☔💦💦", IconRain},
		{"storm", "Heavy Rain", 300, "Heavy Rain", "(100.0mm/h)💦💦☔💦💦", IconRain},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			desc, text, icon := RainLabel(English, tc.desc, tc.volume)
			if desc != tc.wantDesc || text != tc.wantText || icon != tc.wantIcon {
				t.Errorf("RainLabel(%q, %v) = (%q, %q, %q); want (%q, %q, %q)",
					tc.desc, tc.volume, desc, text, icon, tc.wantDesc, tc.wantText, tc.wantIcon)
			}
		})
	}
}

func TestRainLabel_monotonicDrops(t *testing.T) {
	prev := -1
	for v := 0.0; v <= 200; v += 0.25 {
		_, text, _ := RainLabel(English, "Rain", v)
		drops := strings.Count(text, "💧") + strings.Count(text, "💦")
		if drops < prev {
			t.Fatalf("volume %v: %d drops after %d; want non-decreasing", v, drops, prev)
		}
		prev = drops
	}
}

func TestHPaToMmHg(t *testing.T) {
	got := HPaToMmHg(1013.25)
	if got < 759.99 || got > 760.01 {
		t.Errorf("HPaToMmHg(1013.25) = %v; want ~760", got)
	}
}

func TestTruncateTemp(t *testing.T) {
	tests := map[float64]int{21.7: 21, 21.2: 21, -3.9: -3, 0.99: 0}
	for in, want := range tests {
		if got := TruncateTemp(in); got != want {
			t.Errorf("TruncateTemp(%v) = %d; want %d", in, got, want)
		}
	}
}

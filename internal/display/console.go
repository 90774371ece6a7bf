package display

import (
	"fmt"
	"io"
	"sync"

	"npk-weather/internal/render"
)

const (
	colorReset    = "\033[0m"
	colorBold     = "\033[1m"
	colorBlack    = "\033[30m"
	colorBlue     = "\033[34m"
	colorWhite    = "\033[37m"
	colorGrey     = "\033[90m"
	colorSkyBlue  = "\033[96m"
	colorBoldBlue = colorBold + colorBlue
	colorBoldSky  = colorBold + colorSkyBlue
)

// Palette maps a line style to an ANSI prefix.
type Palette map[render.Style]string

var (
	DarkPalette = Palette{
		render.StyleHeader:      colorBoldSky,
		render.StyleTitle:       colorBoldSky,
		render.StyleToday:       colorBold + colorWhite,
		render.StyleTodayDetail: colorWhite,
		render.StyleTable:       colorWhite,
		render.StyleSmall:       colorGrey,
	}
	LightPalette = Palette{
		render.StyleHeader:      colorBoldBlue,
		render.StyleTitle:       colorBoldBlue,
		render.StyleToday:       colorBold + colorBlack,
		render.StyleTodayDetail: colorBlack,
		render.StyleTable:       colorBlack,
		render.StyleSmall:       colorGrey,
	}
)

// Console writes lines to a terminal. With colours off it prints plain text.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	palette Palette
}

func NewConsole(w io.Writer, colors, dark bool) *Console {
	c := &Console{w: w}
	if colors {
		c.palette = LightPalette
		if dark {
			c.palette = DarkPalette
		}
	}
	return c
}

func (c *Console) Emit(line render.Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := c.palette[line.Style]
	if prefix == "" || line.Text == "" {
		fmt.Fprintln(c.w, line.Text)
		return
	}
	fmt.Fprintln(c.w, prefix+line.Text+colorReset)
}

package render

import (
	"image/color"
	"strconv"
	"strings"

	"carouselcraft.io/carousel-studio/internal/store"
)

var (
	white   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	gray900 = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	gray700 = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff}
	gray600 = color.RGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff}
	gray400 = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	gray100 = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}
)

// ParseHex accepts "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func ValidHex(s string) bool {
	_, ok := ParseHex(s)
	return ok && strings.HasPrefix(strings.TrimSpace(s), "#")
}

func primaryColor(settings store.UserSettings) color.RGBA {
	if c, ok := ParseHex(settings.PrimaryColor); ok {
		return c
	}
	c, _ := ParseHex(store.DefaultPrimaryColor)
	return c
}

func shift(c color.RGBA, delta int) color.RGBA {
	clamp := func(v int) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return color.RGBA{
		R: clamp(int(c.R) + delta),
		G: clamp(int(c.G) + delta),
		B: clamp(int(c.B) + delta),
		A: 0xff,
	}
}

// Gradient returns the diagonal full-bleed background derived from primary:
// 40 units lighter at the top-left corner, 40 darker at the bottom-right.
func Gradient(primary color.RGBA) Background {
	return Background{From: shift(primary, 40), To: shift(primary, -40)}
}

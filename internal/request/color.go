package request

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an 8-bit RGB color parsed from a hex triplet.
type Color struct {
	R, G, B uint8
}

// ParseColor parses a 3- or 6-digit hex triplet, with or without a
// leading '#'. Short form digits are doubled ("fa0" => "ffaa00").
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		var b strings.Builder
		for _, c := range hex {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		hex = b.String()
	case 6:
	default:
		return Color{}, invalidf("color %q: only hex triplets of length 3 or 6 are supported", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, invalidf("color %q: %v", s, err)
	}

	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// MustColor is ParseColor for compile-time constants; it panics on error.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the canonical lowercase 6-digit form without '#'.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// RGB returns the channels as a float slice, the form libvips ink and
// background parameters take.
func (c Color) RGB() []float64 {
	return []float64{float64(c.R), float64(c.G), float64(c.B)}
}

// IsLight reports whether the color is perceived as light, using relative
// luminance mapped to CIE L*. Backgrounds at or above L* 80 get dark text.
func (c Color) IsLight() bool {
	r := srgbToLinear(float64(c.R) / 255.0)
	g := srgbToLinear(float64(c.G) / 255.0)
	b := srgbToLinear(float64(c.B) / 255.0)
	luminance := 0.2126*r + 0.7152*g + 0.0722*b

	var lstar float64
	if luminance <= 216.0/24389.0 {
		lstar = luminance * (24389.0 / 27.0)
	} else {
		lstar = math.Pow(luminance, 1.0/3.0)*116.0 - 16.0
	}
	return lstar >= 80.0
}

func srgbToLinear(channel float64) float64 {
	if channel <= 0.04045 {
		return channel / 12.92
	}
	return math.Pow((channel+0.055)/1.055, 2.4)
}

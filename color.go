package canopy

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorWhite is opaque white.
	ColorWhite = Color{1, 1, 1, 1}
	// ColorBlack is opaque black.
	ColorBlack = Color{0, 0, 0, 1}
	// ColorTransparent is fully transparent black, the default of every
	// color channel.
	ColorTransparent = Color{}
)

// RGBA8 builds a Color from 8-bit components.
func RGBA8(r, g, b, a uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, float64(a) / 255}
}

// Interpolate blends each component linearly.
func (c Color) Interpolate(end Color, t float64) Color {
	return Color{
		R: lerp(c.R, end.R, t),
		G: lerp(c.G, end.G, t),
		B: lerp(c.B, end.B, t),
		A: lerp(c.A, end.A, t),
	}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)",
		int(clamp01(c.R)*255+0.5), int(clamp01(c.G)*255+0.5), int(clamp01(c.B)*255+0.5), clamp01(c.A))
}

// toRGBA converts a Color to a premultiplied color.Color for image.Fill.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ParseColor parses a CSS color: hex notation (#rgb, #rgba, #rrggbb,
// #rrggbbaa), rgb() and rgba() functions, "transparent", and the SVG named
// colors.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return Color{}, fmt.Errorf("empty color")
	case s[0] == '#':
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		open := strings.IndexByte(s, '(')
		if !strings.HasSuffix(s, ")") {
			return Color{}, fmt.Errorf("unterminated color function %q", s)
		}
		return parseRGBArgs(s[open+1 : len(s)-1])
	case s == "transparent":
		return ColorTransparent, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return RGBA8(c.R, c.G, c.B, c.A), nil
	}
	return Color{}, fmt.Errorf("unknown color %q", s)
}

func parseHexColor(hex string) (Color, error) {
	var digits [8]uint8
	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("bad hex color #%s", hex)
			}
			digits[i] = uint8(v * 17)
		}
		if len(hex) == 3 {
			digits[3] = 255
		}
	case 6, 8:
		for i := 0; i < len(hex)/2; i++ {
			v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("bad hex color #%s", hex)
			}
			digits[i] = uint8(v)
		}
		if len(hex) == 6 {
			digits[3] = 255
		}
	default:
		return Color{}, fmt.Errorf("bad hex color #%s", hex)
	}
	return RGBA8(digits[0], digits[1], digits[2], digits[3]), nil
}

func parseRGBArgs(args string) (Color, error) {
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(fields) != 3 && len(fields) != 4 {
		return Color{}, fmt.Errorf("rgb() takes 3 or 4 arguments, got %d", len(fields))
	}
	var comp [4]float64
	comp[3] = 1
	for i, f := range fields {
		pct := strings.HasSuffix(f, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return Color{}, fmt.Errorf("bad color component %q", f)
		}
		switch {
		case pct:
			v /= 100
		case i < 3:
			v /= 255
		}
		comp[i] = clamp01(v)
	}
	return Color{comp[0], comp[1], comp[2], comp[3]}, nil
}

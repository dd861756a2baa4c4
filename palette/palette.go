// Package palette derives display colors for tasks from a base hex color
// and a priority level.
package palette

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultColor is used whenever the input cannot be read as a hex color.
	DefaultColor = "#9e9e9e"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	minLightness = 0.20
	maxLightness = 0.90
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// lightnessOffsets maps a priority to an absolute change on the 0-1 scale.
var lightnessOffsets = map[string]float64{
	PriorityHigh:   -0.10,
	PriorityMedium: 0,
	PriorityLow:    0.15,
}

// HSL is a color with hue in degrees and saturation/lightness in [0, 1].
type HSL struct {
	H float64
	S float64
	L float64
}

// String renders the color as a CSS hsl() value.
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)",
		int(math.Round(c.H)), int(math.Round(c.S*100)), int(math.Round(c.L*100)))
}

// Hex converts the color back to #rrggbb.
func (c HSL) Hex() string {
	r, g, b := hslToRGB(c.H, c.S, c.L)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// DeriveDisplayColor returns the CSS color for a task with the given base
// color and priority. An empty or malformed color falls back to DefaultColor.
func DeriveDisplayColor(color, priority string) string {
	return Derive(color, priority).String()
}

// Derive is DeriveDisplayColor without the final string formatting.
func Derive(color, priority string) HSL {
	hex := Normalize(color)
	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)

	c := rgbToHSL(uint8(r), uint8(g), uint8(b))
	c.L = clamp(c.L+lightnessOffsets[priority], minLightness, maxLightness)
	return c
}

// Normalize returns the six lowercase hex digits (no '#') for color, or
// those of DefaultColor when color is not a valid 3 or 6 digit hex value.
func Normalize(color string) string {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		var sb strings.Builder
		for _, ch := range hex {
			sb.WriteRune(ch)
			sb.WriteRune(ch)
		}
		hex = sb.String()
	}
	if !hexPattern.MatchString(hex) {
		return DefaultColor[1:]
	}
	return strings.ToLower(hex)
}

func rgbToHSL(r8, g8, b8 uint8) HSL {
	r := float64(r8) / 255
	g := float64(g8) / 255
	b := float64(b8) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	if maxC == minC {
		return HSL{H: 0, S: 0, L: l}
	}

	d := maxC - minC
	var s float64
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return HSL{H: h * 60, S: s, L: l}
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	if s == 0 {
		v := to8(l)
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	return to8(hueToChannel(p, q, hk+1.0/3)), to8(hueToChannel(p, q, hk)), to8(hueToChannel(p, q, hk-1.0/3))
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

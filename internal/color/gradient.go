// Package color generates the cell fill colors used in spreadsheet exports.
package color

import (
	"fmt"
	"math"
	"slices"
)

// Hues of the gradient stops, in degrees.
const (
	hueRed    = 0.0
	hueYellow = 60.0
	hueGreen  = 120.0
)

// Gradient assigns each distinct key a hex color on a red → yellow → green
// scale, in ascending key order. The lower half of the keys runs from red to
// yellow and the rest from yellow to green, with both ends of each half
// included. Duplicate keys share a color.
func Gradient(keys []int) map[int]string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	n := len(sorted)
	mid := n / 2
	out := make(map[int]string, n)
	for i, k := range sorted {
		var hue float64
		if i < mid {
			hue = lerp(hueRed, hueYellow, i, mid)
		} else {
			hue = lerp(hueYellow, hueGreen, i-mid, n-mid)
		}
		out[k] = Hex(hue)
	}
	return out
}

// lerp returns the i-th of n evenly spaced values from a to b inclusive.
func lerp(a, b float64, i, n int) float64 {
	if n <= 1 {
		return a
	}
	return a + (b-a)*float64(i)/float64(n-1)
}

// Hex renders a fully saturated hue (0-360) as "#RRGGBB".
func Hex(hue float64) string {
	r, g, b := hslToRGB(hue, 1, 0.5)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts HSL color space to RGB.
// h: hue (0-360), s: saturation (0-1), l: lightness (0-1)
// Returns RGB values (0-255).
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64

	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return channel(r1), channel(g1), channel(b1)
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

package util

import (
	"math"
	"strconv"

	"github.com/fogleman/ease"
)

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// FormatNumber renders a value the way the numeric displays show it:
// integers without decimals, tiny values as 0, one decimal when that is
// within 0.01 of the value, otherwise two decimals.
func FormatNumber(v float64) string {
	switch {
	case v == math.Trunc(v) && !math.IsInf(v, 0):
		return strconv.FormatFloat(v, 'f', 0, 64)
	case math.Abs(v) < 0.01:
		return "0"
	case math.Abs(v-math.Round(v*10)/10) < 0.01:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// GenerateLut builds a rise-and-fall gain table of the given length using
// an in-out quad curve. Index 0 and the last index are 0, the middle is
// close to 1.
func GenerateLut(length int) []float64 {
	if length < 2 {
		return make([]float64, length)
	}
	increment := 1.0 / float64(length/2)
	lut := make([]float64, length)
	for i, j := 0, length-1; i < j; i, j = i+1, j-1 {
		value := ease.InOutQuad(float64(i) * increment)
		lut[i] = value
		lut[j] = value
	}
	return lut
}

// ArrowHead returns the two barb points of an arrow drawn from (x1, y1)
// to (x2, y2). The barbs are 0.4 rad either side of the shaft and their
// length is 15% of the shaft, capped at maxLen. ok is false for shafts
// too short to carry a head.
func ArrowHead(x1, y1, x2, y2, maxLen float64) (lx, ly, rx, ry float64, ok bool) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < 1e-3 {
		return 0, 0, 0, 0, false
	}
	head := math.Min(0.15*length, maxLen)
	angle := math.Atan2(dy, dx)
	lx = x2 + head*math.Cos(angle+math.Pi-0.4)
	ly = y2 + head*math.Sin(angle+math.Pi-0.4)
	rx = x2 + head*math.Cos(angle+math.Pi+0.4)
	ry = y2 + head*math.Sin(angle+math.Pi+0.4)
	return lx, ly, rx, ry, true
}

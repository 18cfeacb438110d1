// Package easing maps normalized animation time onto normalized progress.
package easing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// A Func shapes linear progress t in [0,1]. Overshooting curves may leave
// [0,1] between the endpoints but always return exactly 0 at 0 and 1 at 1.
type Func func(t float64) float64

// anchored pins the endpoints of f so that float error in the underlying
// curve never leaks into the first or last frame of an animation.
func anchored(f func(float64) float64) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return f(t)
	}
}

var (
	Linear       = anchored(ease.Linear)
	InQuad       = anchored(ease.InQuad)
	OutQuad      = anchored(ease.OutQuad)
	InOutQuad    = anchored(ease.InOutQuad)
	InCubic      = anchored(ease.InCubic)
	OutCubic     = anchored(ease.OutCubic)
	InOutCubic   = anchored(ease.InOutCubic)
	InSine       = anchored(ease.InSine)
	OutSine      = anchored(ease.OutSine)
	InOutSine    = anchored(ease.InOutSine)
	OutBounce    = anchored(ease.OutBounce)
	OutElastic   = anchored(outElastic)
	InOutElastic = anchored(ease.InOutElastic)
)

// Default is used by animations that are not given a curve.
var Default = InOutCubic

// outElastic is the easings.net variant: a damped sine with period 1/3
// that overshoots past 1 before settling.
func outElastic(t float64) float64 {
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*(2*math.Pi)/3) + 1
}

var byName = map[string]Func{
	"linear":         Linear,
	"in_quad":        InQuad,
	"out_quad":       OutQuad,
	"in_out_quad":    InOutQuad,
	"in_cubic":       InCubic,
	"out_cubic":      OutCubic,
	"in_out_cubic":   InOutCubic,
	"in_sine":        InSine,
	"out_sine":       OutSine,
	"in_out_sine":    InOutSine,
	"out_bounce":     OutBounce,
	"out_elastic":    OutElastic,
	"in_out_elastic": InOutElastic,
}

// Lookup resolves a curve by name. Names are case-insensitive and accept
// '-', ' ' or '_' as separators, plus an optional "ease_" prefix, so
// "ease-in-out-cubic" and "in_out_cubic" are the same curve.
func Lookup(name string) (Func, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	key = strings.TrimPrefix(key, "ease_")
	if key == "" {
		return Default, nil
	}
	if f, ok := byName[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("easing: unknown curve %q", name)
}

// Names lists the registered curve names in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

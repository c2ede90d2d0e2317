package dispatch

import (
	"strconv"
	"strings"

	"github.com/dekarrin/scadkernel/internal/kernel"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// ParseColor resolves a color() call's arguments into a kernel.Color,
// accepting every form the language allows: a `[r,g,b]`/`[r,g,b,a]` vector,
// a CSS color-keyword string, a `#RGB`/`#RGBA`/`#RRGGBB`/`#RRGGBBAA` hex
// string, or named r/g/b/a arguments layered on top of either. Alpha
// defaults to 1 (opaque) when absent; r/g/b channels missing from a short
// vector are 0.
func ParseColor(a Args) (kernel.Color, bool) {
	v, ok := a.Resolve(0, "c")
	if !ok {
		return kernel.Color{}, false
	}

	var c kernel.Color
	switch v.Kind() {
	case syntax.KindVector:
		el := v.Elements()
		c = kernel.ColorOf(channelAt(el, 0), channelAt(el, 1), channelAt(el, 2), channelOr(el, 3, 1))
	case syntax.KindString:
		parsed, ok := parseColorString(v.String())
		if !ok {
			return kernel.Color{}, false
		}
		c = parsed
	default:
		return kernel.Color{}, false
	}

	if rv, ok := a.Resolve(-1, "r"); ok {
		c.R = clamp01(rv.Number())
	}
	if gv, ok := a.Resolve(-1, "g"); ok {
		c.G = clamp01(gv.Number())
	}
	if bv, ok := a.Resolve(-1, "b"); ok {
		c.B = clamp01(bv.Number())
	}
	if av, ok := a.Resolve(1, "a", "alpha"); ok {
		c.A = clamp01(av.Number())
	}
	return c, true
}

func channelAt(el []syntax.Value, i int) float64 {
	if i < len(el) {
		return el[i].Number()
	}
	return 0
}

func channelOr(el []syntax.Value, i int, def float64) float64 {
	if i < len(el) {
		return el[i].Number()
	}
	return def
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// parseColorString handles hex literals and the CSS extended color keyword
// set (case-insensitive).
func parseColorString(s string) (kernel.Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if c, ok := cssColorNames[strings.ToLower(s)]; ok {
		return c, true
	}
	return kernel.Color{}, false
}

func parseHexColor(hex string) (kernel.Color, bool) {
	expand := func(c byte) string { return string([]byte{c, c}) }
	var rs, gs, bs, as string
	switch len(hex) {
	case 3:
		rs, gs, bs, as = expand(hex[0]), expand(hex[1]), expand(hex[2]), "ff"
	case 4:
		rs, gs, bs, as = expand(hex[0]), expand(hex[1]), expand(hex[2]), expand(hex[3])
	case 6:
		rs, gs, bs, as = hex[0:2], hex[2:4], hex[4:6], "ff"
	case 8:
		rs, gs, bs, as = hex[0:2], hex[2:4], hex[4:6], hex[6:8]
	default:
		return kernel.Color{}, false
	}
	r, err1 := strconv.ParseUint(rs, 16, 8)
	g, err2 := strconv.ParseUint(gs, 16, 8)
	b, err3 := strconv.ParseUint(bs, 16, 8)
	al, err4 := strconv.ParseUint(as, 16, 8)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return kernel.Color{}, false
	}
	return kernel.ColorOf(float64(r)/255, float64(g)/255, float64(b)/255, float64(al)/255), true
}

// cssColorNames is the subset of the CSS extended color keyword table the
// language recognizes for color("name"); it covers the commonly used
// names rather than the full 140+ entry list.
var cssColorNames = map[string]kernel.Color{
	"black":    kernel.ColorOf(0, 0, 0, 1),
	"white":    kernel.ColorOf(1, 1, 1, 1),
	"red":      kernel.ColorOf(1, 0, 0, 1),
	"lime":     kernel.ColorOf(0, 1, 0, 1),
	"green":    kernel.ColorOf(0, 0.5019, 0, 1),
	"blue":     kernel.ColorOf(0, 0, 1, 1),
	"yellow":   kernel.ColorOf(1, 1, 0, 1),
	"cyan":     kernel.ColorOf(0, 1, 1, 1),
	"aqua":     kernel.ColorOf(0, 1, 1, 1),
	"magenta":  kernel.ColorOf(1, 0, 1, 1),
	"fuchsia":  kernel.ColorOf(1, 0, 1, 1),
	"silver":   kernel.ColorOf(0.7529, 0.7529, 0.7529, 1),
	"gray":     kernel.ColorOf(0.5019, 0.5019, 0.5019, 1),
	"grey":     kernel.ColorOf(0.5019, 0.5019, 0.5019, 1),
	"maroon":   kernel.ColorOf(0.5019, 0, 0, 1),
	"olive":    kernel.ColorOf(0.5019, 0.5019, 0, 1),
	"navy":     kernel.ColorOf(0, 0, 0.5019, 1),
	"purple":   kernel.ColorOf(0.5019, 0, 0.5019, 1),
	"teal":     kernel.ColorOf(0, 0.5019, 0.5019, 1),
	"orange":   kernel.ColorOf(1, 0.6470, 0, 1),
	"pink":     kernel.ColorOf(1, 0.7529, 0.7960, 1),
	"gold":     kernel.ColorOf(1, 0.8431, 0, 1),
	"brown":    kernel.ColorOf(0.6470, 0.1647, 0.1647, 1),
	"indigo":   kernel.ColorOf(0.2941, 0, 0.5098, 1),
	"violet":   kernel.ColorOf(0.9333, 0.5098, 0.9333, 1),
	"skyblue":  kernel.ColorOf(0.5294, 0.8078, 0.9215, 1),
	"coral":    kernel.ColorOf(1, 0.4980, 0.3137, 1),
	"salmon":   kernel.ColorOf(0.9803, 0.5019, 0.4470, 1),
	"khaki":    kernel.ColorOf(0.9411, 0.9019, 0.5490, 1),
	"orchid":   kernel.ColorOf(0.8549, 0.4392, 0.8392, 1),
	"tan":      kernel.ColorOf(0.8235, 0.7058, 0.5490, 1),
	"beige":    kernel.ColorOf(0.9607, 0.9607, 0.8627, 1),
	"ivory":    kernel.ColorOf(1, 1, 0.9411, 1),
	"lavender": kernel.ColorOf(0.9019, 0.9019, 0.9803, 1),
	"plum":     kernel.ColorOf(0.8666, 0.6274, 0.8666, 1),
	"chocolate": kernel.ColorOf(0.8235, 0.4117, 0.1176, 1),
	"crimson":  kernel.ColorOf(0.8627, 0.0784, 0.2352, 1),
	"darkgray": kernel.ColorOf(0.6627, 0.6627, 0.6627, 1),
	"darkgrey": kernel.ColorOf(0.6627, 0.6627, 0.6627, 1),
	"lightgray": kernel.ColorOf(0.8274, 0.8274, 0.8274, 1),
	"lightgrey": kernel.ColorOf(0.8274, 0.8274, 0.8274, 1),
	"transparent": kernel.ColorOf(0, 0, 0, 0),
}

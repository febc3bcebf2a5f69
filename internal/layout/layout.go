package layout

import (
	"fmt"
	"math"
	"strconv"
)

// Variant names the arrangement a renderer uses for a given screen shape.
type Variant string

const (
	ExtremeRibbon Variant = "extreme-ribbon"
	Ribbon        Variant = "ribbon"
	WideCompact   Variant = "wide-compact"
	VerticalStrip Variant = "vertical-strip"
	Standard      Variant = "standard"
)

// Select picks the variant for a width/height aspect ratio.
func Select(aspect float64) Variant {
	switch {
	case aspect > 3.5:
		return ExtremeRibbon
	case aspect > 2.6:
		return Ribbon
	case aspect > 1.8:
		return WideCompact
	case aspect < 0.6:
		return VerticalStrip
	default:
		return Standard
	}
}

// ParseAspect accepts either a ratio ("1.77") or a size ("1920x1080").
func ParseAspect(s string) (float64, error) {
	var w, h float64
	if n, err := fmt.Sscanf(s, "%gx%g", &w, &h); err == nil && n == 2 {
		if !usable(w) || !usable(h) {
			return 0, fmt.Errorf("invalid size %q", s)
		}
		return w / h, nil
	}

	aspect, err := strconv.ParseFloat(s, 64)
	if err != nil || !usable(aspect) {
		return 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return aspect, nil
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

package tex

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBadPercent  = regexp.MustCompile(`[^+\-.\d]`)
	reLeadingReal = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)`)
)

// parsePercent reads an explicit percentage. Like a lenient float parse it
// uses the longest numeric prefix and yields 0 when there is none. ok is
// false when the value is malformed or outside [-100, 100].
func parsePercent(raw string) (fraction float64, ok bool) {
	raw = strings.TrimSpace(raw)
	ok = !reBadPercent.MatchString(raw)
	v := 0.0
	if num := reLeadingReal.FindString(raw); num != "" {
		v, _ = strconv.ParseFloat(num, 64)
	}
	fraction = v / 100
	if fraction < -1 || fraction > 1 {
		ok = false
	}
	return fraction, ok
}

// formatPercent renders a fraction as a percentage without float noise.
func formatPercent(fraction float64) string {
	pct := math.Round(fraction*100*1e5) / 1e5
	if pct == 0 {
		pct = 0 // drops negative zero
	}
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

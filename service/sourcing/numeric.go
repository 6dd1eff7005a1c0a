package sourcing

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount coalesces a raw money/quantity input to a number. Blank or
// non-numeric values count as zero for computation; the raw field value
// itself is never rewritten.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders a total with two decimals for display. Stored
// totals stay exact; rounding is presentation-only.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

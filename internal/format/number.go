// Package format renders figures for the text report.
package format

import (
	"fmt"
	"math"
	"strings"
)

const (
	trillion = 1e12
	billion  = 1e9
	million  = 1e6
)

// Number scales n to the largest of TRIL, BIL or MIL its magnitude reaches
// and formats it with two decimals. The sign is kept.
func Number(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= trillion:
		return fmt.Sprintf("%.2f TRIL", n/trillion)
	case abs >= billion:
		return fmt.Sprintf("%.2f BIL", n/billion)
	case abs >= million:
		return fmt.Sprintf("%.2f MIL", n/million)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

// Fixed formats n with two decimals.
func Fixed(n float64) string {
	return fmt.Sprintf("%.2f", n)
}

// List renders a series as [a, b, c] using f for each element.
func List(values []float64, f func(float64) string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = f(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Plain formats a float with the shortest representation that round-trips.
func Plain(n float64) string {
	return fmt.Sprintf("%g", n)
}

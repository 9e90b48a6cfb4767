package analysis

import (
	"fmt"

	"github.com/newthinker/deepvalue/internal/core"
)

const (
	// FullEPSYears is the window of annual EPS figures the screen looks at.
	FullEPSYears = 10
	// MinEPSYears is the least history the averaged EPS can be built from.
	MinEPSYears = 3
)

// EPSKind tells how much annual EPS history is available.
type EPSKind int

const (
	EPSInsufficient EPSKind = iota
	EPSPartial
	EPSFull
)

func (k EPSKind) String() string {
	switch k {
	case EPSFull:
		return "full"
	case EPSPartial:
		return "partial"
	default:
		return "insufficient"
	}
}

// EPSHistory is the annual EPS window, most recent first, tagged by size.
type EPSHistory struct {
	Kind   EPSKind
	Values []float64
}

// ClassifyEPS keeps at most FullEPSYears entries and tags the result.
func ClassifyEPS(eps []float64) EPSHistory {
	window := eps
	if len(window) > FullEPSYears {
		window = window[:FullEPSYears]
	}
	values := append([]float64(nil), window...)

	switch {
	case len(values) == FullEPSYears:
		return EPSHistory{Kind: EPSFull, Values: values}
	case len(values) >= MinEPSYears:
		return EPSHistory{Kind: EPSPartial, Values: values}
	default:
		return EPSHistory{Kind: EPSInsufficient, Values: values}
	}
}

// HasNegative reports whether any year in the window was a loss.
func (h EPSHistory) HasNegative() bool {
	for _, v := range h.Values {
		if v < 0 {
			return true
		}
	}
	return false
}

// RecentAverage averages the three most recent years.
func (h EPSHistory) RecentAverage() (float64, error) {
	if h.Kind == EPSInsufficient {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("EPS average: need at least %d annual EPS values, have %d", MinEPSYears, len(h.Values)))
	}
	return mean(h.Values[:3]), nil
}

// OldAverage averages years 7 to 10. Only a full history has them.
func (h EPSHistory) OldAverage() (float64, bool) {
	if h.Kind != EPSFull {
		return 0, false
	}
	return mean(h.Values[7:10]), true
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

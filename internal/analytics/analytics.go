// Package analytics derives smoothed and trend-annotated series from flat
// numeric sequences for chart rendering. All functions are pure and total
// over their documented domain; empty inputs yield empty outputs.
package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned for a moving-average window below 1.
var ErrInvalidWindow = errors.New("window size must be at least 1")

// DefaultSlopeThreshold is the absolute slope cutoff separating stable
// from rising/falling. It is applied in the metric's own units, so the
// same numeric cutoff means different things for temperature, humidity
// and particulate counts. Callers needing per-metric sensitivity should
// use ClassifyTrendWithThreshold.
const DefaultSlopeThreshold = 0.01

// Direction labels which way a series is heading.
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

// TrendFit is a least-squares line fitted over sample index.
type TrendFit struct {
	Slope float64   `json:"slope"` // change per sample index
	Line  []float64 `json:"line"`  // fitted value per index
}

// Trend is a classified slope with its display attributes.
type Trend struct {
	Direction Direction `json:"direction"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Text      string    `json:"text"`
}

// MovingAverage returns the trailing-window mean series over data, same
// length as data. For the first windowSize-1 positions the window shrinks
// to the available prefix rather than padding with zeros.
func MovingAverage(data []float64, windowSize int) ([]float64, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWindow, windowSize)
	}

	out := make([]float64, len(data))
	var sum float64
	for i, v := range data {
		sum += v
		if i >= windowSize {
			sum -= data[i-windowSize]
		}
		n := windowSize
		if i+1 < windowSize {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out, nil
}

// LinearTrend fits value against sample index 0..n-1 by ordinary least
// squares. When the denominator degenerates (n <= 1) the slope is 0 and
// the line is flat at the mean.
func LinearTrend(data []float64) TrendFit {
	n := len(data)
	if n == 0 {
		return TrendFit{Line: []float64{}}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range data {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX

	var slope, intercept float64
	if denom != 0 {
		slope = (fn*sumXY - sumX*sumY) / denom
		intercept = (sumY - slope*sumX) / fn
	} else {
		intercept = sumY / fn
	}

	line := make([]float64, n)
	for i := range line {
		line[i] = slope*float64(i) + intercept
	}
	return TrendFit{Slope: slope, Line: line}
}

// ClassifyTrend classifies slope with DefaultSlopeThreshold. The unit is
// interpolated into the display text only and never affects the label.
func ClassifyTrend(slope float64, unit string) Trend {
	return ClassifyTrendWithThreshold(slope, unit, DefaultSlopeThreshold)
}

// ClassifyTrendWithThreshold classifies slope against a caller-supplied
// absolute cutoff. Comparison is strict: a slope exactly at the threshold
// counts as stable.
func ClassifyTrendWithThreshold(slope float64, unit string, threshold float64) Trend {
	text := fmt.Sprintf("%+.3f%s/reading", slope, unit)
	switch {
	case slope > threshold:
		return Trend{Direction: DirectionRising, Icon: "arrow_upward", Color: "#e53935", Text: text}
	case slope < -threshold:
		return Trend{Direction: DirectionFalling, Icon: "arrow_downward", Color: "#1e88e5", Text: text}
	default:
		return Trend{Direction: DirectionStable, Icon: "trending_flat", Color: "#757575", Text: text}
	}
}

package analytics

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

func TestMovingAverageEmpty(t *testing.T) {
	for _, w := range []int{1, 3, 10} {
		got, err := MovingAverage(nil, w)
		if err != nil {
			t.Fatalf("window %d: unexpected error: %v", w, err)
		}
		if len(got) != 0 {
			t.Fatalf("window %d: expected empty result, got %v", w, got)
		}
	}
}

func TestMovingAverageWindowOneIsIdentity(t *testing.T) {
	data := []float64{3.5, -1, 0, 42, 7}
	got, err := MovingAverage(data, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatsEqual(got, data) {
		t.Fatalf("expected %v, got %v", data, got)
	}
}

func TestMovingAveragePartialWindows(t *testing.T) {
	got, err := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 1.5, 2, 3, 4}
	if !floatsEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMovingAverageInvalidWindow(t *testing.T) {
	for _, w := range []int{0, -1} {
		if _, err := MovingAverage([]float64{1, 2}, w); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %d: expected ErrInvalidWindow, got %v", w, err)
		}
	}
}

func TestLinearTrendDegenerate(t *testing.T) {
	fit := LinearTrend(nil)
	if fit.Slope != 0 || len(fit.Line) != 0 {
		t.Fatalf("empty input: expected zero slope and empty line, got %+v", fit)
	}

	fit = LinearTrend([]float64{5})
	if fit.Slope != 0 {
		t.Fatalf("single sample: expected zero slope, got %v", fit.Slope)
	}
	if !floatsEqual(fit.Line, []float64{5}) {
		t.Fatalf("single sample: expected line [5], got %v", fit.Line)
	}
}

func TestLinearTrendPerfectLine(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	fit := LinearTrend(data)
	if math.Abs(fit.Slope-1) > epsilon {
		t.Fatalf("expected slope 1, got %v", fit.Slope)
	}
	if !floatsEqual(fit.Line, data) {
		t.Fatalf("expected line %v, got %v", data, fit.Line)
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		slope float64
		unit  string
		want  Direction
	}{
		{0.02, "°C", DirectionRising},
		{-0.02, "%", DirectionFalling},
		{0.0, "", DirectionStable},
		{0.01, "°C", DirectionStable},  // boundary is strict
		{-0.01, "°C", DirectionStable}, // boundary is strict
	}

	for _, tc := range cases {
		got := ClassifyTrend(tc.slope, tc.unit)
		if got.Direction != tc.want {
			t.Fatalf("slope %v: expected %s, got %s", tc.slope, tc.want, got.Direction)
		}
	}
}

func TestClassifyTrendText(t *testing.T) {
	got := ClassifyTrend(0.123, "°C")
	if got.Text != "+0.123°C/reading" {
		t.Fatalf("unexpected display text %q", got.Text)
	}
}

func TestClassifyTrendWithThreshold(t *testing.T) {
	// A slope that is rising under the default cutoff is stable under a
	// wider per-metric one.
	if got := ClassifyTrend(0.5, "%"); got.Direction != DirectionRising {
		t.Fatalf("expected rising under default threshold, got %s", got.Direction)
	}
	if got := ClassifyTrendWithThreshold(0.5, "%", 1.0); got.Direction != DirectionStable {
		t.Fatalf("expected stable under threshold 1.0, got %s", got.Direction)
	}
}

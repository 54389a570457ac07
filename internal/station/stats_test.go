package station

import (
	"math"
	"testing"
)

func TestComputeStatsEmpty(t *testing.T) {
	got := ComputeStats(nil)
	if got != (StatSummary{}) {
		t.Fatalf("expected zero summary for empty input, got %+v", got)
	}
}

func TestComputeStatsSingleReading(t *testing.T) {
	r := Reading{Temperature: 21.5, Humidity: 55, ParticulateCount: 12, Timestamp: 1700000000}
	got := ComputeStats([]Reading{r})

	for name, m := range map[string]struct {
		stats MetricStats
		value float64
	}{
		"temperature":  {got.Temperature, r.Temperature},
		"humidity":     {got.Humidity, r.Humidity},
		"particulates": {got.Particulates, r.ParticulateCount},
	} {
		if m.stats.Average != m.value || m.stats.Min != m.value || m.stats.Max != m.value {
			t.Fatalf("%s: expected all fields %v, got %+v", name, m.value, m.stats)
		}
	}
}

func TestComputeStatsMultipleReadings(t *testing.T) {
	readings := []Reading{
		{Temperature: 10, Humidity: 40, ParticulateCount: 5},
		{Temperature: 20, Humidity: 60, ParticulateCount: 15},
		{Temperature: 30, Humidity: 50, ParticulateCount: 10},
	}
	got := ComputeStats(readings)

	if math.Abs(got.Temperature.Average-20) > 1e-9 || got.Temperature.Min != 10 || got.Temperature.Max != 30 {
		t.Fatalf("temperature stats wrong: %+v", got.Temperature)
	}
	if math.Abs(got.Humidity.Average-50) > 1e-9 || got.Humidity.Min != 40 || got.Humidity.Max != 60 {
		t.Fatalf("humidity stats wrong: %+v", got.Humidity)
	}
	if math.Abs(got.Particulates.Average-10) > 1e-9 || got.Particulates.Min != 5 || got.Particulates.Max != 15 {
		t.Fatalf("particulate stats wrong: %+v", got.Particulates)
	}
}

package station

// ComputeStats derives average, min and max for each metric over readings.
// An empty input yields the zero summary; callers treat that as "no data",
// not as a failure.
func ComputeStats(readings []Reading) StatSummary {
	if len(readings) == 0 {
		return StatSummary{}
	}

	temp := newAccumulator(readings[0].Temperature)
	hum := newAccumulator(readings[0].Humidity)
	part := newAccumulator(readings[0].ParticulateCount)

	for _, r := range readings[1:] {
		temp.add(r.Temperature)
		hum.add(r.Humidity)
		part.add(r.ParticulateCount)
	}

	n := float64(len(readings))
	return StatSummary{
		Temperature:  temp.stats(n),
		Humidity:     hum.stats(n),
		Particulates: part.stats(n),
	}
}

type accumulator struct {
	sum, min, max float64
}

func newAccumulator(v float64) accumulator {
	return accumulator{sum: v, min: v, max: v}
}

func (a *accumulator) add(v float64) {
	a.sum += v
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
}

func (a accumulator) stats(n float64) MetricStats {
	return MetricStats{Average: a.sum / n, Min: a.min, Max: a.max}
}

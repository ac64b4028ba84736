package services

// Combiner blends a set of raw risk signals into one score. A signal at or
// above the dominance threshold overrides the blend entirely, so a single
// critical signal (sanctions match, bankruptcy, criminal record) is never
// diluted by averaging.
type Combiner struct {
	// DominanceThreshold of 0 disables the override
	DominanceThreshold float64
	MaxWeight          float64
	AvgWeight          float64
}

// Combine returns the blended score, clamped to [0,1]
func (c Combiner) Combine(signals []float64) float64 {
	if len(signals) == 0 {
		return 0
	}

	maxSignal := signals[0]
	var sum float64
	for _, s := range signals {
		if s > maxSignal {
			maxSignal = s
		}
		sum += s
	}

	if c.DominanceThreshold > 0 && maxSignal >= c.DominanceThreshold {
		return clamp(maxSignal, 0, 1)
	}

	avg := sum / float64(len(signals))
	return clamp(maxSignal*c.MaxWeight+avg*c.AvgWeight, 0, 1)
}

// clamp clamps a value between min and max
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Package scoring converts raw source metrics into weighted 0-100 component
// scores and aggregates them into a composite brand value score.
package scoring

import "math"

// Score range bounds.
const (
	minScore = 0.0
	maxScore = 100.0
)

// LogNormalize maps value onto [0,100] using a log10 curve between min and
// max. Values at or below min score 0, values at or above max score 100.
// Intended for quantities spanning several orders of magnitude (followers,
// subscribers, view counts). Callers must pass 0 < min < max.
func LogNormalize(value, min, max float64) float64 {
	if value <= min {
		return minScore
	}
	if value >= max {
		return maxScore
	}
	logValue := math.Log10(value)
	logMin := math.Log10(min)
	logMax := math.Log10(max)
	return ((logValue - logMin) / (logMax - logMin)) * maxScore
}

// LinearNormalize maps value onto [0,100] by linear interpolation between
// min and max, with the same clamping as LogNormalize. Intended for
// small-magnitude counts such as recent news articles.
func LinearNormalize(value, min, max float64) float64 {
	if value <= min {
		return minScore
	}
	if value >= max {
		return maxScore
	}
	return ((value - min) / (max - min)) * maxScore
}

// clampScore bounds a blended total to the valid component range.
func clampScore(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

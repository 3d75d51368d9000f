package audio

import "math"

// RMS returns the root-mean-square amplitude of the samples (0 for none).
// Digital silence is 0; quiet room noise is typically well under 100.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

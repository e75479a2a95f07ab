package sim

import (
	"math"
	"math/rand"
)

// MinDuration is the truncation floor for sampled durations, in minutes.
// The event clock cannot advance by a non-positive amount, so every draw is
// clamped here rather than being checked downstream.
const MinDuration = 0.1

// DurationSampler draws stage durations in simulated minutes.
type DurationSampler interface {
	// Sample returns a duration for processing qty units of work whose
	// per-batch distribution is Normal(mean*qty, std*sqrt(qty)).
	// Always returns a value >= MinDuration.
	Sample(rng *rand.Rand, mean, std float64, qty int) float64
}

// TruncatedNormalSampler draws from a normal distribution centered at
// mean*qty with spread std*sqrt(qty). The sub-linear variance growth models
// batching efficiency: picking six units is slower than picking one, but not
// six times as variable.
type TruncatedNormalSampler struct{}

func (TruncatedNormalSampler) Sample(rng *rand.Rand, mean, std float64, qty int) float64 {
	q := float64(qty)
	d := rng.NormFloat64()*(std*math.Sqrt(q)) + mean*q
	if d < MinDuration {
		return MinDuration
	}
	return d
}

// ArrivalSampler generates inter-arrival times for the order stream.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in simulated minutes.
	// Always returns a positive value.
	SampleIAT(rng *rand.Rand) float64
}

// PoissonSampler generates exponentially-distributed inter-arrival times.
type PoissonSampler struct {
	ratePerMinute float64
}

// NewPoissonSampler converts an hourly order rate to the engine's native
// per-minute rate. The conversion happens here and nowhere else.
func NewPoissonSampler(ratePerHour float64) *PoissonSampler {
	return &PoissonSampler{ratePerMinute: ratePerHour / 60.0}
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.ratePerMinute
}

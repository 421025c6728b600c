package filter

import (
	"math/rand"
)

// Sampling keeps each file independently with the configured
// percentage; the realized fraction only approximates it.
type Sampling struct {
	percentage float64
	rng        *rand.Rand

	Requested uint64
	Kept      uint64
}

func NewSampling(percentage float64) *Sampling {
	return &Sampling{
		percentage: percentage,
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
}

func (s *Sampling) Keep() bool {
	s.Requested++
	if s.percentage >= 100 {
		s.Kept++
		return true
	}
	if s.percentage <= 0 {
		return false
	}
	if s.rng.Float64()*100 < s.percentage {
		s.Kept++
		return true
	}
	return false
}

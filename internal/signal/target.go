package signal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultResolution is the number of samples in a generated target.
const DefaultResolution = 512

// Target is the sampled signal agents are scored against. Samples are taken
// at evenly spaced points from XMin to XMax, both ends included.
type Target struct {
	XMin    float64   `json:"x_min"`
	XMax    float64   `json:"x_max"`
	Samples []float64 `json:"samples"`
}

// NewTarget validates and copies the samples
func NewTarget(xMin, xMax float64, samples []float64) (Target, error) {
	if len(samples) == 0 {
		return Target{}, errors.New("target needs at least one sample")
	}
	if math.IsNaN(xMin) || math.IsNaN(xMax) || math.IsInf(xMin, 0) || math.IsInf(xMax, 0) {
		return Target{}, fmt.Errorf("target range [%v, %v] is not finite", xMin, xMax)
	}
	if xMax < xMin {
		return Target{}, fmt.Errorf("target range [%v, %v] is reversed", xMin, xMax)
	}
	for k, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Target{}, fmt.Errorf("target sample %d is not finite", k)
		}
	}

	t := Target{XMin: xMin, XMax: xMax, Samples: make([]float64, len(samples))}
	copy(t.Samples, samples)
	return t, nil
}

// Len returns the number of samples
func (t Target) Len() int {
	return len(t.Samples)
}

// Grid returns the x position of every sample
func (t Target) Grid() []float64 {
	return grid(t.XMin, t.XMax, len(t.Samples))
}

func grid(xMin, xMax float64, n int) []float64 {
	xs := make([]float64, n)
	switch n {
	case 0:
	case 1:
		xs[0] = xMin
	default:
		floats.Span(xs, xMin, xMax)
	}
	return xs
}

package fitness

import (
	"math"

	"wavefit/internal/signal"
	"wavefit/internal/wave"
)

// AnomalyFitness is assigned when an agent produces non-finite output. It is
// below every fitness a finite error can reach.
const AnomalyFitness = 0

// Score is the outcome of comparing one agent with the target
type Score struct {
	Fitness float64
	MSE     float64
	// Anomaly is set when the agent's output or error was not finite
	Anomaly bool
}

// Scorer compares agents with a fixed target. It holds no mutable state and
// is safe for concurrent use.
type Scorer struct {
	target signal.Target
	xs     []float64
}

// NewScorer precomputes the sample grid of target
func NewScorer(target signal.Target) *Scorer {
	return &Scorer{
		target: target,
		xs:     target.Grid(),
	}
}

// Target returns the target the scorer compares against
func (s *Scorer) Target() signal.Target {
	return s.target
}

// Grid returns the x positions of the target samples
func (s *Scorer) Grid() []float64 {
	return s.xs
}

// Score computes the mean squared error of a over the target grid and maps it
// to a fitness in (0, 1]. Only invariant violations are returned as errors.
func (s *Scorer) Score(a *wave.Agent) (Score, error) {
	n := len(s.xs)
	if n == 0 {
		return Score{Fitness: 1}, nil
	}

	var sum float64
	for k, x := range s.xs {
		v, err := a.Evaluate(x)
		if err != nil {
			return Score{}, err
		}
		d := v - s.target.Samples[k]
		sum += d * d
	}

	mse := sum / float64(n)
	if math.IsNaN(mse) || math.IsInf(mse, 0) {
		return Score{Fitness: AnomalyFitness, MSE: math.Inf(1), Anomaly: true}, nil
	}
	return Score{Fitness: FromError(mse), MSE: mse}, nil
}

// FromError maps a mean squared error to fitness, 1/(1+mse)
func FromError(mse float64) float64 {
	return 1 / (1 + mse)
}

// ToError inverts FromError
func ToError(fitness float64) float64 {
	if fitness <= 0 {
		return math.Inf(1)
	}
	return 1/fitness - 1
}

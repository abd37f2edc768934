package ga

import (
	"gonum.org/v1/gonum/stat"

	"wavefit/internal/wave"
)

// Summary holds per-generation population statistics
type Summary struct {
	Size        int     `json:"size"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	StdFitness  float64 `json:"std_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	MeanTerms   float64 `json:"mean_terms"`
	MaxTerms    int     `json:"max_terms"`
}

// Summarize computes statistics over scored agents
func Summarize(agents []wave.Agent) Summary {
	n := len(agents)
	if n == 0 {
		return Summary{}
	}

	fitnesses := make([]float64, n)
	terms := make([]float64, n)
	s := Summary{
		Size:        n,
		BestFitness: agents[0].Fitness,
		MinFitness:  agents[0].Fitness,
	}
	for i := range agents {
		a := &agents[i]
		fitnesses[i] = a.Fitness
		terms[i] = float64(a.Len())
		s.BestFitness = max(s.BestFitness, a.Fitness)
		s.MinFitness = min(s.MinFitness, a.Fitness)
		s.MaxTerms = max(s.MaxTerms, a.Len())
	}

	s.MeanFitness, s.StdFitness = stat.PopMeanStdDev(fitnesses, nil)
	s.MeanTerms = stat.Mean(terms, nil)
	return s
}

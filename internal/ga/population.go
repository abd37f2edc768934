package ga

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"wavefit/internal/wave"
)

// Population manages the collection of agents
type Population struct {
	Agents []wave.Agent
	rng    *rand.Rand
}

// NewPopulation creates size agents, each with startingFunctions random terms
func NewPopulation(size, startingFunctions int, rng *rand.Rand) *Population {
	p := &Population{
		Agents: make([]wave.Agent, size),
		rng:    rng,
	}

	for i := range p.Agents {
		p.Agents[i] = RandomAgent(startingFunctions, rng)
	}

	return p
}

// RandomTerm draws a term: uniform function type, N(0,1) scale and a
// translation uniform over one period.
func RandomTerm(rng *rand.Rand) wave.FunctionCoefficients {
	return wave.FunctionCoefficients{
		FunctionType: wave.WaveFunctions[rng.IntN(len(wave.WaveFunctions))],
		Scale:        rng.NormFloat64(),
		XTranslation: rng.Float64() * 2 * math.Pi,
	}
}

// RandomAgent builds an agent with n random terms, capped at wave.MaxFunctions
func RandomAgent(n int, rng *rand.Rand) wave.Agent {
	var a wave.Agent
	for i := 0; i < n && !a.Full(); i++ {
		_ = a.Append(RandomTerm(rng))
	}
	return a
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.Agents)
}

// GetRNG returns the population's random number generator
func (p *Population) GetRNG() *rand.Rand {
	return p.rng
}

// compareAgents orders by descending fitness, then by fewer terms
func compareAgents(a, b wave.Agent) int {
	if c := cmp.Compare(b.Fitness, a.Fitness); c != 0 {
		return c
	}
	return cmp.Compare(a.Len(), b.Len())
}

// SortByFitness sorts agents by fitness (descending). Equal fitness prefers
// fewer terms, then the earlier position.
func (p *Population) SortByFitness() {
	slices.SortStableFunc(p.Agents, compareAgents)
}

// Best returns the agent with highest fitness without reordering
func (p *Population) Best() (wave.Agent, bool) {
	if len(p.Agents) == 0 {
		return wave.Agent{}, false
	}
	best := 0
	for i := 1; i < len(p.Agents); i++ {
		if compareAgents(p.Agents[i], p.Agents[best]) < 0 {
			best = i
		}
	}
	return p.Agents[best], true
}

// Snapshot returns a copy of every agent
func (p *Population) Snapshot() []wave.Agent {
	return slices.Clone(p.Agents)
}

package ga

import (
	"fmt"
	"math"
	"math/rand/v2"

	"wavefit/internal/wave"
)

// ParentPolicy picks which survivor a replaced agent is copied from
type ParentPolicy string

const (
	// ParentUniform draws every survivor with equal probability
	ParentUniform ParentPolicy = "uniform"
	// ParentTournament keeps the fittest of k uniform draws
	ParentTournament ParentPolicy = "tournament"
	// ParentProportional draws with probability proportional to fitness
	ParentProportional ParentPolicy = "proportional"
)

// ParsePolicy accepts "" as ParentUniform
func ParsePolicy(s string) (ParentPolicy, error) {
	switch p := ParentPolicy(s); p {
	case "":
		return ParentUniform, nil
	case ParentUniform, ParentTournament, ParentProportional:
		return p, nil
	default:
		return "", &ConfigError{Field: "parent_selection", Rule: "oneof=uniform tournament proportional", Value: s}
	}
}

// selectionEpsilon absorbs float error in fraction*size, so 0.7*10 keeps 7
const selectionEpsilon = 1e-9

// SurvivorCount is ceil(fraction*size) clamped to [1, size]
func SurvivorCount(size int, fraction float64) int {
	if size <= 0 {
		return 0
	}
	n := int(math.Ceil(fraction*float64(size) - selectionEpsilon))
	if n < 1 {
		n = 1
	}
	if n > size {
		n = size
	}
	return n
}

// Select sorts the population and returns the breeding pool. The returned
// slice aliases the front of pop.Agents.
func Select(pop *Population, fraction float64) []wave.Agent {
	pop.SortByFitness()
	return pop.Agents[:SurvivorCount(pop.Size(), fraction)]
}

// PickParent returns the index of a parent in pool according to policy
func PickParent(pool []wave.Agent, policy ParentPolicy, tournamentK int, rng *rand.Rand) (int, error) {
	if len(pool) == 0 {
		return 0, fmt.Errorf("empty breeding pool")
	}
	switch policy {
	case ParentUniform, "":
		return rng.IntN(len(pool)), nil
	case ParentTournament:
		return TournamentSelect(pool, tournamentK, rng), nil
	case ParentProportional:
		return RouletteSelect(pool, rng), nil
	default:
		return 0, fmt.Errorf("unknown parent policy %q", policy)
	}
}

// TournamentSelect selects an agent index using tournament selection
func TournamentSelect(agents []wave.Agent, k int, rng *rand.Rand) int {
	if k < 1 {
		k = 1
	}
	if k > len(agents) {
		k = len(agents)
	}

	best := rng.IntN(len(agents))
	for i := 1; i < k; i++ {
		candidate := rng.IntN(len(agents))
		if agents[candidate].Fitness > agents[best].Fitness {
			best = candidate
		}
	}
	return best
}

// RouletteSelect draws an index with probability proportional to fitness,
// falling back to uniform when every fitness is zero.
func RouletteSelect(agents []wave.Agent, rng *rand.Rand) int {
	var total float64
	for i := range agents {
		total += agents[i].Fitness
	}
	if !(total > 0) {
		return rng.IntN(len(agents))
	}

	r := rng.Float64() * total
	for i := range agents {
		r -= agents[i].Fitness
		if r < 0 {
			return i
		}
	}
	return len(agents) - 1
}

package ga

import (
	"math/rand/v2"

	"wavefit/internal/wave"
)

// Mutation records what MutateAgent changed
type Mutation struct {
	Perturbed int
	Added     bool
	Removed   bool
}

// MutateTerms applies Gaussian perturbation to scale and translation of each
// term with the given probability. Returns the number of terms touched.
func MutateTerms(a *wave.Agent, probability, strength float64, rng *rand.Rand) int {
	touched := 0
	for i := 0; i < a.Len(); i++ {
		if rng.Float64() < probability {
			t := a.Term(i)
			t.Scale += strength * rng.NormFloat64()
			t.XTranslation += strength * rng.NormFloat64()
			a.SetTerm(i, t)
			touched++
		}
	}
	return touched
}

// MutateStructure performs a single structural trial. Addition is tried
// first; subtraction is only tried when addition did not fire. An agent with
// no terms always gains one.
func MutateStructure(a *wave.Agent, addP, subP float64, rng *rand.Rand) (added, removed bool) {
	if a.Len() == 0 {
		return a.Append(RandomTerm(rng)) == nil, false
	}

	if rng.Float64() < addP {
		if !a.Full() {
			return a.Append(RandomTerm(rng)) == nil, false
		}
		return false, false
	}

	if rng.Float64() < subP && a.Len() > 1 {
		a.RemoveAt(rng.IntN(a.Len()))
		return false, true
	}
	return false, false
}

// MutateAgent applies parameter mutation followed by one structural trial
func MutateAgent(a *wave.Agent, h HyperParameters, rng *rand.Rand) Mutation {
	var m Mutation
	m.Perturbed = MutateTerms(a, h.MutationProbability, h.MutationStrength, rng)
	m.Added, m.Removed = MutateStructure(a, h.FunctionAdditionProbability, h.FunctionSubtractionProbability, rng)
	a.Invalidate()
	return m
}

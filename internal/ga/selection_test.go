package ga

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavefit/internal/wave"
)

func scoredAgent(t *testing.T, fitness float64, terms int) wave.Agent {
	t.Helper()
	var a wave.Agent
	for i := 0; i < terms; i++ {
		require.NoError(t, a.Append(wave.FunctionCoefficients{Scale: float64(i + 1)}))
	}
	a.Fitness = fitness
	a.Scored = true
	return a
}

func TestSurvivorCountBounds(t *testing.T) {
	for size := 1; size <= 60; size++ {
		for _, fraction := range []float64{1e-9, 0.01, 0.1, 0.2, 0.33, 0.5, 0.7, 0.99, 1} {
			n := SurvivorCount(size, fraction)
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, int(math.Ceil(fraction*float64(size))))
			assert.LessOrEqual(t, n, size)
		}
	}
	assert.Equal(t, 7, SurvivorCount(10, 0.7))
	assert.Equal(t, 10, SurvivorCount(50, 0.2))
	assert.Equal(t, 1, SurvivorCount(50, 0.001))
	assert.Equal(t, 3, SurvivorCount(10, 0.21))
	assert.Equal(t, 0, SurvivorCount(0, 0.5))
}

func TestSelectOrdersByFitnessThenParsimony(t *testing.T) {
	pop := &Population{Agents: []wave.Agent{
		scoredAgent(t, 0.5, 3),
		scoredAgent(t, 0.9, 2),
		scoredAgent(t, 0.5, 1),
		scoredAgent(t, 0.9, 4),
		scoredAgent(t, 0.1, 1),
	}}

	pool := Select(pop, 0.6)
	require.Len(t, pool, 3)
	assert.Equal(t, 0.9, pool[0].Fitness)
	assert.Equal(t, 2, pool[0].Len())
	assert.Equal(t, 0.9, pool[1].Fitness)
	assert.Equal(t, 4, pool[1].Len())
	assert.Equal(t, 0.5, pool[2].Fitness)
	assert.Equal(t, 1, pool[2].Len())
}

func TestSelectIsStableForIdenticalKeys(t *testing.T) {
	agents := make([]wave.Agent, 6)
	for i := range agents {
		agents[i] = scoredAgent(t, 0.4, 2)
		agents[i].SetTerm(0, wave.FunctionCoefficients{Scale: float64(i)})
		agents[i].Fitness = 0.4
	}
	pop := &Population{Agents: agents}
	pool := Select(pop, 1)
	for i := range pool {
		assert.Equal(t, float64(i), pool[i].Term(0).Scale)
	}
}

func TestPickParentPolicies(t *testing.T) {
	pool := []wave.Agent{
		scoredAgent(t, 0.9, 1),
		scoredAgent(t, 0.1, 1),
		scoredAgent(t, 0.0, 1),
	}
	rng := rand.New(rand.NewPCG(1, 2))

	counts := map[ParentPolicy][]int{}
	for _, policy := range []ParentPolicy{ParentUniform, ParentTournament, ParentProportional} {
		counts[policy] = make([]int, len(pool))
		for i := 0; i < 3000; i++ {
			idx, err := PickParent(pool, policy, 3, rng)
			require.NoError(t, err)
			counts[policy][idx]++
		}
	}

	for _, c := range counts[ParentUniform] {
		assert.InDelta(t, 1000, c, 150)
	}
	assert.Greater(t, counts[ParentTournament][0], counts[ParentUniform][0])
	assert.Zero(t, counts[ParentProportional][2])
	assert.Greater(t, counts[ParentProportional][0], 5*counts[ParentProportional][1])

	_, err := PickParent(nil, ParentUniform, 1, rng)
	assert.Error(t, err)
	_, err = PickParent(pool, "lottery", 1, rng)
	assert.Error(t, err)
}

func TestRouletteFallsBackToUniformWhenAllZero(t *testing.T) {
	pool := []wave.Agent{scoredAgent(t, 0, 1), scoredAgent(t, 0, 1)}
	rng := rand.New(rand.NewPCG(3, 4))
	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		seen[RouletteSelect(pool, rng)] = true
	}
	assert.Len(t, seen, 2)
}

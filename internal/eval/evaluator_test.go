package eval

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavefit/internal/fitness"
	"wavefit/internal/ga"
	"wavefit/internal/signal"
	"wavefit/internal/wave"
)

func newScorer(t *testing.T) *fitness.Scorer {
	t.Helper()
	target, err := signal.Generate(signal.DefaultSpec())
	require.NoError(t, err)
	return fitness.NewScorer(target)
}

func TestParallelMatchesSerial(t *testing.T) {
	scorer := newScorer(t)
	pop := ga.NewPopulation(97, 3, rand.New(rand.NewPCG(1, 2)))
	serial := pop.Snapshot()

	res, err := NewEvaluator(scorer, 8).EvaluatePopulation(pop)
	require.NoError(t, err)
	assert.Equal(t, 97, res.Evaluated)
	assert.Zero(t, res.Anomalies)

	for i := range serial {
		score, err := scorer.Score(&serial[i])
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(score.Fitness), math.Float64bits(pop.Agents[i].Fitness))
		assert.True(t, pop.Agents[i].Scored)
	}
}

func TestEvaluateCountsAnomalies(t *testing.T) {
	scorer := newScorer(t)
	bad, err := wave.NewAgent(wave.FunctionCoefficients{FunctionType: wave.Sine, Scale: math.Inf(1)})
	require.NoError(t, err)
	good, err := wave.NewAgent(wave.FunctionCoefficients{FunctionType: wave.Sine, Scale: 1})
	require.NoError(t, err)

	pop := &ga.Population{Agents: []wave.Agent{bad, good, bad}}
	res, err := NewEvaluator(scorer, 2).EvaluatePopulation(pop)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Anomalies)
	assert.Equal(t, float64(fitness.AnomalyFitness), pop.Agents[0].Fitness)
	assert.Greater(t, pop.Agents[1].Fitness, 0.99)
}

func TestEvaluateEmptyPopulation(t *testing.T) {
	res, err := NewEvaluator(newScorer(t), 0).EvaluatePopulation(&ga.Population{})
	require.NoError(t, err)
	assert.Zero(t, res.Evaluated)
}

func TestOutputSamplesTargetGrid(t *testing.T) {
	scorer := newScorer(t)
	a, err := wave.NewAgent(wave.FunctionCoefficients{FunctionType: wave.Sine, Scale: 1})
	require.NoError(t, err)

	out, err := NewEvaluator(scorer, 1).Output(&a)
	require.NoError(t, err)
	require.Len(t, out, signal.DefaultResolution)
	for k, v := range out {
		assert.InDelta(t, scorer.Target().Samples[k], v, 1e-9)
	}
}

package ga

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavefit/internal/wave"
)

func TestMutateAgentKeepsLengthWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	h := HyperParameters{
		StartingFunctions:              1,
		SelectionFraction:              0.5,
		MutationProbability:            0.5,
		MutationStrength:               1,
		FunctionAdditionProbability:    0.5,
		FunctionSubtractionProbability: 0.5,
	}

	a := RandomAgent(1, rng)
	for i := 0; i < 5000; i++ {
		MutateAgent(&a, h, rng)
		require.GreaterOrEqual(t, a.Len(), 1)
		require.LessOrEqual(t, a.Len(), wave.MaxFunctions)
		require.NoError(t, a.Validate())
	}
}

func TestRepeatedAdditionNeverExceedsCapacity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 9))
	h := HyperParameters{SelectionFraction: 1, FunctionAdditionProbability: 1}

	a := RandomAgent(1, rng)
	for i := 0; i < 100; i++ {
		m := MutateAgent(&a, h, rng)
		assert.LessOrEqual(t, a.Len(), wave.MaxFunctions)
		if i >= wave.MaxFunctions-1 {
			assert.False(t, m.Added)
		}
	}
	assert.Equal(t, wave.MaxFunctions, a.Len())
}

func TestSubtractionStopsAtOneTerm(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	h := HyperParameters{SelectionFraction: 1, FunctionSubtractionProbability: 1}

	a := RandomAgent(wave.MaxFunctions, rng)
	for i := 0; i < 20; i++ {
		MutateAgent(&a, h, rng)
	}
	assert.Equal(t, 1, a.Len())
}

func TestEmptyAgentAlwaysGrows(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	h := HyperParameters{SelectionFraction: 1}

	var a wave.Agent
	m := MutateAgent(&a, h, rng)
	assert.True(t, m.Added)
	assert.Equal(t, 1, a.Len())
}

func TestAtMostOneStructuralChange(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 3))
	h := HyperParameters{SelectionFraction: 1, FunctionAdditionProbability: 0.5, FunctionSubtractionProbability: 1}

	for i := 0; i < 500; i++ {
		a := RandomAgent(4, rng)
		m := MutateAgent(&a, h, rng)
		assert.False(t, m.Added && m.Removed)
		switch {
		case m.Added:
			assert.Equal(t, 5, a.Len())
		case m.Removed:
			assert.Equal(t, 3, a.Len())
		default:
			t.Fatalf("subtraction probability 1 must fire when addition does not")
		}
	}
}

func TestMutateTermsUsesStrength(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	a := RandomAgent(3, rng)
	before := a.Terms()

	assert.Equal(t, 0, MutateTerms(&a, 0, 1, rng))
	assert.Equal(t, before, a.Terms())

	assert.Equal(t, 3, MutateTerms(&a, 1, 0, rng))
	assert.Equal(t, before, a.Terms())

	assert.Equal(t, 3, MutateTerms(&a, 1, 0.1, rng))
	for i, term := range a.Terms() {
		assert.NotEqual(t, before[i].Scale, term.Scale)
		assert.InDelta(t, before[i].Scale, term.Scale, 1)
		assert.Equal(t, before[i].FunctionType, term.FunctionType)
	}
}

func TestMutateInvalidatesFitness(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 8))
	a := RandomAgent(2, rng)
	a.Fitness, a.Scored = 0.9, true
	MutateAgent(&a, DefaultHyperParameters(), rng)
	assert.False(t, a.Scored)
}

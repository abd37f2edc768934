package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavefit/internal/wave"
)

func TestGridIncludesEndpoints(t *testing.T) {
	target, err := Generate(Spec{Kind: KindSine, Amplitude: 1, Period: 2 * math.Pi, Points: 100, XMin: 0, XMax: 2 * math.Pi})
	require.NoError(t, err)

	xs := target.Grid()
	require.Len(t, xs, 100)
	assert.Equal(t, 0.0, xs[0])
	assert.InDelta(t, 2*math.Pi, xs[99], 1e-12)
	for k, x := range xs {
		assert.InDelta(t, math.Sin(x), target.Samples[k], 1e-12)
	}
}

func TestSinglePointGrid(t *testing.T) {
	target, err := NewTarget(1.5, 3, []float64{0.25})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, target.Grid())
}

func TestGenerateShapes(t *testing.T) {
	base := Spec{Amplitude: 2, Period: 4, Points: 9, XMin: 0, XMax: 4}

	square := base
	square.Kind = KindSquare
	target, err := Generate(square)
	require.NoError(t, err)
	assert.Equal(t, 2.0, target.Samples[1])  // x=0.5
	assert.Equal(t, -2.0, target.Samples[5]) // x=2.5

	triangle := base
	triangle.Kind = KindTriangle
	target, err = Generate(triangle)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, target.Samples[2], 1e-12) // x=1, quarter period
	assert.InDelta(t, 0.0, target.Samples[4], 1e-12)

	saw := base
	saw.Kind = KindSawTooth
	target, err = Generate(saw)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, target.Samples[2], 1e-12) // x=1, quarter period -> 0.5*2
}

func TestSawToothTargetMatchesAgentPrimitive(t *testing.T) {
	spec := Spec{Kind: KindSawTooth, Amplitude: 1, Period: wave.SawToothPeriod, Points: 64, XMin: -7, XMax: 11}
	target, err := Generate(spec)
	require.NoError(t, err)

	a, err := wave.NewAgent(wave.FunctionCoefficients{FunctionType: wave.SawTooth, Scale: 1})
	require.NoError(t, err)
	out, err := a.Sample(target.Grid(), nil)
	require.NoError(t, err)
	for k := range out {
		assert.InDelta(t, target.Samples[k], out[k], 1e-12)
	}
}

func TestGenerateRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{name: "no points", spec: Spec{Kind: KindSine, Period: 1}},
		{name: "zero period", spec: Spec{Kind: KindSine, Points: 4}},
		{name: "unknown kind", spec: Spec{Kind: "noise", Points: 4, Period: 1}},
		{name: "reversed range", spec: Spec{Kind: KindSine, Points: 4, Period: 1, XMin: 2, XMax: 1}},
		{name: "empty samples", spec: Spec{Kind: KindSamples}},
		{name: "nan sample", spec: Spec{Kind: KindSamples, Samples: []float64{math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestNewTargetCopiesSamples(t *testing.T) {
	samples := []float64{1, 2, 3}
	target, err := NewTarget(0, 1, samples)
	require.NoError(t, err)
	samples[0] = 99
	assert.Equal(t, 1.0, target.Samples[0])
}

package main

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotShape(t *testing.T) {
	target := []float64{-1, 0, 1, 0, -1}
	lines := Plot(target, nil, 10, 5)
	require.Len(t, lines, 7)
	for _, l := range lines {
		assert.Equal(t, 12, utf8.RuneCountInString(l))
	}
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.True(t, strings.HasPrefix(lines[6], "└"))

	// the peak lands on the top row, the troughs on the bottom row
	assert.Contains(t, lines[1], string(markTarget))
	assert.Contains(t, lines[5], string(markTarget))
}

func TestPlotOverlap(t *testing.T) {
	series := []float64{0, 1, 2, 3}
	joined := strings.Join(Plot(series, series, 8, 4), "\n")
	assert.Contains(t, joined, string(markOverlap))
	assert.NotContains(t, joined, string(markTarget))
	assert.NotContains(t, joined, string(markFit))
}

func TestPlotDegenerateInput(t *testing.T) {
	lines := Plot([]float64{2, 2, 2}, []float64{math.NaN(), math.Inf(1)}, 6, 3)
	require.Len(t, lines, 5)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, string(markTarget))
	assert.NotContains(t, joined, string(markFit))

	lines = Plot(nil, nil, 1, 1)
	assert.Len(t, lines, 4)
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, []float64{0, 1}, []float64{1, 0}, 4, 3, "Gen 1")
	assert.Contains(t, buf.String(), "Gen 1")
	assert.Contains(t, buf.String(), "target")
}

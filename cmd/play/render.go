package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	markTarget  = '·'
	markFit     = '*'
	markOverlap = '#'
)

// Plot draws target and fit on a width x height character grid inside a box.
// Each column shows the sample nearest to it; non-finite values are skipped.
func Plot(target, fit []float64, width, height int) []string {
	width = max(width, 2)
	height = max(height, 2)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, series := range [][]float64{target, fit} {
		for _, v := range series {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = -1, 1
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}

	mark := func(series []float64, r rune) {
		n := len(series)
		if n == 0 {
			return
		}
		for x := 0; x < width; x++ {
			v := series[x*(n-1)/(width-1)]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			y := int(math.Round((hi - v) / (hi - lo) * float64(height-1)))
			switch grid[y][x] {
			case ' ', r:
				grid[y][x] = r
			default:
				grid[y][x] = markOverlap
			}
		}
	}
	mark(target, markTarget)
	mark(fit, markFit)

	lines := make([]string, 0, height+2)
	lines = append(lines, "┌"+strings.Repeat("─", width)+"┐")
	for _, row := range grid {
		lines = append(lines, "│"+string(row)+"│")
	}
	lines = append(lines, "└"+strings.Repeat("─", width)+"┘")
	return lines
}

// Render writes the plot followed by a status line
func Render(w io.Writer, target, fit []float64, width, height int, status string) {
	for _, line := range Plot(target, fit, width, height) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "  %c target  %c fit  %c both\n", markTarget, markFit, markOverlap)
	fmt.Fprintf(w, "  %s\n", status)
}

func clearScreen() {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	cmd.Run()
}

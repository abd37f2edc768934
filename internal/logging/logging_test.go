package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavefit/internal/eval"
	"wavefit/internal/ga"
	"wavefit/internal/signal"
	"wavefit/internal/trainer"
	"wavefit/internal/wave"
)

func sineAgent(t *testing.T, fitness float64) wave.Agent {
	t.Helper()
	a, err := wave.NewAgent(wave.FunctionCoefficients{FunctionType: wave.Sine, Scale: 1})
	require.NoError(t, err)
	a.Fitness = fitness
	a.Scored = true
	return a
}

func report(t *testing.T, gen int, state trainer.State, fitness float64) trainer.Report {
	return trainer.Report{
		Generation: gen,
		State:      state,
		Summary:    ga.Summary{Size: 10, BestFitness: fitness, MeanFitness: fitness / 2, MeanTerms: 1.5, MaxTerms: 3},
		Best:       sineAgent(t, fitness),
		Eval:       eval.Result{Evaluated: 10, Anomalies: 1, Duration: 2 * time.Millisecond},
		Breed:      ga.BreedStats{Children: 8, Added: 2, Removed: 1},
	}
}

func TestLoggerWritesCSVAndJSONL(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "logs", "run.csv")
	jsonPath := filepath.Join(dir, "logs", "run.jsonl")

	l, err := NewLogger(csvPath, jsonPath, nil, true)
	require.NoError(t, err)
	l.Observe(report(t, 1, trainer.StateMutating, 0.5))
	l.Observe(report(t, 2, trainer.StateStopped, 0.8))
	require.NoError(t, l.Close())

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "mutating", rows[1][1])
	assert.Equal(t, "1", rows[1][3])
	assert.Equal(t, "stopped", rows[2][1])

	jf, err := os.Open(jsonPath)
	require.NoError(t, err)
	defer jf.Close()
	var lines []GenerationSummary
	sc := bufio.NewScanner(jf)
	for sc.Scan() {
		var s GenerationSummary
		require.NoError(t, json.Unmarshal(sc.Bytes(), &s))
		lines = append(lines, s)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, 0.8, lines[1].BestFitness)
	assert.InDelta(t, 0.25, lines[1].BestMSE, 1e-12)
	assert.Equal(t, 1, lines[1].Anomalies)
	assert.Equal(t, 2.0, lines[1].EvalMillis)
	assert.Equal(t, "1*sin(x - 0)", lines[1].Formula)
}

func TestSummarizeAnomalousChampion(t *testing.T) {
	s := Summarize(report(t, 3, trainer.StateAborted, 0))
	assert.Equal(t, -1.0, s.BestMSE)
	assert.Equal(t, "aborted", s.State)
}

func TestChampionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "champion.json")
	a := sineAgent(t, 0.75)
	require.NoError(t, SaveChampion(path, a, 12))

	c, err := LoadChampion(path)
	require.NoError(t, err)
	assert.Equal(t, 12, c.Generation)
	assert.Equal(t, 0.75, c.Fitness)
	assert.InDelta(t, 1.0/3, c.MSE, 1e-12)
	assert.Equal(t, a.String(), c.Formula)
	assert.Equal(t, a.Terms(), c.Agent.Terms())

	_, err = LoadChampion(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReplayRecordsEveryNth(t *testing.T) {
	target, err := signal.Generate(signal.DefaultSpec())
	require.NoError(t, err)

	r := NewReplay(5, target, 3)
	for gen := 1; gen <= 7; gen++ {
		state := trainer.StateMutating
		if gen == 7 {
			state = trainer.StateStopped
		}
		r.Record(report(t, gen, state, float64(gen)/10))
	}
	require.Len(t, r.Frames, 3)
	assert.Equal(t, 3, r.Frames[0].Generation)
	assert.Equal(t, 6, r.Frames[1].Generation)
	assert.Equal(t, 7, r.Frames[2].Generation)

	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, r.Save(path))
	loaded, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), loaded.Seed)
	assert.Equal(t, target.Len(), loaded.Target.Len())
	require.Len(t, loaded.Frames, 3)

	out, err := loaded.Playback(2)
	require.NoError(t, err)
	want, err := r.Playback(2)
	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Len(t, out, signal.DefaultResolution)

	_, err = loaded.Playback(3)
	assert.Error(t, err)
}

func TestReplayFinishAddsLastFrameOnce(t *testing.T) {
	target, err := signal.Generate(signal.DefaultSpec())
	require.NoError(t, err)

	r := NewReplay(5, target, 3)
	for gen := 1; gen <= 4; gen++ {
		r.Record(report(t, gen, trainer.StateMutating, float64(gen)/10))
	}
	require.Len(t, r.Frames, 1)

	r.Finish(4, sineAgent(t, 0.4))
	require.Len(t, r.Frames, 2)
	assert.Equal(t, 4, r.Frames[1].Generation)
	assert.InDelta(t, 0.4, r.Frames[1].Fitness, 1e-12)

	r.Finish(4, sineAgent(t, 0.4))
	assert.Len(t, r.Frames, 2)

	empty := NewReplay(5, target, 3)
	empty.Finish(0, sineAgent(t, 0))
	require.Len(t, empty.Frames, 1)
	assert.Equal(t, 0, empty.Frames[0].Generation)
}

func TestLoadReplayRejectsEmptyTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seed":1,"frames":[]}`), 0644))
	_, err := LoadReplay(path)
	assert.Error(t, err)
}

package eval

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"wavefit/internal/fitness"
	"wavefit/internal/ga"
	"wavefit/internal/wave"
)

// Evaluator scores populations on a bounded pool of workers
type Evaluator struct {
	scorer  *fitness.Scorer
	workers int
}

// Result summarizes one population evaluation
type Result struct {
	Evaluated int
	Anomalies int
	Duration  time.Duration
}

// NewEvaluator creates a new evaluator. workers <= 0 uses every CPU.
func NewEvaluator(scorer *fitness.Scorer, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Evaluator{
		scorer:  scorer,
		workers: workers,
	}
}

// Workers returns the size of the worker pool
func (e *Evaluator) Workers() int {
	return e.workers
}

// Scorer returns the scorer agents are compared with
func (e *Evaluator) Scorer() *fitness.Scorer {
	return e.scorer
}

// EvaluateAgent scores a single agent and stores the fitness on it
func (e *Evaluator) EvaluateAgent(a *wave.Agent) (fitness.Score, error) {
	score, err := e.scorer.Score(a)
	if err != nil {
		return score, err
	}
	a.Fitness = score.Fitness
	a.Scored = true
	return score, nil
}

// EvaluatePopulation scores every agent. Each worker owns a contiguous block
// of agents and only writes to those; the call returns once all are done.
// The first invariant violation is returned.
func (e *Evaluator) EvaluatePopulation(pop *ga.Population) (Result, error) {
	start := time.Now()
	n := pop.Size()
	if n == 0 {
		return Result{}, nil
	}

	workers := min(e.workers, n)
	chunk := (n + workers - 1) / workers

	var anomalies atomic.Int64
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				score, err := e.EvaluateAgent(&pop.Agents[i])
				if err != nil {
					return err
				}
				if score.Anomaly {
					anomalies.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Evaluated: n,
		Anomalies: int(anomalies.Load()),
		Duration:  time.Since(start),
	}, nil
}

// Output samples agent a over the target grid
func (e *Evaluator) Output(a *wave.Agent) ([]float64, error) {
	return a.Sample(e.scorer.Grid(), nil)
}

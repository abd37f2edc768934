package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"wavefit/internal/eval"
	"wavefit/internal/fitness"
	"wavefit/internal/ga"
	"wavefit/internal/signal"
	"wavefit/internal/wave"
)

// ErrFinished is returned by Step once the trainer reached a terminal state
var ErrFinished = errors.New("training finished")

// ErrNoTermination is returned by Run when nothing could ever end the run
var ErrNoTermination = errors.New("run has no generation cap, fitness threshold, plateau or cancellable context")

// Config is everything a run needs besides the target
type Config struct {
	Population      int                `yaml:"population" validate:"gte=1"`
	Hyper           ga.HyperParameters `yaml:"hyper"`
	ParentSelection ga.ParentPolicy    `yaml:"parent_selection" validate:"omitempty,oneof=uniform tournament proportional"`
	TournamentK     int                `yaml:"tournament_k" validate:"gte=0"`

	// MaxGenerations stops the run after that many evaluated generations. 0 disables.
	MaxGenerations int `yaml:"max_generations" validate:"gte=0"`
	// FitnessThreshold converges once the best fitness reaches it. 0 disables.
	FitnessThreshold float64 `yaml:"fitness_threshold" validate:"gte=0,lte=1"`
	// PlateauGenerations converges after that many generations without the
	// best fitness improving by more than PlateauEpsilon. 0 disables.
	PlateauGenerations int     `yaml:"plateau_generations" validate:"gte=0"`
	PlateauEpsilon     float64 `yaml:"plateau_epsilon" validate:"gte=0,finite"`

	Workers int    `yaml:"workers" validate:"gte=0"`
	Seed    uint64 `yaml:"seed"`
}

// DefaultConfig returns the default hyper-parameters at a CPU-sized population
func DefaultConfig() Config {
	return Config{
		Population:       1000,
		Hyper:            ga.DefaultHyperParameters(),
		ParentSelection:  ga.ParentUniform,
		TournamentK:      3,
		MaxGenerations:   1000,
		FitnessThreshold: 0.999,
		PlateauEpsilon:   1e-9,
		Seed:             1337,
	}
}

// Validate reports every invalid field as a ga.ConfigError
func (c Config) Validate() error {
	return ga.ValidateStruct(c)
}

// Report describes one finished generation
type Report struct {
	Generation int
	State      State
	// Reason is set when the generation ended the run
	Reason    string
	Summary   ga.Summary
	Best      wave.Agent
	Eval      eval.Result
	Breed     ga.BreedStats
	Survivors int
}

// Result is the outcome of Run
type Result struct {
	State       State
	Reason      string
	Generations int
	Best        wave.Agent
	History     []float64
}

// Observer is called after every generation, on the trainer's goroutine
type Observer func(Report)

// Option configures a Trainer
type Option func(*Trainer)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithObserver registers fn to receive every generation report
func WithObserver(fn Observer) Option {
	return func(t *Trainer) {
		t.observers = append(t.observers, fn)
	}
}

// Trainer runs the evaluate, select, mutate cycle. It owns its population
// and is not safe for concurrent use.
type Trainer struct {
	cfg       Config
	evaluator *eval.Evaluator
	breeder   ga.Breeder
	logger    *slog.Logger
	observers []Observer

	pop        *ga.Population
	state      State
	generation int
	best       wave.Agent
	hasBest    bool
	stale      int
	history    []float64
	reason     string
}

// New validates cfg and target and builds the initial population
func New(cfg Config, target signal.Target, opts ...Option) (*Trainer, error) {
	t := &Trainer{logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.Init(cfg, target); err != nil {
		return nil, err
	}
	return t, nil
}

// Init replaces the configuration and target and starts over from cfg.Seed.
// On error the trainer is left as it was.
func (t *Trainer) Init(cfg Config, target signal.Target) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if target.Len() == 0 {
		return &ga.ConfigError{Field: "target", Rule: "min=1", Value: 0}
	}

	policy, err := ga.ParsePolicy(string(cfg.ParentSelection))
	if err != nil {
		return err
	}

	t.cfg = cfg
	t.evaluator = eval.NewEvaluator(fitness.NewScorer(target), cfg.Workers)
	t.breeder = ga.Breeder{
		Hyper:       cfg.Hyper,
		Policy:      policy,
		TournamentK: cfg.TournamentK,
		Workers:     cfg.Workers,
	}

	t.Reset(cfg.Seed)
	return nil
}

// Reset discards the population and starts over from seed. Configuration
// and target are kept; use Init to change them.
func (t *Trainer) Reset(seed uint64) {
	t.cfg.Seed = seed
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	t.pop = ga.NewPopulation(t.cfg.Population, t.cfg.Hyper.StartingFunctions, rng)
	t.state = StateInitialized
	t.generation = 0
	t.best = wave.Agent{}
	t.hasBest = false
	t.stale = 0
	t.history = nil
	t.reason = ""

	t.logger.Info("population initialized",
		"population", t.cfg.Population,
		"starting_functions", t.cfg.Hyper.StartingFunctions,
		"seed", seed,
		"workers", t.evaluator.Workers(),
	)
}

// Step runs one generation. Cancellation is only checked before evaluation
// starts; a generation in progress always completes.
func (t *Trainer) Step(ctx context.Context) (Report, error) {
	if t.state.Terminal() {
		return Report{Generation: t.generation, State: t.state, Reason: t.reason, Best: t.best}, ErrFinished
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	t.state = StateEvaluating
	res, err := t.evaluator.EvaluatePopulation(t.pop)
	if err != nil {
		return t.abort(err)
	}
	t.generation++

	champion, _ := t.pop.Best()
	t.track(champion)

	report := Report{
		Generation: t.generation,
		Summary:    ga.Summarize(t.pop.Agents),
		Eval:       res,
	}

	if state, reason, done := t.terminated(); done {
		t.state = state
		t.reason = reason
		report.State = state
		report.Reason = reason
		report.Best = t.best
		t.notify(report)
		t.logger.Info("training finished",
			"state", state.String(),
			"reason", reason,
			"generation", t.generation,
			"best_fitness", t.best.Fitness,
			"formula", t.best.String(),
		)
		return report, nil
	}

	t.state = StateSelecting
	pool := ga.Select(t.pop, t.cfg.Hyper.SelectionFraction)
	report.Survivors = len(pool)

	t.state = StateMutating
	stats, err := t.breeder.Next(t.pop, len(pool), t.pop.GetRNG())
	if err != nil {
		return t.abort(err)
	}
	report.Breed = stats
	report.State = t.state
	report.Best = t.best

	t.notify(report)
	return report, nil
}

// Steps runs up to n generations, stopping early on a terminal state
func (t *Trainer) Steps(ctx context.Context, n int) (Report, error) {
	var last Report
	for i := 0; i < n; i++ {
		r, err := t.Step(ctx)
		if err != nil {
			return r, err
		}
		last = r
		if r.State.Terminal() {
			break
		}
	}
	return last, nil
}

// Run steps until the trainer converges, stops, aborts or ctx is cancelled
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	if t.cfg.MaxGenerations == 0 && t.cfg.FitnessThreshold == 0 && t.cfg.PlateauGenerations == 0 && ctx.Done() == nil {
		return Result{}, ErrNoTermination
	}

	for !t.state.Terminal() {
		if _, err := t.Step(ctx); err != nil {
			return t.result(), err
		}
	}
	return t.result(), nil
}

func (t *Trainer) result() Result {
	return Result{
		State:       t.state,
		Reason:      t.reason,
		Generations: t.generation,
		Best:        t.best,
		History:     t.History(),
	}
}

func (t *Trainer) abort(err error) (Report, error) {
	t.state = StateAborted
	t.reason = err.Error()
	t.logger.Error("training aborted", "generation", t.generation, "error", err)
	return Report{Generation: t.generation, State: t.state, Reason: t.reason, Best: t.best},
		fmt.Errorf("generation %d: %w", t.generation+1, err)
}

// track records the generation champion and the plateau counter
func (t *Trainer) track(champion wave.Agent) {
	improved := !t.hasBest || champion.Fitness > t.best.Fitness+t.cfg.PlateauEpsilon
	if improved {
		t.stale = 0
	} else {
		t.stale++
	}

	if !t.hasBest || champion.Fitness > t.best.Fitness ||
		(champion.Fitness == t.best.Fitness && champion.Len() < t.best.Len()) {
		t.best = champion
		t.hasBest = true
	}
	t.history = append(t.history, t.best.Fitness)
}

func (t *Trainer) terminated() (State, string, bool) {
	switch {
	case t.cfg.FitnessThreshold > 0 && t.best.Fitness >= t.cfg.FitnessThreshold:
		return StateConverged, "fitness threshold reached", true
	case t.cfg.PlateauGenerations > 0 && t.stale >= t.cfg.PlateauGenerations:
		return StateConverged, "fitness plateau", true
	case t.cfg.MaxGenerations > 0 && t.generation >= t.cfg.MaxGenerations:
		return StateStopped, "generation cap reached", true
	}
	return t.state, "", false
}

func (t *Trainer) notify(r Report) {
	recordMetrics(r)
	t.logger.Debug("generation",
		"generation", r.Generation,
		"state", r.State.String(),
		"best_fitness", r.Best.Fitness,
		"mean_fitness", r.Summary.MeanFitness,
		"mean_terms", r.Summary.MeanTerms,
		"anomalies", r.Eval.Anomalies,
	)
	for _, fn := range t.observers {
		fn(r)
	}
}

// State returns the current state
func (t *Trainer) State() State {
	return t.state
}

// Generation returns the number of evaluated generations
func (t *Trainer) Generation() int {
	return t.generation
}

// Best returns the best agent seen since the last Reset
func (t *Trainer) Best() (wave.Agent, bool) {
	return t.best, t.hasBest
}

// History returns the best fitness after every generation
func (t *Trainer) History() []float64 {
	out := make([]float64, len(t.history))
	copy(out, t.history)
	return out
}

// Population returns a copy of the current population
func (t *Trainer) Population() []wave.Agent {
	return t.pop.Snapshot()
}

// Target returns the signal being approximated
func (t *Trainer) Target() signal.Target {
	return t.evaluator.Scorer().Target()
}

// Config returns the run configuration
func (t *Trainer) Config() Config {
	return t.cfg
}

// Output samples the population member at index over the target grid
func (t *Trainer) Output(index int) ([]float64, error) {
	if index < 0 || index >= t.pop.Size() {
		return nil, fmt.Errorf("agent index %d out of range [0,%d)", index, t.pop.Size())
	}
	return t.evaluator.Output(&t.pop.Agents[index])
}

// OutputBest samples the best agent over the target grid
func (t *Trainer) OutputBest() ([]float64, error) {
	if !t.hasBest {
		return nil, errors.New("no generation has been evaluated")
	}
	best := t.best
	return t.evaluator.Output(&best)
}

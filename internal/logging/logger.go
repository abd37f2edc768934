package logging

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"wavefit/internal/fitness"
	"wavefit/internal/trainer"
)

// Logger writes per-generation summaries as CSV rows and JSON lines
type Logger struct {
	csvFile   *os.File
	csvWriter *csv.Writer
	jsonFile  *os.File
	jsonEnc   *json.Encoder
	console   *slog.Logger
	everyGen  bool
	err       error
}

var csvHeader = []string{
	"generation", "state", "best_fitness", "best_mse", "mean_fitness", "std_fitness",
	"min_fitness", "mean_terms", "max_terms", "anomalies", "added", "removed", "eval_ms",
}

// GenerationSummary is one JSON line of the run log
type GenerationSummary struct {
	Generation  int     `json:"generation"`
	State       string  `json:"state"`
	Reason      string  `json:"reason,omitempty"`
	BestFitness float64 `json:"best_fitness"`
	BestMSE     float64 `json:"best_mse"`
	MeanFitness float64 `json:"mean_fitness"`
	StdFitness  float64 `json:"std_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	MeanTerms   float64 `json:"mean_terms"`
	MaxTerms    int     `json:"max_terms"`
	Anomalies   int     `json:"anomalies"`
	Added       int     `json:"added"`
	Removed     int     `json:"removed"`
	EvalMillis  float64 `json:"eval_ms"`
	Formula     string  `json:"formula"`
}

// NewLogger creates both files, truncating earlier runs. A nil console
// disables the per-generation console line.
func NewLogger(csvPath, jsonPath string, console *slog.Logger, everyGen bool) (*Logger, error) {
	for _, p := range []string{csvPath, jsonPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, err
		}
	}

	l := &Logger{console: console, everyGen: everyGen}

	var err error
	l.csvFile, err = os.Create(csvPath)
	if err != nil {
		return nil, err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)
	if err := l.csvWriter.Write(csvHeader); err != nil {
		l.csvFile.Close()
		return nil, err
	}

	l.jsonFile, err = os.OpenFile(jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		l.csvFile.Close()
		return nil, err
	}
	l.jsonEnc = json.NewEncoder(l.jsonFile)
	return l, nil
}

// Summarize flattens a trainer report
func Summarize(r trainer.Report) GenerationSummary {
	return GenerationSummary{
		Generation:  r.Generation,
		State:       r.State.String(),
		Reason:      r.Reason,
		BestFitness: r.Best.Fitness,
		BestMSE:     championMSE(r.Best.Fitness),
		MeanFitness: r.Summary.MeanFitness,
		StdFitness:  r.Summary.StdFitness,
		MinFitness:  r.Summary.MinFitness,
		MeanTerms:   r.Summary.MeanTerms,
		MaxTerms:    r.Summary.MaxTerms,
		Anomalies:   r.Eval.Anomalies,
		Added:       r.Breed.Added,
		Removed:     r.Breed.Removed,
		EvalMillis:  float64(r.Eval.Duration.Microseconds()) / 1000,
		Formula:     r.Best.String(),
	}
}

// Observe logs one generation. It has the trainer.Observer signature; write
// errors are kept and returned by Close.
func (l *Logger) Observe(r trainer.Report) {
	s := Summarize(r)

	row := []string{
		strconv.Itoa(s.Generation),
		s.State,
		strconv.FormatFloat(s.BestFitness, 'g', 8, 64),
		strconv.FormatFloat(s.BestMSE, 'g', 8, 64),
		strconv.FormatFloat(s.MeanFitness, 'g', 8, 64),
		strconv.FormatFloat(s.StdFitness, 'g', 8, 64),
		strconv.FormatFloat(s.MinFitness, 'g', 8, 64),
		strconv.FormatFloat(s.MeanTerms, 'f', 3, 64),
		strconv.Itoa(s.MaxTerms),
		strconv.Itoa(s.Anomalies),
		strconv.Itoa(s.Added),
		strconv.Itoa(s.Removed),
		strconv.FormatFloat(s.EvalMillis, 'f', 3, 64),
	}
	l.keep(l.csvWriter.Write(row))
	l.csvWriter.Flush()
	l.keep(l.csvWriter.Error())
	l.keep(l.jsonEnc.Encode(s))

	if l.console != nil && (l.everyGen || r.State.Terminal()) {
		l.console.Info("generation",
			"gen", s.Generation,
			"best", s.BestFitness,
			"mse", s.BestMSE,
			"mean", s.MeanFitness,
			"terms", s.MeanTerms,
			"anomalies", s.Anomalies,
		)
	}
}

// championMSE is the error behind fitness, or -1 for an anomalous agent
func championMSE(f float64) float64 {
	mse := fitness.ToError(f)
	if math.IsInf(mse, 0) {
		return -1
	}
	return mse
}

func (l *Logger) keep(err error) {
	if err != nil && l.err == nil {
		l.err = err
	}
}

// Close flushes and closes both files
func (l *Logger) Close() error {
	l.csvWriter.Flush()
	errs := []error{l.err, l.csvWriter.Error(), l.csvFile.Close(), l.jsonFile.Close()}
	return errors.Join(errs...)
}

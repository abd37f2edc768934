package trainer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavefit_generations_total",
		Help: "Generations evaluated across all runs",
	})

	bestFitnessGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavefit_best_fitness",
		Help: "Best fitness seen in the current run",
	})

	meanFitnessGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavefit_mean_fitness",
		Help: "Mean fitness of the last evaluated generation",
	})

	meanTermsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavefit_mean_terms",
		Help: "Mean number of terms per agent in the last evaluated generation",
	})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wavefit_evaluation_duration_seconds",
		Help:    "Time to score one generation",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	})

	numericAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavefit_numeric_anomalies_total",
		Help: "Agents whose output was not finite",
	})

	structuralMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavefit_structural_mutations_total",
		Help: "Terms added or removed while breeding",
	}, []string{"kind"})
)

func recordMetrics(r Report) {
	generationsTotal.Inc()
	bestFitnessGauge.Set(r.Best.Fitness)
	meanFitnessGauge.Set(r.Summary.MeanFitness)
	meanTermsGauge.Set(r.Summary.MeanTerms)
	evaluationDuration.Observe(r.Eval.Duration.Seconds())
	numericAnomalies.Add(float64(r.Eval.Anomalies))
	structuralMutations.WithLabelValues("add").Add(float64(r.Breed.Added))
	structuralMutations.WithLabelValues("remove").Add(float64(r.Breed.Removed))
}

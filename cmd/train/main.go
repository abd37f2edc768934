package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"wavefit/internal/config"
	"wavefit/internal/logging"
	"wavefit/internal/signal"
	"wavefit/internal/storage"
	"wavefit/internal/trainer"
)

var (
	configPath  string
	generations int
	storeKind   string
	sqlitePath  string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a sum of sine and sawtooth terms that approximates a target waveform",
	Long: `Runs the genetic trainer until the best fitness reaches the threshold,
plateaus, or the generation cap is hit. Ctrl+C stops after the current
generation and still saves the run.

Examples:
  train --config configs/sine.yaml
  train --generations 200 --store sqlite --sqlite-path runs/wavefit.db
  train --metrics-addr :9090`,
	SilenceUsage: true,
	RunE:         runTrain,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "configs/sine.yaml", "path to config file, empty for built-in defaults")
	rootCmd.Flags().IntVar(&generations, "generations", 0, "override termination.max_generations")
	rootCmd.Flags().StringVar(&storeKind, "store", "", "override storage.backend (memory|sqlite)")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite-path", "", "override storage.sqlite_path")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("generations") {
		cfg.Termination.MaxGenerations = generations
	}
	if flags.Changed("store") {
		cfg.Storage.Backend = storeKind
	}
	if flags.Changed("sqlite-path") {
		cfg.Storage.SQLitePath = sqlitePath
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if cfg.Storage.Backend == "sqlite" && cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "runs/wavefit.db"
	}
	return cfg, cfg.Validate()
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger()

	target, err := signal.Generate(cfg.Target)
	if err != nil {
		return fmt.Errorf("building target: %w", err)
	}

	fmt.Printf("Wavefit Trainer - Target: %s (%d points over [%.4g, %.4g])\n",
		cfg.Target.Kind, target.Len(), target.XMin, target.XMax)
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("Population: %d, Selection: %.2f (%s), Seed: %d\n",
		cfg.Population, cfg.Hyper.SelectionFraction, cfg.Selection.ParentSelection, cfg.Seed)
	fmt.Println("---")

	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer storage.CloseIfSupported(store)

	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, logger)
		defer shutdown()
	}

	runLog, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath, logger, cfg.Logging.EveryGenSummary)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer func() {
		if err := runLog.Close(); err != nil {
			logger.Warn("closing run log", "error", err)
		}
	}()

	opts := []trainer.Option{
		trainer.WithLogger(logger),
		trainer.WithObserver(runLog.Observe),
	}

	var replay *logging.Replay
	if cfg.Logging.ReplayEvery > 0 {
		replay = logging.NewReplay(cfg.Seed, target, cfg.Logging.ReplayEvery)
		opts = append(opts, trainer.WithObserver(replay.Record))
	}
	if every := cfg.Logging.SaveChampionEvery; every > 0 {
		opts = append(opts, trainer.WithObserver(func(r trainer.Report) {
			if r.Generation%every != 0 {
				return
			}
			path := filepath.Join(cfg.Logging.ArtifactsDir, fmt.Sprintf("champion_gen%d.json", r.Generation))
			if err := logging.SaveChampion(path, r.Best, r.Generation); err != nil {
				logger.Warn("failed to save champion", "path", path, "error", err)
			}
		}))
	}

	tr, err := trainer.New(cfg.Trainer(), target, opts...)
	if err != nil {
		return err
	}

	runID := storage.NewRunID()
	startTime := time.Now()
	res, runErr := tr.Run(ctx)
	elapsed := time.Since(startTime)

	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted && res.Generations == 0 {
		return runErr
	}

	reason := res.Reason
	if interrupted {
		reason = "interrupted"
	}

	// ctx may already be cancelled; persisting must still happen.
	saveCtx := context.WithoutCancel(ctx)
	if err := persistRun(saveCtx, store, cfg, runID, startTime, res, reason); err != nil {
		logger.Error("failed to persist run", "run_id", runID, "error", err)
	}

	best, hasBest := tr.Best()
	if hasBest {
		championPath := filepath.Join(cfg.Logging.ArtifactsDir, "champion_final.json")
		if err := logging.SaveChampion(championPath, best, res.Generations); err != nil {
			logger.Warn("failed to save final champion", "error", err)
		}
	}
	if replay != nil {
		if interrupted && hasBest {
			replay.Finish(res.Generations, best)
		}
		replayPath := filepath.Join(cfg.Logging.ArtifactsDir, "replay.json")
		if err := replay.Save(replayPath); err != nil {
			logger.Warn("failed to save replay", "error", err)
		}
	}

	fmt.Println("---")
	fmt.Printf("Training %s after %d generations in %v (%s)\n", res.State, res.Generations, elapsed.Round(time.Millisecond), reason)
	fmt.Printf("Run ID: %s\n", runID)
	fmt.Printf("Best: fitness=%.6f terms=%d\n", res.Best.Fitness, res.Best.Len())
	fmt.Printf("Formula: %s\n", res.Best.String())

	if interrupted {
		return nil
	}
	return runErr
}

func persistRun(ctx context.Context, store storage.Store, cfg *config.Config, runID string, started time.Time, res trainer.Result, reason string) error {
	run := storage.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		CreatedAt:       started.UTC(),
		Seed:            cfg.Seed,
		Population:      cfg.Population,
		Hyper:           cfg.Hyper,
		Target:          cfg.Target,
		Generations:     res.Generations,
		State:           res.State.String(),
		Reason:          reason,
		BestFitness:     res.Best.Fitness,
		Formula:         res.Best.String(),
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	if err := store.SaveChampion(ctx, storage.ChampionRecord{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           runID,
		Generation:      res.Generations,
		Agent:           res.Best,
	}); err != nil {
		return err
	}
	return store.SaveFitnessHistory(ctx, runID, res.History)
}

func serveMetrics(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

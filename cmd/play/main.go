package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wavefit/internal/config"
	"wavefit/internal/fitness"
	"wavefit/internal/logging"
	"wavefit/internal/signal"
	"wavefit/internal/storage"
	"wavefit/internal/wave"
)

var (
	configPath   string
	storeKind    string
	sqlitePath   string
	championPath string
	runID        string
	replayPath   string
	delay        int
	width        int
	height       int
	noDisplay    bool
)

var rootCmd = &cobra.Command{
	Use:          "play",
	Short:        "Inspect trained formulas against their target",
	SilenceUsage: true,
}

var championCmd = &cobra.Command{
	Use:   "champion",
	Short: "Plot a saved champion over its target",
	Long: `Loads a champion either from a JSON artifact or, with --run, from the
run store, and draws it over the target the run was trained on.

Examples:
  play champion --champion artifacts/champion_final.json
  play champion --run 6f1c... --store sqlite`,
	RunE: runChampion,
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Animate how the best formula evolved during a run",
	RunE:  runReplay,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs, newest first",
	RunE:  runRuns,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/sine.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "sqlite", "run store backend (memory|sqlite)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", "runs/wavefit.db", "sqlite database path")
	rootCmd.PersistentFlags().IntVar(&width, "width", 72, "plot width in columns")
	rootCmd.PersistentFlags().IntVar(&height, "height", 20, "plot height in rows")

	championCmd.Flags().StringVar(&championPath, "champion", "artifacts/champion_final.json", "path to champion JSON")
	championCmd.Flags().StringVar(&runID, "run", "", "load the champion of this stored run instead")

	replayCmd.Flags().StringVar(&replayPath, "file", "artifacts/replay.json", "path to replay JSON")
	replayCmd.Flags().IntVar(&delay, "delay", 200, "delay between frames in milliseconds")
	replayCmd.Flags().BoolVar(&noDisplay, "no-display", false, "print frame stats without plotting")

	rootCmd.AddCommand(championCmd, replayCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(cmd *cobra.Command) (storage.Store, error) {
	store, err := storage.NewStore(storeKind, sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(cmd.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

func runChampion(cmd *cobra.Command, _ []string) error {
	var (
		agent      wave.Agent
		generation int
		spec       signal.Spec
	)

	if runID != "" {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer storage.CloseIfSupported(store)

		run, ok, err := store.GetRun(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("run %s not found", runID)
		}
		champion, ok, err := store.GetChampion(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("run %s has no champion", runID)
		}
		agent, generation, spec = champion.Agent, champion.Generation, run.Target
	} else {
		champion, err := logging.LoadChampion(championPath)
		if err != nil {
			return fmt.Errorf("loading champion: %w", err)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		agent, generation, spec = champion.Agent, champion.Generation, cfg.Target
	}

	target, err := signal.Generate(spec)
	if err != nil {
		return err
	}
	score, err := fitness.NewScorer(target).Score(&agent)
	if err != nil {
		return err
	}
	fit, err := agent.Sample(target.Grid(), nil)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded champion from gen %d\n", generation)
	fmt.Printf("Formula: %s\n", agent.String())
	Render(os.Stdout, target.Samples, fit, width, height,
		fmt.Sprintf("Fitness: %.6f | MSE: %.6g | Terms: %d", score.Fitness, score.MSE, agent.Len()))
	return nil
}

func runReplay(cmd *cobra.Command, _ []string) error {
	replay, err := logging.LoadReplay(replayPath)
	if err != nil {
		return fmt.Errorf("loading replay: %w", err)
	}
	if len(replay.Frames) == 0 {
		return fmt.Errorf("replay %s has no frames", replayPath)
	}

	frameDelay := time.Duration(delay) * time.Millisecond
	for i, frame := range replay.Frames {
		status := fmt.Sprintf("Gen %4d | Fitness: %.6f | %s", frame.Generation, frame.Fitness, frame.Agent.String())
		if noDisplay {
			fmt.Println(status)
			continue
		}

		fit, err := replay.Playback(i)
		if err != nil {
			return err
		}
		clearScreen()
		Render(os.Stdout, replay.Target.Samples, fit, width, height, status)

		select {
		case <-cmd.Context().Done():
			return nil
		case <-time.After(frameDelay):
		}
	}
	return nil
}

func runRuns(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTARGET\tGENS\tSTATE\tBEST\tFORMULA")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.6f\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Target.Kind, r.Generations, r.State, r.BestFitness, r.Formula)
	}
	return tw.Flush()
}

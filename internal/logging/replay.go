package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"wavefit/internal/signal"
	"wavefit/internal/trainer"
	"wavefit/internal/wave"
)

// Frame is the best agent at one generation
type Frame struct {
	Generation int        `json:"generation"`
	Fitness    float64    `json:"fitness"`
	Agent      wave.Agent `json:"agent"`
}

// Replay stores how the best formula evolved during a run
type Replay struct {
	Seed   uint64        `json:"seed"`
	Target signal.Target `json:"target"`
	Every  int           `json:"every"`
	Frames []Frame       `json:"frames"`
}

// NewReplay creates a recorder that keeps every n-th generation. The final
// generation is always kept.
func NewReplay(seed uint64, target signal.Target, every int) *Replay {
	if every < 1 {
		every = 1
	}
	return &Replay{
		Seed:   seed,
		Target: target,
		Every:  every,
		Frames: make([]Frame, 0, 64),
	}
}

// Record has the trainer.Observer signature
func (r *Replay) Record(rep trainer.Report) {
	if rep.Generation%r.Every != 0 && !rep.State.Terminal() {
		return
	}
	r.Frames = append(r.Frames, Frame{
		Generation: rep.Generation,
		Fitness:    rep.Best.Fitness,
		Agent:      rep.Best,
	})
}

// Finish appends best as the frame for gen unless gen is already the last
// recorded frame. Runs that stop without a terminal report use it.
func (r *Replay) Finish(gen int, best wave.Agent) {
	if n := len(r.Frames); n > 0 && r.Frames[n-1].Generation == gen {
		return
	}
	r.Frames = append(r.Frames, Frame{
		Generation: gen,
		Fitness:    best.Fitness,
		Agent:      best,
	})
}

// Save writes the replay to a file
func (r *Replay) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadReplay loads a replay from a file
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Target.Len() == 0 {
		return nil, errors.New("replay has no target samples")
	}
	return &r, nil
}

// Playback samples frame i over the target grid
func (r *Replay) Playback(i int) ([]float64, error) {
	if i < 0 || i >= len(r.Frames) {
		return nil, errors.New("frame out of range")
	}
	a := r.Frames[i].Agent
	return a.Sample(r.Target.Grid(), nil)
}

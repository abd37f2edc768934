package storage

import (
	"time"

	"github.com/google/uuid"

	"wavefit/internal/ga"
	"wavefit/internal/signal"
	"wavefit/internal/wave"
)

// VersionedRecord tags every stored payload with the layout it was written in
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CurrentVersion is the version new records are written with
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// RunRecord describes one training run
type RunRecord struct {
	VersionedRecord
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Seed        uint64             `json:"seed"`
	Population  int                `json:"population"`
	Hyper       ga.HyperParameters `json:"hyper"`
	Target      signal.Spec        `json:"target"`
	Generations int                `json:"generations"`
	State       string             `json:"state"`
	Reason      string             `json:"reason,omitempty"`
	BestFitness float64            `json:"best_fitness"`
	Formula     string             `json:"formula"`
}

// ChampionRecord is the best agent of a run
type ChampionRecord struct {
	VersionedRecord
	RunID      string     `json:"run_id"`
	Generation int        `json:"generation"`
	Agent      wave.Agent `json:"agent"`
}

// NewRunID returns a fresh random run identifier
func NewRunID() string {
	return uuid.NewString()
}

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"

	"wavefit/internal/wave"
)

// Champion is the saved form of a best agent
type Champion struct {
	Generation int        `json:"generation"`
	Fitness    float64    `json:"fitness"`
	MSE        float64    `json:"mse"`
	Formula    string     `json:"formula"`
	Agent      wave.Agent `json:"agent"`
}

// SaveChampion writes agent to path as indented JSON
func SaveChampion(path string, agent wave.Agent, gen int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(Champion{
		Generation: gen,
		Fitness:    agent.Fitness,
		MSE:        championMSE(agent.Fitness),
		Formula:    agent.String(),
		Agent:      agent,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadChampion reads a champion written by SaveChampion
func LoadChampion(path string) (Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Champion{}, err
	}

	var c Champion
	if err := json.Unmarshal(data, &c); err != nil {
		return Champion{}, err
	}
	return c, nil
}

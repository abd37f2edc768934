package storage

import (
	"encoding/json"
	"errors"
)

// Versions written into every stored payload
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch is returned when a payload was written by another layout
var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeRun serializes a run record
func EncodeRun(r RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRun parses a run record and checks its version
func DecodeRun(data []byte) (RunRecord, error) {
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return RunRecord{}, err
	}
	return run, nil
}

// EncodeChampion serializes a champion record
func EncodeChampion(c ChampionRecord) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeChampion parses a champion record and checks its version
func DecodeChampion(data []byte) (ChampionRecord, error) {
	var champion ChampionRecord
	if err := json.Unmarshal(data, &champion); err != nil {
		return ChampionRecord{}, err
	}
	if err := checkVersion(champion.VersionedRecord); err != nil {
		return ChampionRecord{}, err
	}
	return champion, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

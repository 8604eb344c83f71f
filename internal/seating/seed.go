package seating

import (
	"encoding/json"
	"fmt"
	"os"
)

// Seed is the startup description of areas and their seats.
type Seed struct {
	Areas []AreaSpec `json:"areas"`
}

// ParseSeed decodes a seed document.
func ParseSeed(b []byte) (Seed, error) {
	var s Seed
	if err := json.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if len(s.Areas) == 0 {
		return Seed{}, fmt.Errorf("seed has no areas")
	}
	return s, nil
}

// LoadSeed reads the seed from path when set, else decodes fallback.
func LoadSeed(path string, fallback []byte) (Seed, error) {
	if path == "" {
		return ParseSeed(fallback)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(b)
}

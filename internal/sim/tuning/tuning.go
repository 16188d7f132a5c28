package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"contestsim/internal/sim/contest"
	"contestsim/internal/sim/round"
	"contestsim/internal/sim/scoring"
)

type Tuning struct {
	// PointPool is the multiset each channel draws from per entrant.
	PointPool []int `yaml:"point_pool"`
	// Seeds populate a fresh roster and define the odds ResetOddsToDefault restores.
	Seeds []contest.Seed `yaml:"seeds"`
	// Display selects how the per-row jury/televote breakdown is shown.
	Display string `yaml:"display"`

	RosterPath    string `yaml:"roster_path"`
	HistoryLimit  int    `yaml:"history_limit"`
	CompressSaves bool   `yaml:"compress_saves"`
}

func Defaults() Tuning {
	return Tuning{
		PointPool:    scoring.DefaultPool(),
		Seeds:        contest.DefaultSeeds(),
		Display:      string(round.DisplayConsistent),
		RosterPath:   "roster.json",
		HistoryLimit: 10,
	}
}

// Load reads a tuning file. Keys missing from the file keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if err := scoring.Pool(t.PointPool).Validate(); err != nil {
		return err
	}
	for _, s := range t.Seeds {
		if s.Odds < 0 {
			return fmt.Errorf("seed %q: negative odds", s.Name)
		}
	}
	if _, err := round.ParseDisplayMode(t.Display); err != nil {
		return err
	}
	if t.HistoryLimit < 0 {
		return fmt.Errorf("history_limit %d is negative", t.HistoryLimit)
	}
	return nil
}

func (t Tuning) DisplayMode() round.DisplayMode {
	m, err := round.ParseDisplayMode(t.Display)
	if err != nil {
		return round.DisplayConsistent
	}
	return m
}

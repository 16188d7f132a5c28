package contest

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

type Entrant struct {
	Name  string
	Odds  float64
	Score int
}

// Seed is a canonical entrant used to populate a fresh registry and by
// ResetOddsToDefault.
type Seed struct {
	Name string  `yaml:"name"`
	Odds float64 `yaml:"odds"`
}

func DefaultSeeds() []Seed {
	return []Seed{
		{Name: "France", Odds: 10},
		{Name: "Germany", Odds: 15},
		{Name: "Italy", Odds: 8},
		{Name: "Spain", Odds: 12},
		{Name: "United Kingdom", Odds: 5},
	}
}

// Registry is the ordered roster of entrants. It is owned by a single
// session and is not safe for concurrent use.
type Registry struct {
	entrants []Entrant
	seeds    []Seed
}

// NewRegistry returns a registry populated with seeds in order. Seeds with
// negative odds are rejected.
func NewRegistry(seeds []Seed) (*Registry, error) {
	r := &Registry{seeds: append([]Seed(nil), seeds...)}
	for _, s := range seeds {
		if err := r.Add(s.Name, s.Odds); err != nil {
			return nil, fmt.Errorf("seed %q: %w", s.Name, err)
		}
	}
	return r, nil
}

func validOdds(odds float64) error {
	if math.IsNaN(odds) || math.IsInf(odds, 0) || odds < 0 {
		return fmt.Errorf("odds %v: %w", odds, ErrInvalidArgument)
	}
	return nil
}

func (r *Registry) Len() int { return len(r.entrants) }

// Add appends a new entrant with a zero score. Duplicate names are allowed.
func (r *Registry) Add(name string, odds float64) error {
	if err := validOdds(odds); err != nil {
		return err
	}
	r.entrants = append(r.entrants, Entrant{Name: name, Odds: odds})
	return nil
}

func (r *Registry) find(name string) int {
	for i := range r.entrants {
		if strings.EqualFold(r.entrants[i].Name, name) {
			return i
		}
	}
	return -1
}

// Remove deletes the first entrant whose name matches case-insensitively.
func (r *Registry) Remove(name string) (Entrant, error) {
	i := r.find(name)
	if i < 0 {
		return Entrant{}, fmt.Errorf("entrant %q: %w", name, ErrNotFound)
	}
	e := r.entrants[i]
	r.entrants = append(r.entrants[:i], r.entrants[i+1:]...)
	return e, nil
}

// UpdateOdds sets the odds of the first case-insensitive match.
func (r *Registry) UpdateOdds(name string, odds float64) (Entrant, error) {
	if err := validOdds(odds); err != nil {
		return Entrant{}, err
	}
	i := r.find(name)
	if i < 0 {
		return Entrant{}, fmt.Errorf("entrant %q: %w", name, ErrNotFound)
	}
	r.entrants[i].Odds = odds
	return r.entrants[i], nil
}

// ResetOddsToDefault restores seed odds on entrants whose name exactly
// matches a seed name. Other entrants keep their odds.
func (r *Registry) ResetOddsToDefault() {
	canonical := make(map[string]float64, len(r.seeds))
	for _, s := range r.seeds {
		if _, ok := canonical[s.Name]; !ok {
			canonical[s.Name] = s.Odds
		}
	}
	for i := range r.entrants {
		if odds, ok := canonical[r.entrants[i].Name]; ok {
			r.entrants[i].Odds = odds
		}
	}
}

// All yields entrants in storage order. The sequence can be ranged over
// any number of times.
func (r *Registry) All() iter.Seq[Entrant] {
	return func(yield func(Entrant) bool) {
		for i := 0; i < len(r.entrants); i++ {
			if !yield(r.entrants[i]) {
				return
			}
		}
	}
}

// Entrants returns a copy of the roster in storage order.
func (r *Registry) Entrants() []Entrant {
	return append([]Entrant(nil), r.entrants...)
}

// SetScore overwrites the score of the entrant at storage index i.
func (r *Registry) SetScore(i int, score int) {
	r.entrants[i].Score = score
}

// Replace swaps the whole roster. The registry is left untouched when any
// candidate entrant is invalid.
func (r *Registry) Replace(entrants []Entrant) error {
	for _, e := range entrants {
		if err := validOdds(e.Odds); err != nil {
			return fmt.Errorf("entrant %q: %w", e.Name, err)
		}
		if e.Score < 0 {
			return fmt.Errorf("entrant %q: negative score %d: %w", e.Name, e.Score, ErrInvalidArgument)
		}
	}
	r.entrants = append([]Entrant(nil), entrants...)
	return nil
}

// Package scoring draws jury and televote points from a shuffled point pool.
package scoring

import "fmt"

// Shuffler is the randomness source. *math/rand/v2.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Pool is the multiset of points a single channel can award.
type Pool []int

var defaultPool = Pool{1, 2, 3, 4, 5, 6, 8, 10, 12}

func DefaultPool() Pool { return append(Pool(nil), defaultPool...) }

func (p Pool) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("point pool is empty")
	}
	for i, v := range p {
		if v < 0 {
			return fmt.Errorf("point pool[%d]=%d is negative", i, v)
		}
	}
	return nil
}

// Max is the sum of every value in the pool.
func (p Pool) Max() int {
	sum := 0
	for _, v := range p {
		sum += v
	}
	return sum
}

func (p Pool) shuffled(rng Shuffler) []int {
	pts := append([]int(nil), p...)
	rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })
	return pts
}

func (p Pool) take(n int) int {
	if n > len(p) {
		return len(p)
	}
	return n
}

// Jury shuffles the pool and sums the first min(entrants, len(pool)) values.
func (p Pool) Jury(entrants int, rng Shuffler) int {
	if entrants <= 0 {
		return 0
	}
	pts := p.shuffled(rng)
	score := 0
	for i := 0; i < p.take(entrants); i++ {
		score += pts[i]
	}
	return score
}

// Televote shuffles the pool once, adds its prefix sum once per entrant and
// divides the total by the entrant count. It panics when entrants is zero.
func (p Pool) Televote(entrants int, rng Shuffler) int {
	if entrants <= 0 {
		panic(fmt.Sprintf("scoring: televote with %d entrants", entrants))
	}
	pts := p.shuffled(rng)
	score := 0
	for range entrants {
		for i := 0; i < p.take(entrants); i++ {
			score += pts[i]
		}
	}
	score /= entrants
	return score
}

func JuryScore(entrants int, rng Shuffler) int { return defaultPool.Jury(entrants, rng) }

func TelevoteScore(entrants int, rng Shuffler) int { return defaultPool.Televote(entrants, rng) }

package scoring

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

// bounds returns the sum of the n smallest and n largest pool values.
func bounds(p Pool, n int) (lo, hi int) {
	s := append([]int(nil), p...)
	slices.Sort(s)
	k := p.take(n)
	for i := 0; i < k; i++ {
		lo += s[i]
		hi += s[len(s)-1-i]
	}
	return lo, hi
}

func TestJuryScore_Bounds(t *testing.T) {
	rng := seeded(1)
	p := DefaultPool()
	if p.Max() != 51 {
		t.Fatalf("pool max=%d want 51", p.Max())
	}
	for n := 1; n <= 15; n++ {
		lo, hi := bounds(p, n)
		for i := 0; i < 200; i++ {
			got := JuryScore(n, rng)
			if got < lo || got > hi || got > p.Max() {
				t.Fatalf("n=%d: jury=%d outside [%d,%d]", n, got, lo, hi)
			}
		}
	}
}

func TestJuryScore_ZeroEntrants(t *testing.T) {
	if got := JuryScore(0, seeded(2)); got != 0 {
		t.Fatalf("jury(0)=%d want 0", got)
	}
}

func TestJuryScore_FullPool(t *testing.T) {
	rng := seeded(3)
	for _, n := range []int{9, 10, 26} {
		if got := JuryScore(n, rng); got != DefaultPool().Max() {
			t.Fatalf("n=%d: jury=%d want %d", n, got, DefaultPool().Max())
		}
	}
}

func TestTelevoteScore_EqualsSinglePrefixSum(t *testing.T) {
	// Both channels shuffle the pool exactly once per call, so identical
	// sources must yield the jury prefix sum.
	for n := 1; n <= 12; n++ {
		for seed := uint64(0); seed < 50; seed++ {
			jury := JuryScore(n, seeded(seed))
			tele := TelevoteScore(n, seeded(seed))
			if jury != tele {
				t.Fatalf("n=%d seed=%d: televote=%d prefix=%d", n, seed, tele, jury)
			}
		}
	}
}

func TestTelevoteScore_PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	TelevoteScore(0, seeded(4))
}

func TestPool_DoesNotMutate(t *testing.T) {
	p := DefaultPool()
	before := append(Pool(nil), p...)
	rng := seeded(5)
	for i := 0; i < 10; i++ {
		p.Jury(5, rng)
		p.Televote(5, rng)
	}
	if !slices.Equal(p, before) {
		t.Fatalf("pool mutated: %v", p)
	}
}

func TestPool_Validate(t *testing.T) {
	if err := DefaultPool().Validate(); err != nil {
		t.Fatalf("default: %v", err)
	}
	if err := (Pool{}).Validate(); err == nil {
		t.Fatalf("empty pool accepted")
	}
	if err := (Pool{1, -2}).Validate(); err == nil {
		t.Fatalf("negative value accepted")
	}
}

func TestPool_Custom(t *testing.T) {
	p := Pool{7, 7, 7}
	rng := seeded(6)
	if got := p.Jury(2, rng); got != 14 {
		t.Fatalf("jury=%d want 14", got)
	}
	if got := p.Televote(5, rng); got != 21 {
		t.Fatalf("televote=%d want 21", got)
	}
}

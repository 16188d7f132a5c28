// Package round runs a full voting round over a registry.
package round

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"contestsim/internal/sim/contest"
	"contestsim/internal/sim/scoring"
)

type DisplayMode string

const (
	// DisplayConsistent shows the jury/televote draws that formed each total.
	DisplayConsistent DisplayMode = "consistent"
	// DisplayLegacy draws fresh jury/televote values for the displayed
	// columns, so a row's breakdown does not add up to its total.
	DisplayLegacy DisplayMode = "legacy"
)

func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DisplayConsistent:
		return DisplayConsistent, nil
	case DisplayLegacy:
		return DisplayLegacy, nil
	default:
		return "", fmt.Errorf("display mode %q: %w", s, contest.ErrInvalidArgument)
	}
}

type Options struct {
	Pool    scoring.Pool
	Display DisplayMode
	Now     func() time.Time
}

type Row struct {
	Rank     int    `json:"rank"`
	Name     string `json:"name"`
	Jury     int    `json:"jury"`
	Televote int    `json:"televote"`
	Total    int    `json:"total"`
}

type Result struct {
	ID        string      `json:"round_id"`
	StartedAt time.Time   `json:"started_at"`
	Display   DisplayMode `json:"display"`
	Entrants  int         `json:"entrants"`
	Rows      []Row       `json:"rows"`
	Winner    string      `json:"winner"`
}

// Simulate scores every entrant, writes the totals back into reg and returns
// the ranked view. Storage order in reg is not changed. Odds are not read.
func Simulate(reg *contest.Registry, rng scoring.Shuffler, opts Options) (Result, error) {
	n := reg.Len()
	if n == 0 {
		return Result{}, contest.ErrEmptyRegistry
	}
	pool := opts.Pool
	if len(pool) == 0 {
		pool = scoring.DefaultPool()
	}
	display := opts.Display
	if display == "" {
		display = DisplayConsistent
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	res := Result{
		ID:        uuid.NewString(),
		StartedAt: now().UTC(),
		Display:   display,
		Entrants:  n,
		Rows:      make([]Row, 0, n),
	}
	i := 0
	for e := range reg.All() {
		jury := pool.Jury(n, rng)
		tele := pool.Televote(n, rng)
		reg.SetScore(i, jury+tele)
		res.Rows = append(res.Rows, Row{Name: e.Name, Jury: jury, Televote: tele, Total: jury + tele})
		i++
	}

	sort.SliceStable(res.Rows, func(a, b int) bool {
		return res.Rows[a].Total > res.Rows[b].Total
	})
	for k := range res.Rows {
		res.Rows[k].Rank = k + 1
		if display == DisplayLegacy {
			res.Rows[k].Jury = pool.Jury(n, rng)
			res.Rows[k].Televote = pool.Televote(n, rng)
		}
	}
	res.Winner = res.Rows[0].Name
	return res, nil
}

func WriteReport(w io.Writer, res Result) error {
	var b strings.Builder
	b.WriteString("Contest Results:\n")
	b.WriteString("Entrant           | Jury Points | Televote Points | Total Points\n")
	b.WriteString("------------------+-------------+-----------------+-------------\n")
	for _, r := range res.Rows {
		fmt.Fprintf(&b, "%-18s | %-11d | %-15d | %-11d\n", r.Name, r.Jury, r.Televote, r.Total)
	}
	fmt.Fprintf(&b, "\nThe winner is: %s\n", res.Winner)
	_, err := io.WriteString(w, b.String())
	return err
}

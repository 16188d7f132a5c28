package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"contestsim/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional; defaults to <data>/index/contest.sqlite)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "rounds"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "contest.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx := context.Background()
	switch q {
	case "rounds":
		rounds, err := idx.RecentRounds(ctx, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		for _, r := range rounds {
			printJSON(struct {
				RoundID   string `json:"round_id"`
				StartedAt string `json:"started_at"`
				Entrants  int    `json:"entrants"`
				Winner    string `json:"winner"`
				TopScore  int    `json:"top_score"`
			}{r.ID, r.StartedAt.Format(time.RFC3339), r.Entrants, r.Winner, r.TopScore})
		}
	case "wins":
		wins, err := idx.Wins(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		names := make([]string, 0, len(wins))
		for name := range wins {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if wins[names[i]] != wins[names[j]] {
				return wins[names[i]] > wins[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			printJSON(map[string]any{"name": name, "wins": wins[name]})
		}
	case "saves":
		saves, err := idx.Saves(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		for _, s := range saves {
			printJSON(map[string]any{"path": s.Path, "entrants": s.Entrants, "saved_at": s.SavedAt.Format(time.RFC3339)})
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(want rounds|wins|saves)")
		os.Exit(2)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

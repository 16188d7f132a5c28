package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "contestsim/internal/persistence/log"
	"contestsim/internal/persistence/roster"
	"contestsim/internal/sim/contest"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "roster":
			rosterCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "log":
			logCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin roster|db|log [flags]")
	os.Exit(2)
}

func rosterCmd(args []string) {
	fs := flag.NewFlagSet("roster", flag.ExitOnError)
	file := fs.String("file", "", "saved roster (.json or .json.zst)")
	asJSON := fs.Bool("json", false, "print JSON lines instead of a table")
	_ = fs.Parse(args)

	if strings.TrimSpace(*file) == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}
	entrants, err := roster.Load(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load roster (%s): %v\n", contest.Code(err), err)
		os.Exit(1)
	}
	for i, e := range entrants {
		if *asJSON {
			printJSON(roster.EntrantV1{Name: e.Name, Odds: e.Odds, Score: e.Score})
			continue
		}
		fmt.Printf("%2d. %-18s odds=%6.2f score=%d\n", i+1, e.Name, e.Odds, e.Score)
	}
}

func logCmd(args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	rounds, err := persistlog.ReadRounds(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read rounds:", err)
		os.Exit(1)
	}
	if len(rounds) == 0 {
		fmt.Fprintln(os.Stderr, "no rounds logged in", filepath.Join(*dataDir, "rounds"))
		os.Exit(2)
	}
	for _, r := range rounds {
		printJSON(r)
	}
}

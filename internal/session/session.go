// Package session drives the contest core from a line-oriented text menu.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"contestsim/internal/persistence/indexdb"
	persistlog "contestsim/internal/persistence/log"
	"contestsim/internal/persistence/roster"
	"contestsim/internal/sim/contest"
	"contestsim/internal/sim/round"
	"contestsim/internal/sim/scoring"
)

type RoundWriter interface {
	WriteRound(r round.Result) error
}

type AuditWriter interface {
	WriteEvent(ev persistlog.RosterEvent) error
}

type Index interface {
	RecordRound(ctx context.Context, r round.Result) error
	RecordSave(ctx context.Context, path string, entrants int) error
	RecentRounds(ctx context.Context, limit int) ([]indexdb.RoundSummary, error)
}

type Config struct {
	Registry *contest.Registry
	Rand     scoring.Shuffler
	Pool     scoring.Pool
	Display  round.DisplayMode

	In     io.Reader
	Out    io.Writer
	Logger *log.Logger

	// DefaultPath is used when the user enters an empty save/load path.
	DefaultPath  string
	HistoryLimit int

	Rounds RoundWriter
	Audit  AuditWriter
	Index  Index
}

type Session struct {
	cfg Config
	reg *contest.Registry
	in  *bufio.Scanner
	out io.Writer
	log *log.Logger
}

func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	return &Session{
		cfg: cfg,
		reg: cfg.Registry,
		in:  bufio.NewScanner(cfg.In),
		out: cfg.Out,
		log: cfg.Logger,
	}
}

const menu = `
Menu:
1. View current odds
2. Update odds for an entrant
3. Add a new entrant
4. Remove an entrant
5. Reset odds to default
6. Simulate contest
7. Save current state
8. Load saved state
9. Exit
10. View round history
`

// Run loops until the user exits, input ends or ctx is cancelled. Errors
// from individual actions are reported and never end the loop.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.print(menu)
		choice, ok := s.prompt("\nEnter your choice: ")
		if !ok {
			return s.in.Err()
		}
		switch choice {
		case "1":
			s.viewOdds()
		case "2":
			s.updateOdds()
		case "3":
			s.addEntrant()
		case "4":
			s.removeEntrant()
		case "5":
			s.reg.ResetOddsToDefault()
			s.audit(persistlog.RosterEvent{Action: "reset_odds"})
			s.print("Odds reset to default values.\n")
		case "6":
			s.simulate(ctx)
		case "7":
			s.save(ctx)
		case "8":
			s.load()
		case "9":
			return nil
		case "10":
			s.history(ctx)
		default:
			s.print("Invalid choice. Please try again.\n")
		}
	}
}

func (s *Session) print(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) prompt(label string) (string, bool) {
	s.print("%s\n", label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// readOdds prompts for odds and reports malformed or negative input.
func (s *Session) readOdds(label string) (float64, bool) {
	raw, ok := s.prompt(label)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.fail("parse odds", fmt.Errorf("odds %q: %w", raw, contest.ErrInvalidArgument))
		s.print("Invalid odds. Please enter a valid number.\n")
		return 0, false
	}
	if v < 0 {
		s.fail("parse odds", fmt.Errorf("odds %v is negative: %w", v, contest.ErrInvalidArgument))
		s.print("Odds must be a non-negative number.\n")
		return 0, false
	}
	return v, true
}

func (s *Session) viewOdds() {
	s.print("\nCurrent Odds:\n")
	for e := range s.reg.All() {
		s.print("%s: %.2f\n", e.Name, e.Odds)
	}
}

func (s *Session) updateOdds() {
	name, ok := s.prompt("Enter entrant name: ")
	if !ok {
		return
	}
	odds, ok := s.readOdds("Enter new odds: ")
	if !ok {
		return
	}
	e, err := s.reg.UpdateOdds(name, odds)
	if err != nil {
		s.fail("update odds", err)
		if errors.Is(err, contest.ErrNotFound) {
			s.print("Entrant '%s' not found.\n", name)
		}
		return
	}
	s.audit(persistlog.RosterEvent{Action: "update_odds", Name: e.Name, Odds: odds})
	s.print("Updated odds for %s to %.2f\n", e.Name, odds)
}

func (s *Session) addEntrant() {
	name, ok := s.prompt("Enter new entrant name: ")
	if !ok {
		return
	}
	odds, ok := s.readOdds("Enter odds for the new entrant: ")
	if !ok {
		return
	}
	if err := s.reg.Add(name, odds); err != nil {
		s.fail("add entrant", err)
		s.print("Could not add entrant: %v\n", err)
		return
	}
	s.audit(persistlog.RosterEvent{Action: "add", Name: name, Odds: odds})
	s.print("Added entrant: %s\n", name)
}

func (s *Session) removeEntrant() {
	name, ok := s.prompt("Enter entrant name to remove: ")
	if !ok {
		return
	}
	e, err := s.reg.Remove(name)
	if err != nil {
		s.fail("remove entrant", err)
		s.print("Entrant '%s' not found.\n", name)
		return
	}
	s.audit(persistlog.RosterEvent{Action: "remove", Name: e.Name})
	s.print("Removed entrant: %s\n", name)
}

func (s *Session) simulate(ctx context.Context) {
	res, err := round.Simulate(s.reg, s.cfg.Rand, round.Options{Pool: s.cfg.Pool, Display: s.cfg.Display})
	if err != nil {
		s.fail("simulate", err)
		s.print("No entrants registered. Add an entrant before simulating.\n")
		return
	}
	if err := round.WriteReport(s.out, res); err != nil {
		s.log.Printf("write report: %v", err)
	}
	if s.cfg.Rounds != nil {
		if err := s.cfg.Rounds.WriteRound(res); err != nil {
			s.log.Printf("round log: %v", err)
		}
	}
	if s.cfg.Index != nil {
		if err := s.cfg.Index.RecordRound(ctx, res); err != nil {
			s.log.Printf("index round %s: %v", res.ID, err)
		}
	}
	s.log.Printf("round=%s entrants=%d winner=%q", res.ID, res.Entrants, res.Winner)
}

func (s *Session) path(label string) (string, bool) {
	p, ok := s.prompt(label)
	if !ok {
		return "", false
	}
	if p == "" {
		p = s.cfg.DefaultPath
	}
	return p, true
}

func (s *Session) save(ctx context.Context) {
	p, ok := s.path("Enter file path to save state: ")
	if !ok {
		return
	}
	entrants := s.reg.Entrants()
	if err := roster.Save(p, entrants); err != nil {
		s.fail("save", err)
		s.print("Error saving state: %v\n", err)
		return
	}
	s.audit(persistlog.RosterEvent{Action: "save", Path: p, Count: len(entrants)})
	if s.cfg.Index != nil {
		if err := s.cfg.Index.RecordSave(ctx, p, len(entrants)); err != nil {
			s.log.Printf("index save %s: %v", p, err)
		}
	}
	s.print("Current state saved successfully.\n")
}

func (s *Session) load() {
	p, ok := s.path("Enter file path to load saved state: ")
	if !ok {
		return
	}
	candidate, err := roster.Load(p)
	if err == nil {
		err = s.reg.Replace(candidate)
	}
	if err != nil {
		s.fail("load", err)
		switch {
		case errors.Is(err, contest.ErrNotFound):
			s.print("Saved state file not found.\n")
		case errors.Is(err, contest.ErrFormat), errors.Is(err, contest.ErrInvalidArgument):
			s.print("Error loading state: %v\n", err)
			s.print("The loaded state is not in the expected format.\n")
		default:
			s.print("Error loading state: %v\n", err)
		}
		return
	}
	s.audit(persistlog.RosterEvent{Action: "load", Path: p, Count: len(candidate)})
	s.print("Saved state loaded successfully.\n")
}

func (s *Session) history(ctx context.Context) {
	if s.cfg.Index == nil {
		s.print("Round history is disabled.\n")
		return
	}
	rounds, err := s.cfg.Index.RecentRounds(ctx, s.cfg.HistoryLimit)
	if err != nil {
		s.fail("history", err)
		s.print("Error reading round history: %v\n", err)
		return
	}
	if len(rounds) == 0 {
		s.print("No rounds simulated yet.\n")
		return
	}
	s.print("\nRecent rounds:\n")
	for _, r := range rounds {
		s.print("%s  %-18s %3d pts  (%d entrants)\n", r.StartedAt.Local().Format(time.DateTime), r.Winner, r.TopScore, r.Entrants)
	}
}

func (s *Session) fail(action string, err error) {
	s.log.Printf("%s: code=%s err=%v", action, contest.Code(err), err)
}

func (s *Session) audit(ev persistlog.RosterEvent) {
	if s.cfg.Audit == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if err := s.cfg.Audit.WriteEvent(ev); err != nil {
		s.log.Printf("audit %s: %v", ev.Action, err)
	}
}

package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"contestsim/internal/sim/round"
	"contestsim/internal/sim/tuning"
)

func openTemp(t *testing.T) (*SQLiteIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx, path
}

func result(id, winner string, total int) round.Result {
	return round.Result{
		ID:        id,
		StartedAt: time.Date(2026, 5, 16, 21, 0, 0, 0, time.UTC),
		Display:   round.DisplayConsistent,
		Entrants:  2,
		Rows: []round.Row{
			{Rank: 1, Name: winner, Jury: total / 2, Televote: total - total/2, Total: total},
			{Rank: 2, Name: "Other", Jury: 1, Televote: 1, Total: 2},
		},
		Winner: winner,
	}
}

func TestSQLiteIndex_RecordRound(t *testing.T) {
	ctx := context.Background()
	idx, _ := openTemp(t)

	for i, r := range []round.Result{result("r1", "Italy", 40), result("r2", "Spain", 33), result("r3", "Italy", 51)} {
		if err := idx.RecordRound(ctx, r); err != nil {
			t.Fatalf("RecordRound %d: %v", i, err)
		}
	}

	got, err := idx.RecentRounds(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRounds: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r3" || got[1].ID != "r2" {
		t.Fatalf("recent=%+v", got)
	}
	if got[0].TopScore != 51 || got[0].Winner != "Italy" || got[0].Entrants != 2 {
		t.Fatalf("summary=%+v", got[0])
	}
	if !got[0].StartedAt.Equal(time.Date(2026, 5, 16, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("started=%v", got[0].StartedAt)
	}

	wins, err := idx.Wins(ctx)
	if err != nil {
		t.Fatalf("Wins: %v", err)
	}
	if wins["Italy"] != 2 || wins["Spain"] != 1 {
		t.Fatalf("wins=%v", wins)
	}

	if err := idx.RecordRound(ctx, result("r1", "France", 9)); err == nil {
		t.Fatalf("duplicate round id accepted")
	}
}

func TestSQLiteIndex_SavesAndTuning(t *testing.T) {
	ctx := context.Background()
	idx, path := openTemp(t)

	if err := idx.RecordSave(ctx, "/tmp/roster.json", 5); err != nil {
		t.Fatalf("RecordSave: %v", err)
	}
	if err := idx.UpsertTuning(ctx, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertTuning: %v", err)
	}
	saves, err := idx.Saves(ctx)
	if err != nil {
		t.Fatalf("Saves: %v", err)
	}
	if len(saves) != 1 || saves[0].Path != "/tmp/roster.json" || saves[0].Entrants != 5 {
		t.Fatalf("saves=%+v", saves)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var digest string
	if err := db.QueryRow(`SELECT digest FROM settings WHERE name='tuning'`).Scan(&digest); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(digest) != 64 {
		t.Fatalf("digest=%q", digest)
	}
}

func TestSQLiteIndex_NilIsNoop(t *testing.T) {
	var idx *SQLiteIndex
	ctx := context.Background()
	if err := idx.RecordRound(ctx, result("x", "y", 1)); err != nil {
		t.Fatalf("RecordRound: %v", err)
	}
	if got, err := idx.RecentRounds(ctx, 5); err != nil || got != nil {
		t.Fatalf("RecentRounds=%v,%v", got, err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

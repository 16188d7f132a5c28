package log

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"contestsim/internal/sim/round"
)

func TestRoundLogger_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	l := NewRoundLogger(dir)
	for i, winner := range []string{"Italy", "Spain"} {
		r := round.Result{
			ID:       winner,
			Entrants: 2,
			Rows:     []round.Row{{Rank: 1, Name: winner, Jury: 10, Televote: 12, Total: 22}},
			Winner:   winner,
		}
		if err := l.WriteRound(r); err != nil {
			t.Fatalf("WriteRound %d: %v", i, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadRounds(dir)
	if err != nil {
		t.Fatalf("ReadRounds: %v", err)
	}
	if len(got) != 2 || got[0].Winner != "Italy" || got[1].Winner != "Spain" {
		t.Fatalf("rounds=%+v", got)
	}
	if got[0].Rows[0].Total != 22 {
		t.Fatalf("row=%+v", got[0].Rows[0])
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "audit")
	clock := time.Date(2026, 5, 16, 20, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	_ = w.Write(RosterEvent{Action: "add", Name: "Malta"})
	clock = clock.Add(2 * time.Minute)
	_ = w.Write(RosterEvent{Action: "remove", Name: "Malta"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "audit-*.jsonl.zst"))
	if len(files) != 2 {
		t.Fatalf("files=%v want 2", files)
	}

	var actions []string
	err := ReadJSONL(dir, "audit", func(line []byte) error {
		var ev RosterEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return err
		}
		actions = append(actions, ev.Action)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(actions) != 2 || actions[0] != "add" || actions[1] != "remove" {
		t.Fatalf("actions=%v", actions)
	}
}

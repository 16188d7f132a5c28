package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"contestsim/internal/sim/round"
	"contestsim/internal/sim/tuning"
)

// SQLiteIndex is a queryable read model of simulated rounds and saves.
// The JSONL round log remains the source of truth.
type SQLiteIndex struct {
	db *sql.DB
}

type RoundSummary struct {
	ID        string
	StartedAt time.Time
	Entrants  int
	Winner    string
	TopScore  int
}

type SaveRecord struct {
	Path     string
	Entrants int
	SavedAt  time.Time
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			round_id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			entrants INTEGER NOT NULL,
			winner TEXT NOT NULL,
			display TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS round_results (
			round_id TEXT NOT NULL REFERENCES rounds(round_id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			name TEXT NOT NULL,
			jury INTEGER NOT NULL,
			televote INTEGER NOT NULL,
			total INTEGER NOT NULL,
			PRIMARY KEY (round_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_round_results_name ON round_results(name);`,
		`CREATE TABLE IF NOT EXISTS saves (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			entrants INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRound stores a round and its ranked rows in one transaction.
func (s *SQLiteIndex) RecordRound(ctx context.Context, r round.Result) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rounds(round_id,started_at,entrants,winner,display,raw_json) VALUES(?,?,?,?,?,?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Entrants, r.Winner, string(r.Display), string(raw),
	); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO round_results(round_id,rank,name,jury,televote,total) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range r.Rows {
		if _, err := stmt.ExecContext(ctx, r.ID, row.Rank, row.Name, row.Jury, row.Televote, row.Total); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) RecordSave(ctx context.Context, path string, entrants int) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saves(path,entrants,saved_at) VALUES(?,?,?)`,
		path, entrants, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// UpsertTuning stores the tuning values actually applied, keyed by digest.
func (s *SQLiteIndex) UpsertTuning(ctx context.Context, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings(name,digest,json,updated_at) VALUES(?,?,?,?)`,
		"tuning", hex.EncodeToString(sum[:]), string(b), now,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// RecentRounds lists up to limit rounds, newest first.
func (s *SQLiteIndex) RecentRounds(ctx context.Context, limit int) ([]RoundSummary, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.round_id, r.started_at, r.entrants, r.winner, COALESCE(MAX(rr.total), 0)
		FROM rounds r LEFT JOIN round_results rr ON rr.round_id = r.round_id
		GROUP BY r.seq
		ORDER BY r.seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundSummary
	for rows.Next() {
		var (
			rs      RoundSummary
			started string
		)
		if err := rows.Scan(&rs.ID, &started, &rs.Entrants, &rs.Winner, &rs.TopScore); err != nil {
			return nil, err
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Wins counts round wins per entrant name across every recorded round.
func (s *SQLiteIndex) Wins(ctx context.Context) (map[string]int, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT winner, COUNT(*) FROM rounds GROUP BY winner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Saves(ctx context.Context) ([]SaveRecord, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT path, entrants, saved_at FROM saves ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaveRecord
	for rows.Next() {
		var (
			rec   SaveRecord
			saved string
		)
		if err := rows.Scan(&rec.Path, &rec.Entrants, &saved); err != nil {
			return nil, err
		}
		rec.SavedAt, _ = time.Parse(time.RFC3339Nano, saved)
		out = append(out, rec)
	}
	return out, rows.Err()
}

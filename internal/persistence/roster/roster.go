// Package roster reads and writes the saved entrant list.
package roster

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"contestsim/internal/sim/contest"
)

//go:embed roster.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// EntrantV1 is the on-disk shape of one entrant.
type EntrantV1 struct {
	Name  string  `json:"name"`
	Odds  float64 `json:"odds"`
	Score int     `json:"score"`
}

func rosterSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("roster.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Save writes entrants in the given order. Paths ending in .zst are
// zstd-compressed. The file is replaced atomically.
func Save(path string, entrants []contest.Entrant) error {
	rows := make([]EntrantV1, 0, len(entrants))
	for _, e := range entrants {
		rows = append(rows, EntrantV1{Name: e.Name, Odds: e.Odds, Score: e.Score})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := writeFile(path, b, strings.HasSuffix(path, ".zst")); err != nil {
		return fmt.Errorf("save %s: %v: %w", path, err, contest.ErrIO)
	}
	return nil
}

func writeFile(path string, b []byte, compress bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := writePayload(f, b, compress); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writePayload(w io.Writer, b []byte, compress bool) error {
	if !compress {
		_, err := w.Write(b)
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	if _, err := bw.Write(b); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Load reads a saved roster. Compressed files are detected by content.
// Nothing is returned unless the whole file validates.
func Load(path string) ([]contest.Entrant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("roster %s: %w", path, contest.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %v: %w", path, err, contest.ErrIO)
	}
	if bytes.HasPrefix(raw, zstdMagic) {
		raw, err = decompress(raw)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %v: %w", path, err, contest.ErrFormat)
		}
	}
	return Decode(raw)
}

func decompress(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(raw, nil)
}

// Decode validates raw JSON against the roster schema and converts it.
func Decode(raw []byte) ([]contest.Entrant, error) {
	s, err := rosterSchema()
	if err != nil {
		return nil, fmt.Errorf("compile roster schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse roster: %v: %w", err, contest.ErrFormat)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate roster: %v: %w", err, contest.ErrFormat)
	}
	var rows []EntrantV1
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode roster: %v: %w", err, contest.ErrFormat)
	}
	out := make([]contest.Entrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, contest.Entrant{Name: r.Name, Odds: r.Odds, Score: r.Score})
	}
	return out, nil
}

package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"contestsim/internal/sim/round"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	p := writeFile(t, "display: legacy\nhistory_limit: 3\n")
	tune, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tune.DisplayMode() != round.DisplayLegacy || tune.HistoryLimit != 3 {
		t.Fatalf("tune=%+v", tune)
	}
	if len(tune.PointPool) != 9 || len(tune.Seeds) != 5 {
		t.Fatalf("defaults lost: pool=%v seeds=%v", tune.PointPool, tune.Seeds)
	}
}

func TestLoad_CustomSeedsAndPool(t *testing.T) {
	p := writeFile(t, `
point_pool: [12, 10, 8]
seeds:
  - name: Sweden
    odds: 3.5
  - name: Norway
    odds: 40
`)
	tune, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tune.PointPool) != 3 || tune.PointPool[0] != 12 {
		t.Fatalf("pool=%v", tune.PointPool)
	}
	if len(tune.Seeds) != 2 || tune.Seeds[0].Name != "Sweden" || tune.Seeds[0].Odds != 3.5 {
		t.Fatalf("seeds=%+v", tune.Seeds)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"negative odds": "seeds:\n  - name: X\n    odds: -1\n",
		"empty pool":    "point_pool: []\n",
		"bad display":   "display: sideways\n",
		"bad yaml":      "point_pool: [1, 2\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("err=%v want not-exist", err)
	}
}

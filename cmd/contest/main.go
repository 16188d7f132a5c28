package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contestsim/internal/persistence/indexdb"
	persistlog "contestsim/internal/persistence/log"
	"contestsim/internal/session"
	"contestsim/internal/sim/contest"
	"contestsim/internal/sim/scoring"
	"contestsim/internal/sim/tuning"
)

func main() {
	logger := log.New(os.Stderr, "[contest] ", log.LstdFlags|log.Lmicroseconds)

	// .env only supplies defaults; real environment variables win.
	if err := godotenv.Load(envFile(os.Args[1:])); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatalf("load env: %v", err)
	}

	var (
		_          = flag.String("env", ".env", "dotenv file with CONTEST_* defaults")
		configDir  = flag.String("configs", envOr("CONTEST_CONFIGS", "./configs"), "config directory")
		tuningPath = flag.String("tuning", envOr("CONTEST_TUNING", ""), "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", envOr("CONTEST_DATA", "./data"), "runtime data directory")
		seed       = flag.Uint64("seed", envUint("CONTEST_SEED", 0), "random seed (0 = time based)")
		disableDB  = flag.Bool("disable_db", envBool("CONTEST_DISABLE_DB", false), "disable the round history index")
		noLog      = flag.Bool("disable_round_log", envBool("CONTEST_DISABLE_ROUND_LOG", false), "disable JSONL round/audit logs")
	)
	flag.Parse()

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	reg, err := contest.NewRegistry(tune.Seeds)
	if err != nil {
		logger.Fatalf("registry: %v", err)
	}

	s1 := *seed
	if s1 == 0 {
		s1 = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(s1, s1>>1|1))
	logger.Printf("seed=%d entrants=%d display=%s", s1, reg.Len(), tune.DisplayMode())

	ctx, cancel := signalContext()
	defer cancel()

	defaultPath := tune.RosterPath
	if tune.CompressSaves && !strings.HasSuffix(defaultPath, ".zst") {
		defaultPath += ".zst"
	}
	if !filepath.IsAbs(defaultPath) {
		defaultPath = filepath.Join(*dataDir, defaultPath)
	}

	cfg := session.Config{
		Registry:     reg,
		Rand:         rng,
		Pool:         scoring.Pool(tune.PointPool),
		Display:      tune.DisplayMode(),
		In:           os.Stdin,
		Out:          os.Stdout,
		Logger:       logger,
		DefaultPath:  defaultPath,
		HistoryLimit: tune.HistoryLimit,
	}

	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "contest.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertTuning(ctx, tune); err != nil {
			logger.Printf("index: upsert tuning: %v", err)
		}
		cfg.Index = idx
	}
	if !*noLog {
		rounds := persistlog.NewRoundLogger(*dataDir)
		defer rounds.Close()
		audit := persistlog.NewAuditLogger(*dataDir)
		defer audit.Close()
		cfg.Rounds = rounds
		cfg.Audit = audit
	}

	if err := session.New(cfg).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Printf("session: %v", err)
	}
}

// envFile finds -env before flag parsing so the dotenv file can seed flag defaults.
func envFile(args []string) string {
	for i, a := range args {
		switch {
		case a == "-env" || a == "--env":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-env="):
			return strings.TrimPrefix(a, "-env=")
		case strings.HasPrefix(a, "--env="):
			return strings.TrimPrefix(a, "--env=")
		}
	}
	return ".env"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envUint(key string, def uint64) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

// signalContext cancels on SIGINT/SIGTERM and closes stdin so a blocked
// menu read returns.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
			_ = os.Stdin.Close()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

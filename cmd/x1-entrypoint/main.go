// x1-entrypoint runs the sanity program against a serialized input region,
// either read from a file or built from accounts in a local store.
package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/fortiblox/x1-entrypoint/pkg/accounts"
	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/program/sanity"
	"github.com/fortiblox/x1-entrypoint/pkg/replayer"
	"github.com/fortiblox/x1-entrypoint/pkg/svm/syscall"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "dev"
)

type options struct {
	configFile   string
	dataDir      string
	logLevel     string
	inputFile    string
	dumpFile     string
	computeUnits uint64
	showVersion  bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	opts := &options{}
	fs.StringVar(&opts.configFile, "config", "x1-entrypoint.json", "Path to JSON configuration file")
	fs.StringVar(&opts.dataDir, "data-dir", "", "Account store directory (:memory: for an in-memory store)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&opts.inputFile, "input", "", "Run the program over this serialized input (.zst for compressed)")
	fs.StringVar(&opts.dumpFile, "dump", "", "Write the serialized input to this file (.zst for compressed)")
	fs.Uint64Var(&opts.computeUnits, "compute-units", 0, "Compute budget for the invocation")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	fs := flag.NewFlagSet("x1-entrypoint", flag.ExitOnError)
	opts, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Printf("x1-entrypoint %s (%s)\n", Version, GitCommit)
		os.Exit(0)
	}

	cfg, found, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyConfigWithCLIOverrides(fs, cfg, opts)

	logger, err := newLogger(opts.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	syscall.SetLogger(logger)

	if !found {
		logger.Info("config file not found, using defaults", zap.String("path", opts.configFile))
	}

	if opts.inputFile != "" {
		code := runInputFile(logger, opts)
		_ = logger.Sync()
		os.Exit(code)
	}
	if err := runInvocation(logger, opts, cfg); err != nil {
		logger.Error("invocation failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// runInputFile executes the sanity program directly over a saved input
// region. A bad region terminates the process through the host's abort.
func runInputFile(logger *zap.Logger, opts *options) int {
	buf, err := readInput(opts.inputFile)
	if err != nil {
		logger.Error("failed to read input", zap.Error(err))
		return 1
	}

	var programID types.Pubkey
	if len(buf) >= types.PubkeySize {
		copy(programID[:], buf[len(buf)-types.PubkeySize:])
	}
	ctx := syscall.NewExecutionContext(programID, nil, nil, opts.computeUnits)
	host := syscall.NewHost(ctx, syscall.WithExit(func(code int) {
		printLogs(ctx.GetLogs())
		_ = logger.Sync()
		os.Exit(code)
	}))

	status := sanity.Entrypoint(buf, host)
	printLogs(ctx.GetLogs())
	logger.Info("program finished",
		zap.Uint64("status", status),
		zap.Uint64("compute_units", ctx.GetComputeUnitsConsumed()),
		zap.Int("input_bytes", len(buf)))
	if status != entrypoint.Success || ctx.Err() != nil {
		return 1
	}
	return 0
}

// runInvocation builds the configured instruction from the account store,
// runs it and persists the changes.
func runInvocation(logger *zap.Logger, opts *options, cfg Config) error {
	db, err := openStore(opts.dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seedFixtures(logger, db, cfg.Fixtures); err != nil {
		return err
	}

	ix, err := cfg.Invocation.Instruction()
	if err != nil {
		return err
	}

	registry := replayer.NewProgramRegistry()
	registry.RegisterSanity(ix.ProgramID)
	executor := replayer.NewExecutor(db, registry, logger)
	executor.SetComputeUnitsLimit(types.ComputeUnits(opts.computeUnits))

	if opts.dumpFile != "" {
		in, err := executor.BuildInput(ix)
		if err != nil {
			return err
		}
		if err := writeInput(opts.dumpFile, in.Buf); err != nil {
			return err
		}
		digest := in.Digest()
		logger.Info("wrote serialized input", zap.String("path", opts.dumpFile),
			zap.Int("bytes", len(in.Buf)),
			zap.String("digest", hex.EncodeToString(digest[:])))
	}

	result, err := executor.Execute(ix)
	if err != nil {
		return err
	}
	printLogs(result.Logs)
	logger.Info("program finished",
		zap.Stringer("program", ix.ProgramID),
		zap.Uint64("status", result.Status),
		zap.Uint64("compute_units", uint64(result.ComputeUnits)),
		zap.Int("account_deltas", len(result.AccountDeltas)),
		zap.Uint64("stored_accounts", db.GetAccountsCount()))
	return result.Err
}

func openStore(dataDir string) (accounts.AccountsDB, error) {
	if dataDir == ":memory:" {
		return accounts.NewMemoryDB(), nil
	}
	dbPath := filepath.Join(dataDir, "accounts")
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := accounts.NewBadgerDB(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func seedFixtures(logger *zap.Logger, db accounts.AccountsDB, fixtures []FixtureAccount) error {
	for _, f := range fixtures {
		if db.HasAccount(f.Pubkey) {
			continue
		}
		account, err := f.Account()
		if err != nil {
			return err
		}
		if err := db.SetAccount(f.Pubkey, account); err != nil {
			return err
		}
		logger.Debug("seeded account", zap.Stringer("pubkey", f.Pubkey), zap.Uint64("lamports", f.Lamports))
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd stream: %w", err)
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

func writeInput(path string, buf []byte) error {
	if !strings.HasSuffix(path, ".zst") {
		return os.WriteFile(path, buf, 0o644)
	}
	var out bytes.Buffer
	enc, err := zstd.NewWriter(&out)
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}

func printLogs(logs []string) {
	for _, l := range logs {
		fmt.Println(l)
	}
}

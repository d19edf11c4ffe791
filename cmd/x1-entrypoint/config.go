package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Config represents the JSON configuration file structure.
type Config struct {
	General    GeneralConfig    `json:"general"`
	Invocation InvocationConfig `json:"invocation"`
	Fixtures   []FixtureAccount `json:"fixtures"`
}

// GeneralConfig holds general application settings.
type GeneralConfig struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
}

// InvocationConfig describes the instruction to run against the store.
type InvocationConfig struct {
	ProgramID       types.Pubkey    `json:"program_id"`
	InstructionData string          `json:"instruction_data"` // hex
	ComputeUnits    uint64          `json:"compute_units"`
	Accounts        []AccountConfig `json:"accounts"`
}

// AccountConfig is one account meta of the instruction.
type AccountConfig struct {
	Pubkey   types.Pubkey `json:"pubkey"`
	Signer   bool         `json:"signer"`
	Writable bool         `json:"writable"`
}

// FixtureAccount seeds the store when the account is missing.
type FixtureAccount struct {
	Pubkey     types.Pubkey `json:"pubkey"`
	Lamports   uint64       `json:"lamports"`
	Owner      types.Pubkey `json:"owner"`
	Data       string       `json:"data"` // base64
	Executable bool         `json:"executable"`
	RentEpoch  uint64       `json:"rent_epoch"`
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir:  ":memory:",
			LogLevel: "info",
		},
		Invocation: InvocationConfig{
			ProgramID:    types.BPFLoader2ProgramID,
			ComputeUnits: uint64(types.DefaultComputeUnitsPerInstruction),
		},
	}
}

// loadConfig loads configuration from the specified JSON file.
// If the file doesn't exist, it returns the default configuration.
func loadConfig(configPath string) (Config, bool, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, false, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, true, nil
}

// applyConfigWithCLIOverrides fills flag values from cfg unless the flag
// was set explicitly on the command line.
func applyConfigWithCLIOverrides(fs *flag.FlagSet, cfg Config, opts *options) {
	flagSet := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		flagSet[f.Name] = true
	})

	if !flagSet["data-dir"] {
		opts.dataDir = cfg.General.DataDir
	}
	if !flagSet["log-level"] {
		opts.logLevel = cfg.General.LogLevel
	}
	if !flagSet["compute-units"] {
		opts.computeUnits = cfg.Invocation.ComputeUnits
	}
}

// Instruction converts the invocation section into an instruction.
func (c InvocationConfig) Instruction() (*types.Instruction, error) {
	data, err := hex.DecodeString(c.InstructionData)
	if err != nil {
		return nil, fmt.Errorf("invalid instruction_data: %w", err)
	}
	ix := &types.Instruction{
		ProgramID: c.ProgramID,
		Data:      data,
		Accounts:  make([]types.AccountMeta, len(c.Accounts)),
	}
	for i, a := range c.Accounts {
		ix.Accounts[i] = types.AccountMeta{
			Pubkey:     a.Pubkey,
			IsSigner:   a.Signer,
			IsWritable: a.Writable,
		}
	}
	return ix, nil
}

// Account converts a fixture into a stored account.
func (f FixtureAccount) Account() (*types.Account, error) {
	data, err := base64.StdEncoding.DecodeString(f.Data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: invalid data: %w", f.Pubkey, err)
	}
	return &types.Account{
		Lamports:   types.Lamports(f.Lamports),
		Data:       data,
		Owner:      f.Owner,
		Executable: f.Executable,
		RentEpoch:  types.Epoch(f.RentEpoch),
	}, nil
}

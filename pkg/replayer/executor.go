// Package replayer executes single instructions against an account store:
// it loads the accounts, serializes the program input, runs the program and
// persists what the program changed.
package replayer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fortiblox/x1-entrypoint/pkg/accounts"
	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/svm/input"
	"github.com/fortiblox/x1-entrypoint/pkg/svm/syscall"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Executor errors
var (
	// ErrInvalidInstruction indicates a nil or malformed instruction.
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrProgramFailed indicates the program returned a nonzero status.
	ErrProgramFailed = errors.New("program returned error")
)

// Executor runs instructions against an account store.
type Executor struct {
	accountsDB        accounts.AccountsDB
	programRegistry   *ProgramRegistry
	computeUnitsLimit types.ComputeUnits
	logger            *zap.Logger
}

// NewExecutor creates a new instruction executor.
func NewExecutor(db accounts.AccountsDB, registry *ProgramRegistry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		accountsDB:        db,
		programRegistry:   registry,
		computeUnitsLimit: types.DefaultComputeUnitsPerInstruction,
		logger:            logger,
	}
}

// SetComputeUnitsLimit sets the compute budget given to each instruction.
func (e *Executor) SetComputeUnitsLimit(limit types.ComputeUnits) {
	e.computeUnitsLimit = limit
}

// Execute runs ix. Program failures are reported in the Result; the
// returned error covers problems loading or storing accounts.
func (e *Executor) Execute(ix *types.Instruction) (*Result, error) {
	if ix == nil {
		return nil, ErrInvalidInstruction
	}

	program, ok := e.programRegistry.GetProgram(ix.ProgramID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, ix.ProgramID)
	}

	infos, snapshots, err := e.loadAccounts(ix.Accounts)
	if err != nil {
		return nil, err
	}

	ctx := syscall.NewExecutionContext(ix.ProgramID, infos, ix.Data, uint64(e.computeUnitsLimit))
	result := &Result{}

	in, err := input.Serialize(ctx)
	if err != nil {
		result.Err = err
		return result, nil
	}

	// An abort fails the instruction; it never terminates the executor.
	host := syscall.NewHost(ctx, syscall.WithExit(func(int) {}))
	result.Status = program(in.Buf, host)
	result.Logs = ctx.GetLogs()
	result.ComputeUnits = types.ComputeUnits(ctx.GetComputeUnitsConsumed())

	e.logger.Debug("instruction executed",
		zap.String("program", e.programRegistry.GetProgramName(ix.ProgramID)),
		zap.Uint64("status", result.Status),
		zap.Uint64("compute_units", uint64(result.ComputeUnits)))

	switch {
	case ctx.Err() != nil:
		result.Err = ctx.Err()
		return result, nil
	case result.Status != entrypoint.Success:
		result.Err = fmt.Errorf("%w: status %d", ErrProgramFailed, result.Status)
		return result, nil
	}

	if err := in.Apply(ctx); err != nil {
		result.Err = err
		return result, nil
	}

	deltas, err := e.storeAccounts(ctx, snapshots)
	if err != nil {
		return result, err
	}
	result.AccountDeltas = deltas
	return result, nil
}

// BuildInput loads ix's accounts and returns the input region the program
// would receive, without running it.
func (e *Executor) BuildInput(ix *types.Instruction) (*input.Input, error) {
	if ix == nil {
		return nil, ErrInvalidInstruction
	}
	infos, _, err := e.loadAccounts(ix.Accounts)
	if err != nil {
		return nil, err
	}
	ctx := syscall.NewExecutionContext(ix.ProgramID, infos, ix.Data, uint64(e.computeUnitsLimit))
	return input.Serialize(ctx)
}

// loadAccounts builds one AccountInfo per meta. Repeated pubkeys share the
// same AccountInfo; missing accounts load as empty system accounts.
func (e *Executor) loadAccounts(metas []types.AccountMeta) ([]*syscall.AccountInfo, map[types.Pubkey]*types.Account, error) {
	infos := make([]*syscall.AccountInfo, len(metas))
	snapshots := make(map[types.Pubkey]*types.Account, len(metas))
	byKey := make(map[types.Pubkey]*syscall.AccountInfo, len(metas))

	for i, meta := range metas {
		if info, ok := byKey[meta.Pubkey]; ok {
			info.IsSigner = info.IsSigner || meta.IsSigner
			info.IsWritable = info.IsWritable || meta.IsWritable
			infos[i] = info
			continue
		}

		account, err := e.accountsDB.GetAccount(meta.Pubkey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load account %s: %w", meta.Pubkey, err)
		}
		snapshots[meta.Pubkey] = account
		if account == nil {
			account = types.NewAccount(0, types.SystemProgramID)
		}

		info := syscall.NewAccountInfo(meta, account)
		byKey[meta.Pubkey] = info
		infos[i] = info
	}

	return infos, snapshots, nil
}

// storeAccounts persists writable accounts that changed.
func (e *Executor) storeAccounts(ctx *syscall.ExecutionContext, snapshots map[types.Pubkey]*types.Account) ([]types.AccountDelta, error) {
	var deltas []types.AccountDelta
	for i, info := range ctx.Accounts {
		if first, _ := ctx.IndexOf(info.Pubkey); first != i || !info.IsWritable {
			continue
		}

		old := snapshots[info.Pubkey]
		updated := info.Account()
		if accountsEqual(old, updated) {
			continue
		}

		if err := e.accountsDB.SetAccount(info.Pubkey, updated); err != nil {
			return deltas, fmt.Errorf("failed to store account %s: %w", info.Pubkey, err)
		}
		deltas = append(deltas, types.AccountDelta{
			Pubkey:     info.Pubkey,
			OldAccount: old,
			NewAccount: updated,
		})
	}
	return deltas, nil
}

// accountsEqual compares two stored accounts. A missing account equals an
// empty system account.
func accountsEqual(a, b *types.Account) bool {
	if a == nil {
		a = types.NewAccount(0, types.SystemProgramID)
	}
	if b == nil {
		b = types.NewAccount(0, types.SystemProgramID)
	}
	return a.Lamports == b.Lamports &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		a.RentEpoch == b.RentEpoch &&
		string(a.Data) == string(b.Data)
}

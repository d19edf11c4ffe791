package syscall

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Context errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrComputeExhausted    = errors.New("compute units exhausted")
	ErrMaxLogsExceeded     = errors.New("maximum log entries exceeded")
	ErrLogTooLong          = errors.New("log message too long")
	ErrInvalidAccountIndex = errors.New("invalid account index")
	ErrAborted             = errors.New("program aborted")
)

// Limits for execution
const (
	MaxLogMessages      = 10_000
	MaxLogMessageLength = 10_000
	MaxInstructionData  = 1232
	MaxAccountDataSize  = types.MaxAccountDataSize
)

// AccountInfo is the host-side copy of an account passed to a program.
type AccountInfo struct {
	Pubkey     types.Pubkey
	Lamports   *uint64 // Pointer allows modification detection
	Data       []byte
	Owner      types.Pubkey
	Executable bool
	RentEpoch  uint64
	IsSigner   bool
	IsWritable bool
}

// NewAccountInfo builds an AccountInfo from a stored account and its meta.
func NewAccountInfo(meta types.AccountMeta, account *types.Account) *AccountInfo {
	lamports := uint64(account.Lamports)
	data := make([]byte, len(account.Data))
	copy(data, account.Data)
	return &AccountInfo{
		Pubkey:     meta.Pubkey,
		Lamports:   &lamports,
		Data:       data,
		Owner:      account.Owner,
		Executable: account.Executable,
		RentEpoch:  uint64(account.RentEpoch),
		IsSigner:   meta.IsSigner,
		IsWritable: meta.IsWritable,
	}
}

// Account converts the info back into a storable account.
func (a *AccountInfo) Account() *types.Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &types.Account{
		Lamports:   types.Lamports(*a.Lamports),
		Data:       data,
		Owner:      a.Owner,
		Executable: a.Executable,
		RentEpoch:  types.Epoch(a.RentEpoch),
	}
}

// Clone creates a deep copy of AccountInfo.
func (a *AccountInfo) Clone() *AccountInfo {
	if a == nil {
		return nil
	}
	lamports := *a.Lamports
	clone := &AccountInfo{
		Pubkey:     a.Pubkey,
		Lamports:   &lamports,
		Owner:      a.Owner,
		Executable: a.Executable,
		RentEpoch:  a.RentEpoch,
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
	}
	if a.Data != nil {
		clone.Data = make([]byte, len(a.Data))
		copy(clone.Data, a.Data)
	}
	return clone
}

// ExecutionContext holds the state of one program invocation.
type ExecutionContext struct {
	mu sync.RWMutex

	// Program being executed
	ProgramID types.Pubkey

	// Accounts in instruction order; a pubkey may appear more than once
	Accounts []*AccountInfo

	// First position of each pubkey in Accounts
	accountIndex map[types.Pubkey]int

	// Instruction data
	InstructionData []byte

	// Compute meter
	computeUnits    uint64
	maxComputeUnits uint64

	// Execution logs
	logs    []string
	maxLogs int

	// First failure raised by a syscall
	err error
}

// NewExecutionContext creates a new execution context.
func NewExecutionContext(programID types.Pubkey, accounts []*AccountInfo, instructionData []byte, computeUnits uint64) *ExecutionContext {
	ctx := &ExecutionContext{
		ProgramID:       programID,
		Accounts:        accounts,
		InstructionData: instructionData,
		computeUnits:    computeUnits,
		maxComputeUnits: computeUnits,
		accountIndex:    make(map[types.Pubkey]int, len(accounts)),
		logs:            make([]string, 0, 64),
		maxLogs:         MaxLogMessages,
	}

	for i, acc := range accounts {
		if _, seen := ctx.accountIndex[acc.Pubkey]; !seen {
			ctx.accountIndex[acc.Pubkey] = i
		}
	}

	return ctx
}

// IndexOf returns the first position of pubkey in Accounts.
func (ctx *ExecutionContext) IndexOf(pubkey types.Pubkey) (int, bool) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	idx, ok := ctx.accountIndex[pubkey]
	return idx, ok
}

// GetAccount returns an account by pubkey.
func (ctx *ExecutionContext) GetAccount(pubkey types.Pubkey) (*AccountInfo, error) {
	idx, ok := ctx.IndexOf(pubkey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey.String())
	}
	return ctx.Accounts[idx], nil
}

// GetAccountByIndex returns an account by index.
func (ctx *ExecutionContext) GetAccountByIndex(index int) (*AccountInfo, error) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	if index < 0 || index >= len(ctx.Accounts) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAccountIndex, index)
	}
	return ctx.Accounts[index], nil
}

// ConsumeComputeUnits deducts compute units.
func (ctx *ExecutionContext) ConsumeComputeUnits(units uint64) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if units > ctx.computeUnits {
		ctx.computeUnits = 0
		return ErrComputeExhausted
	}
	ctx.computeUnits -= units
	return nil
}

// GetComputeUnitsRemaining returns remaining compute units.
func (ctx *ExecutionContext) GetComputeUnitsRemaining() uint64 {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.computeUnits
}

// GetComputeUnitsConsumed returns consumed compute units.
func (ctx *ExecutionContext) GetComputeUnitsConsumed() uint64 {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.maxComputeUnits - ctx.computeUnits
}

// AddLog adds a log message.
func (ctx *ExecutionContext) AddLog(message string) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if len(ctx.logs) >= ctx.maxLogs {
		return ErrMaxLogsExceeded
	}
	if len(message) > MaxLogMessageLength {
		return ErrLogTooLong
	}

	ctx.logs = append(ctx.logs, message)
	return nil
}

// GetLogs returns all log messages.
func (ctx *ExecutionContext) GetLogs() []string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	logs := make([]string, len(ctx.logs))
	copy(logs, ctx.logs)
	return logs
}

// Fail records err as the invocation's failure unless one is already set.
func (ctx *ExecutionContext) Fail(err error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.err == nil {
		ctx.err = err
	}
}

// Err returns the first failure recorded during the invocation.
func (ctx *ExecutionContext) Err() error {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.err
}

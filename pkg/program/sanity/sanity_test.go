package sanity

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/svm/input"
	"github.com/fortiblox/x1-entrypoint/pkg/svm/syscall"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

func newContext(accounts ...*syscall.AccountInfo) *syscall.ExecutionContext {
	return syscall.NewExecutionContext(testPubkey("sanity"), accounts, []byte{9, 9}, uint64(types.DefaultComputeUnitsPerInstruction))
}

func payer() *syscall.AccountInfo {
	lamports := uint64(1000)
	return &syscall.AccountInfo{
		Pubkey:     testPubkey("payer"),
		Lamports:   &lamports,
		Data:       []byte{1, 2, 3},
		Owner:      types.SystemProgramID,
		RentEpoch:  5,
		IsSigner:   true,
		IsWritable: true,
	}
}

func TestEntrypoint_LogsInput(t *testing.T) {
	ctx := newContext(payer())
	in, err := input.Serialize(ctx)
	require.NoError(t, err)

	exited := false
	host := syscall.NewHost(ctx, syscall.WithExit(func(int) { exited = true }))
	status := Entrypoint(in.Buf, host)

	assert.Equal(t, entrypoint.Success, status)
	assert.False(t, exited)
	require.NoError(t, ctx.Err())

	logs := ctx.GetLogs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Program log: sanity", logs[0])
	assert.Equal(t, "Program log: "+ctx.ProgramID.String(), logs[2])
	assert.Contains(t, logs, "Program log: "+testPubkey("payer").String())
	assert.Contains(t, logs, "Program log: 0x0, 0x0, 0x0, 0x0, 0x3e8")
	assert.Contains(t, logs, "Program log: 0x0, 0x0, 0x0, 0x2, 0x3")
	assert.Contains(t, logs, "Program log: - Instruction data")
	assert.Regexp(t, `^Program consumption: \d+ units remaining$`, logs[len(logs)-1])
}

func TestEntrypoint_KeepsOneAccount(t *testing.T) {
	second := payer()
	second.Pubkey = testPubkey("second")
	ctx := newContext(payer(), second)
	in, err := input.Serialize(ctx)
	require.NoError(t, err)

	host := syscall.NewHost(ctx, syscall.WithExit(func(int) {}))
	require.Equal(t, entrypoint.Success, Entrypoint(in.Buf, host))

	logs := ctx.GetLogs()
	assert.Contains(t, logs, "Program log: 0x0, 0x0, 0x0, 0x0, 0x2")
	assert.NotContains(t, logs, "Program log: "+testPubkey("second").String())
}

func TestEntrypoint_AbortsOnBadInput(t *testing.T) {
	ctx := newContext()
	exitCode := -1
	host := syscall.NewHost(ctx, syscall.WithExit(func(code int) { exitCode = code }))

	status := Entrypoint([]byte{1, 0, 0}, host)

	assert.Equal(t, entrypoint.ErrorStatus, status)
	assert.Equal(t, 1, exitCode)
	assert.True(t, host.Aborted())
	assert.ErrorIs(t, ctx.Err(), syscall.ErrAborted)
}

func TestProcess_NullInput(t *testing.T) {
	host := syscall.NewHost(newContext(), syscall.WithExit(func(int) {}))
	assert.ErrorIs(t, Process(nil, host), entrypoint.ErrNullInput)
}

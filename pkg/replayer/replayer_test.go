package replayer

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortiblox/x1-entrypoint/pkg/accounts"
	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

// transferProgram moves the amount in instruction data[0] from account 0
// to account 1 by writing through the decoded balances.
func transferProgram(input []byte, rt entrypoint.Runtime) uint64 {
	var ka [2]entrypoint.AccountInfo
	params := entrypoint.Parameters{Accounts: ka[:]}
	if err := entrypoint.Deserialize(input, &params); err != nil || len(params.KeptAccounts()) < 2 {
		rt.Abort()
		return entrypoint.ErrorStatus
	}
	amount := uint64(params.InstructionData[0])
	from, to := &ka[0], &ka[1]
	if from.Lamports.Get() < amount {
		rt.Log("insufficient funds")
		return 2
	}
	from.Lamports.Set(from.Lamports.Get() - amount)
	to.Lamports.Set(to.Lamports.Get() + amount)
	rt.Log("transferred")
	return entrypoint.Success
}

type fixture struct {
	db       *accounts.MemoryDB
	exec     *Executor
	program  types.Pubkey
	from, to types.Pubkey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      accounts.NewMemoryDB(),
		program: testPubkey("transfer"),
		from:    testPubkey("from"),
		to:      testPubkey("to"),
	}
	registry := NewProgramRegistry()
	registry.RegisterProgram(f.program, "transfer", transferProgram)
	registry.RegisterSanity(testPubkey("sanity"))
	f.exec = NewExecutor(f.db, registry, nil)

	require.NoError(t, f.db.SetAccount(f.from, types.NewAccount(100, types.SystemProgramID)))
	return f
}

func (f *fixture) transfer(amount byte, toWritable bool) *types.Instruction {
	return &types.Instruction{
		ProgramID: f.program,
		Accounts: []types.AccountMeta{
			{Pubkey: f.from, IsSigner: true, IsWritable: true},
			{Pubkey: f.to, IsWritable: toWritable},
		},
		Data: []byte{amount},
	}
}

func TestExecutor_PersistsChanges(t *testing.T) {
	f := newFixture(t)

	result, err := f.exec.Execute(f.transfer(30, true))
	require.NoError(t, err)
	require.True(t, result.Success(), "%v", result.Err)
	assert.Equal(t, []string{"Program log: transferred"}, result.Logs)
	assert.NotZero(t, result.ComputeUnits)

	from, err := f.db.GetAccount(f.from)
	require.NoError(t, err)
	assert.Equal(t, types.Lamports(70), from.Lamports)

	to, err := f.db.GetAccount(f.to)
	require.NoError(t, err)
	require.NotNil(t, to)
	assert.Equal(t, types.Lamports(30), to.Lamports)

	require.Len(t, result.AccountDeltas, 2)
	assert.False(t, result.AccountDeltas[0].IsCreation())
	assert.True(t, result.AccountDeltas[1].IsCreation())
}

func TestExecutor_ProgramFailureNotPersisted(t *testing.T) {
	f := newFixture(t)

	result, err := f.exec.Execute(f.transfer(200, true))
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, ErrProgramFailed)
	assert.Equal(t, uint64(2), result.Status)

	from, err := f.db.GetAccount(f.from)
	require.NoError(t, err)
	assert.Equal(t, types.Lamports(100), from.Lamports)
	assert.False(t, f.db.HasAccount(f.to))
}

func TestExecutor_ReadOnlyViolation(t *testing.T) {
	f := newFixture(t)

	result, err := f.exec.Execute(f.transfer(10, false))
	require.NoError(t, err)
	assert.Error(t, result.Err)

	from, err := f.db.GetAccount(f.from)
	require.NoError(t, err)
	assert.Equal(t, types.Lamports(100), from.Lamports)
}

func TestExecutor_SelfTransferThroughDuplicate(t *testing.T) {
	f := newFixture(t)
	ix := f.transfer(40, true)
	ix.Accounts[1].Pubkey = f.from

	result, err := f.exec.Execute(ix)
	require.NoError(t, err)
	require.True(t, result.Success(), "%v", result.Err)

	from, err := f.db.GetAccount(f.from)
	require.NoError(t, err)
	assert.Equal(t, types.Lamports(100), from.Lamports)
	assert.Empty(t, result.AccountDeltas)
}

func TestExecutor_AbortFailsInstruction(t *testing.T) {
	f := newFixture(t)
	ix := f.transfer(1, true)
	ix.Accounts = ix.Accounts[:1]

	result, err := f.exec.Execute(ix)
	require.NoError(t, err)
	assert.Error(t, result.Err)
	assert.Equal(t, entrypoint.ErrorStatus, result.Status)
}

func TestExecutor_Sanity(t *testing.T) {
	f := newFixture(t)
	ix := &types.Instruction{
		ProgramID: testPubkey("sanity"),
		Accounts:  []types.AccountMeta{{Pubkey: f.from, IsWritable: true}},
		Data:      []byte{1},
	}

	result, err := f.exec.Execute(ix)
	require.NoError(t, err)
	require.True(t, result.Success(), "%v", result.Err)
	assert.Equal(t, "Program log: sanity", result.Logs[0])
	assert.Empty(t, result.AccountDeltas)
}

func TestExecutor_UnknownProgram(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec.Execute(&types.Instruction{ProgramID: testPubkey("nope")})
	assert.ErrorIs(t, err, ErrProgramNotFound)

	_, err = f.exec.Execute(nil)
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestExecutor_ComputeBudget(t *testing.T) {
	f := newFixture(t)
	f.exec.SetComputeUnitsLimit(50)

	result, err := f.exec.Execute(f.transfer(1, true))
	require.NoError(t, err)
	assert.Error(t, result.Err)

	from, err := f.db.GetAccount(f.from)
	require.NoError(t, err)
	assert.Equal(t, types.Lamports(100), from.Lamports)
}

func TestExecutor_BuildInput(t *testing.T) {
	f := newFixture(t)
	ix := f.transfer(5, true)
	ix.Accounts = append(ix.Accounts, types.AccountMeta{Pubkey: f.from})

	in, err := f.exec.BuildInput(ix)
	require.NoError(t, err)

	var ka [3]entrypoint.AccountInfo
	params := entrypoint.Parameters{Accounts: ka[:]}
	require.NoError(t, entrypoint.Deserialize(in.Buf, &params))
	assert.Equal(t, uint64(3), params.AccountsLen)
	assert.Equal(t, f.program, *params.ProgramID)
	assert.Equal(t, uint64(100), ka[0].Lamports.Get())
	assert.True(t, ka[0].SameStorage(&ka[2]))

	// Building the input does not touch the store.
	assert.False(t, f.db.HasAccount(f.to))
}

func TestExecutor_BuildInputNil(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec.BuildInput(nil)
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

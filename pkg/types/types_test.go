package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubkeyFromBytes_WrongLength(t *testing.T) {
	_, err := PubkeyFromBytes(make([]byte, 31))
	require.Error(t, err)
}

func TestPubkey_Base58RoundTrip(t *testing.T) {
	pk, err := PubkeyFromBase58(BPFLoaderUpgradeableProgramID.String())
	require.NoError(t, err)
	assert.Equal(t, BPFLoaderUpgradeableProgramID, pk)
	assert.True(t, SystemProgramID.IsZero())
	assert.False(t, BPFLoaderProgramID.IsZero())
}

func TestPubkey_JSONText(t *testing.T) {
	type wrapper struct {
		Key Pubkey `json:"key"`
	}
	in := wrapper{Key: BPFLoader2ProgramID}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"BPFLoader2111111111111111111111111111111111"}`, string(raw))

	var out wrapper
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	require.Error(t, json.Unmarshal([]byte(`{"key":"0OIl"}`), &out))
}

func TestAccount_CloneIsDeep(t *testing.T) {
	acc := NewAccountWithData(10, []byte{1, 2, 3}, BPFLoaderProgramID)
	clone := acc.Clone()
	clone.Data[0] = 9
	assert.Equal(t, byte(1), acc.Data[0])
	assert.Equal(t, uint64(3), clone.DataLen())

	var nilAcc *Account
	assert.Nil(t, nilAcc.Clone())
}

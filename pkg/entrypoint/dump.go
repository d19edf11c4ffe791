package entrypoint

// LogParameters writes params to l: program id, account count, then each
// kept account and finally the instruction data.
func LogParameters(l Logger, params *Parameters) {
	l.Log("- Program identifier:")
	l.LogPubkey(params.ProgramID)

	l.Log("- Number of KeyedAccounts")
	l.Log64(0, 0, 0, 0, params.AccountsLen)
	for i := range params.KeptAccounts() {
		a := &params.Accounts[i]
		l.Log("  - Is signer")
		l.Log64(0, 0, 0, 0, boolToU64(a.IsSigner))
		l.Log("  - Is writable")
		l.Log64(0, 0, 0, 0, boolToU64(a.IsWritable))
		l.Log("  - Key")
		l.LogPubkey(a.Key)
		l.Log("  - Lamports")
		l.Log64(0, 0, 0, 0, a.Lamports.Get())
		l.Log("  - data")
		LogArray(l, a.Data)
		l.Log("  - Owner")
		l.LogPubkey(a.Owner)
		l.Log("  - Executable")
		l.Log64(0, 0, 0, 0, boolToU64(a.Executable))
		l.Log("  - Rent Epoch")
		l.Log64(0, 0, 0, 0, a.RentEpoch)
	}
	l.Log("- Instruction data")
	LogArray(l, params.InstructionData)
}

// LogArray writes one Log64 record per byte: (0, 0, 0, index, value).
func LogArray(l Logger, data []byte) {
	for j, b := range data {
		l.Log64(0, 0, 0, uint64(j), uint64(b))
	}
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

package entrypoint

import "github.com/fortiblox/x1-entrypoint/pkg/types"

// Logger is the set of log syscalls a program can reach.
type Logger interface {
	// Log writes a text message.
	Log(msg string)

	// Log64 writes five numeric arguments.
	Log64(arg1, arg2, arg3, arg4, arg5 uint64)

	// LogPubkey writes a public key.
	LogPubkey(pk *types.Pubkey)
}

// Runtime is everything the host provides to a running program.
type Runtime interface {
	Logger

	// LogComputeUnits writes the remaining compute budget.
	LogComputeUnits()

	// Abort terminates the invocation. Hosts are not expected to return.
	Abort()
}

package replayer

import "github.com/fortiblox/x1-entrypoint/pkg/types"

// Result is the outcome of one instruction.
type Result struct {
	// Status is the value the program returned.
	Status uint64

	// Err is set when the instruction failed; account changes were not persisted.
	Err error

	// Logs are the program's log lines in order.
	Logs []string

	// ComputeUnits is the number of compute units consumed.
	ComputeUnits types.ComputeUnits

	// AccountDeltas lists persisted account changes.
	AccountDeltas []types.AccountDelta
}

// Success reports whether the instruction completed.
func (r *Result) Success() bool {
	return r.Err == nil
}

package syscall

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Host implements entrypoint.Runtime on top of an ExecutionContext. Every
// call is charged against the context's compute meter; once the meter is
// exhausted the invocation is marked failed and further logs are dropped.
type Host struct {
	ctx     *ExecutionContext
	exit    func(code int)
	aborted bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithExit replaces the function Abort uses to terminate the process.
func WithExit(fn func(code int)) HostOption {
	return func(h *Host) {
		h.exit = fn
	}
}

// NewHost creates a runtime bound to ctx.
func NewHost(ctx *ExecutionContext, opts ...HostOption) *Host {
	h := &Host{ctx: ctx, exit: os.Exit}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Context returns the execution context the host charges and logs into.
func (h *Host) Context() *ExecutionContext {
	return h.ctx
}

// Aborted reports whether the program called Abort.
func (h *Host) Aborted() bool {
	return h.aborted
}

// Log implements the sol_log_ syscall.
func (h *Host) Log(msg string) {
	if len(msg) > MaxLogMessageLength {
		msg = msg[:MaxLogMessageLength]
	}
	if !h.charge(CULogBase + uint64(len(msg))*CULogPerByte) {
		return
	}
	h.emit("Program log: " + msg)
}

// Log64 implements the sol_log_64_ syscall.
func (h *Host) Log64(arg1, arg2, arg3, arg4, arg5 uint64) {
	if !h.charge(CULog64) {
		return
	}
	h.emit(fmt.Sprintf("Program log: %#x, %#x, %#x, %#x, %#x", arg1, arg2, arg3, arg4, arg5))
}

// LogPubkey implements the sol_log_pubkey syscall.
func (h *Host) LogPubkey(pk *types.Pubkey) {
	if !h.charge(CULogPubkey) {
		return
	}
	if pk == nil {
		h.ctx.Fail(fmt.Errorf("sol_log_pubkey: nil pubkey"))
		return
	}
	h.emit("Program log: " + pk.String())
}

// LogComputeUnits implements the sol_log_compute_units_ syscall.
func (h *Host) LogComputeUnits() {
	if !h.charge(CULogComputeUnits) {
		return
	}
	h.emit(fmt.Sprintf("Program consumption: %d units remaining", h.ctx.GetComputeUnitsRemaining()))
}

// Abort implements the abort syscall. The default exit function does not
// return.
func (h *Host) Abort() {
	h.aborted = true
	h.ctx.Fail(ErrAborted)
	_ = h.ctx.AddLog(fmt.Sprintf("Program %s aborted", h.ctx.ProgramID))
	Logger().Error("program aborted",
		zap.Stringer("program", h.ctx.ProgramID),
		zap.Uint64("consumed", h.ctx.GetComputeUnitsConsumed()))
	h.exit(1)
}

func (h *Host) charge(units uint64) bool {
	if h.ctx.Err() != nil {
		return false
	}
	if err := h.ctx.ConsumeComputeUnits(units); err != nil {
		h.ctx.Fail(err)
		return false
	}
	return true
}

func (h *Host) emit(message string) {
	Logger().Debug(message, zap.Stringer("program", h.ctx.ProgramID))
	if err := h.ctx.AddLog(message); err != nil {
		// Don't fail on log overflow, just stop logging
		Logger().Warn("dropping program log", zap.Error(err))
	}
}

var _ entrypoint.Runtime = (*Host)(nil)

// Package syscall provides the host side of the program runtime: the
// execution context, the compute meter and the log syscalls a program
// reaches through entrypoint.Runtime.
package syscall

import (
	"sync"

	"go.uber.org/zap"
)

// Compute unit costs for syscalls
const (
	CULogBase         uint64 = 100
	CULogPerByte      uint64 = 1
	CULog64           uint64 = 100
	CULogPubkey       uint64 = 100
	CULogComputeUnits uint64 = 100
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package logger. It is a no-op logger until SetLogger
// is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the package logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerOnce.Do(func() {})
	logger = l
}

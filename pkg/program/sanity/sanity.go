// Package sanity is a no-op program that decodes its input and logs it.
// It is used to check that a host serializes the input region correctly.
package sanity

import (
	"fmt"

	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
)

// Name is logged first on every invocation.
const Name = "sanity"

// MaxAccounts is the number of account descriptors the program retains.
const MaxAccounts = 1

// Process decodes input and writes it to rt.
func Process(input []byte, rt entrypoint.Runtime) error {
	rt.Log(Name)

	var ka [MaxAccounts]entrypoint.AccountInfo
	params := entrypoint.Parameters{Accounts: ka[:]}
	if err := entrypoint.Deserialize(input, &params); err != nil {
		return fmt.Errorf("deserialize input: %w", err)
	}

	entrypoint.LogParameters(rt, &params)

	rt.LogComputeUnits()
	return nil
}

// Entrypoint runs Process and aborts through rt on failure.
func Entrypoint(input []byte, rt entrypoint.Runtime) uint64 {
	if err := Process(input, rt); err != nil {
		rt.Abort()
		return entrypoint.ErrorStatus
	}
	return entrypoint.Success
}

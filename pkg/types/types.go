// Package types provides the core X1 data types shared by the entrypoint
// decoder and the host runtime that produces its input.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeySize is the size of a public key in bytes.
const PubkeySize = 32

// Pubkey represents a 32-byte Ed25519 public key.
type Pubkey [PubkeySize]byte

// ZeroPubkey is an all-zero pubkey.
var ZeroPubkey Pubkey

// Well-known program IDs
var (
	SystemProgramID               = MustPubkeyFromBase58("11111111111111111111111111111111")
	BPFLoaderProgramID            = MustPubkeyFromBase58("BPFLoader1111111111111111111111111111111111")
	BPFLoader2ProgramID           = MustPubkeyFromBase58("BPFLoader2111111111111111111111111111111111")
	BPFLoaderUpgradeableProgramID = MustPubkeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
)

// PubkeyFromBytes creates a Pubkey from a byte slice.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != PubkeySize {
		return Pubkey{}, fmt.Errorf("pubkey must be %d bytes, got %d", PubkeySize, len(b))
	}
	var pk Pubkey
	copy(pk[:], b)
	return pk, nil
}

// PubkeyFromBase58 decodes a base58 string into a Pubkey.
func PubkeyFromBase58(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("invalid base58: %w", err)
	}
	return PubkeyFromBytes(b)
}

// MustPubkeyFromBase58 decodes a base58 string or panics.
func MustPubkeyFromBase58(s string) Pubkey {
	pk, err := PubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// Bytes returns the pubkey as a byte slice.
func (pk Pubkey) Bytes() []byte {
	return pk[:]
}

// String returns the base58 representation.
func (pk Pubkey) String() string {
	return base58.Encode(pk[:])
}

// Hex returns the hex representation.
func (pk Pubkey) Hex() string {
	return hex.EncodeToString(pk[:])
}

// IsZero returns true if the pubkey is all zeros.
func (pk Pubkey) IsZero() bool {
	return pk == ZeroPubkey
}

// MarshalText implements encoding.TextMarshaler using base58.
func (pk Pubkey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using base58.
func (pk *Pubkey) UnmarshalText(text []byte) error {
	decoded, err := PubkeyFromBase58(string(text))
	if err != nil {
		return err
	}
	*pk = decoded
	return nil
}

// Epoch represents an epoch number.
type Epoch uint64

// Lamports represents a lamport amount (1 SOL = 1_000_000_000 lamports).
type Lamports uint64

// SOL converts lamports to SOL.
func (l Lamports) SOL() float64 {
	return float64(l) / 1_000_000_000
}

// ComputeUnits represents compute units.
type ComputeUnits uint64

// DefaultComputeUnitsPerInstruction is the budget a single invocation starts with.
const DefaultComputeUnitsPerInstruction ComputeUnits = 200_000

// MaxAccountDataSize is the largest account data a stored account may hold.
const MaxAccountDataSize = 10 * 1024 * 1024 // 10MB

// Package entrypoint decodes the input region a host hands to an on-chain
// program into borrowed account descriptors, instruction data and the
// program id.
//
// Input layout (all integers little-endian):
//
//	count            u64
//	count times:
//	  dup_marker     u8
//	  if dup_marker == 0xFF:
//	    is_signer    u8
//	    is_writable  u8
//	    executable   u8
//	    padding      [4]u8
//	    key          [32]u8
//	    owner        [32]u8
//	    lamports     u64
//	    data_len     u64
//	    data         [data_len]u8
//	    slack        [10240]u8
//	    padding      to 8-byte alignment
//	    rent_epoch   u64
//	  else:
//	    padding      [7]u8
//	instruction_len  u64
//	instruction      [instruction_len]u8
//	program_id       [32]u8
//
// Nothing variable-length is copied. Every reference in Parameters points
// into the input buffer and is valid only while that buffer is.
package entrypoint

import (
	"encoding/binary"

	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Wire constants fixed by the host serializer.
const (
	// NonDupMarker marks an account entry whose fields follow inline.
	NonDupMarker uint8 = 0xFF

	// MaxPermittedDataIncrease is the slack reserved after each account's
	// data so the program can grow it in place.
	MaxPermittedDataIncrease = 10 * 1024

	// canonicalPadding follows the three flag bytes of a canonical entry.
	canonicalPadding = 4

	// duplicatePadding follows the marker of a duplicate entry.
	duplicatePadding = 7

	alignment = 8
)

// Program return statuses.
const (
	Success     uint64 = 0
	ErrorStatus uint64 = 1
)

// Balance is a lamport balance stored in place in the input buffer.
type Balance [8]byte

// Get returns the balance.
func (b *Balance) Get() uint64 {
	return binary.LittleEndian.Uint64(b[:])
}

// Set overwrites the balance in the input buffer.
func (b *Balance) Set(v uint64) {
	binary.LittleEndian.PutUint64(b[:], v)
}

// AccountInfo is a view of one account entry. Key, Lamports, Data and Owner
// alias the input buffer; RentEpoch and the flags are copied.
type AccountInfo struct {
	Key        *types.Pubkey
	Lamports   *Balance
	Data       []byte
	Owner      *types.Pubkey
	RentEpoch  uint64
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// DataLen returns the length of the account data.
func (a *AccountInfo) DataLen() uint64 {
	return uint64(len(a.Data))
}

// SameStorage reports whether a and b are views of the same serialized
// account, as produced for duplicate entries.
func (a *AccountInfo) SameStorage(b *AccountInfo) bool {
	if a.Lamports != b.Lamports || a.Key != b.Key || a.Owner != b.Owner {
		return false
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	return len(a.Data) == 0 || &a.Data[0] == &b.Data[0]
}

// Parameters is the decoded input. Accounts is storage supplied by the
// caller; its length is the number of entries that will be retained.
type Parameters struct {
	Accounts        []AccountInfo
	AccountsLen     uint64 // entries present in the input, may exceed len(Accounts)
	InstructionData []byte
	ProgramID       *types.Pubkey
}

// KeptAccounts returns the populated prefix of Accounts.
func (p *Parameters) KeptAccounts() []AccountInfo {
	if p.AccountsLen < uint64(len(p.Accounts)) {
		return p.Accounts[:p.AccountsLen]
	}
	return p.Accounts
}

// Truncated reports whether the input carried more accounts than were kept.
func (p *Parameters) Truncated() bool {
	return p.AccountsLen > uint64(len(p.Accounts))
}

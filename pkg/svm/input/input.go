// Package input builds the input region a program receives and reads the
// program's changes back out of it after execution.
package input

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/svm/syscall"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

var (
	// ErrTooManyAccounts is returned when a duplicated account sits at an
	// index that cannot be expressed in a one-byte marker.
	ErrTooManyAccounts = errors.New("too many accounts for duplicate marker")

	// ErrInstructionTooLarge is returned when instruction data exceeds
	// syscall.MaxInstructionData.
	ErrInstructionTooLarge = errors.New("instruction data too large")

	// ErrInvalidRealloc is returned when the program grew an account past
	// the reserved slack.
	ErrInvalidRealloc = errors.New("invalid account data realloc")

	// ErrReadOnlyModified is returned when a read-only account changed.
	ErrReadOnlyModified = errors.New("read-only account was modified")
)

const (
	// fixed part of a canonical entry up to and including data_len
	canonicalHeaderSize = 8 + 32 + 32 + 8 + 8
	duplicateEntrySize  = 8
)

// accountLayout records where one entry's mutable fields were written.
type accountLayout struct {
	dupOf       int // -1 for canonical entries
	lamportsOff int
	dataLenOff  int
	dataOff     int
	origLen     int
}

// Input is a serialized input region plus the offsets needed to read the
// program's modifications back.
type Input struct {
	Buf    []byte
	layout []accountLayout
}

func alignUp(n int) int {
	return (n + 7) &^ 7
}

// Serialize lays out ctx's accounts, instruction data and program id. An
// account whose pubkey already appeared is written as a duplicate marker
// pointing at its first position.
func Serialize(ctx *syscall.ExecutionContext) (*Input, error) {
	if len(ctx.InstructionData) > syscall.MaxInstructionData {
		return nil, fmt.Errorf("%w: %d bytes", ErrInstructionTooLarge, len(ctx.InstructionData))
	}

	layout := make([]accountLayout, len(ctx.Accounts))
	size := 8 // num_accounts
	for i, acc := range ctx.Accounts {
		first, _ := ctx.IndexOf(acc.Pubkey)
		if first != i {
			if first >= int(entrypoint.NonDupMarker) {
				return nil, fmt.Errorf("%w: %s first seen at %d", ErrTooManyAccounts, acc.Pubkey, first)
			}
			layout[i] = accountLayout{dupOf: first}
			size += duplicateEntrySize
			continue
		}
		layout[i] = accountLayout{
			dupOf:       -1,
			lamportsOff: size + 8 + 32 + 32,
			dataLenOff:  size + 8 + 32 + 32 + 8,
			dataOff:     size + canonicalHeaderSize,
			origLen:     len(acc.Data),
		}
		size = alignUp(size+canonicalHeaderSize+len(acc.Data)+entrypoint.MaxPermittedDataIncrease) + 8
	}
	size += 8 + len(ctx.InstructionData) + types.PubkeySize

	buf := make([]byte, size)
	offset := 0

	binary.LittleEndian.PutUint64(buf[offset:], uint64(len(ctx.Accounts)))
	offset += 8

	for i, acc := range ctx.Accounts {
		l := layout[i]
		if l.dupOf >= 0 {
			buf[offset] = byte(l.dupOf)
			offset += duplicateEntrySize // marker + padding
			continue
		}

		buf[offset] = entrypoint.NonDupMarker
		buf[offset+1] = boolByte(acc.IsSigner)
		buf[offset+2] = boolByte(acc.IsWritable)
		buf[offset+3] = boolByte(acc.Executable)
		offset += 8 // marker, flags, padding

		copy(buf[offset:], acc.Pubkey[:])
		offset += 32

		copy(buf[offset:], acc.Owner[:])
		offset += 32

		binary.LittleEndian.PutUint64(buf[offset:], *acc.Lamports)
		offset += 8

		binary.LittleEndian.PutUint64(buf[offset:], uint64(len(acc.Data)))
		offset += 8

		copy(buf[offset:], acc.Data)
		offset += len(acc.Data) + entrypoint.MaxPermittedDataIncrease
		offset = alignUp(offset)

		binary.LittleEndian.PutUint64(buf[offset:], acc.RentEpoch)
		offset += 8
	}

	binary.LittleEndian.PutUint64(buf[offset:], uint64(len(ctx.InstructionData)))
	offset += 8

	copy(buf[offset:], ctx.InstructionData)
	offset += len(ctx.InstructionData)

	copy(buf[offset:], ctx.ProgramID[:])

	return &Input{Buf: buf, layout: layout}, nil
}

// Apply copies lamports and data of writable accounts from the input
// region back into ctx. Data may have grown in place by up to
// entrypoint.MaxPermittedDataIncrease bytes. Read-only accounts must be
// unchanged.
func (in *Input) Apply(ctx *syscall.ExecutionContext) error {
	if len(in.layout) != len(ctx.Accounts) {
		return fmt.Errorf("account count mismatch: serialized %d, context has %d",
			len(in.layout), len(ctx.Accounts))
	}

	for i, l := range in.layout {
		if l.dupOf >= 0 {
			continue
		}
		acc := ctx.Accounts[i]

		lamports := binary.LittleEndian.Uint64(in.Buf[l.lamportsOff:])
		dataLen := binary.LittleEndian.Uint64(in.Buf[l.dataLenOff:])
		if dataLen > uint64(l.origLen+entrypoint.MaxPermittedDataIncrease) || dataLen > syscall.MaxAccountDataSize {
			return fmt.Errorf("%w: %s grew from %d to %d bytes",
				ErrInvalidRealloc, acc.Pubkey, l.origLen, dataLen)
		}
		data := in.Buf[l.dataOff : l.dataOff+int(dataLen)]

		if !acc.IsWritable {
			if lamports != *acc.Lamports || !bytes.Equal(data, acc.Data) {
				return fmt.Errorf("%w: %s", ErrReadOnlyModified, acc.Pubkey)
			}
			continue
		}

		*acc.Lamports = lamports
		if len(acc.Data) != len(data) {
			acc.Data = make([]byte, len(data))
		}
		copy(acc.Data, data)
	}

	// Duplicates see whatever their first occurrence ended up with.
	for i, l := range in.layout {
		if l.dupOf < 0 {
			continue
		}
		src, dst := ctx.Accounts[l.dupOf], ctx.Accounts[i]
		if src == dst {
			continue
		}
		*dst.Lamports = *src.Lamports
		dst.Data = append(dst.Data[:0], src.Data...)
	}

	return nil
}

// Digest returns the BLAKE2b-256 hash of the region. Two inputs built from
// the same accounts and instruction have the same digest.
func (in *Input) Digest() [32]byte {
	return blake2b.Sum256(in.Buf)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

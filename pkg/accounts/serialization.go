package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Serialization format:
// - flags:      1 byte  (bit 0: executable, bit 1: data is zstd-compressed)
// - lamports:   8 bytes (little-endian uint64)
// - rent_epoch: 8 bytes (little-endian uint64)
// - owner:      32 bytes
// - data_len:   8 bytes (little-endian uint64, length as stored)
// - data:       data_len bytes
//
// Data at or above compressThreshold bytes is stored zstd-compressed when
// that makes it smaller.

const (
	serializationHeaderSize = 1 + 8 + 8 + 32 + 8

	flagExecutable = 1 << 0
	flagCompressed = 1 << 1

	compressThreshold = 256
)

var (
	// ErrInvalidAccountData is returned when account data is malformed.
	ErrInvalidAccountData = errors.New("invalid account data")
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	})
	return encoder
}

func zstdDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(types.MaxAccountDataSize*2))
	})
	return decoder
}

// SerializeAccount serializes an account to binary format.
func SerializeAccount(account *types.Account) ([]byte, error) {
	if account == nil {
		return nil, errors.New("cannot serialize nil account")
	}
	if len(account.Data) > types.MaxAccountDataSize {
		return nil, fmt.Errorf("%w: data length %d exceeds %d",
			ErrInvalidAccountData, len(account.Data), types.MaxAccountDataSize)
	}

	var flags byte
	if account.Executable {
		flags |= flagExecutable
	}

	payload := account.Data
	if len(payload) >= compressThreshold {
		compressed := zstdEncoder().EncodeAll(payload, nil)
		if len(compressed) < len(payload) {
			payload = compressed
			flags |= flagCompressed
		}
	}

	buf := make([]byte, serializationHeaderSize+len(payload))
	offset := 0

	buf[offset] = flags
	offset++

	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.Lamports))
	offset += 8

	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.RentEpoch))
	offset += 8

	copy(buf[offset:], account.Owner[:])
	offset += 32

	binary.LittleEndian.PutUint64(buf[offset:], uint64(len(payload)))
	offset += 8

	copy(buf[offset:], payload)

	return buf, nil
}

// DeserializeAccount deserializes an account from binary format. The
// returned account does not alias data.
func DeserializeAccount(data []byte) (*types.Account, error) {
	if len(data) < serializationHeaderSize {
		return nil, fmt.Errorf("%w: data too short, need at least %d bytes, got %d",
			ErrInvalidAccountData, serializationHeaderSize, len(data))
	}

	offset := 0

	flags := data[offset]
	offset++

	lamports := types.Lamports(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	rentEpoch := types.Epoch(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	var owner types.Pubkey
	copy(owner[:], data[offset:offset+32])
	offset += 32

	dataLen := binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	if dataLen != uint64(len(data)-offset) {
		return nil, fmt.Errorf("%w: data length mismatch, header says %d bytes, got %d",
			ErrInvalidAccountData, dataLen, len(data)-offset)
	}

	var accountData []byte
	switch {
	case flags&flagCompressed != 0:
		decoded, err := zstdDecoder().DecodeAll(data[offset:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
		}
		accountData = decoded
	case dataLen > 0:
		accountData = make([]byte, dataLen)
		copy(accountData, data[offset:])
	}

	return &types.Account{
		Lamports:   lamports,
		Data:       accountData,
		Owner:      owner,
		Executable: flags&flagExecutable != 0,
		RentEpoch:  rentEpoch,
	}, nil
}

package entrypoint

import (
	"encoding/binary"
	"fmt"

	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// Cursor walks a serialized input region front to back. Reads return
// scalars by value and variable-length fields as sub-slices of the
// original buffer.
type Cursor struct {
	buf     []byte
	pos     uint64
	trusted bool
}

// NewCursor returns a cursor that fails with ErrBufferTooShort instead of
// reading past the end of buf.
func NewCursor(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// NewTrustedCursor returns a cursor that assumes buf was laid out by a
// cooperating host and performs no length comparison of its own.
func NewTrustedCursor(buf []byte) Cursor {
	return Cursor{buf: buf, trusted: true}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() uint64 {
	return c.pos
}

// take is the only place that slices the buffer.
func (c *Cursor) take(n uint64) ([]byte, error) {
	start := c.pos
	// A checked cursor never moves past len(buf), so the subtraction holds.
	if remaining := uint64(len(c.buf)) - start; !c.trusted && n > remaining {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrBufferTooShort, n, start, remaining)
	}
	c.pos = start + n
	return c.buf[start:c.pos:c.pos], nil
}

// ReadU8 reads a single byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a single byte flag; any nonzero value is true.
func (c *Cursor) ReadBool() (bool, error) {
	v, err := c.ReadU8()
	return v != 0, err
}

// ReadU64 reads a little-endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadPubkey returns a pointer to the 32 key bytes inside the buffer.
func (c *Cursor) ReadPubkey() (*types.Pubkey, error) {
	b, err := c.take(types.PubkeySize)
	if err != nil {
		return nil, err
	}
	return (*types.Pubkey)(b), nil
}

// ReadBalance returns a pointer to the 8 balance bytes inside the buffer.
func (c *Cursor) ReadBalance() (*Balance, error) {
	b, err := c.take(8)
	if err != nil {
		return nil, err
	}
	return (*Balance)(b), nil
}

// ReadBytes returns the next n bytes without copying them.
func (c *Cursor) ReadBytes(n uint64) ([]byte, error) {
	return c.take(n)
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n uint64) error {
	_, err := c.take(n)
	return err
}

// Align advances the position to the next multiple of 8.
func (c *Cursor) Align() error {
	aligned := (c.pos + alignment - 1) &^ (alignment - 1)
	return c.Skip(aligned - c.pos)
}

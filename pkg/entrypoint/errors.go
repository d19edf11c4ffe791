package entrypoint

import "errors"

var (
	// ErrNullInput is returned when the input buffer or the destination
	// parameters are absent.
	ErrNullInput = errors.New("null input or destination")

	// ErrBufferTooShort is returned by a checked cursor when a read runs
	// past the end of the input.
	ErrBufferTooShort = errors.New("input buffer too short")

	// ErrInvalidIndex is returned when a duplicate marker does not refer to
	// an account decoded earlier in the same input.
	ErrInvalidIndex = errors.New("invalid duplicate account index")
)

package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no loose object file exists for the id. Packed or
	// absent objects both land here; it is routine, not a failure.
	ErrNotFound = errors.New("object not found")
	// ErrCorruptObject means the object file is not valid zlib data.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrInvalidFormat means the inflated data lacks a "<type> <size>\0" header.
	ErrInvalidFormat = errors.New("invalid object format")
)

// DecodeError records which object a decode failed for.
type DecodeError struct {
	OID OID
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("decode object %s: %v", e.OID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

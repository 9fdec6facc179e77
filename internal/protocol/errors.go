package protocol

import (
	"errors"
	"fmt"

	"github.com/blukai/bridgelink/internal/wire"
)

var (
	// ErrFramingCorrupt means the stream can not be re-synchronised: the
	// magic is wrong or the length fields contradict each other. the
	// connection should be dropped.
	ErrFramingCorrupt = errors.New("protocol: framing corrupt")
	// ErrTruncated means a payload ended before a declared field did.
	ErrTruncated = wire.ErrTruncated
	// ErrInvalidEnumValue means an enum field carried an ordinal with no
	// mapped variant.
	ErrInvalidEnumValue = errors.New("protocol: invalid enum value")
	// ErrUnregisteredKind means a packet (or container sub-kind) has no
	// selector in the registry it was encoded with.
	ErrUnregisteredKind = errors.New("protocol: unregistered kind")
	// ErrFieldType means an object record value does not have the type its
	// schema declares.
	ErrFieldType = errors.New("protocol: field type mismatch")
)

// errUnsupportedObject is internal: an object update referencing a type
// without a schema can not be walked, so the frame becomes Unknown.
var errUnsupportedObject = errors.New("protocol: unsupported object type")

type EnumError struct {
	Enum  string
	Value uint32
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("protocol: invalid %s value %d", e.Enum, e.Value)
}

func (e *EnumError) Is(target error) bool {
	return target == ErrInvalidEnumValue
}

type FrameError struct {
	// Offset of the frame within the buffer handed to Decode.
	Offset   int
	Selector uint32
	Err      error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame at offset %d (selector %#08x): %v", e.Offset, e.Selector, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

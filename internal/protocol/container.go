package protocol

import (
	"encoding"
	"fmt"

	"github.com/blukai/bridgelink/internal/wire"
)

// SubPacket is the body of a container packet: a GameMessage, ShipAction1 or
// ShipAction3 payload starts with Subtype and continues with the sub-packet's
// own fields.
type SubPacket interface {
	Subtype() uint32
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

func marshalContainer(kind Kind, sub SubPacket) ([]byte, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: empty %s", ErrUnregisteredKind, kind)
	}
	body, err := sub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s subtype %#x: %w", kind, sub.Subtype(), err)
	}
	w := wire.NewWriter()
	w.PutUint32(sub.Subtype())
	w.Write(body)
	return w.Bytes(), nil
}

// subTable is one inner dispatch table. tables are built once by
// NewRegistry and only read afterwards.
type subTable[T SubPacket] map[uint32]func() T

func (t subTable[T]) has(subtype uint32) bool {
	_, ok := t[subtype]
	return ok
}

// decode reads the inner selector and hands the rest of data to the
// matching sub-packet, or to unknown when the selector is not in t.
func (t subTable[T]) decode(data []byte, unknown func(subtype uint32) T) (T, error) {
	var zero T

	r := wire.NewReader(data)
	subtype, err := r.Uint32()
	if err != nil {
		return zero, err
	}

	var sub T
	if newSub, ok := t[subtype]; ok {
		sub = newSub()
	} else {
		sub = unknown(subtype)
	}
	if err := sub.UnmarshalBinary(r.Rest()); err != nil {
		return zero, fmt.Errorf("could not unmarshal subtype %#x: %w", subtype, err)
	}
	return sub, nil
}

func marshalRaw(payload []byte) ([]byte, error) {
	if payload == nil {
		return []byte{}, nil
	}
	return payload, nil
}

// emptySub backs sub-packets that are nothing but their selector.
type emptySub struct{}

func (emptySub) MarshalBinary() ([]byte, error) { return []byte{}, nil }
func (emptySub) UnmarshalBinary([]byte) error    { return nil }

// reservedSub backs sub-packets that are their selector plus one word the
// game always sends as zero.
type reservedSub struct{}

func (reservedSub) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(0)
	return w.Bytes(), nil
}

func (reservedSub) UnmarshalBinary(data []byte) error {
	_, err := wire.NewReader(data).Uint32()
	return err
}

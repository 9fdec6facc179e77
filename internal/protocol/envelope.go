package protocol

import (
	"bytes"
	"encoding"
	"fmt"

	"github.com/blukai/bridgelink/internal/byteorder"
	"github.com/blukai/bridgelink/internal/debug"
)

const (
	Magic uint32 = 0xdeadbeef

	// magic (4) + total length (4) + origin (4) + reserved (4) +
	// remaining length (4) = 20
	EnvelopeHeaderSize = 20
	SelectorSize       = 4
	MinFrameSize       = EnvelopeHeaderSize + SelectorSize

	// DefaultMaxFrameLength is an arbitrary ceiling; real frames stay well
	// below a few kilobytes.
	DefaultMaxFrameLength = 1 << 20
)

// Envelope is one framed packet with its payload still undecoded.
type Envelope struct {
	Origin   uint32
	Selector uint32
	Payload  []byte
}

var (
	_ encoding.BinaryMarshaler   = (*Envelope)(nil)
	_ encoding.BinaryUnmarshaler = (*Envelope)(nil)
)

// RemainingLength covers the selector and the payload.
func (e *Envelope) RemainingLength() uint32 {
	return uint32(SelectorSize + len(e.Payload))
}

// TotalLength covers the whole frame, header included.
func (e *Envelope) TotalLength() uint32 {
	return EnvelopeHeaderSize + e.RemainingLength()
}

func (e *Envelope) MarshalBinary() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.Grow(int(e.TotalLength()))

	buf.Write(byteorder.Htole32(Magic))
	buf.Write(byteorder.Htole32(e.TotalLength()))
	buf.Write(byteorder.Htole32(e.Origin))
	buf.Write(byteorder.Htole32(0))
	buf.Write(byteorder.Htole32(e.RemainingLength()))
	buf.Write(byteorder.Htole32(e.Selector))
	buf.Write(e.Payload)

	data := buf.Bytes()
	debug.Assertf(len(data) == int(e.TotalLength()),
		"frame length %d; want %d", len(data), e.TotalLength())

	return data, nil
}

// UnmarshalBinary expects exactly one complete frame.
func (e *Envelope) UnmarshalBinary(data []byte) error {
	if len(data) < EnvelopeHeaderSize {
		return ErrTruncated
	}
	head, err := parseEnvelopeHeader(data[:EnvelopeHeaderSize], 0)
	if err != nil {
		return err
	}
	if len(data) != int(head.totalLength) {
		return fmt.Errorf("%w: total length %d; have %d bytes",
			ErrFramingCorrupt, head.totalLength, len(data))
	}

	e.Origin = head.origin
	e.Selector = byteorder.Letoh32(data[EnvelopeHeaderSize:MinFrameSize])
	e.Payload = bytes.Clone(data[MinFrameSize:])
	if e.Payload == nil {
		e.Payload = []byte{}
	}

	return nil
}

type envelopeHeader struct {
	totalLength     uint32
	origin          uint32
	remainingLength uint32
}

// parseEnvelopeHeader validates everything that can be validated without the
// payload. maxFrameLength of 0 disables the size ceiling.
func parseEnvelopeHeader(data []byte, maxFrameLength uint32) (envelopeHeader, error) {
	debug.Assert(len(data) == EnvelopeHeaderSize)

	if magic := byteorder.Letoh32(data[0:4]); magic != Magic {
		return envelopeHeader{}, fmt.Errorf("%w: bad magic %#08x", ErrFramingCorrupt, magic)
	}

	h := envelopeHeader{
		totalLength:     byteorder.Letoh32(data[4:8]),
		origin:          byteorder.Letoh32(data[8:12]),
		remainingLength: byteorder.Letoh32(data[16:20]),
	}

	if h.totalLength < MinFrameSize {
		return envelopeHeader{}, fmt.Errorf("%w: total length %d below minimum %d",
			ErrFramingCorrupt, h.totalLength, MinFrameSize)
	}
	if uint64(h.totalLength) != EnvelopeHeaderSize+uint64(h.remainingLength) {
		return envelopeHeader{}, fmt.Errorf("%w: total length %d disagrees with remaining length %d",
			ErrFramingCorrupt, h.totalLength, h.remainingLength)
	}
	if maxFrameLength > 0 && h.totalLength > maxFrameLength {
		return envelopeHeader{}, fmt.Errorf("%w: total length %d exceeds limit %d",
			ErrFramingCorrupt, h.totalLength, maxFrameLength)
	}

	return h, nil
}

// ReadEnvelope slices the first frame off buf. n == 0 with a nil error means
// buf does not hold a complete frame yet and nothing was consumed.
func ReadEnvelope(buf []byte, maxFrameLength uint32) (env Envelope, n int, err error) {
	if len(buf) < EnvelopeHeaderSize {
		return Envelope{}, 0, nil
	}

	head, err := parseEnvelopeHeader(buf[:EnvelopeHeaderSize], maxFrameLength)
	if err != nil {
		return Envelope{}, 0, err
	}

	needed := int(head.totalLength)
	if len(buf) < needed {
		return Envelope{}, 0, nil
	}

	if err := env.UnmarshalBinary(buf[:needed]); err != nil {
		return Envelope{}, 0, err
	}
	return env, needed, nil
}

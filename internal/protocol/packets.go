package protocol

import (
	"encoding"
	"fmt"

	"github.com/blukai/bridgelink/internal/wire"
)

// Packet is a decoded payload. the set of implementations is closed: the
// structs in this package plus Unknown.
type Packet interface {
	Kind() Kind
	encoding.BinaryMarshaler
}

// leafPacket is every packet that decodes without a second dispatch.
type leafPacket interface {
	Packet
	encoding.BinaryUnmarshaler
}

// Heartbeat is a keepalive and carries nothing.
type Heartbeat struct{}

var _ leafPacket = (*Heartbeat)(nil)

func (*Heartbeat) Kind() Kind { return KindHeartbeat }

func (*Heartbeat) MarshalBinary() ([]byte, error) {
	return []byte{}, nil
}

func (*Heartbeat) UnmarshalBinary([]byte) error {
	return nil
}

// Welcome is the greeting a server sends right after accept.
type Welcome struct {
	Message string
}

var _ leafPacket = (*Welcome)(nil)

func (*Welcome) Kind() Kind { return KindWelcome }

func (p *Welcome) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	if err := w.PutText(textEncodingOf(KindWelcome), p.Message); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (p *Welcome) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	msg, err := r.Text(textEncodingOf(KindWelcome))
	if err != nil {
		return fmt.Errorf("could not read message: %w", err)
	}
	p.Message = msg
	return nil
}

// CurrentProtocolVersion is what NewVersion advertises in the legacy float
// field.
const CurrentProtocolVersion float32 = 2.1

type Version struct {
	// ProtocolVersion is a legacy float the game still sends. decode keeps
	// whatever arrived so re-encoding does not change it.
	ProtocolVersion float32
	Major           uint32
	Minor           uint32
	Patch           uint32
}

var _ leafPacket = (*Version)(nil)

func NewVersion(major, minor, patch uint32) *Version {
	return &Version{
		ProtocolVersion: CurrentProtocolVersion,
		Major:           major,
		Minor:           minor,
		Patch:           patch,
	}
}

func (*Version) Kind() Kind { return KindVersion }

func (p *Version) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(0)
	w.PutFloat32(p.ProtocolVersion)
	w.PutUint32(p.Major)
	w.PutUint32(p.Minor)
	w.PutUint32(p.Patch)
	return w.Bytes(), nil
}

func (p *Version) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	if _, err := r.Uint32(); err != nil {
		return err
	}
	var err error
	if p.ProtocolVersion, err = r.Float32(); err != nil {
		return err
	}
	if p.Major, err = r.Uint32(); err != nil {
		return err
	}
	if p.Minor, err = r.Uint32(); err != nil {
		return err
	}
	if p.Patch, err = r.Uint32(); err != nil {
		return err
	}
	return nil
}

type Difficulty struct {
	Difficulty uint32
	GameType   GameType
}

var _ leafPacket = (*Difficulty)(nil)

func (*Difficulty) Kind() Kind { return KindDifficulty }

func (p *Difficulty) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(p.Difficulty)
	if err := writeEnum(w, "game type", p.GameType); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (p *Difficulty) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	var err error
	if p.Difficulty, err = r.Uint32(); err != nil {
		return err
	}
	if p.GameType, err = readEnum[GameType](r, "game type"); err != nil {
		return err
	}
	return nil
}

// DefaultIntelType is the discriminant the game uses for scan text.
const DefaultIntelType uint8 = 3

type Intel struct {
	Object    uint32
	IntelType uint8
	Text      string
}

var _ leafPacket = (*Intel)(nil)

func NewIntel(object uint32, text string) *Intel {
	return &Intel{Object: object, IntelType: DefaultIntelType, Text: text}
}

func (*Intel) Kind() Kind { return KindIntel }

func (p *Intel) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(p.Object)
	w.PutUint8(p.IntelType)
	if err := w.PutText(textEncodingOf(KindIntel), p.Text); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (p *Intel) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	var err error
	if p.Object, err = r.Uint32(); err != nil {
		return err
	}
	if p.IntelType, err = r.Uint8(); err != nil {
		return err
	}
	if p.Text, err = r.Text(textEncodingOf(KindIntel)); err != nil {
		return fmt.Errorf("could not read intel: %w", err)
	}
	return nil
}

// ConsoleStatus reports who holds each console on a ship. Consoles is
// indexed by Console; a slot left at its zero value is Available.
type ConsoleStatus struct {
	Ship     uint32
	Consoles [ConsoleCount]ConsoleState
}

var _ leafPacket = (*ConsoleStatus)(nil)

func (*ConsoleStatus) Kind() Kind { return KindConsoleStatus }

func (p *ConsoleStatus) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(p.Ship)
	for _, console := range consoleOrder {
		state := p.Consoles[console]
		if !state.Valid() {
			return nil, &EnumError{Enum: "console state", Value: uint32(state)}
		}
		w.PutUint8(uint8(state))
	}
	return w.Bytes(), nil
}

func (p *ConsoleStatus) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	var err error
	if p.Ship, err = r.Uint32(); err != nil {
		return err
	}
	for _, console := range consoleOrder {
		b, err := r.Uint8()
		if err != nil {
			return err
		}
		state := ConsoleState(b)
		if !state.Valid() {
			return &EnumError{Enum: "console state", Value: uint32(b)}
		}
		p.Consoles[console] = state
	}
	return nil
}

// Unknown is any frame whose selector the registry does not know. it keeps
// the selector, payload and envelope origin verbatim so re-encoding is
// lossless.
type Unknown struct {
	Selector uint32
	Payload  []byte
	// Origin is the envelope origin the frame arrived with. Encode with
	// ProvenanceAuto writes it back when it is a valid provenance.
	Origin Provenance
}

var _ leafPacket = (*Unknown)(nil)

func (*Unknown) Kind() Kind { return KindUnknown }

func (p *Unknown) MarshalBinary() ([]byte, error) {
	return marshalRaw(p.Payload)
}

// UnmarshalBinary keeps a copy of data; the selector is set by the caller.
func (p *Unknown) UnmarshalBinary(data []byte) error {
	p.Payload = wire.NewReader(data).Rest()
	return nil
}

package protocol

import (
	"github.com/blukai/bridgelink/internal/wire"
)

// GameMessage subtypes.
const (
	SubtypeGameStart        uint32 = 0x00
	SubtypeGameEnd          uint32 = 0x06
	SubtypePopup            uint32 = 0x0a
	SubtypeAutonomousDamcon uint32 = 0x0b
	SubtypeJumpStart        uint32 = 0x0c
	SubtypeJumpEnd          uint32 = 0x0d
	SubtypeDmx              uint32 = 0x10
)

// GameEvent is the body of a GameMessage.
type GameEvent interface {
	SubPacket
	gameEvent()
}

// GameMessage is the server's grab bag of game-level events.
type GameMessage struct {
	Event GameEvent
}

var _ Packet = (*GameMessage)(nil)

func (*GameMessage) Kind() Kind { return KindGameMessage }

func (p *GameMessage) MarshalBinary() ([]byte, error) {
	return marshalContainer(KindGameMessage, p.Event)
}

// DefaultGameStartParam is the first word the game puts in a GameStart.
const DefaultGameStartParam uint32 = 10

// GameStart carries two words whose meaning is not pinned down; both are
// kept so a decoded event re-encodes unchanged.
type GameStart struct {
	Param1 uint32
	Param2 uint32
}

func NewGameStart() *GameStart {
	return &GameStart{Param1: DefaultGameStartParam}
}

func (*GameStart) Subtype() uint32 { return SubtypeGameStart }
func (*GameStart) gameEvent()      {}

func (e *GameStart) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(e.Param1)
	w.PutUint32(e.Param2)
	return w.Bytes(), nil
}

func (e *GameStart) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	var err error
	if e.Param1, err = r.Uint32(); err != nil {
		return err
	}
	if e.Param2, err = r.Uint32(); err != nil {
		return err
	}
	return nil
}

type GameEnd struct{ emptySub }

func (*GameEnd) Subtype() uint32 { return SubtypeGameEnd }
func (*GameEnd) gameEvent()      {}

type JumpStart struct{ emptySub }

func (*JumpStart) Subtype() uint32 { return SubtypeJumpStart }
func (*JumpStart) gameEvent()      {}

type JumpEnd struct{ emptySub }

func (*JumpEnd) Subtype() uint32 { return SubtypeJumpEnd }
func (*JumpEnd) gameEvent()      {}

type Popup struct {
	Message string
}

func (*Popup) Subtype() uint32 { return SubtypePopup }
func (*Popup) gameEvent()      {}

func (e *Popup) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	if err := w.PutText(textEncodingOf(KindGameMessage), e.Message); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (e *Popup) UnmarshalBinary(data []byte) error {
	msg, err := wire.NewReader(data).Text(textEncodingOf(KindGameMessage))
	if err != nil {
		return err
	}
	e.Message = msg
	return nil
}

// Dmx switches a named lighting flag on the bridge's dmx rig.
type Dmx struct {
	Flag  string
	State bool
}

func (*Dmx) Subtype() uint32 { return SubtypeDmx }
func (*Dmx) gameEvent()      {}

func (e *Dmx) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	if err := w.PutText(textEncodingOf(KindGameMessage), e.Flag); err != nil {
		return nil, err
	}
	w.PutBool(e.State)
	return w.Bytes(), nil
}

func (e *Dmx) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	var err error
	if e.Flag, err = r.Text(textEncodingOf(KindGameMessage)); err != nil {
		return err
	}
	if e.State, err = r.Bool(); err != nil {
		return err
	}
	return nil
}

type AutonomousDamcon struct {
	Autonomy bool
}

func (*AutonomousDamcon) Subtype() uint32 { return SubtypeAutonomousDamcon }
func (*AutonomousDamcon) gameEvent()      {}

func (e *AutonomousDamcon) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutBool(e.Autonomy)
	return w.Bytes(), nil
}

func (e *AutonomousDamcon) UnmarshalBinary(data []byte) error {
	var err error
	e.Autonomy, err = wire.NewReader(data).Bool()
	return err
}

// UnknownGameEvent keeps an unrecognised subtype and its bytes verbatim.
type UnknownGameEvent struct {
	Selector uint32
	Payload  []byte
}

func (e *UnknownGameEvent) Subtype() uint32 { return e.Selector }
func (*UnknownGameEvent) gameEvent()        {}

func (e *UnknownGameEvent) MarshalBinary() ([]byte, error) {
	return marshalRaw(e.Payload)
}

func (e *UnknownGameEvent) UnmarshalBinary(data []byte) error {
	e.Payload = wire.NewReader(data).Rest()
	return nil
}

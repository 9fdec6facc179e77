package protocol

import (
	"github.com/blukai/bridgelink/internal/wire"
)

// ShipAction1 subtypes. the five marked unverified are only registered when
// the registry is built WithUnverifiedShipActions(true); their layouts come
// from captures that were never confirmed against the game.
const (
	SubtypeSetWarp           uint32 = 0x00
	SubtypeSetMainScreen     uint32 = 0x01
	SubtypeToggleAutoBeams   uint32 = 0x03 // unverified
	SubtypeToggleShields     uint32 = 0x04 // unverified
	SubtypeRequestDock       uint32 = 0x07
	SubtypeToggleRedAlert    uint32 = 0x0a // unverified
	SubtypeSetShip           uint32 = 0x0d
	SubtypeSetConsole        uint32 = 0x0e
	SubtypeTogglePerspective uint32 = 0x1a // unverified
	SubtypeClimbDive         uint32 = 0x1b // unverified
)

// ShipAction3 subtypes.
const (
	SubtypeSetImpulse  uint32 = 0x00
	SubtypeSetSteering uint32 = 0x01
)

// ShipAction is the body of a ShipAction1: a console command carrying
// integer-sized arguments.
type ShipAction interface {
	SubPacket
	shipAction()
}

type ShipAction1 struct {
	Action ShipAction
}

var _ Packet = (*ShipAction1)(nil)

func (*ShipAction1) Kind() Kind { return KindShipAction1 }

func (p *ShipAction1) MarshalBinary() ([]byte, error) {
	return marshalContainer(KindShipAction1, p.Action)
}

type SetWarp struct {
	Warp uint32
}

func (*SetWarp) Subtype() uint32 { return SubtypeSetWarp }
func (*SetWarp) shipAction()     {}

func (a *SetWarp) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(a.Warp)
	return w.Bytes(), nil
}

func (a *SetWarp) UnmarshalBinary(data []byte) error {
	var err error
	a.Warp, err = wire.NewReader(data).Uint32()
	return err
}

type SetMainScreen struct {
	Screen MainView
}

func (*SetMainScreen) Subtype() uint32 { return SubtypeSetMainScreen }
func (*SetMainScreen) shipAction()     {}

func (a *SetMainScreen) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	if err := writeEnum(w, "main view", a.Screen); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (a *SetMainScreen) UnmarshalBinary(data []byte) error {
	var err error
	a.Screen, err = readEnum[MainView](wire.NewReader(data), "main view")
	return err
}

type SetShip struct {
	Ship uint32
}

func (*SetShip) Subtype() uint32 { return SubtypeSetShip }
func (*SetShip) shipAction()     {}

func (a *SetShip) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutUint32(a.Ship)
	return w.Bytes(), nil
}

func (a *SetShip) UnmarshalBinary(data []byte) error {
	var err error
	a.Ship, err = wire.NewReader(data).Uint32()
	return err
}

type SetConsole struct {
	Console  Console
	Selected bool
}

func (*SetConsole) Subtype() uint32 { return SubtypeSetConsole }
func (*SetConsole) shipAction()     {}

func (a *SetConsole) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	if err := writeEnum(w, "console", a.Console); err != nil {
		return nil, err
	}
	w.PutBool(a.Selected)
	return w.Bytes(), nil
}

func (a *SetConsole) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(data)
	var err error
	if a.Console, err = readEnum[Console](r, "console"); err != nil {
		return err
	}
	if a.Selected, err = r.Bool(); err != nil {
		return err
	}
	return nil
}

type RequestDock struct{ reservedSub }

func (*RequestDock) Subtype() uint32 { return SubtypeRequestDock }
func (*RequestDock) shipAction()     {}

type ToggleRedAlert struct{ reservedSub }

func (*ToggleRedAlert) Subtype() uint32 { return SubtypeToggleRedAlert }
func (*ToggleRedAlert) shipAction()     {}

type ToggleShields struct{ reservedSub }

func (*ToggleShields) Subtype() uint32 { return SubtypeToggleShields }
func (*ToggleShields) shipAction()     {}

type TogglePerspective struct{ reservedSub }

func (*TogglePerspective) Subtype() uint32 { return SubtypeTogglePerspective }
func (*TogglePerspective) shipAction()     {}

type ToggleAutoBeams struct{ reservedSub }

func (*ToggleAutoBeams) Subtype() uint32 { return SubtypeToggleAutoBeams }
func (*ToggleAutoBeams) shipAction()     {}

// ClimbDive pitches the ship: -1 climb, 1 dive, 0 level.
type ClimbDive struct {
	Direction int32
}

func (*ClimbDive) Subtype() uint32 { return SubtypeClimbDive }
func (*ClimbDive) shipAction()     {}

func (a *ClimbDive) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutInt32(a.Direction)
	return w.Bytes(), nil
}

func (a *ClimbDive) UnmarshalBinary(data []byte) error {
	var err error
	a.Direction, err = wire.NewReader(data).Int32()
	return err
}

type UnknownShipAction struct {
	Selector uint32
	Payload  []byte
}

func (a *UnknownShipAction) Subtype() uint32 { return a.Selector }
func (*UnknownShipAction) shipAction()       {}

func (a *UnknownShipAction) MarshalBinary() ([]byte, error) {
	return marshalRaw(a.Payload)
}

func (a *UnknownShipAction) UnmarshalBinary(data []byte) error {
	a.Payload = wire.NewReader(data).Rest()
	return nil
}

// ValueAction is the body of a ShipAction3: a console command carrying one
// float.
type ValueAction interface {
	SubPacket
	valueAction()
}

type ShipAction3 struct {
	Action ValueAction
}

var _ Packet = (*ShipAction3)(nil)

func (*ShipAction3) Kind() Kind { return KindShipAction3 }

func (p *ShipAction3) MarshalBinary() ([]byte, error) {
	return marshalContainer(KindShipAction3, p.Action)
}

type SetImpulse struct {
	Impulse float32
}

func (*SetImpulse) Subtype() uint32 { return SubtypeSetImpulse }
func (*SetImpulse) valueAction()    {}

func (a *SetImpulse) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutFloat32(a.Impulse)
	return w.Bytes(), nil
}

func (a *SetImpulse) UnmarshalBinary(data []byte) error {
	var err error
	a.Impulse, err = wire.NewReader(data).Float32()
	return err
}

type SetSteering struct {
	Rudder float32
}

func (*SetSteering) Subtype() uint32 { return SubtypeSetSteering }
func (*SetSteering) valueAction()    {}

func (a *SetSteering) MarshalBinary() ([]byte, error) {
	w := wire.NewWriter()
	w.PutFloat32(a.Rudder)
	return w.Bytes(), nil
}

func (a *SetSteering) UnmarshalBinary(data []byte) error {
	var err error
	a.Rudder, err = wire.NewReader(data).Float32()
	return err
}

type UnknownValueAction struct {
	Selector uint32
	Payload  []byte
}

func (a *UnknownValueAction) Subtype() uint32 { return a.Selector }
func (*UnknownValueAction) valueAction()      {}

func (a *UnknownValueAction) MarshalBinary() ([]byte, error) {
	return marshalRaw(a.Payload)
}

func (a *UnknownValueAction) UnmarshalBinary(data []byte) error {
	a.Payload = wire.NewReader(data).Rest()
	return nil
}

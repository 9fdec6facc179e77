package protocol

import (
	"errors"
	"fmt"

	"github.com/blukai/bridgelink/internal/debug"
	"github.com/blukai/bridgelink/internal/wire"
)

// Server selectors are hashes of the game's internal packet names. they are
// constants; nothing here recomputes them.
const (
	SelectorWelcome       uint32 = 0x6d04b3da
	SelectorVersion       uint32 = 0xe548e74a
	SelectorHeartbeat     uint32 = 0xf5821226
	SelectorDifficulty    uint32 = 0x3de66711
	SelectorConsoleStatus uint32 = 0x19c6e2d4
	SelectorGameMessage   uint32 = 0xf754c8fe
	SelectorIntel         uint32 = 0xee665279
	SelectorObjectUpdate  uint32 = 0x80803df9
	SelectorDestroyObject uint32 = 0xcc5a3e30
)

// Client selectors are small dense ids.
const (
	SelectorShipAction1 uint32 = 0x01
	// 0x02 is the four-int action family, which is not decoded here
	SelectorShipAction3 uint32 = 0x03
)

type registration struct {
	kind       Kind
	provenance Provenance
	selector   uint32
	text       wire.TextEncoding
}

var registrations = [...]registration{
	{KindWelcome, ProvenanceServer, SelectorWelcome, wire.TextNarrow},
	{KindVersion, ProvenanceServer, SelectorVersion, wire.TextNone},
	{KindHeartbeat, ProvenanceServer, SelectorHeartbeat, wire.TextNone},
	{KindDifficulty, ProvenanceServer, SelectorDifficulty, wire.TextNone},
	{KindConsoleStatus, ProvenanceServer, SelectorConsoleStatus, wire.TextNone},
	{KindGameMessage, ProvenanceServer, SelectorGameMessage, wire.TextWide},
	{KindIntel, ProvenanceServer, SelectorIntel, wire.TextWide},
	{KindObjectUpdate, ProvenanceServer, SelectorObjectUpdate, wire.TextWide},
	{KindDestroyObject, ProvenanceServer, SelectorDestroyObject, wire.TextNone},
	{KindShipAction1, ProvenanceClient, SelectorShipAction1, wire.TextNone},
	{KindShipAction3, ProvenanceClient, SelectorShipAction3, wire.TextNone},
}

func textEncodingOf(kind Kind) wire.TextEncoding {
	for _, reg := range registrations {
		if reg.kind == kind {
			return reg.text
		}
	}
	return wire.TextNone
}

// consoleOrder is the slot order of ConsoleStatus.
var consoleOrder = [ConsoleCount]Console{
	ConsoleMainScreen,
	ConsoleHelm,
	ConsoleWeapons,
	ConsoleEngineering,
	ConsoleScience,
	ConsoleCommunications,
	ConsoleData,
	ConsoleObserver,
	ConsoleCaptainsMap,
	ConsoleGameMaster,
}

// Registry maps selectors to packet kinds and back. it is built once and
// never modified, so a single Registry can back any number of codecs.
type Registry struct {
	kinds map[Provenance]map[uint32]Kind
	homes map[Kind]registration

	gameEvents   subTable[GameEvent]
	shipActions  subTable[ShipAction]
	valueActions subTable[ValueAction]

	unverifiedShipActions bool
}

type RegistryOption func(*Registry)

// WithUnverifiedShipActions registers the ShipAction1 toggles and ClimbDive
// whose layouts were never confirmed against the game.
func WithUnverifiedShipActions(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.unverifiedShipActions = enabled
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		kinds: map[Provenance]map[uint32]Kind{
			ProvenanceServer: {},
			ProvenanceClient: {},
		},
		homes: make(map[Kind]registration, len(registrations)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, reg := range registrations {
		_, dup := r.kinds[reg.provenance][reg.selector]
		debug.Assertf(!dup, "duplicate %s selector %#08x", reg.provenance, reg.selector)
		r.kinds[reg.provenance][reg.selector] = reg.kind
		r.homes[reg.kind] = reg
	}

	r.gameEvents = subTable[GameEvent]{
		SubtypeGameStart:        func() GameEvent { return new(GameStart) },
		SubtypeGameEnd:          func() GameEvent { return new(GameEnd) },
		SubtypePopup:            func() GameEvent { return new(Popup) },
		SubtypeAutonomousDamcon: func() GameEvent { return new(AutonomousDamcon) },
		SubtypeJumpStart:        func() GameEvent { return new(JumpStart) },
		SubtypeJumpEnd:          func() GameEvent { return new(JumpEnd) },
		SubtypeDmx:              func() GameEvent { return new(Dmx) },
	}

	r.shipActions = subTable[ShipAction]{
		SubtypeSetWarp:       func() ShipAction { return new(SetWarp) },
		SubtypeSetMainScreen: func() ShipAction { return new(SetMainScreen) },
		SubtypeRequestDock:   func() ShipAction { return new(RequestDock) },
		SubtypeSetShip:       func() ShipAction { return new(SetShip) },
		SubtypeSetConsole:    func() ShipAction { return new(SetConsole) },
	}
	if r.unverifiedShipActions {
		r.shipActions[SubtypeToggleAutoBeams] = func() ShipAction { return new(ToggleAutoBeams) }
		r.shipActions[SubtypeToggleShields] = func() ShipAction { return new(ToggleShields) }
		r.shipActions[SubtypeToggleRedAlert] = func() ShipAction { return new(ToggleRedAlert) }
		r.shipActions[SubtypeTogglePerspective] = func() ShipAction { return new(TogglePerspective) }
		r.shipActions[SubtypeClimbDive] = func() ShipAction { return new(ClimbDive) }
	}

	r.valueActions = subTable[ValueAction]{
		SubtypeSetImpulse:  func() ValueAction { return new(SetImpulse) },
		SubtypeSetSteering: func() ValueAction { return new(SetSteering) },
	}

	return r
}

// Lookup returns the kind registered for selector in provenance's space.
func (r *Registry) Lookup(p Provenance, selector uint32) (Kind, bool) {
	kind, ok := r.kinds[p][selector]
	return kind, ok
}

// Selector returns the selector kind is encoded with. p's own space is
// consulted first; a kind that only lives in the other space keeps its home
// selector, which is what lets a Welcome be sent with client origin.
func (r *Registry) Selector(kind Kind, p Provenance) (uint32, bool) {
	reg, ok := r.homes[kind]
	if !ok {
		return 0, false
	}
	if reg.provenance == p {
		return reg.selector, true
	}
	for selector, k := range r.kinds[p] {
		if k == kind {
			return selector, true
		}
	}
	return reg.selector, true
}

func (r *Registry) UnverifiedShipActions() bool {
	return r.unverifiedShipActions
}

// decodePayload turns one frame's payload into a packet. unrecognised
// selectors and object updates that can not be walked come back as Unknown.
func (r *Registry) decodePayload(p Provenance, selector uint32, payload []byte) (Packet, error) {
	kind, ok := r.Lookup(p, selector)
	if !ok {
		return newUnknown(selector, payload), nil
	}

	var pkt leafPacket
	switch kind {
	case KindWelcome:
		pkt = new(Welcome)
	case KindVersion:
		pkt = new(Version)
	case KindHeartbeat:
		pkt = new(Heartbeat)
	case KindDifficulty:
		pkt = new(Difficulty)
	case KindConsoleStatus:
		pkt = new(ConsoleStatus)
	case KindIntel:
		pkt = new(Intel)
	case KindObjectUpdate:
		pkt = new(ObjectUpdate)
	case KindDestroyObject:
		pkt = new(DestroyObject)
	case KindGameMessage:
		event, err := r.gameEvents.decode(payload, func(subtype uint32) GameEvent {
			return &UnknownGameEvent{Selector: subtype}
		})
		if err != nil {
			return nil, err
		}
		return &GameMessage{Event: event}, nil
	case KindShipAction1:
		action, err := r.shipActions.decode(payload, func(subtype uint32) ShipAction {
			return &UnknownShipAction{Selector: subtype}
		})
		if err != nil {
			return nil, err
		}
		return &ShipAction1{Action: action}, nil
	case KindShipAction3:
		action, err := r.valueActions.decode(payload, func(subtype uint32) ValueAction {
			return &UnknownValueAction{Selector: subtype}
		})
		if err != nil {
			return nil, err
		}
		return &ShipAction3{Action: action}, nil
	default:
		debug.Assert(false, fmt.Sprintf("unhandled kind: %s", kind))
	}

	if err := pkt.UnmarshalBinary(payload); err != nil {
		if errors.Is(err, errUnsupportedObject) {
			return newUnknown(selector, payload), nil
		}
		return nil, err
	}
	return pkt, nil
}

func newUnknown(selector uint32, payload []byte) *Unknown {
	pkt := &Unknown{Selector: selector}
	_ = pkt.UnmarshalBinary(payload)
	return pkt
}

// checkEncodable rejects container bodies whose subtype is not registered;
// the Unknown* bodies are always accepted.
func (r *Registry) checkEncodable(pkt Packet) error {
	var (
		subtype uint32
		known   bool
	)
	switch pkt := pkt.(type) {
	case *GameMessage:
		if pkt.Event == nil {
			return nil
		}
		if _, unknown := pkt.Event.(*UnknownGameEvent); unknown {
			return nil
		}
		subtype, known = pkt.Event.Subtype(), r.gameEvents.has(pkt.Event.Subtype())
	case *ShipAction1:
		if pkt.Action == nil {
			return nil
		}
		if _, unknown := pkt.Action.(*UnknownShipAction); unknown {
			return nil
		}
		subtype, known = pkt.Action.Subtype(), r.shipActions.has(pkt.Action.Subtype())
	case *ShipAction3:
		if pkt.Action == nil {
			return nil
		}
		if _, unknown := pkt.Action.(*UnknownValueAction); unknown {
			return nil
		}
		subtype, known = pkt.Action.Subtype(), r.valueActions.has(pkt.Action.Subtype())
	default:
		return nil
	}
	if !known {
		return fmt.Errorf("%w: %s subtype %#x", ErrUnregisteredKind, pkt.Kind(), subtype)
	}
	return nil
}

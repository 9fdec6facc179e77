package protocol_test

import (
	"errors"
	"testing"

	"github.com/blukai/bridgelink/internal/protocol"
	"github.com/matryer/is"
)

// frame wraps payload in an envelope the way the game would.
func frame(t *testing.T, origin protocol.Provenance, selector uint32, payload []byte) []byte {
	t.Helper()

	env := protocol.Envelope{Origin: uint32(origin), Selector: selector, Payload: payload}
	data, err := env.MarshalBinary()
	is.New(t).NoErr(err)
	return data
}

// decodeOne decodes a buffer that must hold exactly one frame.
func decodeOne(t *testing.T, codec *protocol.Codec, data []byte, p protocol.Provenance) protocol.Packet {
	t.Helper()
	is := is.NewRelaxed(t)

	packets, trailer, err := codec.Decode(data, p)
	is.NoErr(err)
	is.Equal(len(trailer), 0)
	is.Equal(len(packets), 1)
	if len(packets) != 1 {
		t.FailNow()
	}
	return packets[0]
}

func decodeServerPayload(t *testing.T, selector uint32, payload []byte) protocol.Packet {
	t.Helper()
	return decodeOne(t, protocol.NewCodec(nil), frame(t, protocol.ProvenanceServer, selector, payload), protocol.ProvenanceAuto)
}

func decodeClientPayload(t *testing.T, registry *protocol.Registry, selector uint32, payload []byte) protocol.Packet {
	t.Helper()
	codec := protocol.NewCodec(nil, protocol.WithRegistry(registry))
	return decodeOne(t, codec, frame(t, protocol.ProvenanceClient, selector, payload), protocol.ProvenanceAuto)
}

func TestWelcome(t *testing.T) {
	is := is.New(t)
	codec := protocol.NewCodec(nil)

	t.Run("encode", func(t *testing.T) {
		is := is.New(t)
		encoded, err := codec.Encode(&protocol.Welcome{Message: "Welcome to eyes"}, protocol.ProvenanceAuto)
		is.NoErr(err)
		is.Equal(len(encoded), 43)
		is.Equal(encoded, []byte("\xef\xbe\xad\xde+\x00\x00\x00\x02\x00\x00\x00\x00\x00\x00\x00\x17\x00\x00\x00\xda\xb3\x04m\x0f\x00\x00\x00Welcome to eyes"))
	})

	t.Run("decode", func(t *testing.T) {
		is := is.New(t)
		packet := []byte("\xef\xbe\xad\xde+\x00\x00\x00\x01\x00\x00\x00\x00\x00\x00\x00\x17\x00\x00\x00\xda\xb3\x04m\x0f\x00\x00\x00Welcome to eyes")
		decoded := decodeOne(t, codec, packet, protocol.ProvenanceAuto)
		welcome, ok := decoded.(*protocol.Welcome)
		is.True(ok)
		is.Equal(welcome.Message, "Welcome to eyes")
	})
}

func TestVersion(t *testing.T) {
	is := is.New(t)
	codec := protocol.NewCodec(nil)

	encoded, err := codec.Encode(protocol.NewVersion(2, 1, 1), protocol.ProvenanceAuto)
	is.NoErr(err)
	is.Equal(encoded, []byte("\xef\xbe\xad\xde\x2c\x00\x00\x00\x02\x00\x00\x00\x00\x00\x00\x00\x18\x00\x00\x00\x4a\xe7\x48\xe5\x00\x00\x00\x00ff\x06@\x02\x00\x00\x00\x01\x00\x00\x00\x01\x00\x00\x00"))

	packet := []byte("\xef\xbe\xad\xde\x2c\x00\x00\x00\x01\x00\x00\x00\x00\x00\x00\x00\x18\x00\x00\x00\x4a\xe7\x48\xe5\x00\x00\x00\x00\x00\x00\x00\x00\x02\x00\x00\x00\x01\x00\x00\x00\x01\x00\x00\x00")
	version, ok := decodeOne(t, codec, packet, protocol.ProvenanceAuto).(*protocol.Version)
	is.True(ok)
	is.Equal(version.Major, uint32(2))
	is.Equal(version.Minor, uint32(1))
	is.Equal(version.Patch, uint32(1))
	is.Equal(version.ProtocolVersion, float32(0))
}

func TestDifficulty(t *testing.T) {
	is := is.New(t)

	encoded, err := (&protocol.Difficulty{Difficulty: 5, GameType: protocol.GameTypeDeepStrike}).MarshalBinary()
	is.NoErr(err)
	is.Equal(encoded, []byte("\x05\x00\x00\x00\x03\x00\x00\x00"))

	var decoded protocol.Difficulty
	is.NoErr(decoded.UnmarshalBinary([]byte("\x0a\x00\x00\x00\x02\x00\x00\x00")))
	is.Equal(decoded.Difficulty, uint32(10))
	is.Equal(decoded.GameType, protocol.GameTypeDoubleFront)
}

func TestHeartbeat(t *testing.T) {
	is := is.New(t)

	encoded, err := (&protocol.Heartbeat{}).MarshalBinary()
	is.NoErr(err)
	is.Equal(len(encoded), 0)

	framed, err := protocol.NewCodec(nil).Encode(&protocol.Heartbeat{}, protocol.ProvenanceServer)
	is.NoErr(err)
	is.Equal(len(framed), protocol.MinFrameSize)
}

func TestIntel(t *testing.T) {
	is := is.New(t)
	vector := []byte("\xdd\xcc\xbb\xaa\x03\x05\x00\x00\x00b\x00e\x00e\x00s\x00\x00\x00")

	encoded, err := protocol.NewIntel(0xaabbccdd, "bees").MarshalBinary()
	is.NoErr(err)
	is.Equal(encoded, vector)

	var decoded protocol.Intel
	is.NoErr(decoded.UnmarshalBinary(vector))
	is.Equal(decoded.Object, uint32(0xaabbccdd))
	is.Equal(decoded.IntelType, protocol.DefaultIntelType)
	is.Equal(decoded.Text, "bees")
}

func TestConsoleStatus(t *testing.T) {
	is := is.New(t)
	vector := []byte("\x02\x00\x00\x00\x00\x01\x02\x00\x00\x00\x00\x00\x00\x00")

	cs := protocol.ConsoleStatus{Ship: 2}
	cs.Consoles[protocol.ConsoleHelm] = protocol.ConsoleYours
	cs.Consoles[protocol.ConsoleWeapons] = protocol.ConsoleUnavailable
	encoded, err := cs.MarshalBinary()
	is.NoErr(err)
	is.Equal(encoded, vector)

	var decoded protocol.ConsoleStatus
	is.NoErr(decoded.UnmarshalBinary(vector))
	is.Equal(decoded.Ship, uint32(2))
	is.Equal(decoded.Consoles[protocol.ConsoleHelm], protocol.ConsoleYours)
	is.Equal(decoded.Consoles[protocol.ConsoleWeapons], protocol.ConsoleUnavailable)
	is.Equal(decoded.Consoles[protocol.ConsoleData], protocol.ConsoleAvailable)

	t.Run("bad state", func(t *testing.T) {
		is := is.New(t)
		var decoded protocol.ConsoleStatus
		err := decoded.UnmarshalBinary([]byte("\x02\x00\x00\x00\x00\x07\x00\x00\x00\x00\x00\x00\x00\x00"))
		is.True(errors.Is(err, protocol.ErrInvalidEnumValue))
	})
}

func TestGameMessage(t *testing.T) {
	testCases := []struct {
		name    string
		event   protocol.GameEvent
		payload []byte
	}{
		{"game start", protocol.NewGameStart(), []byte("\x00\x00\x00\x00\x0a\x00\x00\x00\x00\x00\x00\x00")},
		{"game end", &protocol.GameEnd{}, []byte("\x06\x00\x00\x00")},
		{"dmx", &protocol.Dmx{Flag: "bees", State: true}, []byte("\x10\x00\x00\x00\x05\x00\x00\x00b\x00e\x00e\x00s\x00\x00\x00\x01\x00\x00\x00")},
		{"jump start", &protocol.JumpStart{}, []byte("\x0c\x00\x00\x00")},
		{"jump end", &protocol.JumpEnd{}, []byte("\x0d\x00\x00\x00")},
		{"popup", &protocol.Popup{Message: "bees"}, []byte("\x0a\x00\x00\x00\x05\x00\x00\x00b\x00e\x00e\x00s\x00\x00\x00")},
		{"autonomous damcon", &protocol.AutonomousDamcon{Autonomy: true}, []byte("\x0b\x00\x00\x00\x01\x00\x00\x00")},
	}

	for _, tc := range testCases {
		t.Run(tc.name+" encode", func(t *testing.T) {
			is := is.New(t)
			encoded, err := (&protocol.GameMessage{Event: tc.event}).MarshalBinary()
			is.NoErr(err)
			is.Equal(encoded, tc.payload)
		})
	}

	t.Run("game start decode", func(t *testing.T) {
		is := is.New(t)
		decoded := decodeServerPayload(t, protocol.SelectorGameMessage, []byte("\x00\x00\x00\x00\x0a\x00\x00\x00\xf6\x03\x00\x00"))
		gm, ok := decoded.(*protocol.GameMessage)
		is.True(ok)
		start, ok := gm.Event.(*protocol.GameStart)
		is.True(ok)
		is.Equal(start.Param1, uint32(10))
		is.Equal(start.Param2, uint32(0x3f6))
	})

	t.Run("dmx decode", func(t *testing.T) {
		is := is.New(t)
		decoded := decodeServerPayload(t, protocol.SelectorGameMessage, []byte("\x10\x00\x00\x00\x01\x00\x00\x00y\x00\x00\x00\x00\x00\x00\x00"))
		dmx, ok := decoded.(*protocol.GameMessage).Event.(*protocol.Dmx)
		is.True(ok)
		is.Equal(dmx.Flag, "y")
		is.Equal(dmx.State, false)
	})

	t.Run("damcon decode", func(t *testing.T) {
		is := is.New(t)
		decoded := decodeServerPayload(t, protocol.SelectorGameMessage, []byte("\x0b\x00\x00\x00\x00\x00\x00\x00"))
		damcon, ok := decoded.(*protocol.GameMessage).Event.(*protocol.AutonomousDamcon)
		is.True(ok)
		is.Equal(damcon.Autonomy, false)
	})

	t.Run("empty events decode", func(t *testing.T) {
		is := is.New(t)
		_, ok := decodeServerPayload(t, protocol.SelectorGameMessage, []byte("\x06\x00\x00\x00")).(*protocol.GameMessage).Event.(*protocol.GameEnd)
		is.True(ok)
		_, ok = decodeServerPayload(t, protocol.SelectorGameMessage, []byte("\x0c\x00\x00\x00")).(*protocol.GameMessage).Event.(*protocol.JumpStart)
		is.True(ok)
		_, ok = decodeServerPayload(t, protocol.SelectorGameMessage, []byte("\x0d\x00\x00\x00")).(*protocol.GameMessage).Event.(*protocol.JumpEnd)
		is.True(ok)
	})

	t.Run("unknown subtype", func(t *testing.T) {
		is := is.New(t)
		payload := []byte("\x42\x00\x00\x00\x01\x02\x03")
		decoded := decodeServerPayload(t, protocol.SelectorGameMessage, payload)
		event, ok := decoded.(*protocol.GameMessage).Event.(*protocol.UnknownGameEvent)
		is.True(ok)
		is.Equal(event.Selector, uint32(0x42))
		is.Equal(event.Payload, []byte{1, 2, 3})

		encoded, err := decoded.MarshalBinary()
		is.NoErr(err)
		is.Equal(encoded, payload)
	})
}

func TestShipAction3(t *testing.T) {
	is := is.New(t)
	registry := protocol.NewRegistry()

	encoded, err := (&protocol.ShipAction3{Action: &protocol.SetSteering{Rudder: 0}}).MarshalBinary()
	is.NoErr(err)
	is.Equal(encoded, []byte("\x01\x00\x00\x00\x00\x00\x00\x00"))

	encoded, err = (&protocol.ShipAction3{Action: &protocol.SetImpulse{Impulse: 0}}).MarshalBinary()
	is.NoErr(err)
	is.Equal(encoded, []byte("\x00\x00\x00\x00\x00\x00\x00\x00"))

	steering, ok := decodeClientPayload(t, registry, protocol.SelectorShipAction3, []byte("\x01\x00\x00\x00\x00\x00\x00\x00")).(*protocol.ShipAction3).Action.(*protocol.SetSteering)
	is.True(ok)
	is.Equal(steering.Rudder, float32(0))

	impulse, ok := decodeClientPayload(t, registry, protocol.SelectorShipAction3, []byte("\x00\x00\x00\x00\x00\x00\x80\x3f")).(*protocol.ShipAction3).Action.(*protocol.SetImpulse)
	is.True(ok)
	is.Equal(impulse.Impulse, float32(1))
}

func TestShipAction1(t *testing.T) {
	registry := protocol.NewRegistry()

	testCases := []struct {
		name    string
		action  protocol.ShipAction
		payload []byte
	}{
		{"warp", &protocol.SetWarp{Warp: 2}, []byte("\x00\x00\x00\x00\x02\x00\x00\x00")},
		{"main screen", &protocol.SetMainScreen{Screen: protocol.MainViewAft}, []byte("\x01\x00\x00\x00\x03\x00\x00\x00")},
		{"set ship", &protocol.SetShip{Ship: 4}, []byte("\x0d\x00\x00\x00\x04\x00\x00\x00")},
		{"console", &protocol.SetConsole{Console: protocol.ConsoleData, Selected: true}, []byte("\x0e\x00\x00\x00\x06\x00\x00\x00\x01\x00\x00\x00")},
		{"dock", &protocol.RequestDock{}, []byte("\x07\x00\x00\x00\x00\x00\x00\x00")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			pkt := &protocol.ShipAction1{Action: tc.action}
			encoded, err := pkt.MarshalBinary()
			is.NoErr(err)
			is.Equal(encoded, tc.payload)

			decoded := decodeClientPayload(t, registry, protocol.SelectorShipAction1, tc.payload)
			is.Equal(decoded, pkt)
		})
	}

	t.Run("decode vectors", func(t *testing.T) {
		is := is.New(t)

		screen, ok := decodeClientPayload(t, registry, protocol.SelectorShipAction1, []byte("\x01\x00\x00\x00\x02\x00\x00\x00")).(*protocol.ShipAction1).Action.(*protocol.SetMainScreen)
		is.True(ok)
		is.Equal(screen.Screen, protocol.MainViewStarboard)

		ship, ok := decodeClientPayload(t, registry, protocol.SelectorShipAction1, []byte("\x0d\x00\x00\x00\x07\x00\x00\x00")).(*protocol.ShipAction1).Action.(*protocol.SetShip)
		is.True(ok)
		is.Equal(ship.Ship, uint32(7))

		console, ok := decodeClientPayload(t, registry, protocol.SelectorShipAction1, []byte("\x0e\x00\x00\x00\x04\x00\x00\x00\x00\x00\x00\x00")).(*protocol.ShipAction1).Action.(*protocol.SetConsole)
		is.True(ok)
		is.Equal(console.Console, protocol.ConsoleScience)
		is.Equal(console.Selected, false)
	})

	t.Run("bad main view", func(t *testing.T) {
		is := is.New(t)
		codec := protocol.NewCodec(nil, protocol.WithRegistry(registry))
		packets, trailer, err := codec.Decode(frame(t, protocol.ProvenanceClient, protocol.SelectorShipAction1, []byte("\x01\x00\x00\x00\x09\x00\x00\x00")), protocol.ProvenanceAuto)
		is.True(errors.Is(err, protocol.ErrInvalidEnumValue))
		is.Equal(len(packets), 0)
		is.Equal(len(trailer), 0)
	})
}

func TestUnverifiedShipActions(t *testing.T) {
	testCases := []struct {
		name    string
		action  protocol.ShipAction
		payload []byte
	}{
		{"red alert", &protocol.ToggleRedAlert{}, []byte("\x0a\x00\x00\x00\x00\x00\x00\x00")},
		{"shields", &protocol.ToggleShields{}, []byte("\x04\x00\x00\x00\x00\x00\x00\x00")},
		{"perspective", &protocol.TogglePerspective{}, []byte("\x1a\x00\x00\x00\x00\x00\x00\x00")},
		{"auto beams", &protocol.ToggleAutoBeams{}, []byte("\x03\x00\x00\x00\x00\x00\x00\x00")},
		{"climb dive", &protocol.ClimbDive{Direction: -1}, []byte("\x1b\x00\x00\x00\xff\xff\xff\xff")},
	}

	enabled := protocol.NewRegistry(protocol.WithUnverifiedShipActions(true))
	disabled := protocol.NewRegistry()

	for _, tc := range testCases {
		t.Run(tc.name+" enabled", func(t *testing.T) {
			is := is.New(t)
			pkt := &protocol.ShipAction1{Action: tc.action}

			codec := protocol.NewCodec(nil, protocol.WithRegistry(enabled))
			encoded, err := codec.Encode(pkt, protocol.ProvenanceClient)
			is.NoErr(err)
			is.Equal(encoded[protocol.MinFrameSize:], tc.payload)

			is.Equal(decodeOne(t, codec, encoded, protocol.ProvenanceAuto), pkt)
		})

		t.Run(tc.name+" disabled", func(t *testing.T) {
			is := is.New(t)

			codec := protocol.NewCodec(nil, protocol.WithRegistry(disabled))
			_, err := codec.Encode(&protocol.ShipAction1{Action: tc.action}, protocol.ProvenanceClient)
			is.True(errors.Is(err, protocol.ErrUnregisteredKind))

			decoded := decodeClientPayload(t, disabled, protocol.SelectorShipAction1, tc.payload)
			unknown, ok := decoded.(*protocol.ShipAction1).Action.(*protocol.UnknownShipAction)
			is.True(ok)
			is.Equal(unknown.Selector, tc.action.Subtype())
			is.Equal(unknown.Payload, tc.payload[4:])
		})
	}
}

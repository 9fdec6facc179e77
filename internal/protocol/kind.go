package protocol

import "fmt"

// Kind tags the top-level packet variants.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindWelcome
	KindVersion
	KindHeartbeat
	KindDifficulty
	KindConsoleStatus
	KindIntel
	KindGameMessage
	KindShipAction1
	KindShipAction3
	KindObjectUpdate
	KindDestroyObject

	kindMax
)

var kindNames = [kindMax]string{
	KindUnknown:       "unknown",
	KindWelcome:       "welcome",
	KindVersion:       "version",
	KindHeartbeat:     "heartbeat",
	KindDifficulty:    "difficulty",
	KindConsoleStatus: "console_status",
	KindIntel:         "intel",
	KindGameMessage:   "game_message",
	KindShipAction1:   "ship_action1",
	KindShipAction3:   "ship_action3",
	KindObjectUpdate:  "object_update",
	KindDestroyObject: "destroy_object",
}

func (k Kind) String() string {
	if k < kindMax {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

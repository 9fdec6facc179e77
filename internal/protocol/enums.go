package protocol

import (
	"fmt"

	"github.com/blukai/bridgelink/internal/wire"
)

type enum interface {
	~uint32
	Valid() bool
	String() string
}

func readEnum[E enum](r *wire.Reader, name string) (E, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	e := E(v)
	if !e.Valid() {
		return 0, &EnumError{Enum: name, Value: v}
	}
	return e, nil
}

func writeEnum[E enum](w *wire.Writer, name string, e E) error {
	if !e.Valid() {
		return &EnumError{Enum: name, Value: uint32(e)}
	}
	w.PutUint32(uint32(e))
	return nil
}

func enumString(names []string, v uint32, typ string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typ, v)
}

type GameType uint32

const (
	GameTypeSiege GameType = iota
	GameTypeSingleFront
	GameTypeDoubleFront
	GameTypeDeepStrike
	GameTypePeacetime
	GameTypeBorderWar

	gameTypeMax
)

var gameTypeNames = []string{"siege", "single_front", "double_front", "deep_strike", "peacetime", "border_war"}

func (g GameType) Valid() bool    { return g < gameTypeMax }
func (g GameType) String() string { return enumString(gameTypeNames, uint32(g), "GameType") }

// Console is a bridge station. the ordinal is also the slot index in
// ConsoleStatus.
type Console uint32

const (
	ConsoleMainScreen Console = iota
	ConsoleHelm
	ConsoleWeapons
	ConsoleEngineering
	ConsoleScience
	ConsoleCommunications
	ConsoleData
	ConsoleObserver
	ConsoleCaptainsMap
	ConsoleGameMaster

	ConsoleCount
)

var consoleNames = []string{
	"main_screen", "helm", "weapons", "engineering", "science",
	"communications", "data", "observer", "captains_map", "game_master",
}

func (c Console) Valid() bool    { return c < ConsoleCount }
func (c Console) String() string { return enumString(consoleNames, uint32(c), "Console") }

// ConsoleState is one slot of a ConsoleStatus packet. it travels as a single
// byte; the zero value is Available.
type ConsoleState uint32

const (
	ConsoleAvailable ConsoleState = iota
	ConsoleYours
	ConsoleUnavailable

	consoleStateMax
)

var consoleStateNames = []string{"available", "yours", "unavailable"}

func (s ConsoleState) Valid() bool    { return s < consoleStateMax }
func (s ConsoleState) String() string { return enumString(consoleStateNames, uint32(s), "ConsoleState") }

type MainView uint32

const (
	MainViewFore MainView = iota
	MainViewPort
	MainViewStarboard
	MainViewAft
	MainViewTactical
	MainViewLongRange
	MainViewStatus

	mainViewMax
)

var mainViewNames = []string{"fore", "port", "starboard", "aft", "tactical", "long_range", "status"}

func (v MainView) Valid() bool    { return v < mainViewMax }
func (v MainView) String() string { return enumString(mainViewNames, uint32(v), "MainView") }

// ObjectType identifies a world object in update and destroy packets. it
// travels as a single byte; 0 terminates an object update stream.
type ObjectType uint32

const (
	ObjectTypeEnd ObjectType = iota
	ObjectTypePlayerShip
	ObjectTypeWeaponsConsole
	ObjectTypeEngineeringConsole
	ObjectTypeUpgrades
	ObjectTypeNPCShip
	ObjectTypeBase
	ObjectTypeMine
	ObjectTypeAnomaly
	_
	ObjectTypeNebula
	ObjectTypeTorpedo
	ObjectTypeBlackHole
	ObjectTypeAsteroid
	ObjectTypeGenericMesh
	ObjectTypeCreature
	ObjectTypeDrone

	objectTypeMax
)

var objectTypeNames = []string{
	"end", "player_ship", "weapons_console", "engineering_console", "upgrades",
	"npc_ship", "base", "mine", "anomaly", "unused", "nebula", "torpedo",
	"black_hole", "asteroid", "generic_mesh", "creature", "drone",
}

func (t ObjectType) Valid() bool    { return t < objectTypeMax && t != 9 }
func (t ObjectType) String() string { return enumString(objectTypeNames, uint32(t), "ObjectType") }

// Package types defines the shared data structures for the Aventuro engine.
// This package contains only type definitions and constants, no logic.
package types

// NDirections is the number of fixed compass exits a room can have.
const NDirections = 7

// Fixed exit indices into Room.Movements.
const (
	DirNorth = iota
	DirEast
	DirSouth
	DirWest
	DirUp
	DirDown
	DirOut
)

// Blocked marks a fixed exit that leads nowhere, or an object that cannot
// be entered.
const Blocked = -1

// Object attribute bits. Bit 0 is reserved.
const (
	ObjectPortable  uint32 = 1 << 1
	ObjectClosable  uint32 = 1 << 2
	ObjectClosed    uint32 = 1 << 3
	ObjectLightable uint32 = 1 << 4
	ObjectLit       uint32 = 1 << 5
	ObjectFlammable uint32 = 1 << 6
	ObjectLighter   uint32 = 1 << 7
	ObjectBurning   uint32 = 1 << 8
	ObjectBurntOut  uint32 = 1 << 9
	ObjectEdible    uint32 = 1 << 10
	ObjectDrinkable uint32 = 1 << 11
	ObjectPoisonous uint32 = 1 << 12
)

// Room attribute bits.
const (
	RoomLit         uint32 = 1 << 1
	RoomUnlightable uint32 = 1 << 2
	RoomGameOver    uint32 = 1 << 3
)

// First bit numbers available to author-defined attributes.
const (
	FirstCustomObjectAttribute = 13
	FirstCustomRoomAttribute   = 4
	MaxAttributeBit            = 31
	MaxGameAttributeBit        = 63
)

// Pronoun is the grammatical class used to refer to a movable.
type Pronoun int

const (
	PronounMan Pronoun = iota
	PronounWoman
	PronounAnimal
	PronounPlural
)

// LocationType says which collection a movable's location index refers to.
type LocationType int

const (
	LocationRoom LocationType = iota
	LocationCarried
	LocationNowhere
	LocationWithMonster
	LocationInObject
)

// Location is where a movable starts the game. Index is only meaningful for
// LocationRoom, LocationWithMonster and LocationInObject.
type Location struct {
	Type  LocationType
	Index int
}

// Movable holds the fields shared by objects and monsters. Name and
// Adjective are roots: no part-of-speech ending, no plural marker.
type Movable struct {
	Name        string
	Adjective   string // optional
	Description string // optional
	Pronoun     Pronoun
	Location    Location
	Attributes  uint32
}

// Object is something the player can see, carry, open or enter.
type Object struct {
	Movable

	ReadText string // optional

	Points      int
	Weight      int
	Size        int
	ShotDamage  int
	Shots       int
	HitDamage   int
	StabDamage  int
	FoodPoints  int
	DrinkPoints int
	BurnTime    int
	End         int

	// ContainerSize is the total size the object can hold, 0 if it is
	// not a container.
	ContainerSize int
	// EnterRoom is the room the player ends up in when entering the
	// object, or Blocked.
	EnterRoom int
}

// Monster is a creature living in the world.
type Monster struct {
	Movable

	// DeadObject is the object that replaces the monster when it dies.
	DeadObject int
	Hunger     int
	Thirst     int
	Aggression int
	Attack     int
	Protection int
	Lives      int
	Escape     int
	Wander     int
}

// Direction is a named custom exit such as "pord" for "al la pordo".
type Direction struct {
	Name        string // root
	Description string // optional
	Target      int
}

// Room is a location the player can be in.
type Room struct {
	Name        string
	Description string
	Movements   [NDirections]int
	Directions  []Direction
	Attributes  uint32
	Points      int
}

// AliasKind says whether an alias refers to an object or a monster.
type AliasKind int

const (
	AliasObject AliasKind = iota
	AliasMonster
)

// Alias is an alternative noun phrase for an existing object or monster.
type Alias struct {
	Name      string
	Adjective string // optional
	Plural    bool
	Kind      AliasKind
	Index     int
}

// Role is the slot a rule condition or action is bound to.
type Role int

const (
	RoleRoom Role = iota
	RoleObject
	RoleTool
	RoleMonster
)

// NRoles is the number of condition/action slots on a rule.
const NRoles = 4

// ConditionKind is the closed set of rule conditions.
type ConditionKind int

const (
	CondNone ConditionKind = iota
	CondInRoom
	CondObjectIs
	CondMonsterIs
	CondObjectPresent
	CondMonsterPresent
	CondObjectCarried
	CondShots
	CondWeight
	CondSize
	CondContainerSize
	CondBurnTime
	CondAttribute
	CondNotAttribute
	CondRoomAttribute
	CondNotRoomAttribute
	CondPlayerAttribute
	CondNotPlayerAttribute
	CondChance
	CondSameAdjective
	CondSameName
	CondSameNoun
	CondNothing
	CondSomething
)

// Condition is one rule precondition. Data is an already resolved index,
// bit number or literal depending on Kind.
type Condition struct {
	Kind ConditionKind
	Data int
}

// ActionKind is the closed set of rule actions.
type ActionKind int

const (
	ActNone ActionKind = iota
	ActMove
	ActReplaceObject
	ActReplaceMonster
	ActCopyObject
	ActCopyMonster
	ActShots
	ActWeight
	ActSize
	ActContainerSize
	ActBurnTime
	ActSetAttribute
	ActUnsetAttribute
	ActSetRoomAttribute
	ActUnsetRoomAttribute
	ActSetPlayerAttribute
	ActUnsetPlayerAttribute
	ActCarry
	ActNowhere
	ActRename
	ActReadjective
	ActTrigger
)

// Action is one rule consequence.
type Action struct {
	Kind ActionKind
	Data int
}

// Rule is a verb-triggered set of conditions and actions, one per role.
type Rule struct {
	Verb       string
	Message    string // optional template
	Points     int
	Conditions [NRoles]Condition
	Actions    [NRoles]Action
}

// Verb is a verb root and the rules it triggers, in declaration order.
type Verb struct {
	Name  string
	Rules []int
}

// Definition is a fully validated game. It is never modified after it has
// been built and can be shared between sessions.
type Definition struct {
	Name         string
	Author       string
	Year         string
	Introduction string // optional

	Strings  []string
	Rooms    []Room
	Objects  []Object
	Monsters []Monster
	Aliases  []Alias
	Verbs    []Verb
	Rules    []Rule

	GameAttributes uint64
}

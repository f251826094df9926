package game

import "hexwar/hex"

// ActionType 单位行动类别
type ActionType string

const (
	ActionMelee    ActionType = "melee"
	ActionRanged   ActionType = "ranged"
	ActionBlock    ActionType = "block"
	ActionPiercing ActionType = "piercing"
)

// Action 行动：方向相对于单位的有效朝向
type Action struct {
	Type      ActionType    `json:"type"`
	Direction hex.Direction `json:"direction"`
}

// EntityType 单位原型标签
type EntityType string

const (
	Base      EntityType = "Base"
	Soldier   EntityType = "Soldier"
	Barricade EntityType = "Barricade"
	Knight    EntityType = "Knight"
	Sniper    EntityType = "Sniper"
)

// InfiniteHealth 表示不可被伤害（基地）
const InfiniteHealth = -1

// Archetype 不可变的单位模板
type Archetype struct {
	Type       EntityType
	Initiative int
	MaxHealth  int
	Actions    []Action
}

// Invulnerable 生命值为无限
func (a Archetype) Invulnerable() bool { return a.MaxHealth == InfiniteHealth }

func allSides(t ActionType) []Action {
	out := make([]Action, 0, hex.Sides)
	for d := hex.Direction(0); d < hex.Sides; d++ {
		out = append(out, Action{Type: t, Direction: d})
	}
	return out
}

// 静态原型表，只读
var archetypes = map[EntityType]Archetype{
	Base: {
		Type:       Base,
		Initiative: 0,
		MaxHealth:  InfiniteHealth,
		Actions:    allSides(ActionMelee),
	},
	Soldier: {
		Type:       Soldier,
		Initiative: 2,
		MaxHealth:  2,
		Actions: []Action{
			{Type: ActionRanged, Direction: 0},
			{Type: ActionMelee, Direction: 1},
		},
	},
	Barricade: {
		Type:       Barricade,
		Initiative: 0,
		MaxHealth:  6,
		Actions: []Action{
			{Type: ActionBlock, Direction: 5},
			{Type: ActionBlock, Direction: 0},
			{Type: ActionBlock, Direction: 1},
		},
	},
	Knight: {
		Type:       Knight,
		Initiative: 3,
		MaxHealth:  4,
		Actions: []Action{
			{Type: ActionMelee, Direction: 0},
			{Type: ActionBlock, Direction: 0},
		},
	},
	Sniper: {
		Type:       Sniper,
		Initiative: 0,
		MaxHealth:  1,
		Actions:    []Action{{Type: ActionPiercing, Direction: 0}},
	},
}

// UnitTypes 放下基地之后可建造的单位
var UnitTypes = []EntityType{Soldier, Barricade, Knight, Sniper}

// LookupArchetype 按标签取原型
func LookupArchetype(t EntityType) (Archetype, bool) {
	a, ok := archetypes[t]
	return a, ok
}

// Entity 棋盘上的单位实例：原型副本 + 自身的生命与朝向
type Entity struct {
	Archetype
	Rotation hex.Direction
	Health   int
}

func newEntity(a Archetype) *Entity {
	return &Entity{Archetype: a, Health: a.MaxHealth}
}

// Alive 生命值大于 0（无限生命总是存活）
func (e *Entity) Alive() bool { return e.Invulnerable() || e.Health > 0 }

// takeDamage 扣血；仅在本次伤害使其死亡时返回 true
func (e *Entity) takeDamage(n int) bool {
	if e.Invulnerable() {
		return false
	}
	wasAlive := e.Health > 0
	e.Health -= n
	return wasAlive && e.Health <= 0
}

// blocks 有效朝向 facing 下，是否有格挡行动覆盖绝对方向 side
func (e *Entity) blocks(facing, side hex.Direction) bool {
	for _, a := range e.Actions {
		if a.Type == ActionBlock && facing.Rotate(a.Direction) == side {
			return true
		}
	}
	return false
}

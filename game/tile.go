package game

import "hexwar/hex"

// Tile 棋盘上的一个格子；owner 与 entity 同时存在或同时为空
type Tile struct {
	Coords   hex.Coord
	Owner    *Player
	Entity   *Entity
	Rotation hex.Direction
}

// Occupied 是否有单位
func (t *Tile) Occupied() bool { return t.Entity != nil }

// Build 在空格上放置原型的新副本（满血），并记录朝向与所有者
func (t *Tile) Build(typ EntityType, rotation hex.Direction, owner *Player) error {
	if t.Entity != nil {
		return failf(KindTileOccupied, "tile (%d,%d) is not free", t.Coords.X, t.Coords.Y)
	}
	a, ok := LookupArchetype(typ)
	if !ok {
		return failf(KindUnknownEntityType, "unknown entity type %q", typ)
	}
	if !rotation.Valid() {
		return failf(KindInvalidRotation, "rotation %d out of range", rotation)
	}
	t.Entity = newEntity(a)
	t.Owner = owner
	t.Rotation = rotation
	return nil
}

// Reset 清空单位、所有者与朝向
func (t *Tile) Reset() {
	t.Entity = nil
	t.Owner = nil
	t.Rotation = 0
}

// Empty 战斗结算中移除死亡单位，与 Reset 等价
func (t *Tile) Empty() { t.Reset() }

// effectiveRotation 格子朝向叠加单位自身朝向
func (t *Tile) effectiveRotation() hex.Direction {
	if t.Entity == nil {
		return t.Rotation
	}
	return t.Rotation.Rotate(t.Entity.Rotation)
}

// EntityRecord 单位的线上表示；health 为 null 表示无限
type EntityRecord struct {
	Type       EntityType    `json:"type"`
	Rotation   hex.Direction `json:"rotation"`
	Initiative int           `json:"initiative"`
	Health     *int          `json:"health"`
	Actions    []Action      `json:"actions"`
}

// TileRecord 格子的线上表示
type TileRecord struct {
	OwnerID    *string       `json:"ownerId"`
	TileEntity *EntityRecord `json:"tileEntity"`
	Coords     hex.Coord     `json:"coords"`
	Rotation   hex.Direction `json:"rotation"`
}

// Serialize 生成线上记录
func (t *Tile) Serialize() TileRecord {
	rec := TileRecord{Coords: t.Coords, Rotation: t.Rotation}
	if t.Owner != nil {
		id := t.Owner.ID
		rec.OwnerID = &id
	}
	if e := t.Entity; e != nil {
		er := &EntityRecord{
			Type:       e.Type,
			Rotation:   e.Rotation,
			Initiative: e.Initiative,
			Actions:    append([]Action(nil), e.Actions...),
		}
		if !e.Invulnerable() {
			h := e.Health
			er.Health = &h
		}
		rec.TileEntity = er
	}
	return rec
}

// LoadState 是 Serialize 的逆操作；ownerId 通过 resolve 解析为在线玩家
func (t *Tile) LoadState(rec TileRecord, resolve func(id string) *Player) error {
	if rec.Coords != t.Coords {
		return failf(KindTileNotFound, "record for (%d,%d) loaded into tile (%d,%d)",
			rec.Coords.X, rec.Coords.Y, t.Coords.X, t.Coords.Y)
	}
	if !rec.Rotation.Valid() {
		return failf(KindInvalidRotation, "rotation %d out of range", rec.Rotation)
	}
	if rec.TileEntity == nil {
		if rec.OwnerID != nil {
			return failf(KindTileEmpty, "owner %q set on empty tile", *rec.OwnerID)
		}
		t.Reset()
		t.Rotation = rec.Rotation
		return nil
	}

	a, ok := LookupArchetype(rec.TileEntity.Type)
	if !ok {
		return failf(KindUnknownEntityType, "unknown entity type %q", rec.TileEntity.Type)
	}
	if rec.OwnerID == nil {
		return failf(KindUnknownPlayer, "entity on (%d,%d) has no owner", t.Coords.X, t.Coords.Y)
	}
	owner := resolve(*rec.OwnerID)
	if owner == nil {
		return failf(KindUnknownPlayer, "owner %q is not in the session", *rec.OwnerID)
	}

	e := newEntity(a)
	e.Rotation = rec.TileEntity.Rotation.Rotate(0)
	if h := rec.TileEntity.Health; h != nil && !a.Invulnerable() {
		if *h <= 0 || *h > a.MaxHealth {
			return failf(KindInvalidHealth, "health %d out of range 1..%d for %s", *h, a.MaxHealth, a.Type)
		}
		e.Health = *h
	}
	t.Entity = e
	t.Owner = owner
	t.Rotation = rec.Rotation
	return nil
}

package game

import "hexwar/hex"

// Build 校验并执行一次建造，返回需要广播的格子记录
func (s *Session) Build(requesterID string, at hex.Coord, typ EntityType, rotation hex.Direction) (TileRecord, error) {
	if err := s.checkCurrent(requesterID); err != nil {
		return TileRecord{}, err
	}
	if s.usedMoves >= s.rules.MaxMovesPerTurn {
		return TileRecord{}, failf(KindMovesExhausted, "ran out of moves (%d per turn)", s.rules.MaxMovesPerTurn)
	}
	if _, ok := LookupArchetype(typ); !ok {
		return TileRecord{}, failf(KindUnknownEntityType, "unknown entity type %q", typ)
	}
	if !rotation.Valid() {
		return TileRecord{}, failf(KindInvalidRotation, "rotation %d out of range", rotation)
	}
	p := s.CurrentPlayer()
	if !p.BasePlaced && typ != Base {
		return TileRecord{}, failf(KindBaseRequiredFirst, "must place base first")
	}
	if p.BasePlaced && typ == Base {
		return TileRecord{}, failf(KindBaseAlreadyPlaced, "only one base per player")
	}
	t, err := s.tileAt(at)
	if err != nil {
		return TileRecord{}, err
	}
	if err := t.Build(typ, rotation, p); err != nil {
		return TileRecord{}, err
	}
	if typ == Base {
		p.BasePlaced = true
		p.refreshHand()
	}
	s.incrementMove()
	return t.Serialize(), nil
}

// Rotate 所有者调整格子朝向；不受回合与步数限制
func (s *Session) Rotate(requesterID string, at hex.Coord, rotation hex.Direction) (TileRecord, error) {
	t, err := s.tileAt(at)
	if err != nil {
		return TileRecord{}, err
	}
	if t.Entity == nil {
		return TileRecord{}, failf(KindTileEmpty, "no entity on (%d,%d)", at.X, at.Y)
	}
	if t.Owner == nil || t.Owner.ID != requesterID {
		return TileRecord{}, failf(KindNotOwner, "you do not own the entity on (%d,%d)", at.X, at.Y)
	}
	if !rotation.Valid() {
		return TileRecord{}, failf(KindInvalidRotation, "rotation %d out of range", rotation)
	}
	t.Rotation = rotation
	return t.Serialize(), nil
}

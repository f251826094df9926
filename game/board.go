package game

import "hexwar/hex"

// Board 一局游戏的棋盘，每个坐标恰好一个 Tile
type Board struct {
	*hex.Grid[Tile]
}

// NewBoard 生成半径 radius 的空棋盘
func NewBoard(radius int) *Board {
	return &Board{Grid: hex.NewGrid(radius, func(c hex.Coord) *Tile {
		return &Tile{Coords: c}
	})}
}

// Tile 按坐标取格子
func (b *Board) Tile(c hex.Coord) (*Tile, bool) { return b.At(c) }

// Tiles 按枚举顺序返回全部格子
func (b *Board) Tiles() []*Tile {
	out := make([]*Tile, 0, b.Len())
	b.Each(func(_ hex.Coord, t *Tile) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Serialize 全盘线上记录
func (b *Board) Serialize() []TileRecord {
	out := make([]TileRecord, 0, b.Len())
	b.Each(func(_ hex.Coord, t *Tile) bool {
		out = append(out, t.Serialize())
		return true
	})
	return out
}

// resetOwnedBy 清空某玩家拥有的所有格子，返回被清空的数量
func (b *Board) resetOwnedBy(id string) int {
	n := 0
	b.Each(func(_ hex.Coord, t *Tile) bool {
		if t.Owner != nil && t.Owner.ID == id {
			t.Reset()
			n++
		}
		return true
	})
	return n
}

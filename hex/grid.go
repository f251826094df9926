package hex

// Grid 半径受限的六边形格子集合：构造时一次性生成，之后结构不再变化
type Grid[T any] struct {
	radius int
	order  []Coord
	cells  map[Coord]*T
}

// NewGrid 为圆盘内每个坐标调用 newCell 生成一个格子
func NewGrid[T any](radius int, newCell func(Coord) *T) *Grid[T] {
	coords := Disk(radius)
	g := &Grid[T]{
		radius: radius,
		order:  coords,
		cells:  make(map[Coord]*T, len(coords)),
	}
	for _, c := range coords {
		g.cells[c] = newCell(c)
	}
	return g
}

func (g *Grid[T]) Radius() int { return g.radius }

func (g *Grid[T]) Len() int { return len(g.order) }

// At 按坐标查找格子
func (g *Grid[T]) At(c Coord) (*T, bool) {
	cell, ok := g.cells[c]
	return cell, ok
}

// Contains 坐标是否在棋盘内
func (g *Grid[T]) Contains(c Coord) bool {
	_, ok := g.cells[c]
	return ok
}

// Each 按枚举顺序遍历；fn 返回 false 时停止
func (g *Grid[T]) Each(fn func(Coord, *T) bool) {
	for _, c := range g.order {
		if !fn(c, g.cells[c]) {
			return
		}
	}
}

// Package hex 提供轴向(axial)六边形坐标运算：方向向量、邻居、直线与圆盘枚举。
package hex

import "iter"

// Coord 轴向坐标，结构相等即同一格
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction 六个标准方向之一（0..5）
type Direction int

// Sides 六边形边数
const Sides = 6

var offsets = [Sides]Coord{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
}

// Valid 是否处于 0..5
func (d Direction) Valid() bool { return d >= 0 && d < Sides }

// Rotate 顺序叠加旋转（取模 6，负数也归一）
func (d Direction) Rotate(by Direction) Direction {
	r := (int(d) + int(by)) % Sides
	if r < 0 {
		r += Sides
	}
	return Direction(r)
}

// Opposite 反方向
func (d Direction) Opposite() Direction { return d.Rotate(3) }

// Offset 方向对应的轴向位移向量
func (d Direction) Offset() Coord { return offsets[d.Rotate(0)] }

func (c Coord) Add(o Coord) Coord { return Coord{X: c.X + o.X, Y: c.Y + o.Y} }

func (c Coord) Scale(n int) Coord { return Coord{X: c.X * n, Y: c.Y * n} }

// Neighbor 沿方向 d 的相邻格
func (c Coord) Neighbor(d Direction) Coord { return c.Add(d.Offset()) }

// Neighbors 六个相邻格，下标即方向
func (c Coord) Neighbors() [Sides]Coord {
	var out [Sides]Coord
	for d := Direction(0); d < Sides; d++ {
		out[d] = c.Neighbor(d)
	}
	return out
}

// Distance 两格之间的六边形步数
func Distance(a, b Coord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return (abs(dx) + abs(dy) + abs(dx+dy)) / 2
}

// Line 惰性生成 from + d*n（n = 1..maxSteps），调用方可提前 break
func Line(from Coord, d Direction, maxSteps int) iter.Seq[Coord] {
	step := d.Offset()
	return func(yield func(Coord) bool) {
		for n := 1; n <= maxSteps; n++ {
			if !yield(from.Add(step.Scale(n))) {
				return
			}
		}
	}
}

// DiskSize 半径 r 的圆盘格数：3r² + 3r + 1
func DiskSize(r int) int {
	if r < 0 {
		return 0
	}
	return 3*r*r + 3*r + 1
}

// Disk 按标准顺序枚举半径 r 内的全部坐标
func Disk(r int) []Coord {
	out := make([]Coord, 0, DiskSize(r))
	for i := -r; i <= r; i++ {
		lo := max(-r, -i-r)
		hi := min(r, -i+r)
		for j := lo; j <= hi; j++ {
			out = append(out, Coord{X: i, Y: j})
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package game

import (
	"math/rand/v2"
	"slices"
)

// Color RGB 三元组
type Color [3]int

func randomColor(rng *rand.Rand) Color {
	return Color{rng.IntN(256), rng.IntN(256), rng.IntN(256)}
}

// Player 会话内的玩家：加入时创建，断线时移除
type Player struct {
	ID         string
	Color      *Color
	Hand       []EntityType
	BasePlaced bool
	Score      int
}

// refreshHand 按基地是否已放置重置手牌：未放置只有 Base，放置后为全部单位
func (p *Player) refreshHand() {
	if p.BasePlaced {
		p.Hand = slices.Clone(UnitTypes)
		return
	}
	p.Hand = []EntityType{Base}
}

// PlayerRecord 广播给客户端的玩家状态
type PlayerRecord struct {
	ID     string `json:"id"`
	Color  *Color `json:"color"`
	IsTurn bool   `json:"isTurn"`
	Score  int    `json:"score"`
}

func (p *Player) serialize(isTurn bool) PlayerRecord {
	var c *Color
	if p.Color != nil {
		cc := *p.Color
		c = &cc
	}
	return PlayerRecord{ID: p.ID, Color: c, IsTurn: isTurn, Score: p.Score}
}

package game

import (
	"cmp"
	"slices"

	"hexwar/hex"
)

// Hit 一次伤害判定
type Hit struct {
	From    hex.Coord  `json:"from"`
	To      hex.Coord  `json:"to"`
	Action  ActionType `json:"action"`
	Blocked bool       `json:"blocked"`
}

// CombatReport 一次战斗结算的结果
type CombatReport struct {
	Hits   []Hit        `json:"hits"`
	Deaths []hex.Coord  `json:"deaths"`
	Board  []TileRecord `json:"board"`
}

// combatant 结算开始时的快照条目
type combatant struct {
	pos    hex.Coord
	owner  *Player
	entity *Entity
	facing hex.Direction
}

// resolver 单次结算的临时状态
type resolver struct {
	s      *Session
	report *CombatReport
	queued []hex.Coord
	killer map[hex.Coord]*Player
}

// ResolveCombat 对全盘执行一次战斗：按先攻从高到低分层，同层伤害同时生效，层间清理死亡单位
func (s *Session) ResolveCombat() CombatReport {
	var snapshot []combatant
	s.board.Each(func(c hex.Coord, t *Tile) bool {
		if t.Entity != nil {
			snapshot = append(snapshot, combatant{
				pos:    c,
				owner:  t.Owner,
				entity: t.Entity,
				facing: t.effectiveRotation(),
			})
		}
		return true
	})
	slices.SortStableFunc(snapshot, func(a, b combatant) int {
		return cmp.Compare(b.entity.Initiative, a.entity.Initiative)
	})

	report := CombatReport{}
	r := &resolver{s: s, report: &report, killer: make(map[hex.Coord]*Player)}
	for i, c := range snapshot {
		if i > 0 && c.entity.Initiative < snapshot[i-1].entity.Initiative {
			r.flush()
		}
		// 已在更早的层中被移除
		if t, ok := s.board.Tile(c.pos); !ok || t.Entity != c.entity {
			continue
		}
		for _, a := range c.entity.Actions {
			r.act(c, a)
		}
	}
	r.flush()

	report.Board = s.board.Serialize()
	return report
}

func (r *resolver) act(c combatant, a Action) {
	dir := c.facing.Rotate(a.Direction)
	switch a.Type {
	case ActionBlock:
	case ActionMelee:
		r.strike(c, a.Type, c.pos.Neighbor(dir), dir)
	case ActionRanged, ActionPiercing:
		for target := range hex.Line(c.pos, dir, r.s.rules.RangedReach) {
			t, ok := r.s.board.Tile(target)
			if !ok {
				break
			}
			if t.Entity == nil {
				continue
			}
			landed := r.strike(c, a.Type, target, dir)
			if a.Type == ActionRanged && (!landed || r.s.rules.RangedStopsAtFirstHit) {
				break
			}
		}
	}
}

// strike 对 target 造成 1 点伤害，被格挡时返回 false
func (r *resolver) strike(c combatant, typ ActionType, target hex.Coord, dir hex.Direction) bool {
	t, ok := r.s.board.Tile(target)
	if !ok || t.Entity == nil {
		return false
	}
	hit := Hit{From: c.pos, To: target, Action: typ}
	if typ != ActionPiercing && r.s.rules.BlockingEnabled &&
		t.Entity.blocks(t.effectiveRotation(), dir.Opposite()) {
		hit.Blocked = true
		r.report.Hits = append(r.report.Hits, hit)
		return false
	}
	r.report.Hits = append(r.report.Hits, hit)
	if t.Entity.takeDamage(1) {
		r.queued = append(r.queued, target)
		r.killer[target] = c.owner
	}
	return true
}

// flush 清空死亡队列并结算击杀分
func (r *resolver) flush() {
	for _, at := range r.queued {
		t, ok := r.s.board.Tile(at)
		if !ok {
			continue
		}
		victim := t.Owner
		if k := r.killer[at]; k != nil && k != victim && r.s.Player(k.ID) != nil {
			k.Score++
		}
		t.Empty()
		delete(r.killer, at)
		r.report.Deaths = append(r.report.Deaths, at)
	}
	r.queued = r.queued[:0]
}

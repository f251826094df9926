package game

import (
	"testing"

	"hexwar/hex"
)

// place 直接写入棋盘，绕过回合与手牌校验
func place(t *testing.T, s *Session, at hex.Coord, typ EntityType, rot hex.Direction, owner string) *Tile {
	t.Helper()
	tile, ok := s.Grid().Tile(at)
	if !ok {
		t.Fatalf("no tile at %+v", at)
	}
	p := s.Player(owner)
	if p == nil {
		t.Fatalf("unknown owner %s", owner)
	}
	if err := tile.Build(typ, rot, p); err != nil {
		t.Fatalf("place %s at %+v: %v", typ, at, err)
	}
	return tile
}

func health(t *testing.T, s *Session, at hex.Coord) int {
	t.Helper()
	tile, _ := s.Grid().Tile(at)
	if tile.Entity == nil {
		t.Fatalf("no entity at %+v", at)
	}
	return tile.Entity.Health
}

func sessionWithRules(t *testing.T, mutate func(*Rules)) *Session {
	t.Helper()
	rules := DefaultRules()
	if mutate != nil {
		mutate(&rules)
	}
	s := NewSession("war", WithRules(rules), WithSeed(7))
	for _, id := range []string{"alice", "bob"} {
		if _, err := s.Join(id); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	return s
}

func TestRangedSoldierOnBarricade(t *testing.T) {
	for _, firstHit := range []bool{false, true} {
		s := sessionWithRules(t, func(r *Rules) { r.RangedStopsAtFirstHit = firstHit })
		place(t, s, hex.Coord{X: -2, Y: 0}, Soldier, 0, "alice")
		place(t, s, hex.Coord{X: 1, Y: 0}, Barricade, 0, "bob")

		report := s.ResolveCombat()

		if len(report.Hits) != 1 {
			t.Fatalf("firstHit=%v: %d hits, want exactly 1: %+v", firstHit, len(report.Hits), report.Hits)
		}
		if h := report.Hits[0]; h.To != (hex.Coord{X: 1, Y: 0}) || h.Action != ActionRanged || h.Blocked {
			t.Fatalf("unexpected hit %+v", h)
		}
		if got := health(t, s, hex.Coord{X: 1, Y: 0}); got != 5 {
			t.Fatalf("barricade health = %d, want 5", got)
		}
		if got := health(t, s, hex.Coord{X: -2, Y: 0}); got != 2 {
			t.Fatalf("soldier health = %d, want 2", got)
		}
		if len(report.Deaths) != 0 || len(report.Board) != hex.DiskSize(2) {
			t.Fatalf("deaths=%v board=%d", report.Deaths, len(report.Board))
		}
	}
}

func TestRangedPassThroughVersusFirstHit(t *testing.T) {
	near, far := hex.Coord{X: 0, Y: 0}, hex.Coord{X: 2, Y: 0}

	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: -2, Y: 0}, Soldier, 0, "alice")
	place(t, s, near, Barricade, 0, "bob")
	place(t, s, far, Barricade, 0, "bob")
	s.ResolveCombat()
	if health(t, s, near) != 5 || health(t, s, far) != 5 {
		t.Fatalf("pass-through: near=%d far=%d, want 5/5", health(t, s, near), health(t, s, far))
	}

	s = sessionWithRules(t, func(r *Rules) { r.RangedStopsAtFirstHit = true })
	place(t, s, hex.Coord{X: -2, Y: 0}, Soldier, 0, "alice")
	place(t, s, near, Barricade, 0, "bob")
	place(t, s, far, Barricade, 0, "bob")
	s.ResolveCombat()
	if health(t, s, near) != 5 || health(t, s, far) != 6 {
		t.Fatalf("first-hit: near=%d far=%d, want 5/6", health(t, s, near), health(t, s, far))
	}
}

func TestBlockStopsRanged(t *testing.T) {
	front, behind := hex.Coord{X: 0, Y: 0}, hex.Coord{X: 2, Y: 0}

	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: -2, Y: 0}, Soldier, 0, "alice")
	// 朝向 3 时格挡 2、3、4，即西侧来袭
	place(t, s, front, Barricade, 3, "bob")
	place(t, s, behind, Barricade, 0, "bob")

	report := s.ResolveCombat()
	if health(t, s, front) != 6 || health(t, s, behind) != 6 {
		t.Fatalf("front=%d behind=%d, want 6/6", health(t, s, front), health(t, s, behind))
	}
	if len(report.Hits) != 1 || !report.Hits[0].Blocked {
		t.Fatalf("hits = %+v, want one blocked hit", report.Hits)
	}

	s = sessionWithRules(t, func(r *Rules) { r.BlockingEnabled = false })
	place(t, s, hex.Coord{X: -2, Y: 0}, Soldier, 0, "alice")
	place(t, s, front, Barricade, 3, "bob")
	place(t, s, behind, Barricade, 0, "bob")
	s.ResolveCombat()
	if health(t, s, front) != 5 || health(t, s, behind) != 5 {
		t.Fatalf("blocking off: front=%d behind=%d, want 5/5", health(t, s, front), health(t, s, behind))
	}
}

func TestBlockStopsMelee(t *testing.T) {
	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: 0, Y: 0}, Knight, 0, "alice")
	// 骑士朝向 0 攻击东侧；对面骑士朝向 3 面向西并格挡
	place(t, s, hex.Coord{X: 1, Y: 0}, Knight, 3, "bob")

	report := s.ResolveCombat()
	if health(t, s, hex.Coord{X: 0, Y: 0}) != 4 || health(t, s, hex.Coord{X: 1, Y: 0}) != 4 {
		t.Fatalf("shields failed: %+v", report.Hits)
	}
	if len(report.Hits) != 2 || !report.Hits[0].Blocked || !report.Hits[1].Blocked {
		t.Fatalf("hits = %+v, want two blocked", report.Hits)
	}
}

func TestPiercingIgnoresBlock(t *testing.T) {
	front, behind := hex.Coord{X: 0, Y: 0}, hex.Coord{X: 2, Y: 0}
	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: -2, Y: 0}, Sniper, 0, "alice")
	place(t, s, front, Barricade, 3, "bob")
	place(t, s, behind, Barricade, 3, "bob")

	report := s.ResolveCombat()
	if health(t, s, front) != 5 || health(t, s, behind) != 5 {
		t.Fatalf("front=%d behind=%d, want 5/5", health(t, s, front), health(t, s, behind))
	}
	for _, h := range report.Hits {
		if h.Blocked || h.Action != ActionPiercing {
			t.Fatalf("unexpected hit %+v", h)
		}
	}
}

func TestSameTierMutualKill(t *testing.T) {
	a, b := hex.Coord{X: -1, Y: 0}, hex.Coord{X: 1, Y: 0}
	s := sessionWithRules(t, nil)
	place(t, s, a, Sniper, 0, "alice")
	place(t, s, b, Sniper, 3, "bob")

	report := s.ResolveCombat()

	if len(report.Deaths) != 2 {
		t.Fatalf("deaths = %v, want both snipers", report.Deaths)
	}
	for _, at := range []hex.Coord{a, b} {
		tile, _ := s.Grid().Tile(at)
		if tile.Entity != nil || tile.Owner != nil {
			t.Fatalf("sniper at %+v survived", at)
		}
	}
	if s.Player("alice").Score != 1 || s.Player("bob").Score != 1 {
		t.Fatalf("scores alice=%d bob=%d, want 1/1", s.Player("alice").Score, s.Player("bob").Score)
	}
}

func TestEarlierTierDeathPreventsAction(t *testing.T) {
	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: 0, Y: 0}, Knight, 0, "alice")
	// 狙击手先攻 0，必须在骑士那一层结束后被移除，不能还击
	place(t, s, hex.Coord{X: 1, Y: 0}, Sniper, 3, "bob")

	report := s.ResolveCombat()

	if got := health(t, s, hex.Coord{X: 0, Y: 0}); got != 4 {
		t.Fatalf("knight health = %d, want 4", got)
	}
	if len(report.Deaths) != 1 || report.Deaths[0] != (hex.Coord{X: 1, Y: 0}) {
		t.Fatalf("deaths = %v", report.Deaths)
	}
	if len(report.Hits) != 1 {
		t.Fatalf("hits = %+v, want knight only", report.Hits)
	}
	if s.Player("alice").Score != 1 {
		t.Fatalf("alice score = %d", s.Player("alice").Score)
	}
}

func TestBaseIsInvulnerable(t *testing.T) {
	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: 0, Y: 0}, Base, 0, "alice")
	place(t, s, hex.Coord{X: 1, Y: 0}, Soldier, 3, "bob")

	report := s.ResolveCombat()

	base, _ := s.Grid().Tile(hex.Coord{})
	if base.Entity == nil || base.Entity.Health != InfiniteHealth {
		t.Fatalf("base damaged: %+v", base.Entity)
	}
	if got := health(t, s, hex.Coord{X: 1, Y: 0}); got != 1 {
		t.Fatalf("soldier health = %d, want 1 after base melee", got)
	}
	if len(report.Hits) != 2 || len(report.Deaths) != 0 {
		t.Fatalf("hits=%+v deaths=%v", report.Hits, report.Deaths)
	}
}

func TestFriendlyKillScoresNothing(t *testing.T) {
	s := sessionWithRules(t, nil)
	place(t, s, hex.Coord{X: 0, Y: 0}, Knight, 0, "alice")
	place(t, s, hex.Coord{X: 1, Y: 0}, Sniper, 0, "alice")

	report := s.ResolveCombat()
	if len(report.Deaths) != 1 {
		t.Fatalf("deaths = %v", report.Deaths)
	}
	if s.Player("alice").Score != 0 {
		t.Fatalf("friendly kill scored %d", s.Player("alice").Score)
	}
}

func TestResolveEmptyBoard(t *testing.T) {
	s := sessionWithRules(t, nil)
	report := s.ResolveCombat()
	if len(report.Hits) != 0 || len(report.Deaths) != 0 || len(report.Board) != hex.DiskSize(2) {
		t.Fatalf("unexpected report %+v", report)
	}
}

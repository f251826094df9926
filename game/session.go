// Package game 是一局六边形回合制战棋的权威会话引擎：棋盘、玩家、回合阶段、放置校验与战斗结算。
//
// Session 本身不加锁，宿主需要保证同一会话的请求串行执行。
package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"hexwar/hex"
)

// Stage 游戏阶段，只能单向推进
type Stage int

const (
	StageWaiting Stage = iota
	StageBasePlacement
	StageProper
)

var stageNames = [...]string{"waiting", "base_placement", "proper"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	i := slices.Index(stageNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("unknown stage %q", b)
	}
	*s = Stage(i)
	return nil
}

// Rules 单个会话的可调参数
type Rules struct {
	BoardRadius           int  `json:"boardRadius"`
	MaxMovesPerTurn       int  `json:"maxMovesPerTurn"`
	MaxPlayers            int  `json:"maxPlayers"`
	RangedReach           int  `json:"rangedReach"`
	RangedStopsAtFirstHit bool `json:"rangedStopsAtFirstHit"`
	BlockingEnabled       bool `json:"blockingEnabled"`
}

// DefaultRules 默认规则：半径 2，每回合 2 步，射程 4，格挡生效
func DefaultRules() Rules {
	return Rules{
		BoardRadius:     2,
		MaxMovesPerTurn: 2,
		MaxPlayers:      6,
		RangedReach:     4,
		BlockingEnabled: true,
	}
}

// Validate 校验参数取值
func (r Rules) Validate() error {
	switch {
	case r.BoardRadius < 0:
		return fmt.Errorf("board radius must be >= 0, got %d", r.BoardRadius)
	case r.MaxMovesPerTurn < 1:
		return fmt.Errorf("max moves per turn must be >= 1, got %d", r.MaxMovesPerTurn)
	case r.MaxPlayers < 1:
		return fmt.Errorf("max players must be >= 1, got %d", r.MaxPlayers)
	case r.RangedReach < 1:
		return fmt.Errorf("ranged reach must be >= 1, got %d", r.RangedReach)
	}
	return nil
}

// Session 一局游戏的全部可变状态
type Session struct {
	ID string

	rules     Rules
	board     *Board
	players   []*Player
	departed  map[string]bool
	turn      int
	usedMoves int
	stage     Stage
	started   bool
	rng       *rand.Rand
}

// Option 构造参数
type Option func(*Session)

// WithRules 指定规则（须已通过 Validate）
func WithRules(r Rules) Option { return func(s *Session) { s.rules = r } }

// WithSeed 固定随机源，便于测试
func WithSeed(seed uint64) Option {
	return func(s *Session) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// NewSession 创建空会话（阶段 waiting）
func NewSession(id string, opts ...Option) *Session {
	s := &Session{
		ID:       id,
		rules:    DefaultRules(),
		departed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.board = NewBoard(s.rules.BoardRadius)
	return s
}

func (s *Session) Rules() Rules { return s.rules }

// SetRules 更新规则；棋盘半径在下一次 ResetBoard 时生效
func (s *Session) SetRules(r Rules) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.rules = r
	return nil
}

func (s *Session) Stage() Stage { return s.stage }

func (s *Session) Turn() int { return s.turn }

func (s *Session) UsedMoves() int { return s.usedMoves }

func (s *Session) Started() bool { return s.started }

// Grid 当前棋盘，只用于读取
func (s *Session) Grid() *Board { return s.board }

// Player 按 id 查找在线玩家
func (s *Session) Player(id string) *Player {
	i := s.playerIndex(id)
	if i < 0 {
		return nil
	}
	return s.players[i]
}

func (s *Session) playerIndex(id string) int {
	return slices.IndexFunc(s.players, func(p *Player) bool { return p.ID == id })
}

// PlayerCount 在线玩家数
func (s *Session) PlayerCount() int { return len(s.players) }

// CurrentPlayer players[turn mod len]；空名单返回 nil
func (s *Session) CurrentPlayer() *Player {
	if len(s.players) == 0 {
		return nil
	}
	return s.players[s.turn%len(s.players)]
}

// Join 新玩家加入轮转，颜色随机
func (s *Session) Join(id string) (*Player, error) {
	if s.started {
		return nil, failf(KindGameAlreadyStarted, "the game has already started")
	}
	if s.Player(id) != nil || s.departed[id] {
		return nil, failf(KindDuplicatePlayer, "player %q already exists", id)
	}
	if len(s.players) >= s.rules.MaxPlayers {
		return nil, failf(KindSessionFull, "session is full (%d players)", s.rules.MaxPlayers)
	}
	c := randomColor(s.rng)
	p := &Player{ID: id, Color: &c}
	s.players = append(s.players, p)
	return p, nil
}

// StartGame 给每位玩家发放基地并进入基地放置阶段
func (s *Session) StartGame(requesterID string) error {
	if s.Player(requesterID) == nil {
		return failf(KindUnknownPlayer, "player %q is not in the session", requesterID)
	}
	if s.started {
		return failf(KindGameAlreadyStarted, "the game has already started")
	}
	for _, p := range s.players {
		p.refreshHand()
	}
	s.started = true
	s.stage = StageBasePlacement
	return nil
}

// RemovePlayer 移除玩家并释放其全部格子；总是成功。
// 当前玩家保持不变；移除的正是当前玩家时由其后一位接手，步数清零。
func (s *Session) RemovePlayer(id string) bool {
	i := s.playerIndex(id)
	if i < 0 {
		return false
	}
	cur := s.turn % len(s.players)
	s.players = slices.Delete(s.players, i, i+1)
	s.departed[id] = true
	s.board.resetOwnedBy(id)
	if len(s.players) > 0 {
		next := cur
		if i < cur {
			next--
		}
		s.alignTurn(next % len(s.players))
	}
	if i == cur {
		s.usedMoves = 0
	}
	return true
}

// alignTurn 把回合号回退到最近一个指向下标 idx 的值
func (s *Session) alignTurn(idx int) {
	n := len(s.players)
	s.turn -= ((s.turn-idx)%n + n) % n
}

// ResetBoard 重建棋盘并回到 waiting；分数保留
func (s *Session) ResetBoard() {
	s.board = NewBoard(s.rules.BoardRadius)
	s.turn = 0
	s.usedMoves = 0
	s.stage = StageWaiting
	s.started = false
	for _, p := range s.players {
		p.Hand = nil
		p.BasePlaced = false
	}
}

// Board 全盘线上记录
func (s *Session) Board() []TileRecord { return s.board.Serialize() }

// Players 玩家线上记录，按轮转顺序
func (s *Session) Players() []PlayerRecord {
	cur := s.CurrentPlayer()
	out := make([]PlayerRecord, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.serialize(p == cur))
	}
	return out
}

// LoadBoard 用线上记录覆盖棋盘，记录中的 ownerId 必须是在线玩家。
// 任一记录无效时棋盘保持不变。
func (s *Session) LoadBoard(recs []TileRecord) error {
	loaded := make([]Tile, len(recs))
	for i, rec := range recs {
		if _, err := s.tileAt(rec.Coords); err != nil {
			return err
		}
		loaded[i].Coords = rec.Coords
		if err := loaded[i].LoadState(rec, s.Player); err != nil {
			return err
		}
	}
	for i := range loaded {
		t, _ := s.board.Tile(loaded[i].Coords)
		*t = loaded[i]
	}

	// 基地状态以棋盘为准
	bases := make(map[*Player]bool)
	s.board.Each(func(_ hex.Coord, t *Tile) bool {
		if t.Entity != nil && t.Entity.Type == Base && t.Owner != nil {
			bases[t.Owner] = true
		}
		return true
	})
	for _, p := range s.players {
		p.BasePlaced = bases[p]
		if s.started {
			p.refreshHand()
		}
	}
	return nil
}

func (s *Session) tileAt(c hex.Coord) (*Tile, error) {
	t, ok := s.board.Tile(c)
	if !ok {
		return nil, failf(KindTileNotFound, "no tile at (%d,%d)", c.X, c.Y)
	}
	return t, nil
}

package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hexwar/game"
)

// Room 一个游戏会话：会话状态 + 房间锁 + 在线连接。
// 所有操作在 mu 下同步执行完毕，同一房间的请求按到达顺序全序。
type Room struct {
	ID string

	mu         sync.Mutex
	session    *game.Session
	members    map[PlayerID]*Member
	lastActive time.Time
	now        func() time.Time

	metrics *RoomMetrics
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, rules game.Rules) *Room {
	return &Room{
		ID:         id,
		session:    game.NewSession(id, game.WithRules(rules)),
		members:    make(map[PlayerID]*Member),
		lastActive: time.Now(),
		now:        time.Now,
		metrics:    &RoomMetrics{},
	}
}

// Attach 登记一条连接（此时尚未作为玩家加入）
func (r *Room) Attach(id PlayerID, conn *ClientConn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; ok {
		return fmt.Errorf("player %s already connected to room %s", id, r.ID)
	}
	r.members[id] = &Member{ID: id, Conn: conn}
	r.touch()
	return nil
}

// Detach 连接断开：关闭连接、从会话中移除玩家并同步给其他人
func (r *Room) Detach(id PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[id]; ok {
		if m.Conn != nil {
			m.Conn.Close()
		}
		delete(r.members, id)
	}
	if r.session.RemovePlayer(string(id)) {
		Log.Infof("player left: room=%s player=%s remaining=%d", r.ID, id, r.session.PlayerCount())
		r.broadcast(BroadSyncPlayers, r.session.Players())
		r.broadcast(BroadBoard, r.session.Board())
	}
	r.touch()
}

// Handle 执行一个请求并返回回复；需要广播的副作用在返回前已入队
func (r *Room) Handle(id PlayerID, req Request) Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	r.metrics.IncHandled()

	resp := r.dispatch(string(id), req)
	if resp.Status != StatusOK {
		r.metrics.IncRejected()
		Log.Debugf("request rejected: room=%s player=%s type=%s kind=%s reason=%s",
			r.ID, id, req.Type, resp.Kind, resp.Reason)
	}
	return resp
}

func (r *Room) dispatch(pid string, req Request) Response {
	s := r.session
	switch req.Type {
	case ReqCreatePlayer:
		p, err := s.Join(pid)
		if err != nil {
			return negative(req.Seq, err)
		}
		Log.Infof("player joined: room=%s player=%s", r.ID, pid)
		r.broadcast(BroadSyncPlayers, s.Players())
		return positive(req.Seq, map[string]any{"color": p.Color})

	case ReqStartGame:
		if err := s.StartGame(pid); err != nil {
			return negative(req.Seq, err)
		}
		Log.Infof("game started: room=%s players=%d", r.ID, s.PlayerCount())
		r.broadcast(BroadStartGame, nil)
		r.broadcast(BroadSyncPlayers, s.Players())
		return positive(req.Seq, nil)

	case ReqBuild:
		var br BuildRequest
		if err := json.Unmarshal(req.Data, &br); err != nil {
			return protocolError(req.Seq, KindBadRequest, "invalid build payload")
		}
		rec, err := s.Build(pid, br.Coords, br.Type, br.Rotation)
		if err != nil {
			return negative(req.Seq, err)
		}
		r.metrics.IncBuilds()
		r.broadcast(BroadBuild, rec)
		return positive(req.Seq, rec)

	case ReqRotate:
		var rr RotateRequest
		if err := json.Unmarshal(req.Data, &rr); err != nil {
			return protocolError(req.Seq, KindBadRequest, "invalid rotate payload")
		}
		rec, err := s.Rotate(pid, rr.Coords, rr.Rotation)
		if err != nil {
			return negative(req.Seq, err)
		}
		r.broadcast(BroadRotate, rec)
		return positive(req.Seq, rec)

	case ReqTurn:
		info, err := s.NextTurn(pid)
		if err != nil {
			return negative(req.Seq, err)
		}
		r.metrics.IncTurns()
		r.broadcast(BroadTurn, info)
		r.broadcast(BroadSyncPlayers, s.Players())
		return positive(req.Seq, info)

	case ReqWar:
		if s.Player(pid) == nil {
			return negative(req.Seq, &game.Error{Kind: game.KindUnknownPlayer, Reason: "create a player first"})
		}
		start := r.now()
		report := s.ResolveCombat()
		r.metrics.AddCombat(r.now().Sub(start).Nanoseconds())
		Log.Infof("combat resolved: room=%s hits=%d deaths=%d", r.ID, len(report.Hits), len(report.Deaths))
		r.broadcast(BroadBoard, report.Board)
		r.broadcast(BroadSyncPlayers, s.Players())
		return positive(req.Seq, report)

	case ReqReset:
		if s.Player(pid) == nil {
			return negative(req.Seq, &game.Error{Kind: game.KindUnknownPlayer, Reason: "create a player first"})
		}
		s.ResetBoard()
		Log.Infof("board reset: room=%s by=%s", r.ID, pid)
		r.broadcast(BroadRestart, nil)
		return positive(req.Seq, nil)

	case ReqGetBoard:
		return positive(req.Seq, s.Board())

	case ReqGetPlayers:
		return positive(req.Seq, s.Players())

	case ReqSyncBoard:
		r.broadcast(BroadBoard, s.Board())
		return positive(req.Seq, nil)

	case ReqSyncPlayers:
		r.broadcast(BroadSyncPlayers, s.Players())
		return positive(req.Seq, nil)
	}
	return protocolError(req.Seq, KindUnknownRequest, fmt.Sprintf("unknown request type %q", req.Type))
}

// broadcast 将事件编码一次后投递给所有连接；调用方持有 mu
func (r *Room) broadcast(typ string, data any) {
	b, err := json.Marshal(Event{Type: typ, Data: data})
	if err != nil {
		Log.Errorf("encode broadcast %s: %v", typ, err)
		return
	}
	for _, m := range r.members {
		if !m.send(b) {
			r.metrics.IncChanFullDiscarded()
		}
	}
}

// reply 把回复投递给单个连接
func (r *Room) reply(id PlayerID, b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[id]; ok && !m.send(b) {
		r.metrics.IncChanFullDiscarded()
	}
}

// Rules 当前规则
func (r *Room) Rules() game.Rules {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Rules()
}

// SetRules 热更新规则（棋盘半径在下一次重置时生效）
func (r *Room) SetRules(rules game.Rules) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.SetRules(rules)
}

// Board 当前棋盘记录
func (r *Room) Board() []game.TileRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Board()
}

// LoadBoard 用线上记录整体替换棋盘并广播；任一记录非法时棋盘不变
func (r *Room) LoadBoard(recs []game.TileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.session.LoadBoard(recs); err != nil {
		return err
	}
	r.touch()
	r.broadcast(BroadBoard, r.session.Board())
	return nil
}

// Status 房间概览，供 metrics 接口输出
func (r *Room) Status() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[string]any{
		"stage":       r.session.Stage(),
		"turn":        r.session.Turn(),
		"players":     r.session.PlayerCount(),
		"connections": len(r.members),
	}
}

// Idle 无连接且超过 ttl 未活动
func (r *Room) Idle(ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0 && r.now().Sub(r.lastActive) >= ttl
}

// Close 关闭房间内所有连接
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.members {
		if m.Conn != nil {
			m.Conn.Close()
		}
		delete(r.members, id)
	}
}

func (r *Room) touch() { r.lastActive = r.now() }

package server

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"hexwar/game"
	"hexwar/hex"
)

func useTestLogger(t *testing.T) {
	t.Helper()
	SetLogger(zaptest.NewLogger(t))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
}

// fakeConn 只有发送队列、没有底层 WS 的连接，用于观察广播
func fakeConn() *ClientConn { return &ClientConn{send: make(chan []byte, 64)} }

func drain(c *ClientConn) []Event {
	var out []Event
	for {
		select {
		case b := <-c.send:
			var ev Event
			if err := json.Unmarshal(b, &ev); err == nil {
				out = append(out, ev)
			}
		default:
			return out
		}
	}
}

func hasEvent(evs []Event, typ string) bool {
	for _, ev := range evs {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func mustData(t *testing.T, req string, data any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", req, err)
	}
	return b
}

func expectOK(t *testing.T, resp Response) {
	t.Helper()
	if resp.Status != StatusOK {
		t.Fatalf("expected OK, got %s %s: %s", resp.Status, resp.Kind, resp.Reason)
	}
}

func expectKind(t *testing.T, resp Response, kind game.Kind) {
	t.Helper()
	if resp.Status != StatusNope || resp.Kind != kind {
		t.Fatalf("expected NOPE %s, got %s %s: %s", kind, resp.Status, resp.Kind, resp.Reason)
	}
}

func TestRoomGameFlow(t *testing.T) {
	useTestLogger(t)
	room := NewRoom("r1", game.DefaultRules())
	alice, bob := fakeConn(), fakeConn()
	if err := room.Attach("alice", alice); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := room.Attach("bob", bob); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := room.Attach("bob", fakeConn()); err == nil {
		t.Fatalf("duplicate attach accepted")
	}

	expectOK(t, room.Handle("alice", Request{Type: ReqCreatePlayer, Seq: 1}))
	expectOK(t, room.Handle("bob", Request{Type: ReqCreatePlayer, Seq: 1}))
	expectKind(t, room.Handle("bob", Request{Type: ReqCreatePlayer, Seq: 2}), game.KindDuplicatePlayer)
	if !hasEvent(drain(bob), BroadSyncPlayers) {
		t.Fatalf("bob missed player sync")
	}

	build := func(who PlayerID, seq int64, at hex.Coord, typ game.EntityType, rot hex.Direction) Response {
		return room.Handle(who, Request{Type: ReqBuild, Seq: seq, Data: mustData(t, ReqBuild, BuildRequest{
			Coords: at, Type: typ, Rotation: rot,
		})})
	}

	expectKind(t, build("alice", 2, hex.Coord{}, game.Base, 0), game.KindGameNotStarted)
	expectOK(t, room.Handle("alice", Request{Type: ReqStartGame, Seq: 3}))
	if !hasEvent(drain(bob), BroadStartGame) {
		t.Fatalf("bob missed start")
	}

	resp := build("alice", 4, hex.Coord{X: -2, Y: 0}, game.Base, 0)
	expectOK(t, resp)
	if rec, ok := resp.Data.(game.TileRecord); !ok || rec.TileEntity == nil || rec.TileEntity.Type != game.Base {
		t.Fatalf("build response data = %#v", resp.Data)
	}
	if !hasEvent(drain(bob), BroadBuild) {
		t.Fatalf("bob missed build broadcast")
	}
	expectOK(t, build("alice", 5, hex.Coord{X: -1, Y: 0}, game.Soldier, 0))
	expectKind(t, build("alice", 6, hex.Coord{X: -1, Y: 1}, game.Knight, 0), game.KindMovesExhausted)
	expectKind(t, build("bob", 7, hex.Coord{X: 2, Y: 0}, game.Base, 0), game.KindNotYourTurn)

	expectOK(t, room.Handle("alice", Request{Type: ReqTurn, Seq: 8}))
	expectOK(t, build("bob", 1, hex.Coord{X: 2, Y: 0}, game.Base, 3))
	expectOK(t, build("bob", 2, hex.Coord{X: 1, Y: 0}, game.Barricade, 0))

	expectKind(t, room.Handle("mallory", Request{Type: ReqWar}), game.KindUnknownPlayer)
	drain(bob)
	war := room.Handle("bob", Request{Type: ReqWar, Seq: 3})
	expectOK(t, war)
	report, ok := war.Data.(game.CombatReport)
	if !ok || len(report.Board) != hex.DiskSize(2) {
		t.Fatalf("war data = %#v", war.Data)
	}
	if !hasEvent(drain(bob), BroadBoard) {
		t.Fatalf("bob missed board broadcast")
	}

	expectOK(t, room.Handle("alice", Request{Type: ReqReset, Seq: 9}))
	if !hasEvent(drain(alice), BroadRestart) {
		t.Fatalf("alice missed restart")
	}
	if st := room.Status(); st["stage"] != game.StageWaiting {
		t.Fatalf("status after reset = %v", st)
	}
}

func TestRoomRejectsBadRequests(t *testing.T) {
	useTestLogger(t)
	room := NewRoom("r2", game.DefaultRules())
	expectKind(t, room.Handle("alice", Request{Type: "req:dance"}), KindUnknownRequest)
	expectKind(t, room.Handle("alice", Request{Type: ReqBuild, Data: json.RawMessage(`[1,2]`)}), KindBadRequest)
	expectKind(t, room.Handle("alice", Request{Type: ReqRotate, Data: json.RawMessage(`"x"`)}), KindBadRequest)
	expectKind(t, room.Handle("alice", Request{Type: ReqReset}), game.KindUnknownPlayer)

	snap := room.metrics.Snapshot()
	if snap["requests_handled"] != int64(4) || snap["requests_rejected"] != int64(4) {
		t.Fatalf("metrics = %v", snap)
	}
}

func TestRoomRotateAndSync(t *testing.T) {
	useTestLogger(t)
	room := NewRoom("r3", game.DefaultRules())
	conn := fakeConn()
	if err := room.Attach("alice", conn); err != nil {
		t.Fatalf("attach: %v", err)
	}
	expectOK(t, room.Handle("alice", Request{Type: ReqCreatePlayer}))
	expectOK(t, room.Handle("alice", Request{Type: ReqStartGame}))
	expectOK(t, room.Handle("alice", Request{Type: ReqBuild, Data: mustData(t, ReqBuild, BuildRequest{Type: game.Base})}))
	drain(conn)

	rot := room.Handle("alice", Request{Type: ReqRotate, Data: mustData(t, ReqRotate, RotateRequest{Rotation: 4})})
	expectOK(t, rot)
	if rec := rot.Data.(game.TileRecord); rec.Rotation != 4 {
		t.Fatalf("rotation = %d", rec.Rotation)
	}
	if !hasEvent(drain(conn), BroadRotate) {
		t.Fatalf("missed rotate broadcast")
	}

	expectOK(t, room.Handle("alice", Request{Type: ReqSyncBoard}))
	expectOK(t, room.Handle("alice", Request{Type: ReqSyncPlayers}))
	evs := drain(conn)
	if !hasEvent(evs, BroadBoard) || !hasEvent(evs, BroadSyncPlayers) {
		t.Fatalf("sync events = %+v", evs)
	}

	board := room.Handle("alice", Request{Type: ReqGetBoard})
	if recs := board.Data.([]game.TileRecord); len(recs) != hex.DiskSize(2) {
		t.Fatalf("board has %d tiles", len(recs))
	}
	players := room.Handle("alice", Request{Type: ReqGetPlayers})
	if recs := players.Data.([]game.PlayerRecord); len(recs) != 1 || !recs[0].IsTurn {
		t.Fatalf("players = %+v", recs)
	}
}

func TestRoomDetachFreesPlayer(t *testing.T) {
	useTestLogger(t)
	room := NewRoom("r4", game.DefaultRules())
	alice, bob := fakeConn(), fakeConn()
	_ = room.Attach("alice", alice)
	_ = room.Attach("bob", bob)
	expectOK(t, room.Handle("alice", Request{Type: ReqCreatePlayer}))
	expectOK(t, room.Handle("bob", Request{Type: ReqCreatePlayer}))
	expectOK(t, room.Handle("alice", Request{Type: ReqStartGame}))
	expectOK(t, room.Handle("alice", Request{Type: ReqBuild, Data: mustData(t, ReqBuild, BuildRequest{Type: game.Base})}))
	drain(bob)

	room.Detach("alice")
	if alice.send != nil {
		t.Fatalf("alice connection not closed")
	}
	evs := drain(bob)
	if !hasEvent(evs, BroadSyncPlayers) || !hasEvent(evs, BroadBoard) {
		t.Fatalf("bob events after detach = %+v", evs)
	}
	players := room.Handle("bob", Request{Type: ReqGetPlayers}).Data.([]game.PlayerRecord)
	if len(players) != 1 || players[0].ID != "bob" || !players[0].IsTurn {
		t.Fatalf("players after detach = %+v", players)
	}
	for _, rec := range room.Handle("bob", Request{Type: ReqGetBoard}).Data.([]game.TileRecord) {
		if rec.TileEntity != nil {
			t.Fatalf("alice's base survived at %+v", rec.Coords)
		}
	}
}

func TestRoomIdle(t *testing.T) {
	room := NewRoom("r5", game.DefaultRules())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	room.now = func() time.Time { return now }
	room.touch()

	if room.Idle(time.Minute) {
		t.Fatalf("fresh room idle")
	}
	now = now.Add(2 * time.Minute)
	if !room.Idle(time.Minute) {
		t.Fatalf("room not idle after ttl")
	}
	_ = room.Attach("alice", fakeConn())
	now = now.Add(2 * time.Minute)
	if room.Idle(time.Minute) {
		t.Fatalf("room with a connection reported idle")
	}
}

package server

import (
	"encoding/json"

	"hexwar/game"
	"hexwar/hex"
)

// 客户端请求类型
const (
	ReqCreatePlayer = "req:create_player"
	ReqStartGame    = "req:start_game"
	ReqBuild        = "req:build"
	ReqRotate       = "req:rotate"
	ReqTurn         = "req:turn"
	ReqWar          = "req:war"
	ReqReset        = "req:reset"
	ReqGetBoard     = "get_board"
	ReqGetPlayers   = "get_players"
	ReqSyncBoard    = "sync_board"
	ReqSyncPlayers  = "sync_players"
)

// 服务端广播类型
const (
	BroadStartGame   = "broad:start_game"
	BroadBuild       = "broad:build"
	BroadRotate      = "broad:rotate"
	BroadTurn        = "broad:turn"
	BroadBoard       = "broad:board"
	BroadRestart     = "broad:restart"
	BroadSyncPlayers = "broad:sync_players"
)

// 协议层（非会话）错误类别
const (
	KindBadRequest     game.Kind = "BadRequest"
	KindUnknownRequest game.Kind = "UnknownRequest"
	KindRateLimited    game.Kind = "RateLimited"
)

// Request 入站消息（WebSocket 文本帧）
// 示例：{"type":"req:build","seq":3,"data":{"coords":{"x":0,"y":0},"type":"Base","rotation":0}}
type Request struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// BuildRequest req:build 的载荷
type BuildRequest struct {
	Coords   hex.Coord       `json:"coords"`
	Type     game.EntityType `json:"type"`
	Rotation hex.Direction   `json:"rotation"`
}

// RotateRequest req:rotate 的载荷
type RotateRequest struct {
	Coords   hex.Coord     `json:"coords"`
	Rotation hex.Direction `json:"rotation"`
}

// Status 响应状态
type Status string

const (
	StatusOK   Status = "OK"
	StatusNope Status = "NOPE"
)

// Response 对单个请求的回复，seq 与请求一致
type Response struct {
	Type   string    `json:"type"`
	Seq    int64     `json:"seq,omitempty"`
	Status Status    `json:"status"`
	Kind   game.Kind `json:"kind,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Data   any       `json:"data,omitempty"`
}

// Event 广播给房间内所有连接的消息
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func positive(seq int64, data any) Response {
	return Response{Type: "response", Seq: seq, Status: StatusOK, Data: data}
}

func negative(seq int64, err error) Response {
	return Response{Type: "response", Seq: seq, Status: StatusNope, Kind: game.KindOf(err), Reason: err.Error()}
}

func protocolError(seq int64, kind game.Kind, reason string) Response {
	return negative(seq, &game.Error{Kind: kind, Reason: reason})
}

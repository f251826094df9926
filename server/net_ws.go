package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃并返回 false）
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close 关闭发送队列，写协程写完剩余消息后关闭底层连接。
// 调用方持有房间锁，与 Enqueue 不会并发。
func (c *ClientConn) Close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端请求，交给房间同步执行，并把回复写回该连接
func (c *ClientConn) readPump(room *Room, playerID PlayerID, limiter *rate.Limiter) {
	// 读泵退出时，将玩家移出房间
	defer room.Detach(playerID)
	c.ws.SetReadLimit(1 << 20) // 1MB
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Log.Warnf("read error: room=%s player=%s err=%v", room.ID, playerID, err)
			}
			return
		}
		var req Request
		var resp Response
		switch {
		case json.Unmarshal(payload, &req) != nil:
			resp = protocolError(0, KindBadRequest, "invalid json")
		case !limiter.Allow():
			room.metrics.IncRateLimited()
			resp = protocolError(req.Seq, KindRateLimited, "too many requests")
		default:
			resp = room.Handle(playerID, req)
		}
		b, err := json.Marshal(resp)
		if err != nil {
			Log.Errorf("encode response: room=%s player=%s err=%v", room.ID, playerID, err)
			continue
		}
		room.reply(playerID, b)
	}
}

// HandleWS WebSocket 接入：/ws?game=<id>&player=<id>，player 缺省时生成
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	room, ok := s.rooms.Room(r.URL.Query().Get("game"))
	if !ok {
		http.Error(w, "the game doesn't exist", http.StatusNotFound)
		return
	}
	playerID := PlayerID(r.URL.Query().Get("player"))
	if playerID == "" {
		playerID = PlayerID(uuid.NewString())
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws)
	send := client.send
	if err := room.Attach(playerID, client); err != nil {
		Log.Warnf("attach failed: %v", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "player already connected"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	Log.Infof("connected: room=%s player=%s remote=%s", room.ID, playerID, r.RemoteAddr)

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
	go client.writePump(send)
	go client.readPump(room, playerID, limiter)
}

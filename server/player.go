package server

// PlayerID 表示玩家唯一标识（同时是连接在房间内的 key）
type PlayerID string

// Member 房间内的一条连接；是否已作为玩家加入由会话决定
type Member struct {
	ID   PlayerID
	Conn *ClientConn // 网络连接的发送端（写协程）
}

func (m *Member) send(b []byte) bool {
	if m.Conn == nil {
		return true
	}
	return m.Conn.Enqueue(b)
}

// Package server 把同步的会话引擎接到 HTTP + WebSocket 上：房间管理、消息协议、广播、管理与监控接口。
package server

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

// Server 持有配置与房间管理器，提供全部 HTTP 入口
type Server struct {
	cfg      Config
	rooms    *RoomManager
	upgrader websocket.Upgrader
}

// NewServer 创建服务端；WebSocket 来源沿用 CORS 白名单
func NewServer(cfg Config, rooms *RoomManager) *Server {
	s := &Server{cfg: cfg, rooms: rooms}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originAllowed,
	}
	return s
}

func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, origin)
}

// Handler 路由表，外层套 CORS
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/create_game", s.HandleCreateGame)
	mux.HandleFunc("/ws", s.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/admin/board", s.HandleAdminBoard)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

// HandleCreateGame 创建新对局并返回其 id
func (s *Server) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	room := s.rooms.CreateRoom()
	Log.Infof("created game %s (rooms=%d)", room.ID, s.rooms.Len())
	writeJSON(w, http.StatusOK, map[string]string{"gameId": room.ID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

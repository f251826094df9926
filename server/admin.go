package server

import (
	"encoding/json"
	"net/http"

	"hexwar/game"
)

// HandleAdminConfig 提供房间规则的读取与更新（热更新基本规则）
// GET /admin/config?game=<id>  返回当前规则
// POST /admin/config?game=<id> 以 JSON 载荷更新部分字段
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("game")
	room, ok := s.rooms.Room(roomID)
	if !ok {
		http.Error(w, "the game doesn't exist", http.StatusNotFound)
		return
	}

	type cfg struct {
		BoardRadius           *int  `json:"boardRadius,omitempty"`
		MaxMovesPerTurn       *int  `json:"maxMovesPerTurn,omitempty"`
		MaxPlayers            *int  `json:"maxPlayers,omitempty"`
		RangedReach           *int  `json:"rangedReach,omitempty"`
		RangedStopsAtFirstHit *bool `json:"rangedStopsAtFirstHit,omitempty"`
		BlockingEnabled       *bool `json:"blockingEnabled,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, room.Rules())
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		rules := room.Rules()
		if body.BoardRadius != nil {
			rules.BoardRadius = *body.BoardRadius
		}
		if body.MaxMovesPerTurn != nil {
			rules.MaxMovesPerTurn = *body.MaxMovesPerTurn
		}
		if body.MaxPlayers != nil {
			rules.MaxPlayers = *body.MaxPlayers
		}
		if body.RangedReach != nil {
			rules.RangedReach = *body.RangedReach
		}
		if body.RangedStopsAtFirstHit != nil {
			rules.RangedStopsAtFirstHit = *body.RangedStopsAtFirstHit
		}
		if body.BlockingEnabled != nil {
			rules.BlockingEnabled = *body.BlockingEnabled
		}
		if err := room.SetRules(rules); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rules": rules})
		Log.Infof("config updated: room=%s radius=%d moves=%d players=%d reach=%d firstHit=%v blocking=%v",
			roomID, rules.BoardRadius, rules.MaxMovesPerTurn, rules.MaxPlayers,
			rules.RangedReach, rules.RangedStopsAtFirstHit, rules.BlockingEnabled)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleAdminBoard 棋盘快照的导出与导入
// GET /admin/board?game=<id>  返回全部格子记录
// POST /admin/board?game=<id> 以格子记录数组覆盖棋盘（所有者须已在房间中）
func (s *Server) HandleAdminBoard(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("game")
	room, ok := s.rooms.Room(roomID)
	if !ok {
		http.Error(w, "the game doesn't exist", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, room.Board())
	case http.MethodPost:
		var recs []game.TileRecord
		if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := room.LoadBoard(recs); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "kind": game.KindOf(err), "reason": err.Error()})
			return
		}
		Log.Infof("board loaded: room=%s tiles=%d", roomID, len(recs))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?game=<id>
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("game")
	room, ok := s.rooms.Room(roomID)
	if !ok {
		http.Error(w, "the game doesn't exist", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"game":    roomID,
		"status":  room.Status(),
		"metrics": room.metrics.Snapshot(),
	}
	writeJSON(w, http.StatusOK, payload)
}

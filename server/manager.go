package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"hexwar/game"
)

// RoomManager 管理多个房间的生命周期；房间之间不共享任何棋盘状态
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rules game.Rules
}

// NewRoomManager 新建房间使用 rules 作为初始规则
func NewRoomManager(rules game.Rules) *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room), rules: rules}
}

// CreateRoom 以随机 id 创建新房间
func (m *RoomManager) CreateRoom() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id := uuid.NewString()
		if _, taken := m.rooms[id]; taken {
			continue
		}
		r := NewRoom(id, m.rules)
		m.rooms[id] = r
		return r
	}
}

// GetOrCreateRoom 获取或按指定 id 创建房间
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.rules)
		m.rooms[id] = r
	}
	return r
}

// Room 按 id 查找房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Len 当前房间数
func (m *RoomManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Remove 关闭并移除房间
func (m *RoomManager) Remove(id string) {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if ok {
		r.Close()
	}
}

// Sweep 移除空闲超过 ttl 的无连接房间，返回被移除的 id
func (m *RoomManager) Sweep(ttl time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, r := range m.rooms {
		if r.Idle(ttl) {
			delete(m.rooms, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Close 关闭所有房间的连接
func (m *RoomManager) Close() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
}

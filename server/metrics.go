package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	RequestsHandled   int64 // 处理的请求数
	RequestsRejected  int64 // 返回 NOPE 的请求数
	BuildsAccepted    int64 // 成功建造次数
	TurnsAdvanced     int64 // 成功结束回合次数
	CombatPasses      int64 // 战斗结算次数
	RateLimited       int64 // 因限流被拒绝的请求数
	ChanFullDiscarded int64 // 因发送队列满被丢弃的消息数
	TotalCombatNs     int64 // 战斗结算累计耗时（纳秒）
}

func (m *RoomMetrics) IncHandled()           { atomic.AddInt64(&m.RequestsHandled, 1) }
func (m *RoomMetrics) IncRejected()          { atomic.AddInt64(&m.RequestsRejected, 1) }
func (m *RoomMetrics) IncBuilds()            { atomic.AddInt64(&m.BuildsAccepted, 1) }
func (m *RoomMetrics) IncTurns()             { atomic.AddInt64(&m.TurnsAdvanced, 1) }
func (m *RoomMetrics) IncRateLimited()       { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) AddCombat(ns int64) {
	atomic.AddInt64(&m.CombatPasses, 1)
	atomic.AddInt64(&m.TotalCombatNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	passes := atomic.LoadInt64(&m.CombatPasses)
	total := atomic.LoadInt64(&m.TotalCombatNs)
	var avgMs float64
	if passes > 0 {
		avgMs = float64(total) / float64(passes) / 1e6
	}
	return map[string]any{
		"requests_handled":    atomic.LoadInt64(&m.RequestsHandled),
		"requests_rejected":   atomic.LoadInt64(&m.RequestsRejected),
		"builds_accepted":     atomic.LoadInt64(&m.BuildsAccepted),
		"turns_advanced":      atomic.LoadInt64(&m.TurnsAdvanced),
		"combat_passes":       passes,
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"avg_combat_ms":       avgMs,
	}
}

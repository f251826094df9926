package server

import (
	"context"
	"time"
)

// StartJanitor 启动后台清理循环：每 interval 移除一次空闲超过 ttl 的房间，ctx 结束时退出。
// 返回的 channel 在循环退出后关闭。
func (m *RoomManager) StartJanitor(ctx context.Context, interval, ttl time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				removed := m.Sweep(ttl)
				if len(removed) > 0 {
					Log.Infof("janitor removed %d idle rooms in %s: %v", len(removed), time.Since(start), removed)
				}
			}
		}
	}()
	return done
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"hexwar/server"
)

// hexwar 入口：加载配置，启动 HTTP + WebSocket 服务与房间清理循环
func main() {
	var envFile, addr string
	flag.StringVar(&envFile, "env", ".env", "optional .env file with HEXWAR_* settings")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides HEXWAR_ADDR, e.g. :8000")
	flag.Parse()

	cfg, err := server.LoadConfig(envFile)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}

	rooms := server.NewRoomManager(cfg.Rules.Game())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	janitor := rooms.StartJanitor(ctx, cfg.SweepInterval, cfg.RoomIdleTTL)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewServer(cfg, rooms).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		server.Log.Infof("hexwar listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	cancel()
	<-janitor
	rooms.Close()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := multierr.Combine(srv.Shutdown(shutdownCtx), server.SyncLogger()); err != nil {
		server.Log.Errorf("shutdown: %v", err)
		os.Exit(1)
	}
}

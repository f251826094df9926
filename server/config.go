package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"hexwar/game"
)

// Config 服务端配置，全部来自 HEXWAR_* 环境变量（可由 .env 文件补充）
type Config struct {
	Addr           string        `env:"HEXWAR_ADDR" envDefault:":8000"`
	AllowedOrigins []string      `env:"HEXWAR_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimit      float64       `env:"HEXWAR_RATE_LIMIT" envDefault:"10"`
	RateBurst      int           `env:"HEXWAR_RATE_BURST" envDefault:"20"`
	RoomIdleTTL    time.Duration `env:"HEXWAR_ROOM_IDLE_TTL" envDefault:"10m"`
	SweepInterval  time.Duration `env:"HEXWAR_SWEEP_INTERVAL" envDefault:"1m"`

	Log   LogConfig
	Rules RulesConfig
}

// RulesConfig 新建房间使用的默认规则
type RulesConfig struct {
	BoardRadius           int  `env:"HEXWAR_BOARD_RADIUS" envDefault:"2"`
	MaxMovesPerTurn       int  `env:"HEXWAR_MAX_MOVES_PER_TURN" envDefault:"2"`
	MaxPlayers            int  `env:"HEXWAR_MAX_PLAYERS" envDefault:"6"`
	RangedReach           int  `env:"HEXWAR_RANGED_REACH" envDefault:"4"`
	RangedStopsAtFirstHit bool `env:"HEXWAR_RANGED_FIRST_HIT" envDefault:"false"`
	BlockingEnabled       bool `env:"HEXWAR_BLOCKING" envDefault:"true"`
}

// Game 转换为会话规则
func (r RulesConfig) Game() game.Rules {
	return game.Rules{
		BoardRadius:           r.BoardRadius,
		MaxMovesPerTurn:       r.MaxMovesPerTurn,
		MaxPlayers:            r.MaxPlayers,
		RangedReach:           r.RangedReach,
		RangedStopsAtFirstHit: r.RangedStopsAtFirstHit,
		BlockingEnabled:       r.BlockingEnabled,
	}
}

// LoadConfig 读取可选的 .env 文件与进程环境变量；进程环境优先
func LoadConfig(envFile string) (Config, error) {
	vars := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read env file %s: %w", envFile, err)
		default:
			vars = fileVars
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("HEXWAR_ADDR is required")
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %.2f/%d", c.RateLimit, c.RateBurst)
	}
	if c.SweepInterval <= 0 || c.RoomIdleTTL <= 0 {
		return errors.New("sweep interval and room idle ttl must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("HEXWAR_ALLOWED_ORIGINS must not be empty")
	}
	if err := c.Rules.Game().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

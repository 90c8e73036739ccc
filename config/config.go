package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"simmer/game"
	"simmer/utils"
)

var ErrInvalidConfig = errors.New("invalid config")

// Authority は共有食材プールの書き込み権限を持つ側です。
type Authority string

const (
	// AuthorityClient はクライアントの全件送信を後勝ちで受け入れます。
	AuthorityClient Authority = "client"
	// AuthorityServer はサーバーだけがプールを書き換えます。クライアントは意図だけを送ります。
	AuthorityServer Authority = "server"
)

type HeartbeatConfig struct {
	Interval    time.Duration `yaml:"interval"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Config struct {
	Addr                string               `yaml:"addr"`
	Port                string               `yaml:"port"`
	LogLevel            string               `yaml:"log_level"`
	Room                string               `yaml:"room"`
	IngredientAuthority Authority            `yaml:"ingredient_authority"`
	Heartbeat           HeartbeatConfig      `yaml:"heartbeat"`
	Metrics             MetricsConfig        `yaml:"metrics"`
	Tuning              game.Tuning          `yaml:"tuning"`
	Kitchen             []game.KitchenObject `yaml:"kitchen"`
}

func Default() Config {
	return Config{
		Addr:                "localhost",
		Port:                "9090",
		LogLevel:            "info",
		Room:                "default",
		IngredientAuthority: AuthorityClient,
		Heartbeat: HeartbeatConfig{
			Interval:    10 * time.Second,
			IdleTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Tuning:  game.DefaultTuning(),
		Kitchen: game.DefaultLayout(),
	}
}

// Load はデフォルト値にYAMLファイル、環境変数の順で上書きします。pathが空ならファイルは読みません。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = utils.GetEnvDefault("ADDR", c.Addr)
	c.Port = utils.GetEnvDefault("PORT", c.Port)
	c.LogLevel = utils.GetEnvDefault("LOG_LEVEL", c.LogLevel)
	c.IngredientAuthority = Authority(utils.GetEnvDefault("INGREDIENT_AUTHORITY", string(c.IngredientAuthority)))
	tick, err := utils.GetEnvDuration("TICK_INTERVAL", c.Tuning.TickPeriod)
	if err != nil {
		return fmt.Errorf("%w: TICK_INTERVAL: %v", ErrInvalidConfig, err)
	}
	c.Tuning.TickPeriod = tick
	return nil
}

func (c Config) Validate() error {
	t := c.Tuning
	switch {
	case c.IngredientAuthority != AuthorityClient && c.IngredientAuthority != AuthorityServer:
		return fmt.Errorf("%w: ingredient_authority %q", ErrInvalidConfig, c.IngredientAuthority)
	case t.TickPeriod <= 0:
		return fmt.Errorf("%w: tick_period must be positive", ErrInvalidConfig)
	case t.Cooking.MaxTime <= 0 || t.Cooking.BurnMultiplier < 1:
		return fmt.Errorf("%w: cooking max_time must be positive and burn_multiplier >= 1", ErrInvalidConfig)
	case t.Orders.BaseTime <= 0:
		return fmt.Errorf("%w: orders base_time must be positive", ErrInvalidConfig)
	case t.Orders.MinInterval <= 0 || t.Orders.MinInterval > t.Orders.MaxInterval:
		return fmt.Errorf("%w: orders interval [%v, %v]", ErrInvalidConfig, t.Orders.MinInterval, t.Orders.MaxInterval)
	case t.Orders.MaxOrders <= 0:
		return fmt.Errorf("%w: orders max_orders must be positive", ErrInvalidConfig)
	case t.Canvas.W <= t.Player.Size || t.Canvas.H <= t.Player.Size:
		return fmt.Errorf("%w: canvas smaller than player", ErrInvalidConfig)
	case c.Heartbeat.Interval <= 0 || c.Heartbeat.IdleTimeout <= c.Heartbeat.Interval:
		return fmt.Errorf("%w: heartbeat idle_timeout must exceed interval", ErrInvalidConfig)
	case len(c.Kitchen) == 0:
		return fmt.Errorf("%w: kitchen layout is empty", ErrInvalidConfig)
	}
	for _, obj := range c.Kitchen {
		if obj.Size.W <= 0 || obj.Size.H <= 0 {
			return fmt.Errorf("%w: kitchen object %q has no size", ErrInvalidConfig, obj.ID)
		}
	}
	return nil
}

func (c Config) ListenAddr() string {
	return c.Addr + ":" + c.Port
}

// SlogLevel は不明なレベルをinfoとして扱います。
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

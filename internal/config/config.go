package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LogConfig configures the zap logger.
type LogConfig struct {
	Level             string `yaml:"level"`
	Encoding          string `yaml:"encoding"`
	Development       bool   `yaml:"development"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
	Sampling          bool   `yaml:"sampling"`
}

// SnapshotConfig selects where the ledger snapshot lives.
type SnapshotConfig struct {
	Backend   string `yaml:"backend"`
	FilePath  string `yaml:"file_path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	RedisKey  string `yaml:"redis_key"`
}

// NATSConfig enables the optional event stream.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
	MaxReconnects int           `yaml:"max_reconnects"`
}

// Config holds all application configuration.
type Config struct {
	Group struct {
		WinCooldown time.Duration `yaml:"win_cooldown"`
	} `yaml:"group"`
	Settlement struct {
		Mode string `yaml:"mode"`
	} `yaml:"settlement"`
	Withdrawal struct {
		Window time.Duration `yaml:"window"`
	} `yaml:"withdrawal"`
	Schedule struct {
		SweepCron  string `yaml:"sweep_cron"`
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	NATS     NATSConfig `yaml:"nats"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"`
		Retries  int    `yaml:"retries"`
	} `yaml:"telegram"`
	Log   LogConfig `yaml:"log"`
	Proxy string    `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error: defaults and the environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SETTLEMENT_MODE"); v != "" {
		cfg.Settlement.Mode = v
	}
	if v := os.Getenv("SNAPSHOT_BACKEND"); v != "" {
		cfg.Snapshot.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Snapshot.RedisAddr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Snapshot.RedisDB = db
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SWEEP"); v != "" {
		cfg.Schedule.SweepCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Group.WinCooldown == 0 {
		cfg.Group.WinCooldown = 24 * time.Hour
	}
	if cfg.Settlement.Mode == "" {
		cfg.Settlement.Mode = "all_participants"
	}
	if cfg.Withdrawal.Window == 0 {
		cfg.Withdrawal.Window = 24 * time.Hour
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "@every 1s"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 20 * * *"
	}
	if cfg.Snapshot.Backend == "" {
		cfg.Snapshot.Backend = "file"
	}
	if cfg.Snapshot.FilePath == "" {
		cfg.Snapshot.FilePath = "data/groupool_snapshot.json"
	}
	if cfg.Snapshot.RedisKey == "" {
		cfg.Snapshot.RedisKey = "groupool:snapshot"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/groupool.db"
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "groupool"
	}
	if cfg.NATS.ReconnectWait == 0 {
		cfg.NATS.ReconnectWait = 2 * time.Second
	}
	if cfg.NATS.MaxReconnects == 0 {
		cfg.NATS.MaxReconnects = 60
	}
	if cfg.Telegram.Retries == 0 {
		cfg.Telegram.Retries = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "console"
	}

	return cfg, nil
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that settings are consistent.
func (c *Config) Validate() error {
	switch c.Settlement.Mode {
	case "all_participants", "acting_member":
	default:
		return fmt.Errorf("settlement.mode must be all_participants or acting_member, got %q", c.Settlement.Mode)
	}
	if c.Withdrawal.Window <= 0 {
		return fmt.Errorf("withdrawal.window must be positive")
	}
	if c.Group.WinCooldown < 0 {
		return fmt.Errorf("group.win_cooldown must not be negative")
	}
	switch c.Snapshot.Backend {
	case "file", "sqlite", "memory":
	case "redis":
		if c.Snapshot.RedisAddr == "" {
			return fmt.Errorf("snapshot.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown snapshot.backend %q", c.Snapshot.Backend)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Log.Encoding != "console" && c.Log.Encoding != "json" {
		return fmt.Errorf("log.encoding must be console or json")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "SETTLEMENT_MODE",
		"SNAPSHOT_BACKEND", "REDIS_ADDR", "REDIS_DB", "NATS_URL", "SQLITE_PATH", "CRON_SWEEP", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settlement.Mode != "all_participants" {
		t.Errorf("mode = %q", cfg.Settlement.Mode)
	}
	if cfg.Withdrawal.Window != 24*time.Hour || cfg.Group.WinCooldown != 24*time.Hour {
		t.Errorf("window = %v, cooldown = %v", cfg.Withdrawal.Window, cfg.Group.WinCooldown)
	}
	if cfg.Schedule.SweepCron != "@every 1s" {
		t.Errorf("sweep cron = %q", cfg.Schedule.SweepCron)
	}
	if cfg.Snapshot.Backend != "file" || cfg.Snapshot.FilePath == "" {
		t.Errorf("snapshot = %+v", cfg.Snapshot)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
settlement:
  mode: acting_member
withdrawal:
  window: 2h
snapshot:
  backend: redis
  redis_addr: localhost:6379
telegram:
  bot_token: from-file
  chat_id: "100"
log:
  encoding: json
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settlement.Mode != "acting_member" {
		t.Errorf("mode = %q", cfg.Settlement.Mode)
	}
	if cfg.Withdrawal.Window != 2*time.Hour {
		t.Errorf("window = %v", cfg.Withdrawal.Window)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("env should override file, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Snapshot.RedisDB != 3 {
		t.Errorf("redis db = %d", cfg.Snapshot.RedisDB)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("settlement: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Settlement.Mode = "winner_takes_all" }, "settlement.mode"},
		{"negative window", func(c *Config) { c.Withdrawal.Window = -time.Second }, "withdrawal.window"},
		{"redis without addr", func(c *Config) { c.Snapshot.Backend = "redis"; c.Snapshot.RedisAddr = "" }, "redis_addr"},
		{"unknown backend", func(c *Config) { c.Snapshot.Backend = "s3" }, "snapshot.backend"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }, "set together"},
		{"bad encoding", func(c *Config) { c.Log.Encoding = "xml" }, "log.encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"Groupool/internal/config"
	"Groupool/internal/engine"
	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/logger"
	"Groupool/internal/notifier"
	"Groupool/internal/recorder"
	"Groupool/internal/scheduler"
	"Groupool/internal/snapshot"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("[FATAL] init logger: %v", err)
	}
	defer lg.Sync()
	lg.Info("Groupool starting", zap.String("config", cfgPath))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init snapshot backend and ledger
	snap, err := snapshot.Open(ctx, snapshot.Options{
		Backend:    cfg.Snapshot.Backend,
		FilePath:   cfg.Snapshot.FilePath,
		SQLitePath: cfg.Database.SQLitePath,
		RedisAddr:  cfg.Snapshot.RedisAddr,
		RedisDB:    cfg.Snapshot.RedisDB,
		RedisKey:   cfg.Snapshot.RedisKey,
	})
	if err != nil {
		lg.Fatal("open snapshot store", zap.String("backend", cfg.Snapshot.Backend), zap.Error(err))
	}
	defer snap.Close()

	store, err := ledger.NewStore(ctx, snap, ledger.Seed, lg.Named("ledger"))
	if err != nil {
		lg.Fatal("init ledger", zap.Error(err))
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, lg.Named("recorder"))
		if err != nil {
			lg.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Event fan-out
	hub := events.NewHub(128)
	publishers := events.Multi{hub, recorder.NewSink(rec, lg.Named("recorder"))}
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(events.NATSConfig{
			URL:            cfg.NATS.URL,
			Name:           "groupool",
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ConnectTimeout: 5 * time.Second,
		})
		if err != nil {
			lg.Warn("NATS unavailable, events stay in-process", zap.Error(err))
		} else {
			publishers = append(publishers, np)
			defer np.Close()
			lg.Info("publishing events to NATS", zap.String("url", cfg.NATS.URL))
		}
	}

	eng := engine.New(store, engine.Options{
		Mode:             engine.SettlementMode(cfg.Settlement.Mode),
		WithdrawalWindow: cfg.Withdrawal.Window,
		WinCooldown:      cfg.Group.WinCooldown,
		Publisher:        publishers,
		Logger:           lg.Named("engine"),
	})

	// Init Telegram notifier
	var sender notifier.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(notifier.Options{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			ProxyURL: cfg.Proxy,
			APIBase:  cfg.Telegram.APIBase,
		}, lg.Named("telegram"))
		sender = tn

		evts, unsubscribe := hub.Subscribe()
		defer unsubscribe()
		sink := notifier.NewEventSink(tn, eng.View, cfg.Telegram.Retries, lg.Named("telegram"))
		go sink.Run(ctx, evts)
	} else {
		lg.Info("telegram not configured, notifications disabled")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng, sender, lg.Named("scheduler"))
	if err := sched.RegisterAll(cfg.Schedule.SweepCron, cfg.Schedule.DigestCron); err != nil {
		lg.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		lg.Info("telegram polling started")
	}

	lg.Info("Groupool is running. Press Ctrl+C to stop.",
		zap.String("group", eng.View().Group().Name),
		zap.String("settlement", string(eng.Mode())),
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Info("shutdown signal received, stopping...")
	sched.Stop()
	cancel()
	if err := store.Flush(context.Background()); err != nil {
		lg.Error("final snapshot failed", zap.Error(err))
	}
	lg.Info("Groupool stopped", zap.Int("dropped_events", hub.Dropped()))
}

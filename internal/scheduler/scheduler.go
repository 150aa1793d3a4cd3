// Package scheduler drives the deadline sweep and the treasury digest on
// cron schedules, and answers chat commands about the ledger.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Groupool/internal/engine"
	"Groupool/internal/notifier"
)

// DefaultSweepSpec runs the withdrawal sweep every second.
const DefaultSweepSpec = "@every 1s"

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *engine.Engine
	Notifier notifier.Sender
	Ctx      context.Context

	log   *zap.Logger
	clock func() time.Time
	now   atomic.Int64
	ticks atomic.Int64
}

// NewScheduler creates a new Scheduler. sender may be nil, in which case the
// digest is only logged.
func NewScheduler(ctx context.Context, eng *engine.Engine, sender notifier.Sender, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	s := &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Engine:   eng,
		Notifier: sender,
		Ctx:      ctx,
		log:      log,
		clock:    time.Now,
	}
	s.now.Store(s.clock().UnixNano())
	return s
}

// RegisterAll registers the sweep and, when digestSpec is set, the digest.
func (s *Scheduler) RegisterAll(sweepSpec, digestSpec string) error {
	if sweepSpec == "" {
		sweepSpec = DefaultSweepSpec
	}
	if _, err := s.Cron.AddFunc(sweepSpec, s.Tick); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	if digestSpec != "" {
		if _, err := s.Cron.AddFunc(digestSpec, s.digestTask); err != nil {
			return fmt.Errorf("register digest task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running tick to finish, so
// no withdrawal is left half-resolved.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped", zap.Int64("ticks", s.ticks.Load()))
}

// Now is the clock reference refreshed on every tick, for countdowns.
func (s *Scheduler) Now() time.Time {
	return time.Unix(0, s.now.Load())
}

// TimeRemaining is how long until deadline by the tick clock, never negative.
func (s *Scheduler) TimeRemaining(deadline time.Time) time.Duration {
	if d := deadline.Sub(s.Now()); d > 0 {
		return d
	}
	return 0
}

// Tick refreshes the clock reference and resolves expired withdrawals.
func (s *Scheduler) Tick() {
	s.now.Store(s.clock().UnixNano())
	s.ticks.Add(1)

	res := s.Engine.VerifyExpiredWithdrawals(s.Ctx)
	if res.Resolved() > 0 || len(res.Failed) > 0 {
		s.log.Info("withdrawal sweep",
			zap.Strings("approved", res.Approved),
			zap.Strings("rejected", res.Rejected),
			zap.Int("failed", len(res.Failed)),
		)
	}
}

func (s *Scheduler) digestTask() {
	s.log.Info("running treasury digest")
	s.trySend(notifier.FormatDigest(s.Engine.View(), s.Now()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	v := s.Engine.View()
	now := s.Now()

	switch fields[0] {
	case "/pool":
		return notifier.FormatPoolStatus(v, now)
	case "/challenge":
		return notifier.FormatChallenge(v, now)
	case "/withdrawals":
		return notifier.FormatWithdrawals(v, now)
	case "/member":
		if len(fields) < 2 {
			return "Usage: /member &lt;id&gt;"
		}
		return notifier.FormatMember(v, fields[1])
	case "/digest":
		return notifier.FormatDigest(v, now)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /pool\n• /challenge\n• /withdrawals\n• /member &lt;id&gt;\n• /digest"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.log.Debug("no notifier configured, digest dropped")
		return
	}
	if tn, ok := s.Notifier.(*notifier.TelegramNotifier); ok {
		if err := tn.SendWithRetry(s.Ctx, text, 3); err != nil {
			s.log.Error("send notification failed", zap.Error(err))
		}
		return
	}
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		s.log.Error("send notification failed", zap.Error(err))
	}
}

// cronLogger routes cron's own logging to zap. Cron reports every wake-up at
// info level, so that goes to debug.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

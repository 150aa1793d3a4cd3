package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Groupool/internal/events"
	"Groupool/internal/ledger"
)

// EventSink forwards announced events to the group chat. It reads from an
// events.Hub subscription so a slow chat never holds up the engine.
type EventSink struct {
	sender  Sender
	view    func() ledger.View
	log     *zap.Logger
	retries int
	backoff time.Duration
}

// NewEventSink builds a sink. view supplies the ledger used to name members.
func NewEventSink(sender Sender, view func() ledger.View, retries int, log *zap.Logger) *EventSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventSink{sender: sender, view: view, log: log, retries: retries, backoff: time.Second}
}

// Run sends every event from ch until ch is closed or ctx is cancelled.
func (s *EventSink) Run(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			s.handle(ctx, evt)
		}
	}
}

func (s *EventSink) handle(ctx context.Context, evt events.Event) {
	text := FormatEvent(evt, s.view())
	if text == "" {
		return
	}
	if err := sendWithRetry(ctx, s.sender, text, s.retries, s.backoff, s.log); err != nil {
		s.log.Error("event notification failed",
			zap.String("type", string(evt.Type)),
			zap.String("target", evt.TargetID),
			zap.Error(err),
		)
	}
}

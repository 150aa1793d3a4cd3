// Package recorder keeps an append-only audit trail of settled outcomes and
// booked transactions outside the ledger snapshot.
package recorder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"Groupool/internal/events"
	"Groupool/internal/model"
)

// Outcome is the final state of a challenge or a withdrawal request.
type Outcome struct {
	Kind     string // "challenge" or "withdrawal"
	TargetID string
	Status   string
	Reason   string
	ActorID  string
	At       time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordTransaction(t model.Transaction) error
	RecordOutcome(o *Outcome) error
	Close() error
}

var outcomeStatus = map[events.Type]struct{ kind, status string }{
	events.ChallengeCompleted: {"challenge", string(model.ChallengeComplete)},
	events.ChallengeFailed:    {"challenge", string(model.ChallengeFailed)},
	events.WithdrawalApproved: {"withdrawal", string(model.WithdrawalApproved)},
	events.WithdrawalRejected: {"withdrawal", string(model.WithdrawalRejected)},
}

// Sink records every transaction an event carries, plus the outcome of
// terminal events. Other events are ignored.
type Sink struct {
	rec Recorder
	log *zap.Logger
}

func NewSink(rec Recorder, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{rec: rec, log: log}
}

func (s *Sink) Publish(_ context.Context, evt events.Event) error {
	var errs []error
	if o, ok := outcomeStatus[evt.Type]; ok {
		err := s.rec.RecordOutcome(&Outcome{
			Kind:     o.kind,
			TargetID: evt.TargetID,
			Status:   o.status,
			Reason:   evt.Reason,
			ActorID:  evt.ActorID,
			At:       evt.Timestamp,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range evt.Transactions {
		if err := s.rec.RecordTransaction(t); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error("audit record failed", zap.String("event", string(evt.Type)), zap.Error(err))
		return err
	}
	return nil
}

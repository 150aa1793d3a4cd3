// Package events carries engine state changes to observers outside the ledger.
package events

import (
	"context"
	"errors"
	"time"

	"Groupool/internal/model"
)

// Type names an engine event.
type Type string

const (
	ChallengeCreated       Type = "challenge.created"
	ChallengeJoined        Type = "challenge.joined"
	ChallengeVotingStarted Type = "challenge.voting_started"
	ChallengeCompleted     Type = "challenge.completed"
	ChallengeFailed        Type = "challenge.failed"

	WithdrawalRequested Type = "withdrawal.requested"
	WithdrawalApproved  Type = "withdrawal.approved"
	WithdrawalRejected  Type = "withdrawal.rejected"

	VoteCast Type = "vote.cast"

	TreasuryDeposit Type = "treasury.deposit"
	TreasuryExpense Type = "treasury.expense"
	GroupReset      Type = "group.reset"
)

// Terminal reports whether the event settles a challenge or a withdrawal.
func (t Type) Terminal() bool {
	switch t {
	case ChallengeCompleted, ChallengeFailed, WithdrawalApproved, WithdrawalRejected:
		return true
	}
	return false
}

// Event describes one committed change. Publishers run after the ledger lock
// is released, so concurrent writers may deliver events out of commit order;
// Seq is the ledger commit sequence and restores that order.
type Event struct {
	ID           string              `json:"id"`
	Seq          uint64              `json:"seq"`
	Type         Type                `json:"type"`
	GroupID      string              `json:"group_id"`
	TargetID     string              `json:"target_id,omitempty"`
	ActorID      string              `json:"actor_id,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	Title        string              `json:"title,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	Transactions []model.Transaction `json:"transactions,omitempty"`
}

// Publisher receives events after the change they describe has been committed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi fans an event out to several publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, evt Event) error

func (f PublisherFunc) Publish(ctx context.Context, evt Event) error { return f(ctx, evt) }

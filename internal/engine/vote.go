package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

// CastVote records voterID's vote on an open challenge or withdrawal. A
// second vote by the same member on the same target replaces the first.
func (e *Engine) CastVote(ctx context.Context, voterID, targetID string, typ model.VoteType) (model.Vote, error) {
	now := e.now()
	var cast model.Vote
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		m, err := actor(tx, voterID)
		if err != nil {
			return err
		}
		if !typ.Valid() {
			return invalidArgument("unknown vote type %q", typ)
		}
		deadline, err := openTarget(tx, targetID, now)
		if err != nil {
			return err
		}
		cast = model.Vote{
			ID:       uuid.NewString(),
			VoterID:  m.ID,
			TargetID: targetID,
			Type:     typ,
			Deadline: deadline,
			CastAt:   now,
		}
		tx.CastVote(cast)
		return nil
	})
	if err != nil {
		return model.Vote{}, err
	}

	e.log.Debug("vote cast",
		zap.String("target", targetID),
		zap.String("voter", voterID),
		zap.String("type", string(typ)),
	)
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.VoteCast, TargetID: targetID, ActorID: voterID, Timestamp: now, Reason: string(typ),
	})
	return cast, nil
}

// openTarget returns the deadline of a target that still accepts votes.
func openTarget(tx ledger.Tx, targetID string, now time.Time) (time.Time, error) {
	if c, ok := tx.Challenge(targetID); ok {
		if c.Status != model.ChallengeVoting {
			return time.Time{}, challengeTransition(c, model.ChallengeVoting)
		}
		return c.Deadline, nil
	}
	if w, ok := tx.Withdrawal(targetID); ok {
		if w.Status != model.WithdrawalPending {
			return time.Time{}, withdrawalTransition(w, model.WithdrawalPending)
		}
		if w.IsExpired(now) {
			return time.Time{}, invalidArgument("withdrawal %s stopped accepting votes at %s", w.ID, w.Deadline.Format(time.RFC3339))
		}
		return w.Deadline, nil
	}
	return time.Time{}, notFound(KindChallengeNotFound, targetID)
}

// HasVoted reports whether voterID has a vote on targetID.
func (e *Engine) HasVoted(targetID, voterID string) bool {
	return e.store.View().HasVoted(targetID, voterID)
}

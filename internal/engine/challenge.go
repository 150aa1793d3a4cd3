package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Groupool/internal/calculator"
	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

// NewChallenge is the proposal a member submits to open a challenge.
type NewChallenge struct {
	Title          string
	Description    string
	BuyIn          decimal.Decimal
	Deadline       time.Time
	ValidationMode model.ValidationMode
}

// AddChallenge opens a challenge with the creator as its only participant.
// Only one challenge may be active or voting in the group at a time, and the
// creator must be able to cover the buy-in from their available balance.
func (e *Engine) AddChallenge(ctx context.Context, actorID string, req NewChallenge) (model.Challenge, error) {
	now := e.now()
	title := strings.TrimSpace(req.Title)
	mode := req.ValidationMode
	if mode == "" {
		mode = model.ValidationProof
	}

	var created model.Challenge
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		creator, err := actor(tx, actorID)
		if err != nil {
			return err
		}
		if title == "" {
			return invalidArgument("challenge title is required")
		}
		if mode != model.ValidationProof && mode != model.ValidationVoteOnly {
			return invalidArgument("unknown validation mode %q", mode)
		}
		if !req.Deadline.After(now) {
			return invalidArgument("deadline %s is not in the future", req.Deadline.Format(time.RFC3339))
		}

		challenges := tx.Challenges()
		for i := range challenges {
			if challenges[i].IsOpen() {
				return &Error{Kind: KindActiveChallengeExists, ID: challenges[i].ID}
			}
		}
		available := calculator.AvailableBalance(creator, challenges)
		if !req.BuyIn.IsPositive() || req.BuyIn.GreaterThan(available) {
			return insufficientFunds(available, req.BuyIn)
		}

		created = model.Challenge{
			ID:             uuid.NewString(),
			Title:          title,
			Description:    strings.TrimSpace(req.Description),
			BuyIn:          req.BuyIn,
			Deadline:       req.Deadline,
			ValidationMode: mode,
			CreatorID:      creator.ID,
			Participants:   []string{creator.ID},
			Status:         model.ChallengeActive,
			CreatedAt:      now,
		}
		tx.PutChallenge(created)
		return nil
	})
	if err != nil {
		return model.Challenge{}, err
	}

	e.log.Info("challenge created",
		zap.String("challenge", created.ID),
		zap.String("creator", actorID),
		zap.String("buy_in", created.BuyIn.StringFixed(2)),
	)
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.ChallengeCreated, TargetID: created.ID, ActorID: actorID,
		Timestamp: now, Title: created.Title,
	})
	return created, nil
}

// JoinChallenge stakes the buy-in of an active challenge. The stake is frozen
// simply by membership of the participant set.
func (e *Engine) JoinChallenge(ctx context.Context, actorID, challengeID string) (model.Challenge, error) {
	var joined model.Challenge
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		m, err := actor(tx, actorID)
		if err != nil {
			return err
		}
		c, ok := tx.Challenge(challengeID)
		if !ok {
			return notFound(KindChallengeNotFound, challengeID)
		}
		if c.Status != model.ChallengeActive {
			return challengeTransition(c, model.ChallengeActive)
		}
		if c.HasParticipant(m.ID) {
			return &Error{Kind: KindAlreadyAParticipant, ID: c.ID}
		}
		available := calculator.AvailableBalance(m, tx.Challenges())
		if c.BuyIn.GreaterThan(available) {
			return insufficientFunds(available, c.BuyIn)
		}
		c.Participants = append(c.Participants, m.ID)
		tx.PutChallenge(c)
		joined = c
		return nil
	})
	if err != nil {
		return model.Challenge{}, err
	}

	e.log.Info("challenge joined", zap.String("challenge", challengeID), zap.String("member", actorID))
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.ChallengeJoined, TargetID: challengeID, ActorID: actorID,
		Timestamp: e.now(), Title: joined.Title,
	})
	return joined, nil
}

// SubmitProof moves an active challenge to voting on behalf of the
// participant who claims completion.
func (e *Engine) SubmitProof(ctx context.Context, actorID, challengeID string, image []byte) (model.Challenge, error) {
	return e.openVoting(ctx, actorID, challengeID, true, image)
}

// StartVoting moves an active vote-only challenge to voting without proof.
func (e *Engine) StartVoting(ctx context.Context, actorID, challengeID string) (model.Challenge, error) {
	return e.openVoting(ctx, actorID, challengeID, false, nil)
}

func (e *Engine) openVoting(ctx context.Context, actorID, challengeID string, withProof bool, image []byte) (model.Challenge, error) {
	var opened model.Challenge
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		m, err := actor(tx, actorID)
		if err != nil {
			return err
		}
		c, ok := tx.Challenge(challengeID)
		if !ok {
			return notFound(KindChallengeNotFound, challengeID)
		}
		if c.Status != model.ChallengeActive {
			return challengeTransition(c, model.ChallengeActive)
		}
		if !c.HasParticipant(m.ID) {
			return unauthorized("%s is not a participant of %s", m.ID, c.ID)
		}
		if withProof {
			if image != nil {
				c.ProofImage = append([]byte(nil), image...)
			}
			c.ProofSubmissionUserID = m.ID
		} else if c.ValidationMode != model.ValidationVoteOnly {
			return &Error{Kind: KindProofRequired, ID: c.ID}
		}
		c.Status = model.ChallengeVoting
		tx.PutChallenge(c)
		opened = c
		return nil
	})
	if err != nil {
		return model.Challenge{}, err
	}

	e.log.Info("challenge voting started",
		zap.String("challenge", challengeID),
		zap.String("by", actorID),
		zap.Bool("proof", withProof),
	)
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.ChallengeVotingStarted, TargetID: challengeID, ActorID: actorID,
		Timestamp: e.now(), Title: opened.Title,
	})
	return opened, nil
}

// ResolveVoting settles a challenge that is in voting. It can succeed only
// once per challenge; later calls fail with InvalidStateTransition.
func (e *Engine) ResolveVoting(ctx context.Context, actorID, challengeID string) (model.Challenge, error) {
	now := e.now()
	var (
		resolved model.Challenge
		booked   []model.Transaction
	)
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		if _, err := actor(tx, actorID); err != nil {
			return err
		}
		c, ok := tx.Challenge(challengeID)
		if !ok {
			return notFound(KindChallengeNotFound, challengeID)
		}
		if c.Status != model.ChallengeVoting {
			return challengeTransition(c, model.ChallengeVoting)
		}

		votes := tx.VotesFor(c.ID)
		recordParticipation(tx, c.ID, votes)

		v := judge(calculator.TallyVotes(c.ID, votes), len(tx.Roster()))
		if v.status == model.ChallengeComplete {
			booked = e.settleWin(tx, &c, actorID, now)
		} else {
			booked = e.refund(tx, &c, actorID, now)
		}
		c.Status = v.status
		c.VotingFailureReason = v.reason
		c.ResolvedAt = &now
		tx.PutChallenge(c)
		resolved = c
		return nil
	})
	if err != nil {
		return model.Challenge{}, err
	}

	typ := events.ChallengeCompleted
	if resolved.Status == model.ChallengeFailed {
		typ = events.ChallengeFailed
	}
	e.log.Info("challenge resolved",
		zap.String("challenge", resolved.ID),
		zap.String("status", string(resolved.Status)),
		zap.String("reason", resolved.VotingFailureReason),
		zap.String("winner", resolved.WinnerID),
		zap.Int("transactions", len(booked)),
	)
	e.publish(ctx, events.Event{
		Seq: seq, Type: typ, TargetID: resolved.ID, ActorID: actorID, Timestamp: now,
		Title: resolved.Title, Reason: resolved.VotingFailureReason, Transactions: booked,
	})
	return resolved, nil
}

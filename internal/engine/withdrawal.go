package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Groupool/internal/calculator"
	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

// SweepResult reports what one VerifyExpiredWithdrawals pass did.
type SweepResult struct {
	Approved []string
	Rejected []string
	Failed   map[string]error
}

// Resolved is the number of requests the sweep settled.
func (r SweepResult) Resolved() int { return len(r.Approved) + len(r.Rejected) }

// RequestWithdrawal opens a pending withdrawal that the group can contest
// until its deadline.
func (e *Engine) RequestWithdrawal(ctx context.Context, actorID string, amount decimal.Decimal) (model.WithdrawalRequest, error) {
	now := e.now()
	var created model.WithdrawalRequest
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		m, err := actor(tx, actorID)
		if err != nil {
			return err
		}
		if m.LastWinTimestamp != nil {
			if until := m.LastWinTimestamp.Add(e.cool); now.Before(until) {
				return cooldownActive(until.Sub(now))
			}
		}
		available := calculator.AvailableBalance(m, tx.Challenges())
		if !amount.IsPositive() || amount.GreaterThan(available) {
			return insufficientFunds(available, amount)
		}
		created = model.WithdrawalRequest{
			ID:          uuid.NewString(),
			InitiatorID: m.ID,
			Amount:      amount,
			Status:      model.WithdrawalPending,
			CreatedDate: now,
			Deadline:    now.Add(e.window),
		}
		tx.PutWithdrawal(created)
		return nil
	})
	if err != nil {
		return model.WithdrawalRequest{}, err
	}

	e.log.Info("withdrawal requested",
		zap.String("withdrawal", created.ID),
		zap.String("member", actorID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Time("deadline", created.Deadline),
	)
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.WithdrawalRequested, TargetID: created.ID, ActorID: actorID, Timestamp: now,
	})
	return created, nil
}

// VerifyExpiredWithdrawals resolves every pending request whose deadline has
// passed. Each request is settled in its own update; a failure on one is
// recorded and the sweep moves on. Cancelling ctx leaves the remaining
// requests pending for the next sweep.
func (e *Engine) VerifyExpiredWithdrawals(ctx context.Context) SweepResult {
	now := e.now()
	var res SweepResult

	for _, w := range e.store.View().PendingWithdrawals() {
		if !w.IsExpired(now) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		resolved, booked, seq, err := e.resolveWithdrawal(ctx, w.ID, now)
		switch {
		case errors.Is(err, errAlreadyResolved):
			continue
		case err != nil:
			if res.Failed == nil {
				res.Failed = map[string]error{}
			}
			res.Failed[w.ID] = err
			e.log.Error("withdrawal resolution failed", zap.String("withdrawal", w.ID), zap.Error(err))
			continue
		}

		typ := events.WithdrawalApproved
		if resolved.Status == model.WithdrawalApproved {
			res.Approved = append(res.Approved, resolved.ID)
		} else {
			typ = events.WithdrawalRejected
			res.Rejected = append(res.Rejected, resolved.ID)
		}
		e.log.Info("withdrawal resolved",
			zap.String("withdrawal", resolved.ID),
			zap.String("status", string(resolved.Status)),
			zap.String("note", resolved.ResolutionNote),
		)
		e.publish(ctx, events.Event{
			Seq: seq, Type: typ, TargetID: resolved.ID, ActorID: resolved.InitiatorID, Timestamp: now,
			Reason: resolved.ResolutionNote, Transactions: booked,
		})
	}
	return res
}

var errAlreadyResolved = errors.New("withdrawal already resolved")

func (e *Engine) resolveWithdrawal(ctx context.Context, id string, now time.Time) (model.WithdrawalRequest, []model.Transaction, uint64, error) {
	var (
		resolved model.WithdrawalRequest
		booked   []model.Transaction
	)
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		w, ok := tx.Withdrawal(id)
		if !ok {
			return notFound(KindWithdrawalNotFound, id)
		}
		if w.Status != model.WithdrawalPending {
			return errAlreadyResolved
		}

		votes := tx.VotesFor(w.ID)
		recordParticipation(tx, w.ID, votes)

		roster := tx.Roster()
		contest := calculator.TallyVotes(w.ID, votes).Contest
		required := calculator.RequiredContestVotes(len(roster))

		w.ResolvedAt = &now
		if contest >= required {
			w.Status = model.WithdrawalRejected
			w.ResolutionNote = fmt.Sprintf("Contested by %d of %d members.", contest, len(roster))
			tx.PutWithdrawal(w)
			resolved = w
			return nil
		}

		m, ok := tx.Member(w.InitiatorID)
		if !ok {
			w.Status = model.WithdrawalRejected
			w.ResolutionNote = "Initiator is no longer a member."
			tx.PutWithdrawal(w)
			resolved = w
			return nil
		}
		available := calculator.AvailableBalance(m, tx.Challenges())
		pool := tx.Group().TotalPool
		if w.Amount.GreaterThan(available) || w.Amount.GreaterThan(pool) {
			w.Status = model.WithdrawalRejected
			w.ResolutionNote = fmt.Sprintf("Insufficient funds at deadline (available %s, pool %s).",
				available.StringFixed(2), pool.StringFixed(2))
			tx.PutWithdrawal(w)
			resolved = w
			return nil
		}

		m.CurrentEquity = m.CurrentEquity.Sub(w.Amount)
		tx.PutMember(m)
		tx.AdjustPool(w.Amount.Neg())

		t := newTransaction(now, model.TxWithdrawal, fmt.Sprintf("Withdrawal by %s", m.Name))
		t.Amount = w.Amount.Neg()
		t.MemberID = m.ID
		t.RelatedWithdrawalID = w.ID
		tx.AppendTransaction(t)
		booked = append(booked, t)

		w.Status = model.WithdrawalApproved
		tx.PutWithdrawal(w)
		resolved = w
		return nil
	})
	return resolved, booked, seq, err
}

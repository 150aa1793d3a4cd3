package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Groupool/internal/calculator"
	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

// Deposit adds money to the pool and to the depositor's equity.
func (e *Engine) Deposit(ctx context.Context, actorID string, amount decimal.Decimal) (model.Transaction, error) {
	now := e.now()
	var booked model.Transaction
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		m, err := actor(tx, actorID)
		if err != nil {
			return err
		}
		if !amount.IsPositive() {
			return invalidArgument("deposit amount must be positive, got %s", amount)
		}
		m.CurrentEquity = m.CurrentEquity.Add(amount)
		tx.PutMember(m)
		tx.AdjustPool(amount)

		booked = newTransaction(now, model.TxDeposit, fmt.Sprintf("Deposit by %s", m.Name))
		booked.Amount = amount
		booked.MemberID = m.ID
		tx.AppendTransaction(booked)
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}

	e.log.Info("deposit booked", zap.String("member", actorID), zap.String("amount", amount.StringFixed(2)))
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.TreasuryDeposit, TargetID: booked.ID, ActorID: actorID, Timestamp: now,
		Transactions: []model.Transaction{booked},
	})
	return booked, nil
}

// AddExpense pays amount out of the pool and charges it to members. A nil
// split divides the amount equally across active members.
func (e *Engine) AddExpense(ctx context.Context, actorID, description string, amount decimal.Decimal, split map[string]decimal.Decimal) (model.Transaction, error) {
	now := e.now()
	description = strings.TrimSpace(description)
	var booked model.Transaction
	seq, err := e.store.Commit(ctx, func(tx ledger.Tx) error {
		if _, err := actor(tx, actorID); err != nil {
			return err
		}
		if description == "" {
			return invalidArgument("expense description is required")
		}
		if !amount.IsPositive() {
			return invalidArgument("expense amount must be positive, got %s", amount)
		}
		if pool := tx.Group().TotalPool; amount.GreaterThan(pool) {
			return insufficientFunds(pool, amount)
		}

		shares, err := expenseShares(tx, amount, split)
		if err != nil {
			return err
		}

		challenges := tx.Challenges()
		ids := make([]string, 0, len(shares))
		for id := range shares {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			m, ok := tx.Member(id)
			if !ok {
				return notFound(KindMemberNotFound, id)
			}
			share := shares[id]
			if available := calculator.AvailableBalance(m, challenges); share.GreaterThan(available) {
				return insufficientFunds(available, share)
			}
			m.CurrentEquity = m.CurrentEquity.Sub(share)
			tx.PutMember(m)
		}
		tx.AdjustPool(amount.Neg())

		booked = newTransaction(now, model.TxExpense, description)
		booked.Amount = amount.Neg()
		booked.Split = shares
		tx.AppendTransaction(booked)
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}

	e.log.Info("expense booked",
		zap.String("by", actorID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Int("members", len(booked.Split)),
	)
	e.publish(ctx, events.Event{
		Seq: seq, Type: events.TreasuryExpense, TargetID: booked.ID, ActorID: actorID, Timestamp: now,
		Title: description, Transactions: []model.Transaction{booked},
	})
	return booked, nil
}

// expenseShares validates an explicit split or builds the equal one.
func expenseShares(tx ledger.Tx, amount decimal.Decimal, split map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if len(split) == 0 {
		var active []string
		for _, m := range tx.Roster() {
			if m.Status == model.MemberActive {
				active = append(active, m.ID)
			}
		}
		shares, err := calculator.EqualSplit(amount, active)
		if err != nil {
			return nil, invalidArgument("cannot split expense: %v", err)
		}
		return shares, nil
	}

	shares := make(map[string]decimal.Decimal, len(split))
	for id, share := range split {
		if share.IsNegative() {
			return nil, invalidArgument("share of %s is negative", id)
		}
		if share.IsZero() {
			continue
		}
		shares[id] = share
	}
	if total := calculator.SumSplit(shares); !total.Equal(amount) {
		return nil, invalidArgument("split totals %s, expense is %s", total.StringFixed(2), amount.StringFixed(2))
	}
	return shares, nil
}

// ResetGroup replaces the whole ledger with the seed dataset. It is the only
// operation that deletes votes.
func (e *Engine) ResetGroup(ctx context.Context) {
	seq := e.store.Replace(ctx, ledger.Seed())
	e.log.Warn("group reset to seed data")
	e.publish(ctx, events.Event{Seq: seq, Type: events.GroupReset, Timestamp: e.now()})
}

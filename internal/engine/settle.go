package engine

import (
	"fmt"
	"time"

	"Groupool/internal/calculator"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

const (
	reasonNoVotes   = "No votes cast. Funds refunded."
	reasonContested = "Challenge contested by majority. Funds refunded."
)

type verdict struct {
	status model.ChallengeStatus
	reason string
}

// judge applies the resolution policy in order: no votes, quorum, tie,
// approval majority, contest majority.
func judge(t calculator.Tally, totalMembers int) verdict {
	cast := t.Cast()
	if cast == 0 {
		return verdict{model.ChallengeFailed, reasonNoVotes}
	}
	if required := calculator.RequiredParticipation(totalMembers); cast < required {
		return verdict{model.ChallengeFailed, fmt.Sprintf(
			"Insufficient participation (%d/%d votes, %d required). Funds refunded.",
			cast, totalMembers, required)}
	}
	switch {
	case t.Approval == t.Contest:
		return verdict{model.ChallengeFailed, fmt.Sprintf("Tie vote (%d vs %d).", t.Approval, t.Contest)}
	case t.Approval > t.Contest:
		return verdict{model.ChallengeComplete, ""}
	default:
		return verdict{model.ChallengeFailed, reasonContested}
	}
}

// winnerOf picks the proof submitter, else the resolving member when they
// staked, else the creator.
func winnerOf(c model.Challenge, actorID string) string {
	if c.ProofSubmissionUserID != "" {
		return c.ProofSubmissionUserID
	}
	if c.HasParticipant(actorID) {
		return actorID
	}
	return c.CreatorID
}

// booksFor reports whether the settlement mode books memberID's side.
func (e *Engine) booksFor(memberID, actorID string) bool {
	return e.mode != SettleActingMember || memberID == actorID
}

// settleWin pays the winner the pot minus their own buy-in and charges the
// buy-in to every losing participant. Losers' stakes stop being frozen in the
// same update, so their available balance is unchanged.
func (e *Engine) settleWin(tx ledger.Tx, c *model.Challenge, actorID string, now time.Time) []model.Transaction {
	winner := winnerOf(*c, actorID)
	c.WinnerID = winner
	profit := calculator.Pot(c.BuyIn, len(c.Participants)).Sub(c.BuyIn)

	var booked []model.Transaction
	for _, id := range c.Participants {
		if !e.booksFor(id, actorID) {
			continue
		}
		m, ok := tx.Member(id)
		if !ok {
			continue
		}
		var t model.Transaction
		if id == winner {
			m.CurrentEquity = m.CurrentEquity.Add(profit)
			m.ChallengesWon++
			m.ReputationScore += WinReputationBonus
			won := now
			m.LastWinTimestamp = &won
			t = newTransaction(now, model.TxWin, fmt.Sprintf("Won challenge %q", c.Title))
			t.Amount = profit
		} else {
			m.CurrentEquity = m.CurrentEquity.Sub(c.BuyIn)
			m.ChallengesLost++
			t = newTransaction(now, model.TxExpense, fmt.Sprintf("Lost challenge %q", c.Title))
			t.Amount = c.BuyIn.Neg()
		}
		t.MemberID = id
		t.RelatedChallengeID = c.ID
		tx.PutMember(m)
		tx.AppendTransaction(t)
		booked = append(booked, t)
	}
	return booked
}

// refund records the return of each stake. Equity is untouched: the stake was
// only frozen, and it thaws because the challenge leaves active/voting.
func (e *Engine) refund(tx ledger.Tx, c *model.Challenge, actorID string, now time.Time) []model.Transaction {
	var booked []model.Transaction
	for _, id := range c.Participants {
		if !e.booksFor(id, actorID) {
			continue
		}
		t := newTransaction(now, model.TxRefund, fmt.Sprintf("Refund for challenge %q", c.Title))
		t.Amount = c.BuyIn
		t.MemberID = id
		t.RelatedChallengeID = c.ID
		tx.AppendTransaction(t)
		booked = append(booked, t)
	}
	return booked
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies an audit record.
type TransactionType string

const (
	TxExpense    TransactionType = "expense"
	TxWithdrawal TransactionType = "withdrawal"
	TxWin        TransactionType = "win"
	TxRefund     TransactionType = "refund"
	TxDeposit    TransactionType = "deposit"
)

// Transaction is an immutable audit record. Amount is signed: credits to a
// member are positive, debits negative.
type Transaction struct {
	ID                  string                     `json:"id"`
	Description         string                     `json:"description"`
	Type                TransactionType            `json:"type"`
	Amount              decimal.Decimal            `json:"amount"`
	Timestamp           time.Time                  `json:"timestamp"`
	MemberID            string                     `json:"member_id,omitempty"`
	RelatedChallengeID  string                     `json:"related_challenge_id,omitempty"`
	RelatedWithdrawalID string                     `json:"related_withdrawal_id,omitempty"`
	Split               map[string]decimal.Decimal `json:"split,omitempty"`
}

// Clone returns a deep copy.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Split != nil {
		out.Split = make(map[string]decimal.Decimal, len(t.Split))
		for k, v := range t.Split {
			out.Split[k] = v
		}
	}
	return out
}

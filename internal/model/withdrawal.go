package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the resolution state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// WithdrawalRequest asks the group to release part of a member's equity from the pool.
type WithdrawalRequest struct {
	ID             string           `json:"id"`
	InitiatorID    string           `json:"initiator_id"`
	Amount         decimal.Decimal  `json:"amount"`
	Status         WithdrawalStatus `json:"status"`
	CreatedDate    time.Time        `json:"created_date"`
	Deadline       time.Time        `json:"deadline"`
	ResolvedAt     *time.Time       `json:"resolved_at,omitempty"`
	ResolutionNote string           `json:"resolution_note,omitempty"`
}

// IsExpired reports whether the contest window has closed at now.
func (w *WithdrawalRequest) IsExpired(now time.Time) bool {
	return !now.Before(w.Deadline)
}

// Clone returns a deep copy.
func (w WithdrawalRequest) Clone() WithdrawalRequest {
	out := w
	if w.ResolvedAt != nil {
		ts := *w.ResolvedAt
		out.ResolvedAt = &ts
	}
	return out
}

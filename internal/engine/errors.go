package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"Groupool/internal/model"
)

// Kind classifies an engine error.
type Kind string

const (
	KindActiveChallengeExists    Kind = "ActiveChallengeExists"
	KindInsufficientFunds        Kind = "InsufficientFunds"
	KindWithdrawalCooldownActive Kind = "WithdrawalCooldownActive"
	KindAlreadyAParticipant      Kind = "AlreadyAParticipant"
	KindChallengeNotFound        Kind = "ChallengeNotFound"
	KindWithdrawalNotFound       Kind = "WithdrawalNotFound"
	KindMemberNotFound           Kind = "MemberNotFound"
	KindInvalidStateTransition   Kind = "InvalidStateTransition"
	KindProofRequired            Kind = "ProofRequired"
	KindInvalidArgument          Kind = "InvalidArgument"
	KindUnauthorized             Kind = "Unauthorized"
	KindUnknown                  Kind = "Unknown"
)

// Error is returned by every engine operation that rejects a request. It
// carries the data a caller needs to explain the rejection to a member.
type Error struct {
	Kind      Kind
	ID        string
	Available decimal.Decimal
	Required  decimal.Decimal
	Remaining time.Duration
	Current   string
	Expected  string
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInsufficientFunds:
		return fmt.Sprintf("insufficient funds: available %s, required %s", e.Available.StringFixed(2), e.Required.StringFixed(2))
	case KindWithdrawalCooldownActive:
		return fmt.Sprintf("withdrawal cooldown active: %s remaining", e.Remaining.Round(time.Second))
	case KindInvalidStateTransition:
		return fmt.Sprintf("invalid state transition for %s: status is %s, expected %s", e.ID, e.Current, e.Expected)
	case KindActiveChallengeExists:
		return fmt.Sprintf("challenge %s is still open", e.ID)
	case KindChallengeNotFound, KindWithdrawalNotFound, KindMemberNotFound:
		return fmt.Sprintf("%s: %s", e.Kind, e.ID)
	case KindAlreadyAParticipant:
		return fmt.Sprintf("already a participant of %s", e.ID)
	case KindProofRequired:
		return fmt.Sprintf("challenge %s requires proof before voting", e.ID)
	case KindUnknown:
		if e.Err != nil {
			return "unknown engine error: " + e.Err.Error()
		}
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the call may succeed. Domain rule
// violations never are.
func (e *Error) Retryable() bool { return e.Kind == KindUnknown }

// Sentinels for errors.Is.
var (
	ErrActiveChallengeExists    = &Error{Kind: KindActiveChallengeExists}
	ErrInsufficientFunds        = &Error{Kind: KindInsufficientFunds}
	ErrWithdrawalCooldownActive = &Error{Kind: KindWithdrawalCooldownActive}
	ErrAlreadyAParticipant      = &Error{Kind: KindAlreadyAParticipant}
	ErrChallengeNotFound        = &Error{Kind: KindChallengeNotFound}
	ErrWithdrawalNotFound       = &Error{Kind: KindWithdrawalNotFound}
	ErrMemberNotFound           = &Error{Kind: KindMemberNotFound}
	ErrInvalidStateTransition   = &Error{Kind: KindInvalidStateTransition}
	ErrProofRequired            = &Error{Kind: KindProofRequired}
	ErrInvalidArgument          = &Error{Kind: KindInvalidArgument}
	ErrUnauthorized             = &Error{Kind: KindUnauthorized}
	ErrUnknown                  = &Error{Kind: KindUnknown}
)

func insufficientFunds(available, required decimal.Decimal) *Error {
	return &Error{Kind: KindInsufficientFunds, Available: available, Required: required}
}

func cooldownActive(remaining time.Duration) *Error {
	return &Error{Kind: KindWithdrawalCooldownActive, Remaining: remaining}
}

func challengeTransition(c model.Challenge, expected model.ChallengeStatus) *Error {
	return &Error{Kind: KindInvalidStateTransition, ID: c.ID, Current: string(c.Status), Expected: string(expected)}
}

func withdrawalTransition(w model.WithdrawalRequest, expected model.WithdrawalStatus) *Error {
	return &Error{Kind: KindInvalidStateTransition, ID: w.ID, Current: string(w.Status), Expected: string(expected)}
}

func notFound(kind Kind, id string) *Error {
	return &Error{Kind: kind, ID: id}
}

func invalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Detail: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Detail: fmt.Sprintf(format, args...)}
}

package ledger

import (
	"Groupool/internal/calculator"
	"Groupool/internal/model"
)

// View is a read-only window on one committed state.
type View struct {
	st *State
}

func (v View) CurrentUser() (model.Member, bool) { return v.st.Member(v.st.currentUserID) }
func (v View) Group() model.Group                { return v.st.Group() }
func (v View) Members() []model.Member           { return v.st.Roster() }
func (v View) Member(id string) (model.Member, bool) {
	return v.st.Member(id)
}
func (v View) Challenges() []model.Challenge { return v.st.Challenges() }
func (v View) Challenge(id string) (model.Challenge, bool) {
	return v.st.Challenge(id)
}
func (v View) Withdrawals() []model.WithdrawalRequest { return v.st.Withdrawals() }
func (v View) Withdrawal(id string) (model.WithdrawalRequest, bool) {
	return v.st.Withdrawal(id)
}
func (v View) Votes() []model.Vote                    { return v.st.Votes() }
func (v View) VotesFor(targetID string) []model.Vote  { return v.st.VotesFor(targetID) }
func (v View) HasVoted(targetID, voterID string) bool { return v.st.HasVoted(targetID, voterID) }
func (v View) Transactions() []model.Transaction      { return v.st.Transactions() }

// OpenChallenge returns the challenge that is currently active or voting, if any.
func (v View) OpenChallenge() (model.Challenge, bool) {
	for _, c := range v.st.challenges {
		if c.IsOpen() {
			return c.Clone(), true
		}
	}
	return model.Challenge{}, false
}

// PendingWithdrawals returns requests that are still awaiting resolution.
func (v View) PendingWithdrawals() []model.WithdrawalRequest {
	var out []model.WithdrawalRequest
	for _, w := range v.st.withdrawals {
		if w.Status == model.WithdrawalPending {
			out = append(out, w.Clone())
		}
	}
	return out
}

// Balance computes the equity/frozen/available breakdown for a member.
func (v View) Balance(memberID string) (calculator.Balance, bool) {
	m, ok := v.st.Member(memberID)
	if !ok {
		return calculator.Balance{}, false
	}
	return calculator.BalanceOf(m, v.st.challenges), true
}

// Data returns a deep copy of the viewed content.
func (v View) Data() Data { return v.st.Data() }

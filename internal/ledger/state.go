package ledger

import (
	"github.com/shopspring/decimal"

	"Groupool/internal/model"
)

// MemberStore reads and replaces members of the group roster.
type MemberStore interface {
	Member(id string) (model.Member, bool)
	PutMember(m model.Member)
	Roster() []model.Member
}

// TreasuryStore reads the group and moves the shared pool.
type TreasuryStore interface {
	Group() model.Group
	AdjustPool(delta decimal.Decimal)
}

// ChallengeStore reads and replaces challenges.
type ChallengeStore interface {
	Challenge(id string) (model.Challenge, bool)
	PutChallenge(c model.Challenge)
	Challenges() []model.Challenge
}

// WithdrawalStore reads and replaces withdrawal requests.
type WithdrawalStore interface {
	Withdrawal(id string) (model.WithdrawalRequest, bool)
	PutWithdrawal(w model.WithdrawalRequest)
	Withdrawals() []model.WithdrawalRequest
}

// VoteStore keeps at most one vote per (target, voter).
type VoteStore interface {
	CastVote(v model.Vote)
	VotesFor(targetID string) []model.Vote
	HasVoted(targetID, voterID string) bool
}

// TransactionStore appends audit records.
type TransactionStore interface {
	AppendTransaction(t model.Transaction)
	Transactions() []model.Transaction
}

// Tx is the mutable view handed to Store.Update.
type Tx interface {
	MemberStore
	TreasuryStore
	ChallengeStore
	WithdrawalStore
	VoteStore
	TransactionStore
}

// Data is the plain content of a ledger, used for seeding, snapshots and tests.
type Data struct {
	CurrentUserID string
	Group         model.Group
	Members       []model.Member
	Challenges    []model.Challenge
	Transactions  []model.Transaction
	Votes         []model.Vote
	Withdrawals   []model.WithdrawalRequest
}

// State is the whole ledger. Collections keep insertion order and entities
// refer to each other by ID only. Getters hand out copies, so a change only
// lands through the matching Put method.
type State struct {
	currentUserID string
	group         model.Group
	members       []model.Member
	challenges    []model.Challenge
	transactions  []model.Transaction
	votes         []model.Vote
	withdrawals   []model.WithdrawalRequest
}

// NewState builds a state holding a deep copy of d.
func NewState(d Data) *State {
	st := &State{currentUserID: d.CurrentUserID, group: d.Group.Clone()}
	for _, m := range d.Members {
		st.members = append(st.members, m.Clone())
	}
	for _, c := range d.Challenges {
		st.challenges = append(st.challenges, c.Clone())
	}
	for _, t := range d.Transactions {
		st.transactions = append(st.transactions, t.Clone())
	}
	st.votes = append(st.votes, d.Votes...)
	for _, w := range d.Withdrawals {
		st.withdrawals = append(st.withdrawals, w.Clone())
	}
	return st
}

// Data returns a deep copy of the state's content.
func (s *State) Data() Data {
	return Data{
		CurrentUserID: s.currentUserID,
		Group:         s.group.Clone(),
		Members:       s.membersCopy(),
		Challenges:    s.Challenges(),
		Transactions:  s.Transactions(),
		Votes:         append([]model.Vote(nil), s.votes...),
		Withdrawals:   s.Withdrawals(),
	}
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	return NewState(s.Data())
}

// CurrentUserID is the member the local collaborator acts as.
func (s *State) CurrentUserID() string { return s.currentUserID }

// Member returns a copy of the member with the given ID.
func (s *State) Member(id string) (model.Member, bool) {
	for _, m := range s.members {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return model.Member{}, false
}

// PutMember replaces the member with the same ID, or adds it to the roster.
func (s *State) PutMember(m model.Member) {
	for i := range s.members {
		if s.members[i].ID == m.ID {
			s.members[i] = m.Clone()
			return
		}
	}
	s.members = append(s.members, m.Clone())
	s.group.MemberIDs = append(s.group.MemberIDs, m.ID)
}

// Roster returns members in group order.
func (s *State) Roster() []model.Member {
	out := make([]model.Member, 0, len(s.group.MemberIDs))
	for _, id := range s.group.MemberIDs {
		if m, ok := s.Member(id); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *State) membersCopy() []model.Member {
	out := make([]model.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m.Clone())
	}
	return out
}

// Group returns a copy of the group.
func (s *State) Group() model.Group { return s.group.Clone() }

// AdjustPool adds delta, which may be negative, to the shared pool.
func (s *State) AdjustPool(delta decimal.Decimal) {
	s.group.TotalPool = s.group.TotalPool.Add(delta)
}

// Challenge returns a copy of the challenge with the given ID.
func (s *State) Challenge(id string) (model.Challenge, bool) {
	for _, c := range s.challenges {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return model.Challenge{}, false
}

// PutChallenge replaces the challenge with the same ID, or appends it.
func (s *State) PutChallenge(c model.Challenge) {
	for i := range s.challenges {
		if s.challenges[i].ID == c.ID {
			s.challenges[i] = c.Clone()
			return
		}
	}
	s.challenges = append(s.challenges, c.Clone())
}

// Challenges returns every challenge in creation order.
func (s *State) Challenges() []model.Challenge {
	out := make([]model.Challenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		out = append(out, c.Clone())
	}
	return out
}

// Withdrawal returns a copy of the request with the given ID.
func (s *State) Withdrawal(id string) (model.WithdrawalRequest, bool) {
	for _, w := range s.withdrawals {
		if w.ID == id {
			return w.Clone(), true
		}
	}
	return model.WithdrawalRequest{}, false
}

// PutWithdrawal replaces the request with the same ID, or appends it.
func (s *State) PutWithdrawal(w model.WithdrawalRequest) {
	for i := range s.withdrawals {
		if s.withdrawals[i].ID == w.ID {
			s.withdrawals[i] = w.Clone()
			return
		}
	}
	s.withdrawals = append(s.withdrawals, w.Clone())
}

// Withdrawals returns every request in creation order.
func (s *State) Withdrawals() []model.WithdrawalRequest {
	out := make([]model.WithdrawalRequest, 0, len(s.withdrawals))
	for _, w := range s.withdrawals {
		out = append(out, w.Clone())
	}
	return out
}

// CastVote removes any earlier vote by the same voter on the same target and
// appends v.
func (s *State) CastVote(v model.Vote) {
	kept := s.votes[:0:0]
	for _, old := range s.votes {
		if old.TargetID == v.TargetID && old.VoterID == v.VoterID {
			continue
		}
		kept = append(kept, old)
	}
	s.votes = append(kept, v)
}

// VotesFor returns the votes cast on targetID in cast order.
func (s *State) VotesFor(targetID string) []model.Vote {
	var out []model.Vote
	for _, v := range s.votes {
		if v.TargetID == targetID {
			out = append(out, v)
		}
	}
	return out
}

// HasVoted reports whether voterID has a vote on targetID.
func (s *State) HasVoted(targetID, voterID string) bool {
	for _, v := range s.votes {
		if v.TargetID == targetID && v.VoterID == voterID {
			return true
		}
	}
	return false
}

// Votes returns every vote in cast order.
func (s *State) Votes() []model.Vote {
	return append([]model.Vote(nil), s.votes...)
}

// AppendTransaction adds t to the audit trail.
func (s *State) AppendTransaction(t model.Transaction) {
	s.transactions = append(s.transactions, t.Clone())
}

// Transactions returns the audit trail oldest first.
func (s *State) Transactions() []model.Transaction {
	out := make([]model.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t.Clone())
	}
	return out
}

var _ Tx = (*State)(nil)

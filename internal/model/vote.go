package model

import "time"

// VoteType is the stance a vote takes on its target.
type VoteType string

const (
	VoteApproval VoteType = "approval"
	VoteContest  VoteType = "contest"
	VoteAbstain  VoteType = "abstain"
)

// Valid reports whether t is one of the known vote types.
func (t VoteType) Valid() bool {
	switch t {
	case VoteApproval, VoteContest, VoteAbstain:
		return true
	}
	return false
}

// Vote is one member's ballot on a challenge or a withdrawal request.
type Vote struct {
	ID       string    `json:"id"`
	VoterID  string    `json:"voter_id"`
	TargetID string    `json:"target_id"`
	Type     VoteType  `json:"type"`
	Deadline time.Time `json:"deadline"`
	CastAt   time.Time `json:"cast_at"`
}

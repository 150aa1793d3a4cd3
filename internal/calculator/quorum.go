package calculator

import (
	"math"

	"Groupool/internal/model"
)

// QuorumFraction is the share of the roster that must vote on a challenge.
const QuorumFraction = 0.5

// Tally counts votes by type.
type Tally struct {
	Approval int
	Contest  int
	Abstain  int
}

// Cast is the number of votes of any type.
func (t Tally) Cast() int {
	return t.Approval + t.Contest + t.Abstain
}

// TallyVotes counts the votes cast on targetID.
func TallyVotes(targetID string, votes []model.Vote) Tally {
	var t Tally
	for _, v := range votes {
		if v.TargetID != targetID {
			continue
		}
		switch v.Type {
		case model.VoteApproval:
			t.Approval++
		case model.VoteContest:
			t.Contest++
		case model.VoteAbstain:
			t.Abstain++
		}
	}
	return t
}

// RequiredParticipation is ceil(totalMembers * QuorumFraction).
func RequiredParticipation(totalMembers int) int {
	if totalMembers <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalMembers) * QuorumFraction))
}

// RequiredContestVotes is the strict majority needed to block a withdrawal.
func RequiredContestVotes(totalMembers int) int {
	return totalMembers/2 + 1
}

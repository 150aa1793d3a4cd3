package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChallengeStatus is a state of the challenge lifecycle.
type ChallengeStatus string

const (
	ChallengeActive   ChallengeStatus = "active"
	ChallengeVoting   ChallengeStatus = "voting"
	ChallengeComplete ChallengeStatus = "complete"
	ChallengeFailed   ChallengeStatus = "failed"
)

// ValidationMode decides how a challenge moves from active to voting.
type ValidationMode string

const (
	// ValidationProof requires a participant to submit proof.
	ValidationProof ValidationMode = "proof"
	// ValidationVoteOnly allows voting to be started without proof.
	ValidationVoteOnly ValidationMode = "vote_only"
)

// Challenge is a staked goal whose outcome the group votes on.
type Challenge struct {
	ID                    string          `json:"id"`
	Title                 string          `json:"title"`
	Description           string          `json:"description"`
	BuyIn                 decimal.Decimal `json:"buy_in"`
	Deadline              time.Time       `json:"deadline"`
	ValidationMode        ValidationMode  `json:"validation_mode"`
	CreatorID             string          `json:"creator_id"`
	Participants          []string        `json:"participants"`
	Status                ChallengeStatus `json:"status"`
	ProofImage            []byte          `json:"proof_image,omitempty"`
	ProofSubmissionUserID string          `json:"proof_submission_user_id,omitempty"`
	VotingFailureReason   string          `json:"voting_failure_reason,omitempty"`
	WinnerID              string          `json:"winner_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	ResolvedAt            *time.Time      `json:"resolved_at,omitempty"`
}

// IsOpen reports whether the challenge still holds its participants' stakes.
func (c *Challenge) IsOpen() bool {
	return c.Status == ChallengeActive || c.Status == ChallengeVoting
}

// IsTerminal reports whether the challenge has been settled.
func (c *Challenge) IsTerminal() bool {
	return c.Status == ChallengeComplete || c.Status == ChallengeFailed
}

// HasParticipant reports whether memberID has staked on the challenge.
func (c *Challenge) HasParticipant(memberID string) bool {
	for _, id := range c.Participants {
		if id == memberID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c Challenge) Clone() Challenge {
	out := c
	if c.Participants != nil {
		out.Participants = append([]string(nil), c.Participants...)
	}
	if c.ProofImage != nil {
		out.ProofImage = append([]byte(nil), c.ProofImage...)
	}
	if c.ResolvedAt != nil {
		ts := *c.ResolvedAt
		out.ResolvedAt = &ts
	}
	return out
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberStatus is the participation standing of a group member.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

// Member is one participant of the group and their claim on the pool.
type Member struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	ReputationScore        int             `json:"reputation_score"`
	CurrentEquity          decimal.Decimal `json:"current_equity"`
	ChallengesWon          int             `json:"challenges_won"`
	ChallengesLost         int             `json:"challenges_lost"`
	LastWinTimestamp       *time.Time      `json:"last_win_timestamp,omitempty"`
	VotingHistory          []string        `json:"voting_history"`
	ConsecutiveMissedVotes int             `json:"consecutive_missed_votes"`
	Status                 MemberStatus    `json:"status"`
}

// HasVotedOn reports whether targetID is already in the member's voting history.
func (m *Member) HasVotedOn(targetID string) bool {
	for _, id := range m.VotingHistory {
		if id == targetID {
			return true
		}
	}
	return false
}

// RecordVote adds targetID to the voting history once.
func (m *Member) RecordVote(targetID string) {
	if !m.HasVotedOn(targetID) {
		m.VotingHistory = append(m.VotingHistory, targetID)
	}
}

// Clone returns a deep copy.
func (m Member) Clone() Member {
	out := m
	if m.LastWinTimestamp != nil {
		ts := *m.LastWinTimestamp
		out.LastWinTimestamp = &ts
	}
	if m.VotingHistory != nil {
		out.VotingHistory = append([]string(nil), m.VotingHistory...)
	}
	return out
}

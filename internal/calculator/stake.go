package calculator

import (
	"github.com/shopspring/decimal"

	"Groupool/internal/model"
)

// Balance splits a member's equity into the part locked in open challenges and the rest.
type Balance struct {
	Equity    decimal.Decimal `json:"equity"`
	Frozen    decimal.Decimal `json:"frozen"`
	Available decimal.Decimal `json:"available"`
}

// ActiveChallengesOf returns the active or voting challenges memberID participates in.
func ActiveChallengesOf(memberID string, challenges []model.Challenge) []model.Challenge {
	var out []model.Challenge
	for i := range challenges {
		c := &challenges[i]
		if c.IsOpen() && c.HasParticipant(memberID) {
			out = append(out, *c)
		}
	}
	return out
}

// FrozenAmount sums the buy-ins of the member's open challenges. Never negative.
func FrozenAmount(memberID string, challenges []model.Challenge) decimal.Decimal {
	total := decimal.Zero
	for _, c := range ActiveChallengesOf(memberID, challenges) {
		if c.BuyIn.IsPositive() {
			total = total.Add(c.BuyIn)
		}
	}
	return total
}

// AvailableBalance is the member's equity minus the frozen amount.
func AvailableBalance(member model.Member, challenges []model.Challenge) decimal.Decimal {
	return member.CurrentEquity.Sub(FrozenAmount(member.ID, challenges))
}

// BalanceOf computes the full balance breakdown for member.
func BalanceOf(member model.Member, challenges []model.Challenge) Balance {
	frozen := FrozenAmount(member.ID, challenges)
	return Balance{
		Equity:    member.CurrentEquity,
		Frozen:    frozen,
		Available: member.CurrentEquity.Sub(frozen),
	}
}

// Pot is the total staked on a challenge.
func Pot(buyIn decimal.Decimal, participants int) decimal.Decimal {
	return buyIn.Mul(decimal.NewFromInt(int64(participants)))
}

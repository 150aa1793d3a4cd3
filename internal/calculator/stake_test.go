package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Groupool/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func challenge(id string, status model.ChallengeStatus, buyIn string, participants ...string) model.Challenge {
	return model.Challenge{ID: id, Status: status, BuyIn: d(buyIn), Participants: participants}
}

func TestFrozenAmount_OnlyOpenChallengesCount(t *testing.T) {
	challenges := []model.Challenge{
		challenge("c1", model.ChallengeActive, "50", "a", "b"),
		challenge("c2", model.ChallengeVoting, "20", "a"),
		challenge("c3", model.ChallengeComplete, "100", "a", "b"),
		challenge("c4", model.ChallengeFailed, "75", "a"),
	}

	tests := []struct {
		member string
		want   string
	}{
		{"a", "70"},
		{"b", "50"},
		{"c", "0"},
	}
	for _, tt := range tests {
		got := FrozenAmount(tt.member, challenges)
		if !got.Equal(d(tt.want)) {
			t.Errorf("member %s: expected frozen %s, got %s", tt.member, tt.want, got)
		}
	}
}

func TestFrozenAmount_IgnoresNonPositiveBuyIn(t *testing.T) {
	challenges := []model.Challenge{challenge("c1", model.ChallengeActive, "-10", "a")}
	assert.True(t, FrozenAmount("a", challenges).IsZero())
}

func TestAvailableBalance(t *testing.T) {
	member := model.Member{ID: "a", CurrentEquity: d("500")}
	challenges := []model.Challenge{challenge("c1", model.ChallengeActive, "50", "a")}

	assert.True(t, AvailableBalance(member, challenges).Equal(d("450")))

	bal := BalanceOf(member, challenges)
	assert.True(t, bal.Equity.Equal(d("500")))
	assert.True(t, bal.Frozen.Equal(d("50")))
	assert.True(t, bal.Available.Equal(d("450")))
}

func TestFrozenAmount_DropsWhenChallengeSettles(t *testing.T) {
	challenges := []model.Challenge{challenge("c1", model.ChallengeVoting, "50", "a", "b", "c")}
	before := FrozenAmount("b", challenges)

	challenges[0].Status = model.ChallengeFailed
	after := FrozenAmount("b", challenges)

	require.True(t, before.Sub(after).Equal(d("50")), "frozen should drop by the buy-in, before=%s after=%s", before, after)
}

func TestActiveChallengesOf(t *testing.T) {
	challenges := []model.Challenge{
		challenge("c1", model.ChallengeActive, "10", "a"),
		challenge("c2", model.ChallengeActive, "10", "b"),
		challenge("c3", model.ChallengeComplete, "10", "a"),
	}
	got := ActiveChallengesOf("a", challenges)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestPot(t *testing.T) {
	assert.True(t, Pot(d("50"), 3).Equal(d("150")))
	assert.True(t, Pot(d("12.5"), 4).Equal(d("50")))
}

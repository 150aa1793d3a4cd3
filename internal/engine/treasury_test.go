package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

func TestDeposit(t *testing.T) {
	f := newFixture(t, groupOf(4), SettleAllParticipants)

	tx, err := f.eng.Deposit(context.Background(), "m3", dec("250"))
	require.NoError(t, err)
	assert.Equal(t, model.TxDeposit, tx.Type)
	assertAmount(t, "250", tx.Amount)
	assert.Equal(t, "m3", tx.MemberID)

	assertAmount(t, "750", f.member(t, "m3").CurrentEquity)
	assertAmount(t, "2250", f.eng.View().Group().TotalPool)

	_, err = f.eng.Deposit(context.Background(), "m3", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, f.eng.View().Transactions(), 1)
}

func TestAddExpense_EqualSplit(t *testing.T) {
	data := groupOf(4)
	data.Members[3].Status = model.MemberInactive
	f := newFixture(t, data, SettleAllParticipants)

	tx, err := f.eng.AddExpense(context.Background(), "m2", "Dinner", dec("10.01"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxExpense, tx.Type)
	assertAmount(t, "-10.01", tx.Amount)
	require.Len(t, tx.Split, 3, "inactive members are left out")
	assertAmount(t, "3.35", tx.Split["m1"])
	assertAmount(t, "3.33", tx.Split["m2"])
	assertAmount(t, "3.33", tx.Split["m3"])

	assertAmount(t, "496.65", f.member(t, "m1").CurrentEquity)
	assertAmount(t, "496.67", f.member(t, "m3").CurrentEquity)
	assertAmount(t, "500", f.member(t, "m4").CurrentEquity)
	assertAmount(t, "1989.99", f.eng.View().Group().TotalPool)
}

func TestAddExpense_ExplicitSplit(t *testing.T) {
	f := newFixture(t, groupOf(3), SettleAllParticipants)

	split := map[string]decimal.Decimal{"m1": dec("30"), "m2": dec("20"), "m3": decimal.Zero}
	tx, err := f.eng.AddExpense(context.Background(), "m1", "Tickets", dec("50"), split)
	require.NoError(t, err)
	assert.Len(t, tx.Split, 2)
	assertAmount(t, "470", f.member(t, "m1").CurrentEquity)
	assertAmount(t, "480", f.member(t, "m2").CurrentEquity)
	assertAmount(t, "500", f.member(t, "m3").CurrentEquity)
	assertAmount(t, "1450", f.eng.View().Group().TotalPool)
}

func TestAddExpense_Guards(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		amount string
		split  map[string]decimal.Decimal
		want   error
	}{
		{"no description", " ", "10", nil, ErrInvalidArgument},
		{"non-positive", "x", "0", nil, ErrInvalidArgument},
		{"above pool", "x", "1500.01", nil, ErrInsufficientFunds},
		{"split does not add up", "x", "50", map[string]decimal.Decimal{"m1": dec("20")}, ErrInvalidArgument},
		{"negative share", "x", "10", map[string]decimal.Decimal{"m1": dec("20"), "m2": dec("-10")}, ErrInvalidArgument},
		{"unknown member", "x", "10", map[string]decimal.Decimal{"zz": dec("10")}, ErrMemberNotFound},
		{"share above available", "x", "490", map[string]decimal.Decimal{"m1": dec("490")}, ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, groupOf(3), SettleAllParticipants)
			_, err := f.eng.AddChallenge(context.Background(), "m1", NewChallenge{Title: "x", BuyIn: dec("20"), Deadline: t0.Add(time.Hour)})
			require.NoError(t, err)

			_, err = f.eng.AddExpense(context.Background(), "m2", tt.desc, dec(tt.amount), tt.split)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.eng.View().Transactions())
			assertAmount(t, "1500", f.eng.View().Group().TotalPool)
		})
	}
}

func TestResetGroup(t *testing.T) {
	f := newFixture(t, groupOf(3), SettleAllParticipants)
	ctx := context.Background()
	c := f.openVoteOnly(t, "m1", "10")
	f.vote(t, c.ID, map[string]model.VoteType{"m1": model.VoteApproval})

	f.eng.ResetGroup(ctx)

	v := f.eng.View()
	seed := ledger.Seed()
	assert.Equal(t, seed.Group.ID, v.Group().ID)
	assert.Equal(t, seed.Group.MemberIDs, v.Group().MemberIDs)
	assertAmount(t, "2000", v.Group().TotalPool)
	assert.Empty(t, v.Challenges())
	assert.Empty(t, v.Votes())
	assert.Empty(t, v.Transactions())
	user, ok := v.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "mbr-001", user.ID)

	evts := f.published()
	last := evts[len(evts)-1]
	assert.Equal(t, events.GroupReset, last.Type)
	assert.Equal(t, "grp-001", last.GroupID)
}

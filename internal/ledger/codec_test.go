package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Groupool/internal/model"
)

func TestEncode_ProducesEveryKey(t *testing.T) {
	kv, err := Encode(Seed())
	require.NoError(t, err)
	for _, k := range RequiredKeys {
		v, ok := kv[k]
		require.True(t, ok, "missing key %s", k)
		assert.True(t, json.Valid(v), "key %s is not JSON", k)
	}
	assert.JSONEq(t, `[]`, string(kv[KeyVotes]))

	var user model.Member
	require.NoError(t, json.Unmarshal(kv[KeyUser], &user))
	assert.Equal(t, "mbr-001", user.ID)
	assert.Equal(t, "Ana", user.Name)
}

func TestDecode_KeepsDecimalsAndTimes(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := Seed()
	data.Challenges = []model.Challenge{{
		ID: "c1", BuyIn: decimal.RequireFromString("12.34"), Deadline: deadline,
		Status: model.ChallengeVoting, Participants: []string{"mbr-001"},
		ProofImage: []byte{1, 2, 3},
	}}
	data.Transactions = []model.Transaction{{
		ID: "t1", Type: model.TxExpense, Amount: decimal.RequireFromString("-0.10"),
		Split: map[string]decimal.Decimal{"mbr-001": decimal.RequireFromString("0.10")},
	}}

	kv, err := Encode(data)
	require.NoError(t, err)
	got, err := Decode(kv)
	require.NoError(t, err)

	require.Len(t, got.Challenges, 1)
	assert.True(t, got.Challenges[0].BuyIn.Equal(decimal.RequireFromString("12.34")))
	assert.True(t, got.Challenges[0].Deadline.Equal(deadline))
	assert.Equal(t, []byte{1, 2, 3}, got.Challenges[0].ProofImage)
	assert.True(t, got.Transactions[0].Split["mbr-001"].Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, data.Group.MemberIDs, got.Group.MemberIDs)
	assert.Equal(t, "mbr-001", got.CurrentUserID)
}

func TestDecode_MissingKey(t *testing.T) {
	kv, err := Encode(Seed())
	require.NoError(t, err)
	delete(kv, KeyWithdrawals)
	_, err = Decode(kv)
	assert.Error(t, err)
}

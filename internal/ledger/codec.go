package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"Groupool/internal/model"
)

// Snapshot keys. Every key must be present for a snapshot to load.
const (
	KeyUser         = "user"
	KeyGroup        = "group"
	KeyChallenges   = "challenges"
	KeyTransactions = "transactions"
	KeyVotes        = "votes"
	KeyWithdrawals  = "withdrawals"
)

// RequiredKeys lists the snapshot keys in a stable order.
var RequiredKeys = []string{KeyUser, KeyGroup, KeyChallenges, KeyTransactions, KeyVotes, KeyWithdrawals}

// groupDocument is the group key: the treasury plus the full roster.
type groupDocument struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	TotalPool decimal.Decimal `json:"total_pool"`
	Members   []model.Member  `json:"members"`
}

// Encode flattens data into one JSON document per key.
func Encode(data Data) (map[string][]byte, error) {
	user := model.Member{ID: data.CurrentUserID}
	byID := make(map[string]model.Member, len(data.Members))
	for _, m := range data.Members {
		byID[m.ID] = m
		if m.ID == data.CurrentUserID {
			user = m
		}
	}
	roster := make([]model.Member, 0, len(data.Group.MemberIDs))
	for _, id := range data.Group.MemberIDs {
		if m, ok := byID[id]; ok {
			roster = append(roster, m)
		}
	}

	docs := map[string]interface{}{
		KeyUser: user,
		KeyGroup: groupDocument{
			ID:        data.Group.ID,
			Name:      data.Group.Name,
			TotalPool: data.Group.TotalPool,
			Members:   roster,
		},
		KeyChallenges:   nonNil(data.Challenges),
		KeyTransactions: nonNil(data.Transactions),
		KeyVotes:        nonNil(data.Votes),
		KeyWithdrawals:  nonNil(data.Withdrawals),
	}

	out := make(map[string][]byte, len(docs))
	for k, v := range docs {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = b
	}
	return out, nil
}

// Decode rebuilds ledger data. It fails when a key is missing or malformed,
// which callers treat as "fall back to the seed dataset".
func Decode(kv map[string][]byte) (Data, error) {
	for _, k := range RequiredKeys {
		if _, ok := kv[k]; !ok {
			return Data{}, fmt.Errorf("snapshot key %q missing", k)
		}
	}

	var (
		user  model.Member
		group groupDocument
		data  Data
	)
	targets := []struct {
		key string
		dst interface{}
	}{
		{KeyUser, &user},
		{KeyGroup, &group},
		{KeyChallenges, &data.Challenges},
		{KeyTransactions, &data.Transactions},
		{KeyVotes, &data.Votes},
		{KeyWithdrawals, &data.Withdrawals},
	}
	for _, t := range targets {
		if err := json.Unmarshal(kv[t.key], t.dst); err != nil {
			return Data{}, fmt.Errorf("decode %s: %w", t.key, err)
		}
	}

	data.CurrentUserID = user.ID
	data.Group = model.Group{ID: group.ID, Name: group.Name, TotalPool: group.TotalPool}
	data.Members = group.Members
	for _, m := range group.Members {
		data.Group.MemberIDs = append(data.Group.MemberIDs, m.ID)
	}
	return data, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

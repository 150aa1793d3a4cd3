package ledger

import (
	"github.com/shopspring/decimal"

	"Groupool/internal/model"
)

// Seed is the deterministic dataset used on first start, when a snapshot
// cannot be loaded, and on group reset: four active members with 500 each
// and the matching pool.
func Seed() Data {
	names := []struct{ id, name string }{
		{"mbr-001", "Ana"},
		{"mbr-002", "Bruno"},
		{"mbr-003", "Carla"},
		{"mbr-004", "Diego"},
	}
	equity := decimal.NewFromInt(500)

	data := Data{
		CurrentUserID: names[0].id,
		Group: model.Group{
			ID:        "grp-001",
			Name:      "Groupool",
			TotalPool: equity.Mul(decimal.NewFromInt(int64(len(names)))),
		},
	}
	for _, n := range names {
		data.Members = append(data.Members, model.Member{
			ID:              n.id,
			Name:            n.name,
			ReputationScore: 100,
			CurrentEquity:   equity,
			VotingHistory:   []string{},
			Status:          model.MemberActive,
		})
		data.Group.MemberIDs = append(data.Group.MemberIDs, n.id)
	}
	return data
}

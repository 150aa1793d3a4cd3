package model

import "github.com/shopspring/decimal"

// Group is the shared treasury and its ordered roster.
// TotalPool tracks settled inflows and outflows only; it is not derived from member equity.
type Group struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	TotalPool decimal.Decimal `json:"total_pool"`
	MemberIDs []string        `json:"member_ids"`
}

// Clone returns a deep copy.
func (g Group) Clone() Group {
	out := g
	if g.MemberIDs != nil {
		out.MemberIDs = append([]string(nil), g.MemberIDs...)
	}
	return out
}

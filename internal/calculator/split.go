package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// SplitPlaces is the number of decimal places shares are truncated to.
const SplitPlaces = 2

// EqualSplit divides amount across memberIDs in cents. The rounding remainder
// goes to the first member so the shares always sum to amount.
func EqualSplit(amount decimal.Decimal, memberIDs []string) (map[string]decimal.Decimal, error) {
	if len(memberIDs) == 0 {
		return nil, errors.New("no members to split between")
	}
	n := decimal.NewFromInt(int64(len(memberIDs)))
	share := amount.Div(n).Truncate(SplitPlaces)
	remainder := amount.Sub(share.Mul(n))

	out := make(map[string]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		out[id] = out[id].Add(share)
	}
	out[memberIDs[0]] = out[memberIDs[0]].Add(remainder)
	return out, nil
}

// SumSplit totals the shares of a split.
func SumSplit(split map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range split {
		total = total.Add(v)
	}
	return total
}

package ledger

import (
	"errors"
	"math/rand/v2"
)

const MaxGeneratedAmount = 100000

var ErrNotEnoughAccounts = errors.New("not_enough_accounts")

// Generate draws n synthetic transactions between two distinct accounts
// from ibans. Amounts are uniform in [1, MaxGeneratedAmount] and direction
// is a fair coin.
func Generate(rng *rand.Rand, ibans []string, n int) ([]NewTransaction, error) {
	if len(ibans) < 2 {
		return nil, ErrNotEnoughAccounts
	}
	out := make([]NewTransaction, 0, n)
	for range n {
		i := rng.IntN(len(ibans))
		j := rng.IntN(len(ibans) - 1)
		if j >= i {
			j++
		}
		dir := DirectionDebit
		if rng.IntN(2) == 1 {
			dir = DirectionCredit
		}
		out = append(out, NewTransaction{
			AccountIBAN:      ibans[i],
			CounterpartyIBAN: ibans[j],
			Amount:           rng.Int64N(MaxGeneratedAmount) + 1,
			Direction:        dir,
		})
	}
	return out, nil
}

package metrics

// NetWorth sums account balances. No accounts means 0.
func NetWorth(balances []int64) int64 {
	var total int64
	for _, b := range balances {
		total += b
	}
	return total
}

// FriendMax returns the largest per-friend balance, each floored at 0.
// No friends means 0.
func FriendMax(friendBalances []int64) int64 {
	var best int64
	for _, b := range friendBalances {
		if b > best {
			best = b
		}
	}
	return best
}

// CalculateBorrowAmount is the gap between myBalance and the richest friend,
// capped at that friend's balance. A friendMax of 0 stands for "no friend
// with money" and yields 0.
//
// A negative myBalance widens the gap up to the cap.
func CalculateBorrowAmount(myBalance, friendMax int64) int64 {
	if friendMax <= 0 {
		return 0
	}
	if myBalance >= friendMax {
		return 0
	}
	return min(friendMax, friendMax-myBalance)
}

// Borrowable composes the stage-3 computation from raw balances.
func Borrowable(ownBalances, friendBalances []int64) int64 {
	return CalculateBorrowAmount(NetWorth(ownBalances), FriendMax(friendBalances))
}

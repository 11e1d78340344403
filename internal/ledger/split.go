package ledger

// Split divides the raised pool 50/50: the winner takes the floor
// half, the odd millisatoshi stays with the creator. The two parts
// always sum to the input exactly.
func Split(totalRaised int64) (winnerAmount, creatorAmount int64) {
	winnerAmount = totalRaised / 2
	creatorAmount = totalRaised - winnerAmount
	return winnerAmount, creatorAmount
}

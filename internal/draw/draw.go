// Package draw generates and verifies the raffle's publicly auditable
// randomness.
//
// The seed is 32 bytes from a cryptographically secure source and is
// published verbatim in the Result record. The reduction from seed to
// winning ticket is deliberately non-cryptographic and frozen forever:
//
//	h = FNV-1a 64-bit over the UTF-8 bytes of the lowercase hex seed
//	winningTicket = 1 + (h mod totalTickets)
//
// Anyone holding a published Result can re-run the reduction and
// confirm the winner. Changing this algorithm would invalidate the
// verifiability of every past draw.
package draw

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

// SeedBytes is the entropy drawn per raffle: 256 bits.
const SeedBytes = 32

// ErrNoTickets marks a draw attempted with an empty ledger. This is a
// caller contract violation: a Result must never be published for it.
var ErrNoTickets = errors.New("draw requires at least one ticket")

// Drawing is the outcome of a single draw.
type Drawing struct {
	Seed          string
	WinningTicket int64
}

// Draw picks a winning ticket in [1, totalTickets] from fresh entropy.
func Draw(totalTickets int64) (Drawing, error) {
	if totalTickets < 1 {
		return Drawing{}, ErrNoTickets
	}

	seed := make([]byte, SeedBytes)
	if _, err := rand.Read(seed); err != nil {
		return Drawing{}, fmt.Errorf("seed entropy unavailable: %w", err)
	}

	seedHex := hex.EncodeToString(seed)
	return Drawing{
		Seed:          seedHex,
		WinningTicket: ReduceSeed(seedHex, totalTickets),
	}, nil
}

// ReduceSeed maps a published seed to its winning ticket. Exported so
// third parties re-verify draws from public data alone. The seed is
// normalized to lowercase before hashing; totalTickets must be >= 1.
func ReduceSeed(seedHex string, totalTickets int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(seedHex)))
	return 1 + int64(h.Sum64()%uint64(totalTickets))
}

// VerifyResult re-derives a published Result's winning ticket and
// split from its own fields, returning a descriptive error on the
// first mismatch.
func VerifyResult(r *protocol.Result) error {
	if r.TotalTickets < 1 {
		return ErrNoTickets
	}
	if expected := ReduceSeed(r.RandomSeed, r.TotalTickets); expected != r.WinningTicket {
		return fmt.Errorf("seed reduces to ticket %d, result claims %d", expected, r.WinningTicket)
	}
	if r.WinnerAmount != r.TotalRaised/2 {
		return fmt.Errorf("winner amount %d is not half of %d", r.WinnerAmount, r.TotalRaised)
	}
	if r.WinnerAmount+r.CreatorAmount != r.TotalRaised {
		return fmt.Errorf("split %d + %d does not cover %d", r.WinnerAmount, r.CreatorAmount, r.TotalRaised)
	}
	return nil
}

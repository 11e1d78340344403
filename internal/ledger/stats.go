// Package ledger folds validated raffle records into deterministic
// campaign state: aggregate totals, a reproducible purchase ordering,
// and the contiguous ticket assignment the draw operates on.
package ledger

import "github.com/ChadFarrow/5050-sub001/internal/protocol"

// CampaignStats is the derived view of one campaign's record set. It
// is recomputed on every query; nothing here is authoritative storage.
type CampaignStats struct {
	Campaign           protocol.Coordinate
	TotalRaised        int64
	TotalTickets       int64
	UniqueParticipants int

	// Purchases and Donations hold the surviving valid records in the
	// protocol's total order (created_at ascending, ties by id).
	Purchases []*protocol.TicketPurchase
	Donations []*protocol.Donation

	// Result is the authoritative draw outcome, nil until drawn.
	Result *protocol.Result
}

// TicketRange is a contiguous inclusive interval of ticket numbers
// owned by one purchase. Computed fresh, never stored.
type TicketRange struct {
	Purchase *protocol.TicketPurchase
	Start    int64
	End      int64
}

// Contains reports whether the ticket number falls inside the range.
func (r TicketRange) Contains(ticket int64) bool {
	return ticket >= r.Start && ticket <= r.End
}

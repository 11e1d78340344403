package ledger

import "sort"

// AssignTickets maps an ordered purchase list to contiguous 1-indexed
// ticket ranges: purchase i owns [counter, counter+tickets-1]. The
// result is a pure function of input order, so it inherits the
// aggregator's determinism. No gaps, no overlaps; the union is exactly
// [1, sum of ticket counts].
func AssignTickets(stats *CampaignStats) []TicketRange {
	ranges := make([]TicketRange, 0, len(stats.Purchases))
	counter := int64(1)
	for _, p := range stats.Purchases {
		ranges = append(ranges, TicketRange{
			Purchase: p,
			Start:    counter,
			End:      counter + p.TicketCount - 1,
		})
		counter += p.TicketCount
	}
	return ranges
}

// FindOwner locates the purchase owning a ticket number. Ranges are
// sorted and non-overlapping by construction, so a binary search on
// the end bound suffices.
func FindOwner(ranges []TicketRange, ticket int64) (TicketRange, bool) {
	i := sort.Search(len(ranges), func(i int) bool {
		return ranges[i].End >= ticket
	})
	if i < len(ranges) && ranges[i].Contains(ticket) {
		return ranges[i], true
	}
	return TicketRange{}, false
}

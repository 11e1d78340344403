package ledger

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/metrics"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

func markRejected(kind int) {
	metrics.RecordsRejected.WithLabelValues(strconv.Itoa(kind)).Inc()
}

// dedupAndOrder drops duplicate deliveries by id and applies the
// protocol's total order. Two observers holding the same set of events
// leave this function with identical slices, regardless of arrival
// order; everything downstream (ticket assignment, draw verification)
// leans on that.
func dedupAndOrder(events []protocol.Event) []*protocol.Event {
	seen := make(map[string]bool, len(events))
	ordered := make([]*protocol.Event, 0, len(events))
	for i := range events {
		ev := &events[i]
		if ev.ID == "" || seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		ordered = append(ordered, ev)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return protocol.Less(ordered[i], ordered[j])
	})
	return ordered
}

// Aggregate computes the derived stats of one campaign from raw event
// batches. Invalid records are skipped, never fatal: a campaign with
// zero valid purchases yields zero stats and a nil result.
func Aggregate(campaign protocol.Coordinate, purchases, donations, resultCandidates []protocol.Event) CampaignStats {
	stats := CampaignStats{Campaign: campaign}
	participants := make(map[string]bool)

	for _, ev := range dedupAndOrder(purchases) {
		p, err := protocol.ParseTicketPurchase(ev)
		if err != nil {
			logger.Debug("aggregate: invalid ticket purchase... skip", zap.String("id", ev.ID), zap.Error(err))
			markRejected(ev.Kind)
			continue
		}
		if p.Campaign != campaign {
			logger.Debug("aggregate: purchase references another campaign... skip", zap.String("id", ev.ID))
			continue
		}
		stats.Purchases = append(stats.Purchases, p)
		stats.TotalRaised += p.AmountPaid
		stats.TotalTickets += p.TicketCount
		participants[p.Buyer] = true
	}

	for _, ev := range dedupAndOrder(donations) {
		d, err := protocol.ParseDonation(ev)
		if err != nil {
			logger.Debug("aggregate: invalid donation... skip", zap.String("id", ev.ID), zap.Error(err))
			markRejected(ev.Kind)
			continue
		}
		if d.Campaign != campaign {
			logger.Debug("aggregate: donation references another campaign... skip", zap.String("id", ev.ID))
			continue
		}
		stats.Donations = append(stats.Donations, d)
		stats.TotalRaised += d.AmountPaid
		participants[d.Donor] = true
	}

	stats.UniqueParticipants = len(participants)
	stats.Result = selectResult(campaign, resultCandidates)
	return stats
}

// selectResult picks the authoritative Result among candidates. The
// identity (creator, dTag) is unique, so normally at most one record
// validates; when a publishing race produced several, the latest
// created_at wins, ties going to the lexicographically larger id. The
// losing draw is superseded, not corrupted.
func selectResult(campaign protocol.Coordinate, candidates []protocol.Event) *protocol.Result {
	var chosen *protocol.Result
	for _, ev := range dedupAndOrder(candidates) {
		r, err := protocol.ParseResult(ev)
		if err != nil {
			logger.Debug("aggregate: invalid result... skip", zap.String("id", ev.ID), zap.Error(err))
			markRejected(ev.Kind)
			continue
		}
		if r.CreatorPubkey != campaign.Pubkey || r.DTag != campaign.DTag {
			logger.Debug("aggregate: result references another campaign... skip", zap.String("id", ev.ID))
			continue
		}
		if chosen == nil ||
			r.CreatedAt > chosen.CreatedAt ||
			(r.CreatedAt == chosen.CreatedAt && r.ID > chosen.ID) {
			chosen = r
		}
	}
	return chosen
}

// ResolveCampaign picks the current campaign record among amendments
// of the same (creator, dTag): last write wins by created_at, ties by
// id. A deletion amendment is honored only while no valid purchase
// references the campaign; once tickets have been sold the deletion is
// ignored and the latest surviving declaration stays in force.
func ResolveCampaign(campaign protocol.Coordinate, candidates []protocol.Event, purchaseCount int) *protocol.Campaign {
	var versions []*protocol.Campaign
	for _, ev := range dedupAndOrder(candidates) {
		c, err := protocol.ParseCampaign(ev)
		if err != nil {
			logger.Debug("resolve campaign: invalid record... skip", zap.String("id", ev.ID), zap.Error(err))
			markRejected(ev.Kind)
			continue
		}
		if c.CreatorPubkey != campaign.Pubkey || c.DTag != campaign.DTag {
			continue
		}
		versions = append(versions, c)
	}
	if len(versions) == 0 {
		return nil
	}

	// dedupAndOrder sorted ascending, so the last version wins.
	latest := versions[len(versions)-1]
	if !latest.IsDeletion() {
		return latest
	}
	if purchaseCount == 0 {
		return latest
	}

	logger.Warn("resolve campaign: deletion refused, purchases exist",
		zap.String("campaign", campaign.String()), zap.Int("purchases", purchaseCount))
	for i := len(versions) - 1; i >= 0; i-- {
		if !versions[i].IsDeletion() {
			return versions[i]
		}
	}
	return nil
}

// SelectClaim picks the authoritative prize claim for a result: only
// claims by the recorded winner referencing this result count, and the
// claimant's most recent one wins.
func SelectClaim(result *protocol.Result, candidates []protocol.Event) *protocol.PrizeClaim {
	if result == nil {
		return nil
	}
	var chosen *protocol.PrizeClaim
	for _, ev := range dedupAndOrder(candidates) {
		c, err := protocol.ParsePrizeClaim(ev)
		if err != nil {
			logger.Debug("select claim: invalid record... skip", zap.String("id", ev.ID), zap.Error(err))
			markRejected(ev.Kind)
			continue
		}
		if c.ResultID != result.ID || c.Claimant != result.WinnerPubkey {
			continue
		}
		if chosen == nil ||
			c.CreatedAt > chosen.CreatedAt ||
			(c.CreatedAt == chosen.CreatedAt && c.ID > chosen.ID) {
			chosen = c
		}
	}
	return chosen
}

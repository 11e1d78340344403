package tracker

import (
	"time"

	"github.com/ChadFarrow/5050-sub001/internal/ledger"
	"github.com/ChadFarrow/5050-sub001/internal/lifecycle"
	"github.com/ChadFarrow/5050-sub001/internal/metrics"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

// Snapshot is one campaign's fully derived view at a point in time.
type Snapshot struct {
	Coordinate protocol.Coordinate
	Campaign   *protocol.Campaign
	Stats      ledger.CampaignStats
	Claim      *protocol.PrizeClaim
	State      lifecycle.State
}

// LoadSnapshot recomputes a campaign's derived state from the cached
// record set (plus unconfirmed local records). Always a fresh
// computation: the cache stores records, never conclusions.
func (t *Tracker) LoadSnapshot(coord protocol.Coordinate) (*Snapshot, error) {
	started := time.Now()

	campaignEvents, err := t.loadCached(coord, protocol.KindCampaign)
	if err != nil {
		return nil, err
	}
	purchases, err := t.loadCached(coord, protocol.KindTicketPurchase)
	if err != nil {
		return nil, err
	}
	donations, err := t.loadCached(coord, protocol.KindDonation)
	if err != nil {
		return nil, err
	}
	results, err := t.loadCached(coord, protocol.KindResult)
	if err != nil {
		return nil, err
	}
	claims, err := t.loadCached(coord, protocol.KindPrizeClaim)
	if err != nil {
		return nil, err
	}

	stats := ledger.Aggregate(coord, purchases, donations, results)
	campaign := ledger.ResolveCampaign(coord, campaignEvents, len(stats.Purchases))
	claim := ledger.SelectClaim(stats.Result, claims)

	metrics.AggregateDuration.Observe(time.Since(started).Seconds())

	return &Snapshot{
		Coordinate: coord,
		Campaign:   campaign,
		Stats:      stats,
		Claim:      claim,
		State:      lifecycle.Derive(campaign, stats.Result, claim, time.Now()),
	}, nil
}

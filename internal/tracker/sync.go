package tracker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
	"github.com/ChadFarrow/5050-sub001/internal/relay"
	"github.com/ChadFarrow/5050-sub001/internal/storage"
)

// syncCreator mirrors one creator's campaigns and all their dependent
// records, then processes each campaign snapshot.
func (t *Tracker) syncCreator(creator string) error {
	logger.Debug("collecting campaigns...", zap.String("creator", creator))

	ctx, cancel := context.WithTimeout(t.ctx, t.relayTimeout())
	campaigns := relay.Gather(ctx, t.cfg.Relay.URLs, relay.Filter{
		Kinds:   []int{protocol.KindCampaign},
		Authors: []string{creator},
		Limit:   t.cfg.Relay.QueryLimit,
	})
	cancel()

	if err := t.cacheEvents(campaigns); err != nil {
		return err
	}

	// one coordinate per dTag; amendments collapse later during resolution
	coords := make(map[string]protocol.Coordinate)
	for i := range campaigns {
		if d, ok := campaigns[i].TagValue(protocol.TagD); ok && d != "" {
			coord := protocol.CampaignCoordinate(creator, d)
			coords[coord.String()] = coord
		}
	}

	// campaigns already cached keep syncing even when the relays
	// return nothing this pass
	cached, err := t.storage.GetEventsByAuthor(protocol.KindCampaign, creator)
	if err != nil {
		return err
	}
	for _, record := range cached {
		if record.DTag != "" {
			coord := protocol.CampaignCoordinate(creator, record.DTag)
			coords[coord.String()] = coord
		}
	}

	logger.Debug("collecting campaigns... done",
		zap.String("creator", creator), zap.Int("campaigns", len(coords)))

	for _, coord := range coords {
		if err := t.syncCampaign(coord); err != nil {
			logger.Error("campaign sync failed", zap.String("campaign", coord.String()), zap.Error(err))
			continue
		}
	}
	return nil
}

// syncCampaign refreshes one campaign's dependent records and acts on
// the resulting snapshot.
func (t *Tracker) syncCampaign(coord protocol.Coordinate) error {
	logger.Debug("synchronizing campaign...", zap.String("campaign", coord.String()))

	ctx, cancel := context.WithTimeout(t.ctx, t.relayTimeout())
	defer cancel()

	// the cache already holds everything before the cursor; the hour of
	// overlap absorbs late deliveries and clock skew
	lastSynced, err := t.storage.GetCampaignCursor(coord.String())
	if err != nil {
		return err
	}
	var since int64
	if lastSynced > 0 {
		since = lastSynced - int64(time.Hour.Seconds())
	}

	dependents := relay.Gather(ctx, t.cfg.Relay.URLs, relay.Filter{
		Kinds: []int{
			protocol.KindTicketPurchase,
			protocol.KindDonation,
			protocol.KindPrizeClaim,
		},
		Coordinates: []string{coord.String()},
		Since:       since,
		Limit:       t.cfg.Relay.QueryLimit,
	})
	results := relay.Gather(ctx, t.cfg.Relay.URLs, relay.Filter{
		Kinds:   []int{protocol.KindResult},
		Authors: []string{coord.Pubkey},
		DTags:   []string{coord.DTag},
		Since:   since,
	})

	if err := t.cacheEvents(append(dependents, results...)); err != nil {
		return err
	}

	snapshot, err := t.LoadSnapshot(coord)
	if err != nil {
		return err
	}

	logger.Debug("synchronizing campaign... done",
		zap.String("campaign", coord.String()),
		zap.String("state", string(snapshot.State)),
		zap.Int64("tickets", snapshot.Stats.TotalTickets),
		zap.Int64("raised", snapshot.Stats.TotalRaised))

	if t.signer != nil && t.signer.Pubkey() == coord.Pubkey {
		t.maybeAutoDraw(snapshot)
		t.maybeConfirmPayout(snapshot)
	}

	return t.storage.UpdateCampaignCursor(&storage.CampaignCursor{
		Coordinate:   coord.String(),
		LastSyncedAt: time.Now().Unix(),
	})
}

func (t *Tracker) cacheEvents(events []protocol.Event) error {
	records := make([]*storage.EventRecord, 0, len(events))
	for i := range events {
		record, err := storage.NewEventRecord(&events[i])
		if err != nil {
			logger.Debug("unencodable event... skip", zap.String("id", events[i].ID), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return t.storage.UpsertEvents(records)
}

// loadCached returns the cached events of one kind for a coordinate,
// merged with matching unconfirmed local records.
func (t *Tracker) loadCached(coord protocol.Coordinate, kind int) ([]protocol.Event, error) {
	records, err := t.storage.GetEventsByCoordinate(coord.String(), kind)
	if err != nil {
		return nil, err
	}

	events := make([]protocol.Event, 0, len(records))
	for _, record := range records {
		ev, err := record.Event()
		if err != nil {
			logger.Debug("undecodable cached event... skip", zap.String("id", record.ID), zap.Error(err))
			continue
		}
		events = append(events, *ev)
	}
	return t.pending.Merge(events, kind), nil
}

package tracker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/draw"
	"github.com/ChadFarrow/5050-sub001/internal/ledger"
	"github.com/ChadFarrow/5050-sub001/internal/lifecycle"
	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/metrics"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
	"github.com/ChadFarrow/5050-sub001/internal/relay"
	"github.com/ChadFarrow/5050-sub001/internal/storage"
)

// maybeAutoDraw draws a campaign that has passed its end date with no
// result yet. The snapshot is the draw-time ledger: totals and ticket
// assignment are taken from it once and published, never from a
// live-updating view.
func (t *Tracker) maybeAutoDraw(snapshot *Snapshot) {

	if !lifecycle.ReadyForAutoDraw(snapshot.Campaign, snapshot.Stats.Result, time.Now()) {
		return
	}

	coordinate := snapshot.Coordinate.String()
	if snapshot.Stats.TotalTickets < 1 {
		// caller contract: a zero-ticket campaign must never produce a
		// Result, so this stays a blocking error until tickets appear
		logger.Error("auto draw blocked: no tickets sold", zap.String("campaign", coordinate))
		metrics.DrawsPerformed.WithLabelValues("failed").Inc()
		return
	}

	logger.Info("auto draw starting",
		zap.String("campaign", coordinate),
		zap.Int64("tickets", snapshot.Stats.TotalTickets),
		zap.Int64("raised", snapshot.Stats.TotalRaised))

	drawing, err := draw.Draw(snapshot.Stats.TotalTickets)
	if err != nil {
		logger.Error("auto draw failed", zap.String("campaign", coordinate), zap.Error(err))
		metrics.DrawsPerformed.WithLabelValues("failed").Inc()
		return
	}

	ranges := ledger.AssignTickets(&snapshot.Stats)
	owner, ok := ledger.FindOwner(ranges, drawing.WinningTicket)
	if !ok {
		// unreachable while the assigner covers [1, totalTickets]
		logger.Error("auto draw failed: winning ticket has no owner",
			zap.String("campaign", coordinate), zap.Int64("ticket", drawing.WinningTicket))
		metrics.DrawsPerformed.WithLabelValues("failed").Inc()
		return
	}

	winnerAmount, creatorAmount := ledger.Split(snapshot.Stats.TotalRaised)
	result := &protocol.Result{
		DTag:          snapshot.Coordinate.DTag,
		WinnerPubkey:  owner.Purchase.Buyer,
		WinningTicket: drawing.WinningTicket,
		TotalRaised:   snapshot.Stats.TotalRaised,
		WinnerAmount:  winnerAmount,
		CreatorAmount: creatorAmount,
		TotalTickets:  snapshot.Stats.TotalTickets,
		RandomSeed:    drawing.Seed,
	}

	ev := protocol.BuildResultEvent(result)
	if err := t.signer.Sign(ev); err != nil {
		logger.Error("cannot sign result", zap.String("campaign", coordinate), zap.Error(err))
		metrics.DrawsPerformed.WithLabelValues("failed").Inc()
		return
	}

	if err := t.publish(ev); err != nil {
		logger.Error("cannot publish result", zap.String("campaign", coordinate), zap.Error(err))
		metrics.DrawsPerformed.WithLabelValues("failed").Inc()
		return
	}

	outcome := t.confirmResult(snapshot.Coordinate, ev.ID)
	metrics.DrawsPerformed.WithLabelValues(outcome).Inc()

	logger.Info("auto draw done",
		zap.String("campaign", coordinate),
		zap.String("outcome", outcome),
		zap.Int64("winning_ticket", drawing.WinningTicket),
		zap.String("winner", owner.Purchase.Buyer),
		zap.String("seed", drawing.Seed))
}

// confirmResult re-reads the result stream after publishing. When two
// draw attempts raced, the ledger's resolution rule picks one winner
// record deterministically; a losing oracle treats its own submission
// as superseded and must not retry-publish.
func (t *Tracker) confirmResult(coord protocol.Coordinate, publishedID string) string {
	ctx, cancel := context.WithTimeout(t.ctx, t.relayTimeout())
	defer cancel()

	candidates := relay.Gather(ctx, t.cfg.Relay.URLs, relay.Filter{
		Kinds:   []int{protocol.KindResult},
		Authors: []string{coord.Pubkey},
		DTags:   []string{coord.DTag},
	})
	if err := t.cacheEvents(candidates); err != nil {
		logger.Warn("cannot cache result candidates", zap.Error(err))
	}

	stats := ledger.Aggregate(coord, nil, nil, candidates)
	if stats.Result == nil {
		// not echoed back yet; the pending set carries it meanwhile
		return "published"
	}
	if stats.Result.ID != publishedID {
		logger.Warn("own result superseded by concurrent draw",
			zap.String("campaign", coord.String()),
			zap.String("published", publishedID),
			zap.String("authoritative", stats.Result.ID))
		return "superseded"
	}
	return "published"
}

// maybeConfirmPayout publishes the payout_confirmed amendment once the
// operator has marked a claimed result as paid. Drawing fields are
// carried over untouched: amendments only ever add completion
// metadata.
func (t *Tracker) maybeConfirmPayout(snapshot *Snapshot) {

	if snapshot.State != lifecycle.StateDrawnClaimedUnpaid || snapshot.Stats.Result == nil {
		return
	}

	note, err := t.storage.GetPayoutNote(snapshot.Stats.Result.ID)
	if err != nil {
		logger.Warn("cannot read payout note", zap.Error(err))
		return
	}
	if note == nil {
		return
	}

	amended := *snapshot.Stats.Result
	amended.PayoutConfirmed = note.PaidAt
	amended.CreatedAt = time.Now().Unix()

	ev := protocol.BuildResultEvent(&amended)
	if err := t.signer.Sign(ev); err != nil {
		logger.Error("cannot sign payout amendment", zap.Error(err))
		return
	}
	if err := t.publish(ev); err != nil {
		logger.Error("cannot publish payout amendment", zap.Error(err))
		return
	}

	logger.Info("payout confirmed",
		zap.String("campaign", snapshot.Coordinate.String()),
		zap.String("result", snapshot.Stats.Result.ID))
}

// publish sends a signed event to all relays and journals it in the
// pending set until some relay echoes it back.
func (t *Tracker) publish(ev *protocol.Event) error {
	ctx, cancel := context.WithTimeout(t.ctx, t.relayTimeout())
	defer cancel()

	if err := relay.PublishAll(ctx, t.cfg.Relay.URLs, ev); err != nil {
		return err
	}

	t.pending.Add(*ev)
	record, err := storage.NewEventRecord(ev)
	if err == nil {
		if err := t.storage.UpsertPending(&storage.PendingRecord{
			ID:         ev.ID,
			Coordinate: record.Coordinate,
			Kind:       ev.Kind,
			Raw:        record.Raw,
			AddedAt:    time.Now().Unix(),
		}); err != nil {
			logger.Warn("cannot journal pending record", zap.Error(err))
		}
		if err := t.storage.UpsertEvents([]*storage.EventRecord{record}); err != nil {
			logger.Warn("cannot cache own record", zap.Error(err))
		}
	}
	metrics.PendingRecords.Set(float64(t.pending.Len()))
	return nil
}

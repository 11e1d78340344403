// Package tracker is the oracle's main loop: it mirrors raffle records
// from the relays into the local cache, recomputes campaign snapshots,
// performs due automatic draws, and publishes payout confirmations.
package tracker

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/config"
	"github.com/ChadFarrow/5050-sub001/internal/ledger"
	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/metrics"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
	"github.com/ChadFarrow/5050-sub001/internal/storage"
)

type Tracker struct {
	ctx     context.Context
	cfg     *config.Config
	storage storage.Storage
	signer  *protocol.Signer
	pending *ledger.PendingSet
}

func NewTracker(ctx context.Context, cfg *config.Config, store storage.Storage) *Tracker {

	var signer *protocol.Signer
	if cfg.Oracle.SecretKey != "" {
		var err error
		signer, err = protocol.NewSigner(cfg.Oracle.SecretKey)
		if err != nil {
			panic(err)
		}
	}

	t := &Tracker{
		ctx:     ctx,
		cfg:     cfg,
		storage: store,
		signer:  signer,
		pending: ledger.NewPendingSet(time.Duration(cfg.Oracle.PendingTTLHours) * time.Hour),
	}

	t.hydratePending()
	return t
}

// VerifyOracleIdentity sanity-checks the configured identities before
// the first sync pass.
func (t *Tracker) VerifyOracleIdentity() error {
	for _, creator := range t.creators() {
		if raw, err := hex.DecodeString(creator); err != nil || len(raw) != 32 {
			return fmt.Errorf("creator pubkey %q is not 32 hex-encoded bytes", creator)
		}
	}
	if len(t.creators()) == 0 {
		return errors.New("no creators configured and no oracle key set")
	}
	return nil
}

// creators returns the watched creator pubkeys; the oracle's own key
// is always included.
func (t *Tracker) creators() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range t.cfg.Oracle.Creators {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if t.signer != nil && !seen[t.signer.Pubkey()] {
		out = append(out, t.signer.Pubkey())
	}
	return out
}

func (t *Tracker) relayTimeout() time.Duration {
	return time.Duration(t.cfg.Relay.TimeoutSeconds) * time.Second
}

// Run executes one full sync pass over every watched creator.
func (t *Tracker) Run() {

	logger.Info("sync pass starting", zap.Int("creators", len(t.creators())))

	for _, creator := range t.creators() {
		if err := t.syncCreator(creator); err != nil {
			logger.Error("creator sync failed", zap.String("creator", creator), zap.Error(err))
		}
	}

	t.reconcilePending()
	logger.Info("sync pass done")
}

func (t *Tracker) hydratePending() {
	records, err := t.storage.GetPendingRecords()
	if err != nil {
		logger.Warn("cannot hydrate pending records", zap.Error(err))
		return
	}

	for _, record := range records {
		ev, err := record.Event()
		if err != nil {
			logger.Debug("undecodable pending record... skip", zap.String("id", record.ID), zap.Error(err))
			continue
		}
		t.pending.Add(*ev)
	}
	metrics.PendingRecords.Set(float64(t.pending.Len()))
}

// reconcilePending drops pending rows that the relays have confirmed
// into the cache and expires entries past the TTL.
func (t *Tracker) reconcilePending() {
	records, err := t.storage.GetPendingRecords()
	if err != nil {
		logger.Warn("cannot load pending records", zap.Error(err))
		return
	}

	var confirmed []string
	for _, record := range records {
		cached, err := t.storage.GetEventsByCoordinate(record.Coordinate, record.Kind)
		if err != nil {
			continue
		}
		for _, c := range cached {
			if c.ID == record.ID {
				confirmed = append(confirmed, record.ID)
				break
			}
		}
	}

	if err := t.storage.DeletePendingRecords(confirmed); err != nil {
		logger.Warn("cannot delete confirmed pending records", zap.Error(err))
	}

	ttl := time.Duration(t.cfg.Oracle.PendingTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = ledger.DefaultPendingTTL
	}
	if err := t.storage.ExpirePendingRecords(time.Now().Add(-ttl).Unix()); err != nil {
		logger.Warn("cannot expire pending records", zap.Error(err))
	}

	metrics.PendingRecords.Set(float64(t.pending.Len()))
}

func (t *Tracker) Finalize() {
	logger.Info("tracker stopped")
}

package storage

import (
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

// EventRecord is one observed event, raw JSON preserved so the cache
// can reproduce the exact record set the relays served.
type EventRecord struct {
	ID         string `gorm:"primaryKey"`
	Kind       int    `gorm:"index:idx_kind_pubkey"`
	Pubkey     string `gorm:"index:idx_kind_pubkey"`
	CreatedAt  int64  `gorm:"not null"`
	Coordinate string `gorm:"index"`
	DTag       string `gorm:"index"`
	Raw        string `gorm:"not null"`
}

// Event decodes the cached raw JSON back into the wire shape.
func (r *EventRecord) Event() (*protocol.Event, error) {
	return protocol.Unmarshal([]byte(r.Raw))
}

// NewEventRecord derives the cache row for an event, extracting the
// coordinate (own for addressable kinds, referenced for dependents) as
// the query key.
func NewEventRecord(ev *protocol.Event) (*EventRecord, error) {
	raw, err := ev.Marshal()
	if err != nil {
		return nil, err
	}

	record := &EventRecord{
		ID:        ev.ID,
		Kind:      ev.Kind,
		Pubkey:    ev.Pubkey,
		CreatedAt: ev.CreatedAt,
		Raw:       string(raw),
	}

	switch ev.Kind {
	case protocol.KindCampaign, protocol.KindResult:
		// results key on the campaign coordinate of their own author, so
		// a creator's draw lands next to the campaign it settles
		if d, ok := ev.TagValue(protocol.TagD); ok {
			record.DTag = d
			record.Coordinate = protocol.CampaignCoordinate(ev.Pubkey, d).String()
		}
	default:
		if a, ok := ev.TagValue(protocol.TagCoordinate); ok {
			record.Coordinate = a
		}
	}
	return record, nil
}

// CampaignCursor remembers when a campaign was last synchronized.
type CampaignCursor struct {
	Coordinate   string `gorm:"primaryKey"`
	LastSyncedAt int64  `gorm:"not null"`
}

// PendingRecord is a locally published event awaiting relay
// confirmation. Expired by AddedAt after the configured TTL.
type PendingRecord struct {
	ID         string `gorm:"primaryKey"`
	Coordinate string `gorm:"index"`
	Kind       int    `gorm:"not null"`
	Raw        string `gorm:"not null"`
	AddedAt    int64  `gorm:"not null"`
}

// Event decodes the pending raw JSON.
func (r *PendingRecord) Event() (*protocol.Event, error) {
	return protocol.Unmarshal([]byte(r.Raw))
}

// PayoutNote records that the operator paid a winner out-of-band, so
// the next sync pass publishes the payout_confirmed amendment.
type PayoutNote struct {
	ResultID string `gorm:"primaryKey"`
	PaidAt   int64  `gorm:"not null"`
	Preimage string
}

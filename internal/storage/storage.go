package storage

// Storage caches observed events and the oracle's bookkeeping between
// sync passes. It is an optimization and a local journal only: the
// tracker always recomputes campaign state from the full record set,
// so losing this database never corrupts a raffle.
type Storage interface {
	// observed events
	UpsertEvents(events []*EventRecord) error
	GetEventsByCoordinate(coordinate string, kind int) ([]*EventRecord, error)
	GetEventsByAuthor(kind int, author string) ([]*EventRecord, error)

	// per-campaign sync cursor
	GetCampaignCursor(coordinate string) (int64, error)
	UpdateCampaignCursor(cursor *CampaignCursor) error

	// locally published, unconfirmed records
	UpsertPending(record *PendingRecord) error
	GetPendingRecords() ([]*PendingRecord, error)
	DeletePendingRecords(ids []string) error
	ExpirePendingRecords(before int64) error

	// payouts the operator marked as executed out-of-band
	MarkPayoutSent(note *PayoutNote) error
	GetPayoutNote(resultID string) (*PayoutNote, error)
}

package storage

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ChadFarrow/5050-sub001/internal/logger"
)

type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) *SqliteStorage {

	logger.Debug("initializing database...", zap.String("path", path))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		&EventRecord{},
		&CampaignCursor{},
		&PendingRecord{},
		&PayoutNote{},
	)

	if err != nil {
		panic(err)
	}

	return &SqliteStorage{
		db: db,
	}
}

func (s *SqliteStorage) UpsertEvents(events []*EventRecord) error {
	logger.Debug("persisting observed events...")

	if len(events) == 0 {
		logger.Debug("no observed events to persist")
		return nil
	}

	// records are immutable and content-addressed, so a duplicate id is
	// always the same record
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).CreateInBatches(events, 100).Error

	if err != nil {
		return err
	}

	logger.Debug("persisting observed events... done", zap.Int("count", len(events)))
	return nil
}

func (s *SqliteStorage) GetEventsByCoordinate(coordinate string, kind int) ([]*EventRecord, error) {

	var records []*EventRecord
	err := s.db.Where("coordinate = ? and kind = ?", coordinate, kind).Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) GetEventsByAuthor(kind int, author string) ([]*EventRecord, error) {

	var records []*EventRecord
	err := s.db.Where("kind = ? and pubkey = ?", kind, author).Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) GetCampaignCursor(coordinate string) (int64, error) {
	logger.Debug("getting campaign cursor...", zap.String("coordinate", coordinate))

	var lastSyncedAt int64
	err := s.db.Raw(`
		select coalesce(max(last_synced_at), 0) as last_synced_at
		from campaign_cursors
		where coordinate = ?
	`, coordinate).Scan(&lastSyncedAt).Error

	if err != nil {
		return 0, err
	}

	logger.Debug("getting campaign cursor... done", zap.Int64("lastSyncedAt", lastSyncedAt))
	return lastSyncedAt, nil
}

func (s *SqliteStorage) UpdateCampaignCursor(cursor *CampaignCursor) error {
	logger.Debug("updating campaign cursor...")

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coordinate"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_synced_at"}),
	}).Create(&cursor).Error

	if err != nil {
		return err
	}

	logger.Debug("updating campaign cursor... done")
	return nil
}

func (s *SqliteStorage) UpsertPending(record *PendingRecord) error {
	logger.Debug("persisting pending record...", zap.String("id", record.ID))

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&record).Error

	if err != nil {
		return err
	}

	logger.Debug("persisting pending record... done")
	return nil
}

func (s *SqliteStorage) GetPendingRecords() ([]*PendingRecord, error) {

	var records []*PendingRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) DeletePendingRecords(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return s.db.Where("id in ?", ids).Delete(&PendingRecord{}).Error
}

func (s *SqliteStorage) ExpirePendingRecords(before int64) error {
	logger.Debug("expiring stale pending records...", zap.Int64("before", before))

	return s.db.Where("added_at < ?", before).Delete(&PendingRecord{}).Error
}

func (s *SqliteStorage) MarkPayoutSent(note *PayoutNote) error {
	logger.Debug("marking payout sent...", zap.String("result", note.ResultID))

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "result_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"paid_at", "preimage"}),
	}).Create(&note).Error

	if err != nil {
		return err
	}

	return nil
}

func (s *SqliteStorage) GetPayoutNote(resultID string) (*PayoutNote, error) {

	var note PayoutNote
	err := s.db.Where("result_id = ?", resultID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &note, nil
}

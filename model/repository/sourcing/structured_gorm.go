package sourcing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sourcing.GO/core/errs"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// GormStructuredStore persists sourcing records as JSON documents in the
// sourcing_record table, one row per work-order key.
type GormStructuredStore struct {
	db *gorm.DB
}

func NewGormStructuredStore(db *gorm.DB) *GormStructuredStore {
	return &GormStructuredStore{db: db}
}

func (s *GormStructuredStore) Put(ctx context.Context, key string, rec *sourcingEntity.SourcingRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	row := sourcingEntity.RecordRow{WorkOrderKey: key, Data: data}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "work_order_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *GormStructuredStore) Get(ctx context.Context, key string) (*sourcingEntity.SourcingRecord, error) {
	var row sourcingEntity.RecordRow
	err := s.db.WithContext(ctx).Where("work_order_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec sourcingEntity.SourcingRecord
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return &rec, nil
}

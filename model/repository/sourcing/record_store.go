package sourcing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"sourcing.GO/core/errs"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// RecordStore is the dual-tier sourcing record store: a structured
// per-key document tier (source of truth) plus a flat snapshot mirror
// kept eventually consistent. The mirror may be nil when redis is not
// configured; mirror writes are then skipped.
type RecordStore struct {
	db         *gorm.DB
	structured StructuredStore
	mirror     MirrorStore

	initOnce sync.Once
	ready    chan struct{}
	initErr  error
}

func NewRecordStore(db *gorm.DB, structured StructuredStore, mirror MirrorStore) *RecordStore {
	return &RecordStore{
		db:         db,
		structured: structured,
		mirror:     mirror,
		ready:      make(chan struct{}),
	}
}

// Init performs schema setup for the structured tier. Idempotent and safe
// to call from multiple goroutines; Save/Load wait for the first call to
// finish rather than racing it.
func (s *RecordStore) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.db.WithContext(ctx).AutoMigrate(&sourcingEntity.RecordRow{})
		close(s.ready)
	})
	<-s.ready
	return s.initErr
}

func (s *RecordStore) awaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Save upserts the record in the structured store and refreshes the
// embedded copy inside the mirror document, when one exists for the key.
// A structured-tier failure is fatal; a mirror failure is logged and the
// tiers stay transiently inconsistent until the next successful save.
func (s *RecordStore) Save(ctx context.Context, key string, rec *sourcingEntity.SourcingRecord) error {
	if err := s.awaitReady(ctx); err != nil {
		return err
	}
	if err := s.structured.Put(ctx, key, rec); err != nil {
		return &errs.StorageWriteError{Tier: "structured", Err: err}
	}
	s.updateMirror(ctx, key, rec)
	return nil
}

func (s *RecordStore) updateMirror(ctx context.Context, key string, rec *sourcingEntity.SourcingRecord) {
	if s.mirror == nil {
		return
	}
	doc, err := s.mirror.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		// The workflow system creates mirror entries; nothing to refresh.
		return
	}
	if err != nil {
		log.Printf("mirror read for %s failed: %v", key, err)
		return
	}
	embedded, err := recordToMap(rec)
	if err != nil {
		log.Printf("mirror encode for %s failed: %v", key, err)
		return
	}
	doc.Sourcing = embedded
	doc.Started = true
	doc.UpdatedAt = time.Now()
	if err := s.mirror.Put(ctx, doc); err != nil {
		log.Printf("mirror write for %s failed: %v", key, err)
	}
}

// Load reads the record from the structured store, falling back to the
// mirror's embedded copy for records written before the structured tier
// existed. Fallback hits are NOT re-saved here; migration happens on the
// next mutation-driven save, or explicitly via the sourcing:migrate
// command.
func (s *RecordStore) Load(ctx context.Context, key string) (*sourcingEntity.SourcingRecord, error) {
	if err := s.awaitReady(ctx); err != nil {
		return nil, err
	}
	rec, err := s.structured.Get(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	return s.loadFromMirror(ctx, key)
}

func (s *RecordStore) loadFromMirror(ctx context.Context, key string) (*sourcingEntity.SourcingRecord, error) {
	if s.mirror == nil {
		return nil, errs.ErrNotFound
	}
	doc, err := s.mirror.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if doc.Sourcing == nil {
		return nil, errs.ErrNotFound
	}
	rec, err := DecodeEmbeddedRecord(doc.Sourcing)
	if err != nil {
		return nil, fmt.Errorf("decode embedded record %s: %w", key, err)
	}
	if rec.WorkOrderKey == "" {
		rec.WorkOrderKey = key
	}
	return rec, nil
}

// MarkComplete flags the mirror document as completed, signaling hand-off
// to the downstream workflow stage. Unlike routine mirror refreshes this
// is a user-facing action, so failures are surfaced.
func (s *RecordStore) MarkComplete(ctx context.Context, key string) error {
	if err := s.awaitReady(ctx); err != nil {
		return err
	}
	if s.mirror == nil {
		return nil
	}
	doc, err := s.mirror.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &errs.StorageWriteError{Tier: "mirror", Err: err}
	}
	doc.Completed = true
	doc.Status = "sourcing-complete"
	doc.UpdatedAt = time.Now()
	if err := s.mirror.Put(ctx, doc); err != nil {
		return &errs.StorageWriteError{Tier: "mirror", Err: err}
	}
	return nil
}

// Mirror exposes the snapshot tier for bulk reads (export, migration sweep).
func (s *RecordStore) Mirror() MirrorStore { return s.mirror }

// DecodeEmbeddedRecord decodes a mirror-embedded sourcing copy. Legacy
// documents carry numbers as strings and vice versa, so decoding is
// weakly typed.
func DecodeEmbeddedRecord(m map[string]interface{}) (*sourcingEntity.SourcingRecord, error) {
	var rec sourcingEntity.SourcingRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	return &rec, nil
}

func recordToMap(rec *sourcingEntity.SourcingRecord) (map[string]interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

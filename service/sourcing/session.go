package sourcing

import (
	"context"
	"errors"
	"sync"

	"sourcing.GO/core/errs"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
	sourcingRepo "sourcing.GO/model/repository/sourcing"
)

// Session is the single active editing session for one work-order key.
// It owns the in-memory working copy, applies mutations, keeps derived
// totals current and drives persistence through its coordinator. Every
// mutator returns the updated record for the caller to render; there is
// no subscription mechanism.
type Session struct {
	key   string
	store *sourcingRepo.RecordStore
	coord *Coordinator

	mu  sync.Mutex
	rec *sourcingEntity.SourcingRecord
}

// Open loads the record for a key, seeding a fresh one on first access,
// and starts the autosave timer. A record loaded from the mirror
// fallback is migrated into the structured store by the first save.
func Open(ctx context.Context, key string, store *sourcingRepo.RecordStore, sched Scheduler) (*Session, error) {
	rec, err := store.Load(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		rec = NewRecord(key)
	} else if err != nil {
		return nil, err
	}
	if len(rec.Vendors) == 0 {
		return nil, errs.ErrMalformedRecord
	}
	for i := range rec.Vendors {
		Recompute(&rec.Vendors[i])
	}

	s := &Session{key: key, store: store, rec: rec}
	s.coord = NewCoordinator(store, s.snapshot, sched)
	s.coord.Enable()
	return s, nil
}

// Close stops the autosave timer. The working copy stays readable.
func (s *Session) Close() {
	s.coord.Disable()
}

func (s *Session) Key() string { return s.key }

// Record returns the live working copy.
func (s *Session) Record() *sourcingEntity.SourcingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

func (s *Session) snapshot() (string, *sourcingEntity.SourcingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.rec.Clone()
}

func (s *Session) mutate(fn func(*sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error)) (*sourcingEntity.SourcingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.rec)
}

func (s *Session) AddVendor() (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(AddVendor)
}

func (s *Session) RemoveVendor(vendorID int) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return RemoveVendor(r, vendorID)
	})
}

func (s *Session) SetPrimary(vendorID int) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return SetPrimary(r, vendorID)
	})
}

func (s *Session) CopyVendorData(fromID, toID int) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return CopyVendorData(r, fromID, toID)
	})
}

func (s *Session) UpdateField(vendorID int, section, field, value string) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return UpdateField(r, vendorID, section, field, value)
	})
}

func (s *Session) AddLineItem(vendorID int) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return AddLineItem(r, vendorID)
	})
}

func (s *Session) UpdateLineItem(vendorID, itemID int, field, value string) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return UpdateLineItem(r, vendorID, itemID, field, value)
	})
}

func (s *Session) RemoveLineItem(vendorID, itemID int) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		return RemoveLineItem(r, vendorID, itemID)
	})
}

// LinkAttachment records a stored attachment id on a vendor. The blob
// itself already lives in the attachment store.
func (s *Session) LinkAttachment(vendorID int, attachmentID string) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		v := r.Vendor(vendorID)
		if v == nil {
			return r, errs.ErrVendorNotFound
		}
		v.Attachments = append(v.Attachments, attachmentID)
		return r, nil
	})
}

// UnlinkAttachment drops an attachment reference from a vendor. Deleting
// the blob is a separate, explicit operation on the attachment store.
func (s *Session) UnlinkAttachment(vendorID int, attachmentID string) (*sourcingEntity.SourcingRecord, error) {
	return s.mutate(func(r *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
		v := r.Vendor(vendorID)
		if v == nil {
			return r, errs.ErrVendorNotFound
		}
		for i, id := range v.Attachments {
			if id == attachmentID {
				v.Attachments = append(v.Attachments[:i], v.Attachments[i+1:]...)
				break
			}
		}
		return r, nil
	})
}

// Save flushes the working copy. Silent saves swallow storage errors
// after logging; interactive saves surface them for retry.
func (s *Session) Save(ctx context.Context, silent bool) error {
	return s.coord.Flush(ctx, silent)
}

// Complete performs the terminal hand-off: an interactive save followed
// by marking the mirror document completed for the downstream workflow
// stage.
func (s *Session) Complete(ctx context.Context) error {
	if err := s.coord.Flush(ctx, false); err != nil {
		return err
	}
	return s.store.MarkComplete(ctx, s.key)
}

package attachment

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"sourcing.GO/core/errs"
	attachmentEntity "sourcing.GO/model/entity/attachment"
)

// AttachmentRepository is the durable tier under the blob store: keyed
// put/get/delete plus an owner index for "all attachments for vendor X"
// lookups.
type AttachmentRepository struct {
	db *gorm.DB

	initOnce sync.Once
	initErr  error
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Init sets up the attachment table and owner index. Idempotent.
func (r *AttachmentRepository) Init(ctx context.Context) error {
	r.initOnce.Do(func() {
		r.initErr = r.db.WithContext(ctx).AutoMigrate(&attachmentEntity.Attachment{})
	})
	return r.initErr
}

func (r *AttachmentRepository) Create(ctx context.Context, a *attachmentEntity.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*attachmentEntity.Attachment, error) {
	var a attachmentEntity.Attachment
	err := r.db.WithContext(ctx).Where("attachment_id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByOwner returns all attachments for a vendor within one work order.
// The owner index narrows the scan first; the work-order key is checked
// afterwards since the index is coarser than the full key (vendor ids
// repeat across work orders).
func (r *AttachmentRepository) ListByOwner(ctx context.Context, ownerID int, workOrderKey string) ([]attachmentEntity.Attachment, error) {
	var byOwner []attachmentEntity.Attachment
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&byOwner).Error
	if err != nil {
		return nil, err
	}
	out := byOwner[:0]
	for _, a := range byOwner {
		if a.WorkOrderKey == workOrderKey {
			out = append(out, a)
		}
	}
	return out, nil
}

// Delete removes an attachment by id. Idempotent: deleting a missing id
// reports false, not an error.
func (r *AttachmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("attachment_id = ?", id).Delete(&attachmentEntity.Attachment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

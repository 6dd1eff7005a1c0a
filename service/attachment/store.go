package attachment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"sourcing.GO/core/errs"
	attachmentEntity "sourcing.GO/model/entity/attachment"
	attachmentRepo "sourcing.GO/model/repository/attachment"
)

// MaxBytes is the default upload size cap (10 MiB).
const MaxBytes = 10 << 20

// allowedMediaTypes is the upload allow-list: documents, images and
// plain text.
var allowedMediaTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"text/plain": true,
	"text/csv":   true,
}

// UploadInput is one file of an upload batch.
type UploadInput struct {
	Name      string
	MediaType string
	CreatedBy string
	Data      []byte
}

// UploadOutcome is the per-file result of a batch upload. Files fail
// independently; one rejection never aborts its siblings.
type UploadOutcome struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
	Err  error  `json:"-"`
}

// Store validates, transforms and durably stores binary attachments,
// keyed by generated id and indexed by owning vendor.
type Store struct {
	repo      *attachmentRepo.AttachmentRepository
	transform ImageTransform
	maxBytes  int64
}

func NewStore(repo *attachmentRepo.AttachmentRepository, transform ImageTransform, maxBytes int64) *Store {
	if transform == nil {
		transform = Noop
	}
	if maxBytes <= 0 {
		maxBytes = MaxBytes
	}
	return &Store{repo: repo, transform: transform, maxBytes: maxBytes}
}

// Save validates one upload, runs the image transform when applicable
// and persists the result. Validation failures never reach the
// persistence write.
func (s *Store) Save(ctx context.Context, workOrderKey string, ownerID int, in UploadInput) (*attachmentEntity.Attachment, error) {
	if !allowedMediaTypes[in.MediaType] {
		return nil, &errs.ValidationError{Name: in.Name, Reason: fmt.Sprintf("media type %q not allowed", in.MediaType)}
	}
	if int64(len(in.Data)) > s.maxBytes {
		return nil, &errs.ValidationError{Name: in.Name, Reason: fmt.Sprintf("size %d exceeds limit %d", len(in.Data), s.maxBytes)}
	}

	payload := in.Data
	mediaType := in.MediaType
	if strings.HasPrefix(in.MediaType, "image/") {
		transformed, outType, err := s.transform(in.Data, in.MediaType)
		if err != nil {
			return nil, &errs.TransformError{Name: in.Name, Err: err}
		}
		payload = transformed
		mediaType = outType
	}

	a := &attachmentEntity.Attachment{
		ID:           newID(),
		OwnerID:      ownerID,
		WorkOrderKey: workOrderKey,
		Name:         in.Name,
		MediaType:    mediaType,
		Size:         int64(len(payload)),
		OriginalSize: int64(len(in.Data)),
		Payload:      payload,
		CreatedAt:    time.Now(),
		CreatedBy:    in.CreatedBy,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, &errs.StorageWriteError{Tier: "structured", Err: err}
	}
	return a, nil
}

// SaveAll processes a multi-file upload with isolated failure domains:
// each file's outcome is tracked and reported individually.
func (s *Store) SaveAll(ctx context.Context, workOrderKey string, ownerID int, ins []UploadInput) []UploadOutcome {
	outcomes := make([]UploadOutcome, 0, len(ins))
	for _, in := range ins {
		a, err := s.Save(ctx, workOrderKey, ownerID, in)
		out := UploadOutcome{Name: in.Name, Err: err}
		if err == nil {
			out.ID = a.ID
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (s *Store) Get(ctx context.Context, id string) (*attachmentEntity.Attachment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID int, workOrderKey string) ([]attachmentEntity.Attachment, error) {
	return s.repo.ListByOwner(ctx, ownerID, workOrderKey)
}

// Delete removes an attachment blob. Idempotent.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

var idCounter uint64

// newID generates a process-unique id from a nanosecond timestamp, an
// atomic counter and a random suffix.
func newID() string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	n := atomic.AddUint64(&idCounter, 1)
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixNano(), n, hex.EncodeToString(suffix))
}

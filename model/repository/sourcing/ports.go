package sourcing

import (
	"context"

	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// StructuredStore is the per-key document tier: one sourcing record blob
// under each work-order key. This tier is the source of truth.
type StructuredStore interface {
	Put(ctx context.Context, key string, rec *sourcingEntity.SourcingRecord) error
	Get(ctx context.Context, key string) (*sourcingEntity.SourcingRecord, error)
}

// MirrorStore is the flat snapshot tier: an array of superset documents
// keyed by work-order key, shared with external workflow collaborators.
// Kept eventually consistent with the structured store; writes here are
// best-effort.
type MirrorStore interface {
	Get(ctx context.Context, key string) (*sourcingEntity.MirrorDocument, error)
	Put(ctx context.Context, doc *sourcingEntity.MirrorDocument) error
	All(ctx context.Context) ([]sourcingEntity.MirrorDocument, error)
}

package sourcing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sourcing.GO/core/errs"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// DefaultMirrorKey is the redis key under which the whole snapshot array
// lives. External workflow tools read and rewrite the same key.
const DefaultMirrorKey = "sourcing:workorders"

// RedisMirrorStore keeps the flat snapshot as one JSON array of mirror
// documents under a single redis key, matching the shape external
// collaborators expect for bulk reads.
type RedisMirrorStore struct {
	client   *redis.Client
	redisKey string
}

func NewRedisMirrorStore(client *redis.Client, redisKey string) *RedisMirrorStore {
	if redisKey == "" {
		redisKey = DefaultMirrorKey
	}
	return &RedisMirrorStore{client: client, redisKey: redisKey}
}

func (m *RedisMirrorStore) All(ctx context.Context) ([]sourcingEntity.MirrorDocument, error) {
	raw, err := m.client.Get(ctx, m.redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var docs []sourcingEntity.MirrorDocument
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("decode mirror snapshot: %w", err)
	}
	return docs, nil
}

func (m *RedisMirrorStore) Get(ctx context.Context, key string) (*sourcingEntity.MirrorDocument, error) {
	docs, err := m.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].WorkOrderKey == key {
			return &docs[i], nil
		}
	}
	return nil, errs.ErrNotFound
}

// Put upserts one document into the snapshot array. The whole array is
// rewritten; the mirror is a snapshot store, not a per-key store.
func (m *RedisMirrorStore) Put(ctx context.Context, doc *sourcingEntity.MirrorDocument) error {
	docs, err := m.All(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range docs {
		if docs[i].WorkOrderKey == doc.WorkOrderKey {
			docs[i] = *doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, *doc)
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode mirror snapshot: %w", err)
	}
	return m.client.Set(ctx, m.redisKey, data, 0).Err()
}

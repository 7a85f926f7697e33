package embcache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore backs the embedding cache with a Valkey-compatible
// database.
type ValkeyStore struct {
	client valkey.Client
	ttl    time.Duration
}

// NewValkeyStore constructs the store. ttl <= 0 disables expiry.
func NewValkeyStore(client valkey.Client, ttl time.Duration) *ValkeyStore {
	return &ValkeyStore{client: client, ttl: ttl}
}

// Get fetches a cached payload.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	payload, err := result.AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set stores a payload.
func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	builder := s.client.B().Set().Key(key).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if s.ttl > 0 {
		cmd = builder.Ex(s.ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

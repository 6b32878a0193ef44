package rangemap

import (
	"context"
	"time"

	"github.com/kailas-cloud/occfilter/internal/db"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

type mockSource struct {
	wkts  []string
	err   error
	calls int
}

func (m *mockSource) Geometries(_ context.Context, _ domocc.Locality) ([]string, error) {
	m.calls++
	return m.wkts, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

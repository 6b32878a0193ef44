package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/occfilter/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName      = "occfilter"
	firstRetryDelay = 50 * time.Millisecond
	maxRetryDelay   = time.Second
)

// Config holds connection parameters for the range-map cache. Redis and
// Valkey speak the same protocol.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// ReadyTimeout bounds how long Open waits for the first PING.
	ReadyTimeout time.Duration
}

// Store is a rueidis-backed key-value cache.
type Store struct {
	client rueidis.Client
}

// Open connects and waits until the server answers PING. The client is
// closed again if it never becomes ready.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("cache addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
		ClientName:  clientName,
		// values are read once per species and never invalidated server side
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %v: %w", cfg.Addrs, err)
	}

	s := &Store{client: client}
	if err := s.WaitForReady(ctx, cfg.ReadyTimeout); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately and then with doubling delays until the
// store answers or timeout expires. A non-positive timeout pings once.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return s.Ping(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := firstRetryDelay
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("cache not ready after %s: %w", timeout, err)
		case <-time.After(delay):
		}
		delay = min(2*delay, maxRetryDelay)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

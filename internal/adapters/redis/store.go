package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Store implements ports.StateStore using Redis. It suits hosts that keep
// game saves server-side, e.g. a dialogue service shared by web clients.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for slots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for slots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "tendril:slot:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(slot string) string {
	return s.prefix + slot
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the payload and registers the slot in the index.
func (s *Store) Save(ctx context.Context, slot string, payload []byte) error {
	pipe := s.client.Pipeline()

	pipe.Set(ctx, s.key(slot), payload, s.ttl)

	// Index score = expiry time; infinite TTLs park far in the future so
	// lazy cleanup never removes them.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: slot,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot save slot to redis: %w", err)
	}
	return nil
}

// Load retrieves the slot payload.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, dialogue.ErrSlotNotFound
		}
		return nil, fmt.Errorf("cannot get slot from redis: %w", err)
	}
	return val, nil
}

// Delete removes the slot and its index entry.
func (s *Store) Delete(ctx context.Context, slot string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(slot))
	pipe.ZRem(ctx, s.indexKey(), slot)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns live slots, lazily pruning index entries whose TTL passed.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("cannot prune expired slots: %w", err)
	}

	slots, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot list slots: %w", err)
	}
	return slots, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

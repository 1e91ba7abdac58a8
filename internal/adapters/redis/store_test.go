package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tendril/internal/adapters/redis"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	err = store.Save(ctx, "autosave", []byte(`{"variables":{},"visited":{}}`))
	assert.NoError(t, err)

	slots, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"autosave"}, slots)

	// Past the TTL the key expires and List prunes the index entry.
	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "autosave")
	assert.ErrorIs(t, err, dialogue.ErrSlotNotFound)

	slots, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	first := redis.NewFromClient(client, redis.WithPrefix("gameA:"))
	second := redis.NewFromClient(client, redis.WithPrefix("gameB:"))

	ctx := context.Background()
	err = first.Save(ctx, "slot1", []byte("payload-a"))
	assert.NoError(t, err)

	_, err = second.Load(ctx, "slot1")
	assert.ErrorIs(t, err, dialogue.ErrSlotNotFound)

	got, err := first.Load(ctx, "slot1")
	assert.NoError(t, err)
	assert.Equal(t, []byte("payload-a"), got)

	assert.True(t, mr.Exists("gameA:slot1"), "prefixed key should exist")
	assert.False(t, mr.Exists("gameB:slot1"), "other prefix should be untouched")
}
